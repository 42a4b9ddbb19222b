package main

import (
	"fmt"

	"github.com/matsen/oatrends/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local source cache",
	Long: `Inspect or clear the local cache of fetched source records.

The cache avoids re-fetching source metadata across runs. It is an
optimization only: clearing it is always safe.`,
}

// cacheInfoResponse is the JSON output of 'cache info'.
type cacheInfoResponse struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location and record count",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := storage.DefaultPath()
		if err != nil {
			exitWithError(ExitError, "locating cache: %v", err)
		}
		cache := mustOpenCache()
		defer cache.Close()

		count, err := cache.Count()
		if err != nil {
			exitWithError(ExitError, "reading cache: %v", err)
		}

		if humanOutput {
			fmt.Printf("Path:    %s\n", path)
			fmt.Printf("Records: %d\n", count)
			return nil
		}
		return outputJSON(cacheInfoResponse{Path: path, Records: count})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached source records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache := mustOpenCache()
		defer cache.Close()

		if err := cache.Clear(); err != nil {
			exitWithError(ExitError, "clearing cache: %v", err)
		}

		if humanOutput {
			fmt.Println("Cache cleared")
			return nil
		}
		return outputJSON(StatusResponse{Status: "cleared"})
	},
}

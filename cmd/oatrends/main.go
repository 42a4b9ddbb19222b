// Package main provides the oatrends CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "oatrends",
	Short: "Preprint server metadata and trends from OpenAlex",
	Long: `oatrends collects preprint server metadata and publication trends
from the OpenAlex API.

Core features:
  - Resolve free-text server names to OpenAlex source records
  - Export server metadata, yearly trends, and optional monthly trends
    as a single ZIP archive
  - Local SQLite cache of fetched source records

The client is polite by default: it identifies itself, rate-limits
requests, and retries transient API errors with backoff. Set a contact
address with 'oatrends config mailto you@example.org' to join the
OpenAlex polite pool.

All commands output JSON by default for agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

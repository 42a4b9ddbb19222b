package main

import (
	"fmt"
	"strconv"

	"github.com/matsen/oatrends/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  oatrends config                        # Show all config
  oatrends config mailto                 # Get specific value
  oatrends config mailto you@example.org # Set value
  oatrends config polite-delay 1.0      # Seconds between requests
  oatrends config max-retries 3
  oatrends config max-candidates 10

Keys:
  mailto          Contact email sent with every request (polite pool)
  polite-delay    Pause in seconds after each successful request
  max-retries     Retry budget for transient API errors
  max-candidates  Candidates fetched per name during resolution

Configuration lives in ` + "~/.config/oatrends/config.yml" + `.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// configResponse is the JSON view of the full configuration.
type configResponse struct {
	Mailto             string  `json:"mailto"`
	PoliteDelaySeconds float64 `json:"polite_delay_seconds"`
	MaxRetries         int     `json:"max_retries"`
	MaxCandidates      int     `json:"max_candidates"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("mailto:          %s\n", cfg.Mailto)
			fmt.Printf("polite-delay:    %g\n", cfg.PoliteDelaySeconds)
			fmt.Printf("max-retries:     %d\n", cfg.MaxRetries)
			fmt.Printf("max-candidates:  %d\n", cfg.MaxCandidates)
		} else {
			outputJSON(configResponse{
				Mailto:             cfg.Mailto,
				PoliteDelaySeconds: cfg.PoliteDelaySeconds,
				MaxRetries:         cfg.MaxRetries,
				MaxCandidates:      cfg.MaxCandidates,
			})
		}
		return nil
	}

	key := args[0]

	// One arg: get specific value
	if len(args) == 1 {
		var value string
		switch key {
		case "mailto":
			value = cfg.Mailto
		case "polite-delay":
			value = strconv.FormatFloat(cfg.PoliteDelaySeconds, 'g', -1, 64)
		case "max-retries":
			value = strconv.Itoa(cfg.MaxRetries)
		case "max-candidates":
			value = strconv.Itoa(cfg.MaxCandidates)
		default:
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]

	switch key {
	case "mailto":
		cfg.Mailto = value

	case "polite-delay":
		d, err := strconv.ParseFloat(value, 64)
		if err != nil || d < 0 {
			exitWithError(ExitError, "polite-delay must be a non-negative number of seconds, got %q", value)
		}
		cfg.PoliteDelaySeconds = d

	case "max-retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			exitWithError(ExitError, "max-retries must be a positive integer, got %q", value)
		}
		cfg.MaxRetries = n

	case "max-candidates":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			exitWithError(ExitError, "max-candidates must be a positive integer, got %q", value)
		}
		cfg.MaxCandidates = n

	default:
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if err := cfg.Save(); err != nil {
		exitWithError(ExitConfigError, "saving config: %v", err)
	}
	config.ResetGlobalCache()

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	}
	return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
}

package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/matsen/oatrends/internal/config"
	"github.com/matsen/oatrends/internal/openalex"
	"github.com/matsen/oatrends/internal/storage"
)

// Flag sentinels meaning "not set on the command line".
const (
	unsetDelay   = -1.0
	unsetRetries = -1
)

// mustLoadConfig loads the global configuration, exits on error.
func mustLoadConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobal()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newAPIClient builds an OpenAlex client from the global config with
// command-line overrides applied on top. Precedence for the contact address:
// flag, then config file, then OPENALEX_MAILTO from the environment (the
// client reads the variable itself).
func newAPIClient(cfg *config.GlobalConfig, mailto string, delaySeconds float64, retries int) *openalex.Client {
	// Load .env if present (for OPENALEX_MAILTO)
	_ = godotenv.Load()

	var opts []openalex.ClientOption
	if mailto == "" {
		mailto = cfg.Mailto
	}
	if mailto != "" {
		opts = append(opts, openalex.WithMailto(mailto))
	}

	delay := cfg.PoliteDelay()
	if delaySeconds != unsetDelay {
		delay = time.Duration(delaySeconds * float64(time.Second))
	}
	opts = append(opts, openalex.WithPoliteDelay(delay))

	if retries == unsetRetries {
		retries = cfg.MaxRetries
	}
	opts = append(opts, openalex.WithMaxRetries(retries))

	return openalex.NewClient(opts...)
}

// mustOpenCache opens the local source cache at its default path, exits on
// error. The caller is responsible for calling Close().
func mustOpenCache() *storage.Cache {
	path, err := storage.DefaultPath()
	if err != nil {
		exitWithError(ExitError, "locating cache: %v", err)
	}
	cache, err := storage.Open(path)
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	return cache
}

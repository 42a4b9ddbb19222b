package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matsen/oatrends/internal/build"
	"github.com/matsen/oatrends/internal/selection"
	"github.com/spf13/cobra"
)

var (
	buildSelections      string
	buildIDs             string
	buildMonthly         bool
	buildFrom            string
	buildTo              string
	buildMailto          string
	buildDelay           float64
	buildRetries         int
	buildPrimaryLocation bool
	buildHostVenue       bool
	buildNoCache         bool
	buildOut             string
)

func init() {
	buildCmd.Flags().StringVar(&buildSelections, "selections", "", "YAML selection file from 'oatrends resolve --out'")
	buildCmd.Flags().StringVar(&buildIDs, "ids", "", "OpenAlex source ids (comma-separated), bypassing resolution")
	buildCmd.Flags().BoolVar(&buildMonthly, "monthly", false, "Aggregate monthly trends by walking each source's works (slow)")
	buildCmd.Flags().StringVar(&buildFrom, "from", "", "Earliest publication date for monthly aggregation (YYYY-MM-DD)")
	buildCmd.Flags().StringVar(&buildTo, "to", "", "Latest publication date for monthly aggregation (YYYY-MM-DD)")
	buildCmd.Flags().StringVar(&buildMailto, "mailto", "", "Contact email for the OpenAlex polite pool")
	buildCmd.Flags().Float64Var(&buildDelay, "delay", unsetDelay, "Polite delay between requests in seconds")
	buildCmd.Flags().IntVar(&buildRetries, "retries", unsetRetries, "Maximum retries per request")
	buildCmd.Flags().BoolVar(&buildPrimaryLocation, "primary-location", true, "Match works by primary location when aggregating monthly")
	buildCmd.Flags().BoolVar(&buildHostVenue, "host-venue", false, "Also match works by legacy host venue when aggregating monthly")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Bypass the local source cache")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "Output archive path (default openalex_preprint_servers_results_<timestamp>.zip)")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the results archive for selected sources",
	Long: `Build the results ZIP archive for the selected sources.

The archive contains servers.csv (flattened source metadata),
server_yearly_trends.csv (works and citations per year, from each
source's yearly snapshot), server_monthly_trends.csv (populated only
with --monthly, which pages through every matching work), the raw JSON
record of each source, and a selection summary manifest.

Sources come from a selection file or directly from ids. A source that
fails mid-build is skipped and recorded in the manifest; the build only
fails when every source does.

Examples:
  oatrends build --selections selections.yml
  oatrends build --ids S4306402567,S4306400806 --monthly --from 2019-01-01
  oatrends build --selections selections.yml --out results.zip`,
	RunE: runBuild,
}

// buildResponse is the JSON output of a successful build.
type buildResponse struct {
	Status    string                `json:"status"`
	Path      string                `json:"path"`
	SourceIDs []string              `json:"source_ids"`
	Processed int                   `json:"processed"`
	Failures  []build.SourceFailure `json:"failures,omitempty"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	sel, exitCode := collectSelection()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	cfg := mustLoadConfig()
	client := newAPIClient(cfg, buildMailto, buildDelay, buildRetries)

	b := &build.Builder{
		Client: client,
		Opts: build.Options{
			DateFrom:           buildFrom,
			DateTo:             buildTo,
			UsePrimaryLocation: buildPrimaryLocation,
			UseHostVenue:       buildHostVenue,
			Monthly:            buildMonthly,
		},
		Logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
	if !buildNoCache {
		cache := mustOpenCache()
		defer cache.Close()
		b.Cache = cache
	}

	res, err := b.Run(context.Background(), sel)
	if err != nil {
		if errors.Is(err, selection.ErrNoSelection) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitDataError, "building archive: %v", err)
	}

	out := buildOut
	if out == "" {
		out = fmt.Sprintf("openalex_preprint_servers_results_%s.zip", time.Now().Format("2006-01-02_15-04"))
	}
	if err := os.WriteFile(out, res.Archive, 0o644); err != nil {
		exitWithError(ExitError, "writing %s: %v", out, err)
	}

	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "warning: skipped %s: %s\n", f.SourceID, f.Error)
	}

	if humanOutput {
		fmt.Printf("Wrote %s (%d of %d sources)\n", out, res.Processed, len(res.SourceIDs))
		return nil
	}
	return outputJSON(buildResponse{
		Status:    "written",
		Path:      out,
		SourceIDs: res.SourceIDs,
		Processed: res.Processed,
		Failures:  res.Failures,
	})
}

// collectSelection builds the selection mapping from --selections or --ids.
func collectSelection() (*selection.Mapping, int) {
	if buildSelections != "" && buildIDs != "" {
		return nil, outputError(ExitError, "--selections and --ids are mutually exclusive")
	}

	if buildIDs != "" {
		var ids []string
		for _, id := range strings.Split(buildIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return &selection.Mapping{Selections: []selection.Entry{
			{Name: "command line", SourceIDs: ids},
		}}, 0
	}

	if buildSelections == "" {
		return nil, outputError(ExitError, "either --selections or --ids is required")
	}
	sel, err := selection.Load(buildSelections)
	if err != nil {
		return nil, outputError(ExitError, "reading %s: %v", buildSelections, err)
	}
	return sel, 0
}

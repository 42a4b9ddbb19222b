package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/matsen/oatrends/internal/namelist"
	"github.com/matsen/oatrends/internal/openalex"
	"github.com/matsen/oatrends/internal/selection"
	"github.com/spf13/cobra"
)

var (
	resolveFile        string
	resolveOut         string
	resolveInteractive bool
	resolveLimit       int
	resolveMailto      string
)

func init() {
	resolveCmd.Flags().StringVar(&resolveFile, "file", "", "Read server names from a file (.txt one per line, .csv first column)")
	resolveCmd.Flags().StringVar(&resolveOut, "out", "", "Write the selection mapping to this YAML file")
	resolveCmd.Flags().BoolVar(&resolveInteractive, "interactive", false, "Pick candidates interactively per name")
	resolveCmd.Flags().IntVar(&resolveLimit, "max", 0, "Maximum candidates per name (default from config)")
	resolveCmd.Flags().StringVar(&resolveMailto, "mailto", "", "Contact email for the OpenAlex polite pool")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [name]...",
	Short: "Resolve server names to OpenAlex source candidates",
	Long: `Resolve free-text preprint server names to OpenAlex source candidates.

Each name is first searched as an exact phrase against source display
names; if that yields nothing, a relevance search is tried. Names that
resolve to nothing are reported and skipped.

With --interactive, candidates are listed per name and you pick which
ones to keep (e.g. "1,3", or "all"). Without it, every candidate is
kept. With --out, the resulting name-to-source mapping is written as a
YAML selection file for 'oatrends build --selections'.

Examples:
  oatrends resolve bioRxiv medRxiv
  oatrends resolve --file servers.txt --interactive --out selections.yml
  oatrends resolve "Research Square" --out selections.yml`,
	RunE: runResolve,
}

// resolveResult is the JSON output for one resolved name.
type resolveResult struct {
	Name       string               `json:"name"`
	Candidates []openalex.Candidate `json:"candidates"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	names, exitCode := collectNames(args)
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	cfg := mustLoadConfig()
	limit := resolveLimit
	if limit <= 0 {
		limit = cfg.MaxCandidates
	}
	client := newAPIClient(cfg, resolveMailto, unsetDelay, unsetRetries)

	ctx := context.Background()
	var results []resolveResult
	var mapping selection.Mapping
	stdin := bufio.NewReader(os.Stdin)

	for _, name := range names {
		candidates, err := client.ResolveCandidates(ctx, name, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: resolving %q: %v\n", name, err)
			continue
		}
		if len(candidates) == 0 {
			fmt.Fprintf(os.Stderr, "warning: no candidates for %q\n", name)
			continue
		}

		chosen := candidates
		if resolveInteractive {
			chosen, err = pickCandidates(stdin, name, candidates)
			if err != nil {
				exitWithError(ExitError, "reading selection: %v", err)
			}
			if len(chosen) == 0 {
				fmt.Fprintf(os.Stderr, "skipped %q\n", name)
				continue
			}
		}

		results = append(results, resolveResult{Name: name, Candidates: chosen})

		ids := make([]string, len(chosen))
		for i, c := range chosen {
			ids[i] = c.ShortID
		}
		mapping.Selections = append(mapping.Selections, selection.Entry{Name: name, SourceIDs: ids})
	}

	if len(results) == 0 {
		exitWithError(ExitDataError, "no names resolved to any candidates")
	}

	if resolveOut != "" {
		if err := mapping.Save(resolveOut); err != nil {
			exitWithError(ExitError, "writing selection file: %v", err)
		}
		if humanOutput {
			fmt.Printf("Wrote %d selection(s) to %s\n", len(mapping.Selections), resolveOut)
		} else {
			outputJSON(StatusResponse{Status: "written", Path: resolveOut})
		}
		return nil
	}

	if humanOutput {
		for _, r := range results {
			fmt.Printf("%s:\n", r.Name)
			for _, c := range r.Candidates {
				printCandidate(c)
			}
		}
		return nil
	}
	return outputJSON(results)
}

// collectNames merges positional arguments with --file contents, normalizes
// whitespace, and drops duplicates.
func collectNames(args []string) ([]string, int) {
	names := make([]string, 0, len(args))
	for _, a := range args {
		if n := namelist.Normalize(a); n != "" {
			names = append(names, n)
		}
	}

	if resolveFile != "" {
		fromFile, err := namelist.FromFile(resolveFile)
		if err != nil {
			return nil, outputError(ExitError, "reading %s: %v", resolveFile, err)
		}
		names = append(names, fromFile...)
	}

	names = namelist.Dedupe(names)
	if len(names) == 0 {
		return nil, outputError(ExitError, "no server names given (pass names as arguments or use --file)")
	}
	return names, 0
}

// pickCandidates lists candidates for one name and reads a choice from the
// reader. An empty choice skips the name.
func pickCandidates(r *bufio.Reader, name string, candidates []openalex.Candidate) ([]openalex.Candidate, error) {
	fmt.Fprintf(os.Stderr, "\nCandidates for %q:\n", name)
	for i, c := range candidates {
		fmt.Fprintf(os.Stderr, "  %d. %s [%s] works=%d %s\n", i+1, c.DisplayName, c.ShortID, c.WorksCount, c.HomepageURL)
	}
	fmt.Fprintf(os.Stderr, "Select (e.g. 1,3 or 'all', empty to skip): ")

	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}

	indexes, err := parseChoice(line, len(candidates))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid selection: %v\n", err)
		return pickCandidates(r, name, candidates)
	}

	chosen := make([]openalex.Candidate, 0, len(indexes))
	for _, idx := range indexes {
		chosen = append(chosen, candidates[idx])
	}
	return chosen, nil
}

// parseChoice parses an interactive selection: "all" selects every candidate,
// otherwise a comma-separated list of 1-based positions. Returns zero-based
// indexes in input order, duplicates dropped. An empty input selects nothing.
func parseChoice(input string, n int) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if strings.EqualFold(input, "all") {
		indexes := make([]int, n)
		for i := range indexes {
			indexes[i] = i
		}
		return indexes, nil
	}

	seen := make(map[int]struct{})
	var indexes []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pos, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		if pos < 1 || pos > n {
			return nil, fmt.Errorf("%d is out of range 1-%d", pos, n)
		}
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		indexes = append(indexes, pos-1)
	}
	return indexes, nil
}

func printCandidate(c openalex.Candidate) {
	fmt.Printf("  %s  %s (type=%s, works=%d)\n", c.ShortID, c.DisplayName, c.Type, c.WorksCount)
	if c.HomepageURL != "" {
		fmt.Printf("      %s\n", c.HomepageURL)
	}
}

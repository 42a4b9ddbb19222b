// Package namelist parses server-name input lists from plain text or CSV.
package namelist

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Normalize collapses interior whitespace and trims, so differently spaced
// spellings of the same name compare equal.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Dedupe drops exact repeats, preserving first-seen order.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ParseLines reads one name per line, normalized, empty lines skipped.
func ParseLines(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if n := Normalize(scanner.Text()); n != "" {
			names = append(names, n)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading names: %w", err)
	}
	return names, nil
}

// ParseCSV reads names from the first column of a CSV file. The first record
// is treated as a header and skipped.
func ParseCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading names CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var names []string
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		if n := Normalize(rec[0]); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}

// FromFile loads names from a file, picking the parser by extension:
// .csv files use the first column (header skipped), everything else is
// one name per line.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening names file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseCSV(f)
	}
	return ParseLines(f)
}

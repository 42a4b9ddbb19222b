package build

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/matsen/oatrends/internal/trends"
)

// Archive member names.
const (
	serversCSVName  = "servers.csv"
	yearlyCSVName   = "server_yearly_trends.csv"
	monthlyCSVName  = "server_monthly_trends.csv"
	manifestName    = "json/selection_summary.json"
	sourceJSONName  = "json/source_%s.json"
	monthlyOffNote  = "Monthly aggregation disabled."
	monthlyNoneNote = "No works matched the monthly aggregation filters."
)

// manifest records the resolved identifier list and run configuration inside
// the archive, plus any sources the build had to skip.
type manifest struct {
	SelectedSourceIDs  []string        `json:"selected_source_ids"`
	DateFrom           string          `json:"date_from"`
	DateTo             string          `json:"date_to"`
	UsePrimaryLocation bool            `json:"use_primary_location"`
	UseHostVenue       bool            `json:"use_host_venue"`
	MonthlyEnabled     bool            `json:"monthly_enabled"`
	FailedSources      []SourceFailure `json:"failed_sources,omitempty"`
}

// packageArchive assembles the three tabular artifacts, the per-source raw
// JSON documents, and the manifest into one compressed in-memory archive.
func (b *Builder) packageArchive(
	selectedIDs []string,
	rows []map[string]string,
	observed map[string]struct{},
	agg *trends.Aggregator,
	processedIDs []string,
	rawBySource map[string][]byte,
	failures []SourceFailure,
) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	header := serversHeader(observed)
	if err := writeCSV(zw, serversCSVName, header, serverRows(header, rows)); err != nil {
		return nil, err
	}

	yearly := agg.YearlyTable()
	if err := writeTable(zw, yearlyCSVName, yearly); err != nil {
		return nil, err
	}

	if err := writeTable(zw, monthlyCSVName, b.monthlyTable(agg)); err != nil {
		return nil, err
	}

	for _, sid := range processedIDs {
		w, err := zw.Create(fmt.Sprintf(sourceJSONName, sid))
		if err != nil {
			return nil, fmt.Errorf("creating %s entry: %w", sid, err)
		}
		if _, err := w.Write(rawBySource[sid]); err != nil {
			return nil, fmt.Errorf("writing %s entry: %w", sid, err)
		}
	}

	m := manifest{
		SelectedSourceIDs:  selectedIDs,
		DateFrom:           b.Opts.DateFrom,
		DateTo:             b.Opts.DateTo,
		UsePrimaryLocation: b.Opts.UsePrimaryLocation,
		UseHostVenue:       b.Opts.UseHostVenue,
		MonthlyEnabled:     b.Opts.Monthly,
		FailedSources:      failures,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	w, err := zw.Create(manifestName)
	if err != nil {
		return nil, fmt.Errorf("creating manifest entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// monthlyTable picks the monthly wide table or its placeholder: a note row
// when monthly aggregation never ran or matched nothing.
func (b *Builder) monthlyTable(agg *trends.Aggregator) trends.Table {
	switch {
	case !b.Opts.Monthly:
		return trends.PlaceholderTable(monthlyOffNote)
	case !agg.HasMonths():
		return trends.PlaceholderTable(monthlyNoneNote)
	default:
		return agg.MonthlyTable()
	}
}

// serverRows projects the flat row maps onto the header, padding missing
// columns with empty strings so the table stays rectangular.
func serverRows(header []string, rows []map[string]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(header))
		for j, col := range header {
			rec[j] = row[col]
		}
		out[i] = rec
	}
	return out
}

func writeTable(zw *zip.Writer, name string, t trends.Table) error {
	return writeCSV(zw, name, t.Header, t.Rows)
}

func writeCSV(zw *zip.Writer, name string, header []string, rows [][]string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s entry: %w", name, err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing %s row: %w", name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", name, err)
	}
	return nil
}

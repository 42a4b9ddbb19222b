// Package build orchestrates the fetch/aggregate/export pipeline: it resolves
// the selection into an ordered identifier list, fetches each Source record,
// flattens it into a tabular row, feeds the aggregation context, and packages
// the results into a single in-memory ZIP archive.
package build

import (
	"context"
	"fmt"

	"github.com/matsen/oatrends/internal/flatten"
	"github.com/matsen/oatrends/internal/openalex"
	"github.com/matsen/oatrends/internal/selection"
	"github.com/matsen/oatrends/internal/trends"
)

// Heavy or duplicated record fields stripped before flattening: the yearly
// snapshot feeds the aggregator instead, topics become three derived columns,
// and the legacy concepts list is not needed in flat form.
var strippedFields = []string{"counts_by_year", "topic_share", "x_concepts"}

// Options configure one build run.
type Options struct {
	DateFrom           string // only affects monthly aggregation
	DateTo             string // only affects monthly aggregation
	UsePrimaryLocation bool
	UseHostVenue       bool
	Monthly            bool
}

// SourceFailure records a source the build skipped, with enough context to be
// actionable.
type SourceFailure struct {
	SourceID string `json:"source_id"`
	Error    string `json:"error"`
}

// Fetcher is the slice of the OpenAlex client the builder needs.
type Fetcher interface {
	FetchSource(ctx context.Context, id string) (*openalex.Source, error)
	ForEachWork(ctx context.Context, sourceID string, filter openalex.WorksFilter, fn func(openalex.Work) error) error
}

// SourceCache optionally interposes a local record store between the builder
// and the API.
type SourceCache interface {
	Get(id string) ([]byte, error)
	Put(id, displayName string, raw []byte) error
}

// Builder runs the pipeline. Processing is sequential by design: one source
// at a time, one page at a time, with the client's polite delays as the
// rate-limiting strategy.
type Builder struct {
	Client Fetcher
	Cache  SourceCache // optional
	Opts   Options
	Logf   func(format string, args ...any) // optional progress hook
}

// Result is the outcome of a build run.
type Result struct {
	Archive   []byte
	SourceIDs []string // resolved identifier list, in processing order
	Processed int
	Failures  []SourceFailure
}

func (b *Builder) logf(format string, args ...any) {
	if b.Logf != nil {
		b.Logf(format, args...)
	}
}

// Run executes the pipeline over the flattened selection. An empty selection
// fails fast with selection.ErrNoSelection and produces no output. A failure
// while processing one source is isolated: it is recorded in the manifest and
// the batch continues. Run errors only when nothing was selected, every
// selected source failed, or the context was cancelled.
func (b *Builder) Run(ctx context.Context, sel *selection.Mapping) (*Result, error) {
	ids, err := sel.SourceIDs()
	if err != nil {
		return nil, err
	}

	agg := trends.NewAggregator()
	var rows []map[string]string
	observed := make(map[string]struct{})
	rawBySource := make(map[string][]byte)
	var processedIDs []string
	var failures []SourceFailure

	for i, id := range ids {
		b.logf("fetching source %s (%d/%d)", id, i+1, len(ids))

		row, raw, err := b.processSource(ctx, agg, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			b.logf("skipping %s: %v", id, err)
			failures = append(failures, SourceFailure{SourceID: id, Error: err.Error()})
			continue
		}

		rows = append(rows, row)
		for col := range row {
			observed[col] = struct{}{}
		}
		sid := row["source_id"]
		rawBySource[sid] = raw
		processedIDs = append(processedIDs, sid)
		b.logf("finished %s", displayOr(row["display_name"], id))
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("all %d selected sources failed", len(ids))
	}

	archive, err := b.packageArchive(ids, rows, observed, agg, processedIDs, rawBySource, failures)
	if err != nil {
		return nil, fmt.Errorf("packaging archive: %w", err)
	}

	return &Result{
		Archive:   archive,
		SourceIDs: ids,
		Processed: len(rows),
		Failures:  failures,
	}, nil
}

// processSource fetches one source, builds its flat row, and feeds the
// aggregation context. On a monthly-aggregation failure the source's partial
// contribution is dropped so the export never contains half-counted buckets.
func (b *Builder) processSource(ctx context.Context, agg *trends.Aggregator, id string) (map[string]string, []byte, error) {
	src, err := b.fetchSource(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	sid := src.ID
	if sid == "" {
		sid = id
	}

	row := buildRow(src, sid)

	countsByYear, _ := src.Data["counts_by_year"].([]any)
	agg.AddSource(sid, src.DisplayName, countsByYear)

	if b.Opts.Monthly {
		b.logf("monthly aggregation for %s started (this can take a while)", sid)
		filter := openalex.WorksFilter{
			DateFrom:        b.Opts.DateFrom,
			DateTo:          b.Opts.DateTo,
			PrimaryLocation: b.Opts.UsePrimaryLocation,
			HostVenue:       b.Opts.UseHostVenue,
		}
		var processed int
		err := b.Client.ForEachWork(ctx, sid, filter, func(w openalex.Work) error {
			agg.AddWork(sid, w.PublicationDate, w.CitedByCount)
			processed++
			if processed%500 == 0 {
				b.logf("%s: processed %d works", sid, processed)
			}
			return nil
		})
		if err != nil {
			agg.DropSource(sid)
			return nil, nil, fmt.Errorf("monthly aggregation for %s: %w", sid, err)
		}
		b.logf("monthly aggregation for %s complete: %d works scanned", sid, processed)
	}

	return row, src.Raw, nil
}

// fetchSource returns the source record, consulting the cache first when one
// is configured. Cache errors are logged and fall through to the API.
func (b *Builder) fetchSource(ctx context.Context, id string) (*openalex.Source, error) {
	if b.Cache != nil {
		raw, err := b.Cache.Get(id)
		if err != nil {
			b.logf("cache read for %s failed: %v", id, err)
		} else if raw != nil {
			src, err := openalex.ParseSource(raw)
			if err == nil {
				b.logf("using cached record for %s", id)
				return src, nil
			}
			b.logf("cached record for %s unusable: %v", id, err)
		}
	}

	src, err := b.Client.FetchSource(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Cache != nil {
		sid := src.ID
		if sid == "" {
			sid = id
		}
		if err := b.Cache.Put(sid, src.DisplayName, src.Raw); err != nil {
			b.logf("cache write for %s failed: %v", sid, err)
		}
	}
	return src, nil
}

// buildRow flattens one source record into a servers.csv row: heavy fields
// stripped, topics summarized into three columns, the full original record
// retained verbatim in the raw_json column.
func buildRow(src *openalex.Source, sid string) map[string]string {
	clean := make(map[string]any, len(src.Data))
	for k, v := range src.Data {
		clean[k] = v
	}
	for _, field := range strippedFields {
		delete(clean, field)
	}

	display, subfields, domains := flatten.BuildTopicsColumns(clean["topics"])
	delete(clean, "topics")

	row := flatten.Flatten(clean)
	row["source_id"] = sid
	row["display_name"] = src.DisplayName
	row["topics_display"] = display
	row["topics_subfields"] = subfields
	row["topics_domains"] = domains
	row[rawJSONColumn] = string(src.Raw)
	return row
}

func displayOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

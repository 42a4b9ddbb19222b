// Package trends accumulates per-source publication and citation counts into
// yearly and monthly buckets and reshapes them into wide tables where the
// time unit is a column.
package trends

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Metric names emitted in the wide tables.
const (
	MetricWorks = "works_count"
	MetricCited = "cited_by_count"
)

// Counts holds the two metrics tracked per bucket.
type Counts struct {
	Works   int
	CitedBy int
}

// Aggregator accumulates yearly and monthly counts across sources. It is
// explicit state owned by the processing loop, not shared across goroutines.
type Aggregator struct {
	yearly  map[string]map[string]Counts // source id -> year -> counts
	monthly map[string]map[string]Counts // source id -> "YYYY-MM" -> counts
	names   map[string]string            // source id -> display name
	order   []string                     // source ids in first-seen order
	years   map[string]struct{}
	months  map[string]struct{}
}

// NewAggregator returns an empty aggregation context.
func NewAggregator() *Aggregator {
	return &Aggregator{
		yearly:  make(map[string]map[string]Counts),
		monthly: make(map[string]map[string]Counts),
		names:   make(map[string]string),
		years:   make(map[string]struct{}),
		months:  make(map[string]struct{}),
	}
}

// AddSource registers a source and applies its embedded yearly snapshot
// (the counts_by_year list of a Source record). Snapshot values overwrite any
// previous bucket for the same (source, year): a snapshot is authoritative,
// not an increment. Entries with non-numeric years are skipped.
func (a *Aggregator) AddSource(sourceID, displayName string, countsByYear []any) {
	if _, known := a.names[sourceID]; !known {
		a.order = append(a.order, sourceID)
	}
	a.names[sourceID] = displayName

	for _, el := range countsByYear {
		row, ok := el.(map[string]any)
		if !ok {
			continue
		}
		year := numberString(row["year"])
		if !allDigits(year) {
			continue
		}
		a.years[year] = struct{}{}
		buckets := a.yearly[sourceID]
		if buckets == nil {
			buckets = make(map[string]Counts)
			a.yearly[sourceID] = buckets
		}
		buckets[year] = Counts{
			Works:   toInt(row["works_count"]),
			CitedBy: toInt(row["cited_by_count"]),
		}
	}
}

// AddWork adds one streamed work to the month bucket derived from its
// publication date. A work contributes to at most one bucket; works with
// unparseable dates are dropped and AddWork reports false.
func (a *Aggregator) AddWork(sourceID, publicationDate string, citedBy int) bool {
	ym, ok := YearMonth(publicationDate)
	if !ok {
		return false
	}
	a.months[ym] = struct{}{}
	buckets := a.monthly[sourceID]
	if buckets == nil {
		buckets = make(map[string]Counts)
		a.monthly[sourceID] = buckets
	}
	c := buckets[ym]
	c.Works++
	c.CitedBy += citedBy
	buckets[ym] = c
	return true
}

// DropSource removes a source and everything it contributed, rebuilding the
// observed year/month sets from the remaining sources. Used when a source
// fails partway through aggregation so partial counts never reach the export.
func (a *Aggregator) DropSource(sourceID string) {
	if _, known := a.names[sourceID]; !known {
		return
	}
	delete(a.names, sourceID)
	delete(a.yearly, sourceID)
	delete(a.monthly, sourceID)
	for i, id := range a.order {
		if id == sourceID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}

	a.years = make(map[string]struct{})
	for _, buckets := range a.yearly {
		for y := range buckets {
			a.years[y] = struct{}{}
		}
	}
	a.months = make(map[string]struct{})
	for _, buckets := range a.monthly {
		for m := range buckets {
			a.months[m] = struct{}{}
		}
	}
}

// HasMonths reports whether any monthly bucket was populated.
func (a *Aggregator) HasMonths() bool {
	return len(a.months) > 0
}

// YearMonth normalizes a publication date to a zero-padded "YYYY-MM" bucket
// key. A full ISO date uses its year and month, a "YYYY-MM" pair is
// zero-padded, and a bare numeric year maps to January. Anything else yields
// no key (ok is false) and the work is dropped from monthly aggregation.
func YearMonth(date string) (string, bool) {
	if date == "" {
		return "", false
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("2006-01"), true
	}

	parts := strings.Split(date, "-")
	switch len(parts) {
	case 2:
		y, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return "", false
		}
		return fmt.Sprintf("%04d-%02d", y, m), true
	case 1:
		y, err := strconv.Atoi(parts[0])
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%04d-01", y), true
	}
	return "", false
}

// numberString renders a decoded JSON value as the string form of a number,
// accepting values that arrived as strings.
func numberString(v any) string {
	switch x := v.(type) {
	case json.Number:
		return x.String()
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	}
	return ""
}

// toInt coerces a decoded JSON count to an int, treating anything else as 0.
func toInt(v any) int {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(x)
	case int:
		return x
	case string:
		if i, err := strconv.Atoi(x); err == nil {
			return i
		}
	}
	return 0
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

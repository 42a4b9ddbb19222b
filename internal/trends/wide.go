package trends

import (
	"sort"
	"strconv"
)

// Table is a rectangular tabular artifact ready for CSV serialization.
type Table struct {
	Header []string
	Rows   [][]string
}

// idColumns is the fixed prefix shared by both wide tables.
var idColumns = []string{"source_id", "display_name", "metric"}

// YearlyTable reshapes yearly buckets into a wide table: one column per
// observed year in ascending numeric order, two rows per source (one per
// metric), missing cells defaulting to 0. Sources without a yearly snapshot
// emit no rows.
func (a *Aggregator) YearlyTable() Table {
	years := make([]string, 0, len(a.years))
	for y := range a.years {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool {
		yi, _ := strconv.Atoi(years[i])
		yj, _ := strconv.Atoi(years[j])
		return yi < yj
	})

	return a.wideTable(years, a.yearly)
}

// MonthlyTable reshapes monthly buckets the same way; months ascend
// lexicographically, which is chronological for zero-padded "YYYY-MM" keys.
func (a *Aggregator) MonthlyTable() Table {
	months := make([]string, 0, len(a.months))
	for m := range a.months {
		months = append(months, m)
	}
	sort.Strings(months)

	return a.wideTable(months, a.monthly)
}

// PlaceholderTable returns the single-row stand-in emitted in place of a wide
// table when monthly aggregation produced nothing.
func PlaceholderTable(note string) Table {
	return Table{
		Header: []string{"source_id", "display_name", "metric", "note"},
		Rows:   [][]string{{"", "", "info", note}},
	}
}

func (a *Aggregator) wideTable(periods []string, data map[string]map[string]Counts) Table {
	header := make([]string, 0, len(idColumns)+len(periods))
	header = append(header, idColumns...)
	header = append(header, periods...)

	var rows [][]string
	for _, sid := range a.order {
		buckets := data[sid]
		if len(buckets) == 0 {
			continue
		}
		rows = append(rows,
			metricRow(sid, a.names[sid], MetricWorks, periods, buckets, func(c Counts) int { return c.Works }),
			metricRow(sid, a.names[sid], MetricCited, periods, buckets, func(c Counts) int { return c.CitedBy }),
		)
	}

	return Table{Header: header, Rows: rows}
}

func metricRow(sid, name, metric string, periods []string, buckets map[string]Counts, pick func(Counts) int) []string {
	row := make([]string, 0, len(idColumns)+len(periods))
	row = append(row, sid, name, metric)
	for _, p := range periods {
		row = append(row, strconv.Itoa(pick(buckets[p])))
	}
	return row
}

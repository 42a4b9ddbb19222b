package trends

import (
	"reflect"
	"testing"
)

func TestYearlyTable(t *testing.T) {
	a := NewAggregator()
	a.AddSource("S1", "bioRxiv", snapshot([3]int{2021, 150, 90}, [3]int{2019, 80, 20}))
	a.AddSource("S2", "medRxiv", snapshot([3]int{2020, 60, 10}))

	tab := a.YearlyTable()

	wantHeader := []string{"source_id", "display_name", "metric", "2019", "2020", "2021"}
	if !reflect.DeepEqual(tab.Header, wantHeader) {
		t.Errorf("header = %v, want %v", tab.Header, wantHeader)
	}

	if len(tab.Rows) != 4 {
		t.Fatalf("got %d rows, want 4 (2 metrics x 2 sources)", len(tab.Rows))
	}

	wantRows := [][]string{
		{"S1", "bioRxiv", MetricWorks, "80", "0", "150"},
		{"S1", "bioRxiv", MetricCited, "20", "0", "90"},
		{"S2", "medRxiv", MetricWorks, "0", "60", "0"},
		{"S2", "medRxiv", MetricCited, "0", "10", "0"},
	}
	for i, want := range wantRows {
		if !reflect.DeepEqual(tab.Rows[i], want) {
			t.Errorf("row %d = %v, want %v", i, tab.Rows[i], want)
		}
	}
}

func TestYearlyTableSortsYearsNumerically(t *testing.T) {
	a := NewAggregator()
	a.AddSource("S1", "x", snapshot([3]int{999, 1, 0}, [3]int{2021, 1, 0}, [3]int{1998, 1, 0}))

	tab := a.YearlyTable()
	want := []string{"source_id", "display_name", "metric", "999", "1998", "2021"}
	if !reflect.DeepEqual(tab.Header, want) {
		t.Errorf("header = %v, want numeric ascending %v", tab.Header, want)
	}
}

func TestYearlyTableSkipsSourcesWithoutSnapshot(t *testing.T) {
	a := NewAggregator()
	a.AddSource("S1", "has data", snapshot([3]int{2020, 5, 5}))
	a.AddSource("S2", "no data", nil)

	tab := a.YearlyTable()
	if len(tab.Rows) != 2 {
		t.Errorf("got %d rows, want 2 (snapshotless source emits none)", len(tab.Rows))
	}
}

func TestMonthlyTable(t *testing.T) {
	a := NewAggregator()
	a.AddSource("S1", "bioRxiv", nil)
	a.AddSource("S2", "medRxiv", nil)
	a.AddWork("S1", "2021-03-15", 4)
	a.AddWork("S1", "2021-03-20", 1)
	a.AddWork("S2", "2021-04-02", 7)

	tab := a.MonthlyTable()

	wantHeader := []string{"source_id", "display_name", "metric", "2021-03", "2021-04"}
	if !reflect.DeepEqual(tab.Header, wantHeader) {
		t.Errorf("header = %v, want %v", tab.Header, wantHeader)
	}

	wantRows := [][]string{
		{"S1", "bioRxiv", MetricWorks, "2", "0"},
		{"S1", "bioRxiv", MetricCited, "5", "0"},
		{"S2", "medRxiv", MetricWorks, "0", "1"},
		{"S2", "medRxiv", MetricCited, "0", "7"},
	}
	if !reflect.DeepEqual(tab.Rows, wantRows) {
		t.Errorf("rows = %v, want %v", tab.Rows, wantRows)
	}
}

func TestPlaceholderTable(t *testing.T) {
	tab := PlaceholderTable("monthly off")

	wantHeader := []string{"source_id", "display_name", "metric", "note"}
	if !reflect.DeepEqual(tab.Header, wantHeader) {
		t.Errorf("header = %v, want %v", tab.Header, wantHeader)
	}
	if len(tab.Rows) != 1 {
		t.Fatalf("got %d rows, want exactly 1", len(tab.Rows))
	}
	want := []string{"", "", "info", "monthly off"}
	if !reflect.DeepEqual(tab.Rows[0], want) {
		t.Errorf("row = %v, want %v", tab.Rows[0], want)
	}
}

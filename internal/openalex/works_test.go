package openalex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestForEachWorkPaginates(t *testing.T) {
	var cursors []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cursors = append(cursors, q.Get("cursor"))

		if q.Get("per-page") != "200" {
			t.Errorf("per-page = %q, want 200", q.Get("per-page"))
		}
		if q.Get("select") != WorkSelectFields {
			t.Errorf("select = %q, want %q", q.Get("select"), WorkSelectFields)
		}
		if q.Get("filter") != "primary_location.source.id:S1" {
			t.Errorf("filter = %q", q.Get("filter"))
		}

		switch q.Get("cursor") {
		case "*":
			w.Write([]byte(`{"results":[
				{"publication_date":"2021-03-15","cited_by_count":4},
				{"publication_date":"2021-04-01","cited_by_count":0}
			],"meta":{"next_cursor":"page2"}}`))
		case "page2":
			w.Write([]byte(`{"results":[
				{"publication_date":"2021-04-20","cited_by_count":7}
			],"meta":{"next_cursor":null}}`))
		default:
			t.Errorf("unexpected cursor %q", q.Get("cursor"))
		}
	}))
	defer srv.Close()

	c, _ := testClient(srv, WithPoliteDelay(0))

	var works []Work
	err := c.ForEachWork(context.Background(), "S1", WorksFilter{PrimaryLocation: true}, func(w Work) error {
		works = append(works, w)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachWork() error = %v", err)
	}
	if len(works) != 3 {
		t.Fatalf("got %d works, want 3", len(works))
	}
	if works[2].CitedByCount != 7 {
		t.Errorf("last work cited_by_count = %d, want 7", works[2].CitedByCount)
	}
	if len(cursors) != 2 || cursors[0] != "*" || cursors[1] != "page2" {
		t.Errorf("cursors = %v, want [* page2]", cursors)
	}
}

func TestWorksFilterPredicates(t *testing.T) {
	tests := []struct {
		name   string
		filter WorksFilter
		want   []string
	}{
		{
			name:   "primary location only",
			filter: WorksFilter{PrimaryLocation: true},
			want:   []string{"primary_location.source.id:S9"},
		},
		{
			name:   "all predicates",
			filter: WorksFilter{PrimaryLocation: true, HostVenue: true, DateFrom: "2015-01-01", DateTo: "2025-12-31"},
			want: []string{
				"primary_location.source.id:S9",
				"host_venue.id:S9",
				"from_publication_date:2015-01-01",
				"to_publication_date:2025-12-31",
			},
		},
		{
			name:   "none",
			filter: WorksFilter{},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.predicates("S9")
			if len(got) != len(tt.want) {
				t.Fatalf("predicates = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("predicate[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestForEachWorkPageFailurePropagates(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"results":[{"publication_date":"2020-01-01","cited_by_count":1}],"meta":{"next_cursor":"next"}}`))
			return
		}
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	c, _ := testClient(srv, WithPoliteDelay(0))

	var seen int
	err := c.ForEachWork(context.Background(), "S1", WorksFilter{PrimaryLocation: true}, func(Work) error {
		seen++
		return nil
	})
	if err == nil {
		t.Fatal("ForEachWork() succeeded, want page-level failure")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusGone {
		t.Errorf("error = %v, want wrapped 410 APIError", err)
	}
	if seen != 1 {
		t.Errorf("callback saw %d works before failure, want 1", seen)
	}
}

func TestForEachWorkCallbackErrorStopsWalk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"publication_date":"2020-01-01","cited_by_count":1},
			{"publication_date":"2020-02-01","cited_by_count":2}
		],"meta":{"next_cursor":"more"}}`))
	}))
	defer srv.Close()

	c, _ := testClient(srv, WithPoliteDelay(0))

	stop := fmt.Errorf("stop")
	var seen int
	err := c.ForEachWork(context.Background(), "S1", WorksFilter{}, func(Work) error {
		seen++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("error = %v, want callback error", err)
	}
	if seen != 1 {
		t.Errorf("callback ran %d times, want 1", seen)
	}
}

package openalex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveCandidatesExactPhrase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sources" {
			t.Errorf("path = %q, want /sources", r.URL.Path)
		}
		filter := r.URL.Query().Get("filter")
		if filter != `display_name.search:"bioRxiv"` {
			t.Errorf("filter = %q, want exact-phrase search", filter)
		}
		if pp := r.URL.Query().Get("per-page"); pp != "10" {
			t.Errorf("per-page = %q, want 10", pp)
		}
		w.Write([]byte(`{"results":[
			{"id":"https://openalex.org/S4306402567","display_name":"bioRxiv","type":"repository","homepage_url":"https://www.biorxiv.org","works_count":300000},
			{"id":"https://openalex.org/S2764455111","display_name":"bioRxiv (Cold Spring Harbor Laboratory)","type":"repository","works_count":12}
		],"meta":{}}`))
	}))
	defer srv.Close()

	c, _ := testClient(srv, WithPoliteDelay(0))

	cands, err := c.ResolveCandidates(context.Background(), "bioRxiv", 10)
	if err != nil {
		t.Fatalf("ResolveCandidates() error = %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	if cands[0].ShortID != "S4306402567" {
		t.Errorf("ShortID = %q, want S4306402567", cands[0].ShortID)
	}
	if cands[0].WorksCount != 300000 {
		t.Errorf("WorksCount = %d, want 300000", cands[0].WorksCount)
	}
}

func TestResolveCandidatesFallback(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("filter") != "":
			queries = append(queries, "filter")
			w.Write([]byte(`{"results":[],"meta":{}}`))
		case q.Get("search") != "":
			queries = append(queries, "search")
			if q.Get("search") != "Research Square" {
				t.Errorf("search = %q, want raw name", q.Get("search"))
			}
			w.Write([]byte(`{"results":[{"id":"https://openalex.org/S4306402450","display_name":"Research Square"}],"meta":{}}`))
		default:
			t.Error("query had neither filter nor search")
		}
	}))
	defer srv.Close()

	c, _ := testClient(srv, WithPoliteDelay(0))

	cands, err := c.ResolveCandidates(context.Background(), "Research Square", 0)
	if err != nil {
		t.Fatalf("ResolveCandidates() error = %v", err)
	}
	if len(queries) != 2 || queries[0] != "filter" || queries[1] != "search" {
		t.Errorf("query order = %v, want [filter search]", queries)
	}
	if len(cands) != 1 || cands[0].ShortID != "S4306402450" {
		t.Errorf("candidates = %+v, want one from fallback", cands)
	}
}

func TestFetchSource(t *testing.T) {
	raw := `{"id":"https://openalex.org/S123","display_name":"medRxiv","works_count":5,"summary_stats":{"h_index":40}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sources/S123" {
			t.Errorf("path = %q, want /sources/S123", r.URL.Path)
		}
		w.Write([]byte(raw))
	}))
	defer srv.Close()

	c, _ := testClient(srv, WithPoliteDelay(0))

	src, err := c.FetchSource(context.Background(), "S123")
	if err != nil {
		t.Fatalf("FetchSource() error = %v", err)
	}
	if src.ID != "S123" {
		t.Errorf("ID = %q, want S123", src.ID)
	}
	if src.DisplayName != "medRxiv" {
		t.Errorf("DisplayName = %q, want medRxiv", src.DisplayName)
	}
	if string(src.Raw) != raw {
		t.Errorf("Raw not verbatim: %q", src.Raw)
	}
	if _, ok := src.Data["summary_stats"].(map[string]any); !ok {
		t.Error("Data missing nested summary_stats tree")
	}
}

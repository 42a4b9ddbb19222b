package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// WorksFilter controls which works are walked for a source.
type WorksFilter struct {
	DateFrom        string // inclusive lower publication-date bound, YYYY-MM-DD
	DateTo          string // inclusive upper publication-date bound, YYYY-MM-DD
	PrimaryLocation bool   // match works whose primary location is the source
	HostVenue       bool   // match works hosted at the source venue
}

// predicates returns the active filter predicates, joined with logical AND
// by the API when comma-separated.
func (f WorksFilter) predicates(sourceID string) []string {
	var preds []string
	if f.PrimaryLocation {
		preds = append(preds, "primary_location.source.id:"+sourceID)
	}
	if f.HostVenue {
		preds = append(preds, "host_venue.id:"+sourceID)
	}
	if f.DateFrom != "" {
		preds = append(preds, "from_publication_date:"+f.DateFrom)
	}
	if f.DateTo != "" {
		preds = append(preds, "to_publication_date:"+f.DateTo)
	}
	return preds
}

// ForEachWork walks all work records matching the source via cursor-based
// pagination, invoking fn for each. Pages hold up to WorksPageSize records
// and project only the fields monthly aggregation needs; the walk terminates
// when the API stops returning a next cursor. fn returning an error stops
// the walk and propagates that error.
func (c *Client) ForEachWork(ctx context.Context, sourceID string, filter WorksFilter, fn func(Work) error) error {
	preds := filter.predicates(sourceID)

	cursor := "*"
	for {
		q := url.Values{}
		q.Set("per-page", strconv.Itoa(WorksPageSize))
		q.Set("cursor", cursor)
		if len(preds) > 0 {
			q.Set("filter", strings.Join(preds, ","))
		}
		q.Set("select", WorkSelectFields)

		body, err := c.get(ctx, c.baseURL+"/works?"+q.Encode())
		if err != nil {
			return fmt.Errorf("walking works for %s: %w", sourceID, err)
		}

		var env struct {
			Results []Work `json:"results"`
			Meta    struct {
				NextCursor string `json:"next_cursor"`
			} `json:"meta"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("%w: parsing works page for %s: %v", ErrInvalidResponse, sourceID, err)
		}

		for _, w := range env.Results {
			if err := fn(w); err != nil {
				return err
			}
		}

		if env.Meta.NextCursor == "" {
			return nil
		}
		cursor = env.Meta.NextCursor
	}
}

package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ResolveCandidates resolves a human-entered server name to Source candidates.
// The primary query is an exact-phrase search on display name; when it yields
// nothing, an unscoped free-text search with the same result cap is tried.
// The fallback only fires on an empty primary result, so overlap between the
// two strategies is impossible.
func (c *Client) ResolveCandidates(ctx context.Context, name string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	q := url.Values{}
	q.Set("filter", fmt.Sprintf("display_name.search:%q", name))
	q.Set("per-page", strconv.Itoa(limit))
	cands, err := c.searchSources(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", name, err)
	}

	if len(cands) == 0 {
		q = url.Values{}
		q.Set("search", name)
		q.Set("per-page", strconv.Itoa(limit))
		cands, err = c.searchSources(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", name, err)
		}
	}

	return cands, nil
}

// searchSources runs one query against the sources search endpoint.
func (c *Client) searchSources(ctx context.Context, query url.Values) ([]Candidate, error) {
	body, err := c.get(ctx, c.baseURL+"/sources?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: parsing source search results: %v", ErrInvalidResponse, err)
	}

	cands := make([]Candidate, 0, len(env.Results))
	for _, raw := range env.Results {
		var cand Candidate
		if err := json.Unmarshal(raw, &cand); err != nil {
			return nil, fmt.Errorf("%w: parsing source candidate: %v", ErrInvalidResponse, err)
		}
		cand.ShortID = ShortID(cand.ID)
		cands = append(cands, cand)
	}
	return cands, nil
}

// FetchSource retrieves one full Source record by identifier.
func (c *Client) FetchSource(ctx context.Context, id string) (*Source, error) {
	body, err := c.get(ctx, c.baseURL+"/sources/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("fetching source %s: %w", id, err)
	}
	return ParseSource(body)
}

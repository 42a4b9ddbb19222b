package openalex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// idPrefix is the URL prefix of fully-qualified OpenAlex identifiers.
const idPrefix = "https://openalex.org/"

// ShortID strips the OpenAlex URL prefix from a fully-qualified identifier.
// Identifiers already in short form pass through unchanged.
func ShortID(id string) string {
	return strings.TrimPrefix(id, idPrefix)
}

// Candidate is one Source search match offered for human review.
// Candidates exist only to drive selection; they are never persisted.
type Candidate struct {
	ID          string `json:"id"`
	ShortID     string `json:"short_id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	HomepageURL string `json:"homepage_url"`
	WorksCount  int    `json:"works_count"`
}

// Source is one full OpenAlex Source record. Raw holds the verbatim response
// body for archival; Data is the same record decoded as a generic tree
// (numbers kept as json.Number so cells retain their literal text).
type Source struct {
	ID          string
	DisplayName string
	Raw         []byte
	Data        map[string]any
}

// Work is the minimal projection of a work record used for monthly aggregation.
type Work struct {
	PublicationDate string `json:"publication_date"`
	CitedByCount    int    `json:"cited_by_count"`
}

// listEnvelope is the common shape of OpenAlex list responses.
type listEnvelope struct {
	Results []json.RawMessage `json:"results"`
	Meta    struct {
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
}

// ParseSource decodes a raw Source record body.
func ParseSource(raw []byte) (*Source, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: parsing source record: %v", ErrInvalidResponse, err)
	}

	s := &Source{Raw: raw, Data: data}
	if id, ok := data["id"].(string); ok {
		s.ID = ShortID(id)
	}
	if name, ok := data["display_name"].(string); ok {
		s.DisplayName = name
	}
	return s, nil
}

package build

import "sort"

// rawJSONColumn holds the verbatim fetched record and is always the last
// column of servers.csv.
const rawJSONColumn = "raw_json"

// preferredColumns is the fixed prefix order for servers.csv: identity,
// identifiers, organizational lineage, openness flags, counts, summary stats,
// derived topic columns, API URL, and timestamps.
var preferredColumns = []string{
	"source_id", "display_name", "type", "homepage_url", "issn_l", "issn", "country_code",
	"host_organization_name", "host_organization", "host_organization_lineage",
	"is_oa", "is_in_doaj", "is_indexed_in_scopus", "is_core",
	"works_count", "cited_by_count",
	"summary_stats__2yr_mean_citedness", "summary_stats__h_index", "summary_stats__i10_index",
	"ids__openalex", "ids__wikidata",
	"topics_display", "topics_subfields", "topics_domains",
	"works_api_url", "updated_date", "created_date",
}

var preferredSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(preferredColumns))
	for _, c := range preferredColumns {
		set[c] = struct{}{}
	}
	return set
}()

// serversHeader orders the union of observed columns: the preferred prefix
// (those actually present) first, remaining columns in lexicographic order,
// and raw_json always last.
func serversHeader(observed map[string]struct{}) []string {
	var header []string
	for _, c := range preferredColumns {
		if _, ok := observed[c]; ok {
			header = append(header, c)
		}
	}

	var rest []string
	for c := range observed {
		if c == rawJSONColumn {
			continue
		}
		if _, ok := preferredSet[c]; ok {
			continue
		}
		rest = append(rest, c)
	}
	sort.Strings(rest)

	header = append(header, rest...)
	return append(header, rawJSONColumn)
}

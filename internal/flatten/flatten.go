// Package flatten converts schema-less JSON record trees into flat
// column-to-string mappings suitable for CSV rows, and summarizes OpenAlex
// topic lists into display columns.
package flatten

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Separator joins nested object keys into column names.
	Separator = "__"

	// listDelimiter joins scalar list elements into a single cell.
	listDelimiter = "|"
)

// Stringify renders a decoded JSON leaf as cell text. Numbers keep their
// literal form when the record was decoded with json.Number; null becomes the
// empty string; residual structures fall back to compact JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case json.Number:
		return x.String()
	case float64:
		// Tolerate trees decoded without UseNumber.
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// Flatten converts a nested record into a single-level column-to-value map.
// Nested objects recurse with the key appended to the prefix; lists whose
// elements are all objects explode each element under an index-suffixed key;
// other lists join their stringified elements into one delimited cell. An
// empty list contributes no column.
func Flatten(record map[string]any) map[string]string {
	out := make(map[string]string)
	flattenObject(record, "", out)
	return out
}

func flattenObject(obj map[string]any, prefix string, out map[string]string) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + Separator + k
		}
		flattenValue(v, key, out)
	}
}

func flattenValue(v any, key string, out map[string]string) {
	switch x := v.(type) {
	case map[string]any:
		flattenObject(x, key, out)
	case []any:
		flattenList(x, key, out)
	default:
		out[key] = Stringify(x)
	}
}

func flattenList(list []any, key string, out map[string]string) {
	if allObjects(list) {
		for i, el := range list {
			indexed := strconv.Itoa(i)
			if key != "" {
				indexed = key + "_" + indexed
			}
			flattenValue(el, indexed, out)
		}
		return
	}
	parts := make([]string, len(list))
	for i, el := range list {
		parts[i] = Stringify(el)
	}
	out[key] = strings.Join(parts, listDelimiter)
}

// allObjects reports whether every element of the list is a nested object.
// Vacuously true for an empty list, which therefore explodes into nothing.
func allObjects(list []any) bool {
	for _, el := range list {
		if _, ok := el.(map[string]any); !ok {
			return false
		}
	}
	return true
}

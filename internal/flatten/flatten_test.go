package flatten

import (
	"bytes"
	"encoding/json"
	"testing"
)

// decode parses JSON the way the pipeline does, keeping numbers literal.
func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return m
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{
			name: "scalars",
			in:   `{"a":"x","n":42,"f":1.5,"b":true,"z":null}`,
			want: map[string]string{"a": "x", "n": "42", "f": "1.5", "b": "true", "z": ""},
		},
		{
			name: "nested objects join with separator",
			in:   `{"summary_stats":{"h_index":40,"inner":{"deep":"v"}}}`,
			want: map[string]string{
				"summary_stats__h_index":     "40",
				"summary_stats__inner__deep": "v",
			},
		},
		{
			name: "list of objects explodes with index suffix",
			in:   `{"societies":[{"name":"A"},{"name":"B"}]}`,
			want: map[string]string{
				"societies_0__name": "A",
				"societies_1__name": "B",
			},
		},
		{
			name: "scalar list joins with delimiter",
			in:   `{"issn":["2050-084X","1234-5678"]}`,
			want: map[string]string{"issn": "2050-084X|1234-5678"},
		},
		{
			name: "mixed list joins as strings",
			in:   `{"mixed":["a",1,null,{"k":"v"}]}`,
			want: map[string]string{"mixed": `a|1||{"k":"v"}`},
		},
		{
			name: "empty list contributes no column",
			in:   `{"empty":[],"kept":"x"}`,
			want: map[string]string{"kept": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flatten(decode(t, tt.in))
			if len(got) != len(tt.want) {
				t.Errorf("got %d columns %v, want %d", len(got), got, len(tt.want))
			}
			for k, want := range tt.want {
				if got[k] != want {
					t.Errorf("column %q = %q, want %q", k, got[k], want)
				}
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"number keeps literal text", json.Number("3.10"), "3.10"},
		{"float64", float64(7), "7"},
		{"int", 12, "12"},
		{"map falls back to compact JSON", map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.in); got != tt.want {
				t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package namelist

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  bioRxiv  ", "bioRxiv"},
		{"Research   Square", "Research Square"},
		{"\tmedRxiv\n", "medRxiv"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"A", "B", "A", "C", "B"})
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe() = %v, want %v", got, want)
	}
}

func TestParseLines(t *testing.T) {
	in := "bioRxiv\n\n  medRxiv  \narXiv\n"
	got, err := ParseLines(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseLines() error = %v", err)
	}
	want := []string{"bioRxiv", "medRxiv", "arXiv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLines() = %v, want %v", got, want)
	}
}

func TestParseCSVSkipsHeaderAndUsesFirstColumn(t *testing.T) {
	in := "server_name,notes\nbioRxiv,biology\nmedRxiv,\n ,blank name\n"
	got, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	want := []string{"bioRxiv", "medRxiv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCSV() = %v, want %v", got, want)
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	got, err := ParseCSV(strings.NewReader("server_name\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ParseCSV() = %v, want empty", got)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "servers.csv")
	if err := os.WriteFile(csvPath, []byte("server_name\nbioRxiv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	txtPath := filepath.Join(dir, "servers.txt")
	if err := os.WriteFile(txtPath, []byte("medRxiv\narXiv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fromCSV, err := FromFile(csvPath)
	if err != nil {
		t.Fatalf("FromFile(csv) error = %v", err)
	}
	if !reflect.DeepEqual(fromCSV, []string{"bioRxiv"}) {
		t.Errorf("FromFile(csv) = %v", fromCSV)
	}

	fromTxt, err := FromFile(txtPath)
	if err != nil {
		t.Fatalf("FromFile(txt) error = %v", err)
	}
	if !reflect.DeepEqual(fromTxt, []string{"medRxiv", "arXiv"}) {
		t.Errorf("FromFile(txt) = %v", fromTxt)
	}
}

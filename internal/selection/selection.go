// Package selection models the human-approved mapping from input names to
// chosen OpenAlex source identifiers. The mapping is produced by an external
// step (the interactive resolve flow or a hand-edited file) and consumed
// opaquely by the build pipeline.
package selection

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoSelection is returned when a mapping contains no source ids at all.
var ErrNoSelection = errors.New("no sources selected")

// Entry pairs one input name with the source ids chosen for it.
type Entry struct {
	Name      string   `yaml:"name" json:"name"`
	SourceIDs []string `yaml:"source_ids" json:"source_ids"`
}

// Mapping is an ordered selection. Entry order is the order names were
// collected and drives source processing order.
type Mapping struct {
	Selections []Entry `yaml:"selections" json:"selections"`
}

// SourceIDs flattens the mapping into the ordered list of identifiers to
// process: first-seen order preserved, exact repeats and empty ids dropped.
// An empty overall selection is an input error, never silently skipped.
func (m *Mapping) SourceIDs() ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range m.Selections {
		for _, id := range e.SourceIDs {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}
	return ids, nil
}

// Load reads a selection mapping from a YAML file.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading selections: %w", err)
	}

	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing selections: %w", err)
	}
	return &m, nil
}

// Save writes the mapping as YAML.
func (m *Mapping) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding selections: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing selections: %w", err)
	}
	return nil
}

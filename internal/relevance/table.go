// Package relevance scores section text against persona and task labels and
// ranks sections across a collection of documents.
package relevance

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var defaultTable []byte

// Table maps a label to its keyword vocabulary. It is built once and never
// mutated; lookups are exact on the label.
type Table struct {
	keywords map[string][]string
}

type tableFile struct {
	Personas map[string][]string `yaml:"personas"`
}

// DefaultTable returns the embedded vocabulary table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded persona table: %v", err))
	}
	return t
}

// LoadTable reads a YAML vocabulary table from path. An empty path selects
// the embedded default.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML vocabulary table. Keywords are lower-cased,
// trimmed and de-duplicated per label.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse persona table: %w", err)
	}
	t := &Table{keywords: make(map[string][]string, len(f.Personas))}
	for label, words := range f.Personas {
		seen := make(map[string]bool, len(words))
		set := make([]string, 0, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			set = append(set, w)
		}
		t.keywords[label] = set
	}
	return t, nil
}

// Keywords returns the vocabulary for label, or nil for unknown labels.
func (t *Table) Keywords(label string) []string {
	if t == nil {
		return nil
	}
	return t.keywords[label]
}

// Labels lists the configured labels in sorted order.
func (t *Table) Labels() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.keywords))
	for l := range t.keywords {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

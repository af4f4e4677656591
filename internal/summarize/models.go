package summarize

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Model binds a user-facing label to a backend identifier of the form
// "provider/model", e.g. "anthropic/claude-3-5-haiku-latest".
type Model struct {
	Label   string `yaml:"label" json:"label"`
	Backend string `yaml:"backend" json:"backend"`
}

// Provider returns the part of the backend identifier before the first slash.
func (m Model) Provider() string {
	p, _, _ := strings.Cut(m.Backend, "/")
	return p
}

// ModelID returns the provider-specific model name.
func (m Model) ModelID() string {
	_, id, _ := strings.Cut(m.Backend, "/")
	return id
}

// Table is the ordered set of selectable summarization models.
type Table []Model

// DefaultTable lists the built-in models.
func DefaultTable() Table {
	return Table{
		{Label: "Claude Haiku (claude-3-5-haiku-latest)", Backend: "anthropic/claude-3-5-haiku-latest"},
		{Label: "Claude Sonnet (claude-sonnet-4-5)", Backend: "anthropic/claude-sonnet-4-5"},
		{Label: "GPT-4o mini (gpt-4o-mini)", Backend: "openai/gpt-4o-mini"},
	}
}

// Lookup finds the model for a label.
func (t Table) Lookup(label string) (Model, bool) {
	for _, m := range t {
		if m.Label == label {
			return m, true
		}
	}
	return Model{}, false
}

// Labels returns the labels in table order.
func (t Table) Labels() []string {
	out := make([]string, len(t))
	for i, m := range t {
		out[i] = m.Label
	}
	return out
}

// Providers returns the distinct providers referenced by the table.
func (t Table) Providers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range t {
		p := m.Provider()
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Validate checks for empty, duplicate, or malformed entries.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("model table is empty")
	}
	seen := make(map[string]bool)
	for i, m := range t {
		if strings.TrimSpace(m.Label) == "" {
			return fmt.Errorf("model %d: label is required", i)
		}
		if seen[m.Label] {
			return fmt.Errorf("model %q: duplicate label", m.Label)
		}
		seen[m.Label] = true
		if m.Provider() == "" || m.ModelID() == "" {
			return fmt.Errorf("model %q: backend must look like provider/model, got %q", m.Label, m.Backend)
		}
	}
	return nil
}

type tableFile struct {
	Models []Model `yaml:"models"`
}

// ParseTable decodes a YAML model table:
//
//	models:
//	  - label: "Claude Haiku"
//	    backend: "anthropic/claude-3-5-haiku-latest"
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse model table: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse model table: multiple YAML documents are not supported")
		}
		return nil, fmt.Errorf("parse model table: %w", err)
	}
	t := Table(f.Models)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

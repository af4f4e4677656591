package summarize

import (
	"strings"
	"testing"
)

func TestParseTable(t *testing.T) {
	data := []byte(`
models:
  - label: "BART"
    backend: "openai/bart-proxy"
  - label: "Claude"
    backend: "anthropic/claude-3-5-haiku-latest"
`)
	table, err := ParseTable(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Labels(); len(got) != 2 || got[0] != "BART" || got[1] != "Claude" {
		t.Fatalf("unexpected labels %v", got)
	}
	m, ok := table.Lookup("Claude")
	if !ok {
		t.Fatal("expected Claude to be found")
	}
	if m.Provider() != "anthropic" || m.ModelID() != "claude-3-5-haiku-latest" {
		t.Errorf("unexpected split %q / %q", m.Provider(), m.ModelID())
	}
	if p := table.Providers(); len(p) != 2 || p[0] != "openai" || p[1] != "anthropic" {
		t.Errorf("unexpected providers %v", p)
	}
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown field", "models:\n  - label: a\n    backend: x/y\n    extra: 1\n", "extra"},
		{"empty", "models: []\n", "empty"},
		{"duplicate", "models:\n  - {label: a, backend: x/y}\n  - {label: a, backend: x/z}\n", "duplicate"},
		{"malformed backend", "models:\n  - {label: a, backend: nomodel}\n", "provider/model"},
		{"missing label", "models:\n  - {backend: x/y}\n", "label"},
		{"multiple docs", "models:\n  - {label: a, backend: x/y}\n---\nmodels: []\n", "multiple"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tc.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestDefaultTableIsValid(t *testing.T) {
	if err := DefaultTable().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
}

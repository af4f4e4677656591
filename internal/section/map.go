package section

import "strings"

// Section is one labeled span of a document.
type Section struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Map is an ordered mapping from label to section text. Iteration follows
// the order in which labels were first seen.
type Map struct {
	order []Label
	text  map[Label]string
}

func newMap() *Map {
	return &Map{text: make(map[Label]string)}
}

// NewMap builds a Map from sections in order. A repeated label replaces the
// earlier text.
func NewMap(sections ...Section) *Map {
	m := newMap()
	for _, s := range sections {
		m.set(s.Label, s.Text, LastWins)
	}
	return m
}

func (m *Map) set(label Label, text string, policy DuplicatePolicy) {
	if _, exists := m.text[label]; exists {
		if policy == FirstWins {
			return
		}
	} else {
		m.order = append(m.order, label)
	}
	m.text[label] = text
}

// Get returns the text stored under label.
func (m *Map) Get(label Label) (string, bool) {
	if m == nil {
		return "", false
	}
	t, ok := m.text[label]
	return t, ok
}

// Len returns the number of sections.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Labels returns the labels in iteration order.
func (m *Map) Labels() []Label {
	if m == nil {
		return nil
	}
	out := make([]Label, len(m.order))
	copy(out, m.order)
	return out
}

// Sections returns a copy of all sections in iteration order.
func (m *Map) Sections() []Section {
	if m == nil {
		return nil
	}
	out := make([]Section, 0, len(m.order))
	for _, l := range m.order {
		out = append(out, Section{Label: l, Text: m.text[l]})
	}
	return out
}

// Text joins all section texts with newlines. This is the context the QA
// aggregator searches.
func (m *Map) Text() string {
	if m == nil {
		return ""
	}
	parts := make([]string, 0, len(m.order))
	for _, l := range m.order {
		parts = append(parts, m.text[l])
	}
	return strings.Join(parts, "\n")
}

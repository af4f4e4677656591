package section

import (
	"strings"
	"testing"
)

func TestSegment_AbstractAndIntroduction(t *testing.T) {
	m := Segment("Abstract\nThis paper studies X.\nIntroduction\nX causes Y.")

	if m.Len() != 2 {
		t.Fatalf("expected 2 sections, got %d (%v)", m.Len(), m.Labels())
	}
	want := map[Label]string{
		Abstract:     "Abstract\nThis paper studies X.",
		Introduction: "Introduction\nX causes Y.",
	}
	for label, text := range want {
		got, ok := m.Get(label)
		if !ok {
			t.Fatalf("missing section %q", label)
		}
		if got != text {
			t.Errorf("section %q: expected %q, got %q", label, text, got)
		}
	}
	labels := m.Labels()
	if labels[0] != Abstract || labels[1] != Introduction {
		t.Errorf("expected order [abstract introduction], got %v", labels)
	}
}

func TestSegment_NoHeadingsReturnsFullText(t *testing.T) {
	inputs := []string{
		"",
		"Just some prose without any headings.",
		"  leading spaces\nand trailing newline\n",
		"The results are in the abstract of another paper.",
	}
	for _, in := range inputs {
		m := Segment(in)
		if m.Len() != 1 {
			t.Fatalf("input %q: expected 1 section, got %d", in, m.Len())
		}
		got, ok := m.Get(FullText)
		if !ok {
			t.Fatalf("input %q: expected full_text section, got %v", in, m.Labels())
		}
		if got != in {
			t.Errorf("input %q: expected full_text to equal input untouched, got %q", in, got)
		}
	}
}

func TestSegment_SpansMatchHeadingPositions(t *testing.T) {
	text := "Title line\nby Someone\n" +
		"INTRODUCTION\nWe introduce things.\n\n" +
		"Methods\nWe did stuff.\nMore stuff.\n" +
		"Results\nIt worked.\n" +
		"Conclusion\nDone."

	m := Segment(text)
	labels := m.Labels()
	want := []Label{Introduction, Methods, Results, Conclusion}
	if len(labels) != len(want) {
		t.Fatalf("expected labels %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label[%d]: expected %q, got %q", i, want[i], labels[i])
		}
	}

	heads := []string{"INTRODUCTION\n", "Methods\n", "Results\n", "Conclusion\n"}
	for i, label := range want {
		start := strings.Index(text, heads[i])
		end := len(text)
		if i+1 < len(heads) {
			end = strings.Index(text, heads[i+1])
		}
		got, _ := m.Get(label)
		if exp := strings.TrimSpace(text[start:end]); got != exp {
			t.Errorf("section %q: expected %q, got %q", label, exp, got)
		}
	}

	// Text before the first heading is not captured by default.
	if strings.Contains(m.Text(), "by Someone") {
		t.Error("expected preamble to be dropped")
	}
}

func TestSegment_HeadingMustOccupyWholeLine(t *testing.T) {
	text := "Introduction\nThe results of this work appear below.\nResults are good.\nDiscussion\nFine."
	m := Segment(text)
	if _, ok := m.Get(Results); ok {
		t.Error("expected inline 'results' not to start a section")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 sections, got %v", m.Labels())
	}
}

func TestSegment_HeadingWithSurroundingWhitespace(t *testing.T) {
	text := "  Abstract  \nShort.\r\nRelated   Work\r\nPrior art.\n"
	m := Segment(text)
	if got, ok := m.Get(Abstract); !ok || got != "Abstract  \nShort." {
		t.Errorf("unexpected abstract section %q (ok=%v)", got, ok)
	}
	if got, ok := m.Get(RelatedWork); !ok || got != "Related   Work\r\nPrior art." {
		t.Errorf("unexpected related work section %q (ok=%v)", got, ok)
	}
}

func TestSegment_HeadingOnLastLine(t *testing.T) {
	m := Segment("Abstract\nBody text.\nReferences")
	got, ok := m.Get(References)
	if !ok || got != "References" {
		t.Errorf("expected trailing references heading to form its own section, got %q (ok=%v)", got, ok)
	}
}

func TestSegment_DuplicateLastWins(t *testing.T) {
	text := "Results\nfirst batch\nDiscussion\nthoughts\nResults\nsecond batch"
	m := Segment(text)

	if m.Len() != 2 {
		t.Fatalf("expected duplicates to collapse to 2 sections, got %v", m.Labels())
	}
	got, _ := m.Get(Results)
	if got != "Results\nsecond batch" {
		t.Errorf("expected last results span, got %q", got)
	}
	labels := m.Labels()
	if labels[0] != Results || labels[1] != Discussion {
		t.Errorf("expected key order [results discussion], got %v", labels)
	}
}

func TestSegment_DuplicateFirstWins(t *testing.T) {
	text := "Results\nfirst batch\nDiscussion\nthoughts\nResults\nsecond batch"
	m := NewSegmenter(Options{Duplicates: FirstWins}).Segment(text)

	got, _ := m.Get(Results)
	if got != "Results\nfirst batch" {
		t.Errorf("expected first results span, got %q", got)
	}
	disc, _ := m.Get(Discussion)
	if disc != "Discussion\nthoughts" {
		t.Errorf("expected discussion to end at the repeated heading, got %q", disc)
	}
}

func TestSegment_KeepPreamble(t *testing.T) {
	text := "A Study of Things\nJane Doe\nAbstract\nSummary here."
	m := NewSegmenter(Options{KeepPreamble: true}).Segment(text)

	labels := m.Labels()
	if len(labels) != 2 || labels[0] != Preamble {
		t.Fatalf("expected [preamble abstract], got %v", labels)
	}
	pre, _ := m.Get(Preamble)
	if pre != "A Study of Things\nJane Doe" {
		t.Errorf("unexpected preamble %q", pre)
	}

	// Blank preamble is not recorded.
	m = NewSegmenter(Options{KeepPreamble: true}).Segment("\n  \nAbstract\nx")
	if _, ok := m.Get(Preamble); ok {
		t.Error("expected blank preamble to be skipped")
	}
}

func TestSegment_AllVocabularyHeadings(t *testing.T) {
	var sb strings.Builder
	for _, l := range Vocabulary {
		sb.WriteString(strings.ToUpper(string(l)))
		sb.WriteString("\nbody of ")
		sb.WriteString(string(l))
		sb.WriteString("\n")
	}
	m := Segment(sb.String())
	if m.Len() != len(Vocabulary) {
		t.Fatalf("expected %d sections, got %d (%v)", len(Vocabulary), m.Len(), m.Labels())
	}
	for _, l := range Vocabulary {
		got, ok := m.Get(l)
		if !ok {
			t.Errorf("missing %q", l)
			continue
		}
		if !strings.HasSuffix(got, "body of "+string(l)) {
			t.Errorf("section %q: unexpected text %q", l, got)
		}
	}
}

func TestMap_TextJoinsSections(t *testing.T) {
	m := NewMap(
		Section{Label: Abstract, Text: "Abstract\nA."},
		Section{Label: Results, Text: "Results\nB."},
	)
	if got := m.Text(); got != "Abstract\nA.\nResults\nB." {
		t.Errorf("unexpected joined text %q", got)
	}
}

func TestMap_NilSafe(t *testing.T) {
	var m *Map
	if m.Len() != 0 || m.Text() != "" || m.Labels() != nil || m.Sections() != nil {
		t.Error("expected nil map accessors to return zero values")
	}
	if _, ok := m.Get(Abstract); ok {
		t.Error("expected Get on nil map to miss")
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
		ok   bool
	}{
		{"Abstract", Abstract, true},
		{"  RELATED  work ", RelatedWork, true},
		{"methods", Methods, true},
		{"full_text", FullText, true},
		{"Acknowledgements", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseLabel(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseLabel(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	if ParseDuplicatePolicy("FIRST") != FirstWins {
		t.Error("expected FIRST to parse as FirstWins")
	}
	if ParseDuplicatePolicy("") != LastWins || ParseDuplicatePolicy("bogus") != LastWins {
		t.Error("expected LastWins fallback")
	}
}

package section

import (
	"regexp"
	"strings"
)

// Label names a section of a paper. Headings map onto a closed vocabulary;
// FullText and Preamble are sentinels produced by the segmenter itself.
type Label string

const (
	Abstract     Label = "abstract"
	Introduction Label = "introduction"
	Background   Label = "background"
	RelatedWork  Label = "related work"
	Methodology  Label = "methodology"
	Methods      Label = "methods"
	Experiments  Label = "experiments"
	Results      Label = "results"
	Discussion   Label = "discussion"
	Conclusion   Label = "conclusion"
	References   Label = "references"

	// FullText is the only label returned when no heading is recognized.
	FullText Label = "full_text"
	// Preamble holds text before the first heading when Options.KeepPreamble is set.
	Preamble Label = "preamble"
)

// Vocabulary lists the recognized headings of a physics research paper.
var Vocabulary = []Label{
	Abstract,
	Introduction,
	Background,
	RelatedWork,
	Methodology,
	Methods,
	Experiments,
	Results,
	Discussion,
	Conclusion,
	References,
}

// headingRe matches a line consisting solely of a vocabulary heading.
// (?m) makes ^ match at the start of the text or right after a newline.
var headingRe = buildHeadingRe(Vocabulary)

func buildHeadingRe(vocab []Label) *regexp.Regexp {
	alts := make([]string, 0, len(vocab))
	for _, l := range vocab {
		words := strings.Fields(string(l))
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `[ \t]+`))
	}
	return regexp.MustCompile(`(?im)^[ \t]*(` + strings.Join(alts, "|") + `)[ \t]*\r?$`)
}

// ParseLabel normalizes a heading into its Label. ok is false for text
// outside the vocabulary.
func ParseLabel(heading string) (Label, bool) {
	l := Label(strings.Join(strings.Fields(strings.ToLower(heading)), " "))
	for _, v := range Vocabulary {
		if v == l {
			return l, true
		}
	}
	switch l {
	case FullText, Preamble:
		return l, true
	}
	return "", false
}

// Title returns the upper-cased label used in rendered digests.
func (l Label) Title() string {
	return strings.ToUpper(string(l))
}

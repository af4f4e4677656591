// Package section splits raw paper text into labeled sections by heading.
package section

import "strings"

// DuplicatePolicy decides which span survives when a heading repeats.
type DuplicatePolicy int

const (
	// LastWins keeps the last occurrence of a repeated heading. The key keeps
	// the position of its first occurrence.
	LastWins DuplicatePolicy = iota
	// FirstWins keeps the first occurrence and ignores later ones.
	FirstWins
)

func (p DuplicatePolicy) String() string {
	switch p {
	case LastWins:
		return "last"
	case FirstWins:
		return "first"
	default:
		return "unknown"
	}
}

// ParseDuplicatePolicy maps "first"/"last" to a policy; anything else is LastWins.
func ParseDuplicatePolicy(s string) DuplicatePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "first") {
		return FirstWins
	}
	return LastWins
}

// Options controls segmentation.
type Options struct {
	Duplicates DuplicatePolicy

	// KeepPreamble captures non-blank text before the first heading under
	// the Preamble label. Off by default, so that text is dropped.
	KeepPreamble bool
}

// Segmenter splits documents into sections.
type Segmenter struct {
	opts Options
}

func NewSegmenter(opts Options) *Segmenter {
	return &Segmenter{opts: opts}
}

// Segment splits text using the default options.
func Segment(text string) *Map {
	return NewSegmenter(Options{}).Segment(text)
}

// Segment scans text for heading lines and returns one section per detected
// heading. Each section runs from its heading to the next heading (or the
// end of the text) and keeps the heading line. Text with no recognized
// heading comes back whole under FullText.
func (s *Segmenter) Segment(text string) *Map {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	m := newMap()
	if len(matches) == 0 {
		m.set(FullText, text, LastWins)
		return m
	}

	if s.opts.KeepPreamble {
		if pre := strings.TrimSpace(text[:matches[0][0]]); pre != "" {
			m.set(Preamble, pre, LastWins)
		}
	}

	for i, loc := range matches {
		start := loc[0]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		label, ok := ParseLabel(text[loc[2]:loc[3]])
		if !ok {
			continue
		}
		m.set(label, strings.TrimSpace(text[start:end]), s.opts.Duplicates)
	}
	return m
}

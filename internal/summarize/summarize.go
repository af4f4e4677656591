// Package summarize produces per-section summaries through a pluggable
// model table and renders them as a plain-text digest.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/paperdigest/internal/llm"
	"github.com/dgallion1/paperdigest/internal/section"
)

const summaryPrompt = `Summarize the following section of a physics research paper in 40 to 150 words. Keep the key claims, quantities, and methods. Write plain prose with no headings or bullet points.`

// Summary is the summary of one section.
type Summary struct {
	Label  section.Label `json:"label"`
	Text   string        `json:"summary"`
	Failed bool          `json:"failed,omitempty"`
}

// FailureMarker is the visible text substituted for a failed summary.
func FailureMarker(err error) string {
	return fmt.Sprintf("(Summarization failed: %s)", err)
}

// Service resolves model labels to providers at call time.
type Service struct {
	providers     map[string]llm.Completer
	table         Table
	log           *slog.Logger
	maxConcurrent int
	maxTokens     int
	maxInputWords int
}

// Options tunes a Service.
type Options struct {
	MaxConcurrent int
	MaxTokens     int
	MaxInputWords int // Longer sections are cut to this many words; 0 keeps all.
}

func NewService(providers map[string]llm.Completer, table Table, opts Options, log *slog.Logger) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 300
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		providers:     providers,
		table:         table,
		log:           log,
		maxConcurrent: opts.MaxConcurrent,
		maxTokens:     opts.MaxTokens,
		maxInputWords: opts.MaxInputWords,
	}
}

// Table returns the model table.
func (s *Service) Table() Table {
	return s.table
}

// BuildPrompt creates the summarization prompt for one section.
func BuildPrompt(text string) string {
	return summaryPrompt + "\n\n---\n" + text
}

// Summarize summarizes text with the model registered under label.
func (s *Service) Summarize(ctx context.Context, text, label string) (string, error) {
	m, ok := s.table.Lookup(label)
	if !ok {
		return "", fmt.Errorf("unknown model %q", label)
	}
	client, ok := s.providers[m.Provider()]
	if !ok || client == nil {
		return "", fmt.Errorf("provider %q is not configured", m.Provider())
	}
	if s.maxInputWords > 0 {
		if words := strings.Fields(text); len(words) > s.maxInputWords {
			text = strings.Join(words[:s.maxInputWords], " ")
		}
	}
	out, err := client.Complete(ctx, m.ModelID(), BuildPrompt(text), s.maxTokens)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("empty summary")
	}
	return out, nil
}

// SummarizeSections summarizes every section with bounded parallelism. A
// failing section gets FailureMarker text and does not affect the others.
// The result follows the section map's order.
func (s *Service) SummarizeSections(ctx context.Context, sections *section.Map, label string) []Summary {
	secs := sections.Sections()
	out := make([]Summary, len(secs))
	type result struct {
		idx     int
		summary Summary
	}
	results := make(chan result, len(secs))
	sem := make(chan struct{}, s.maxConcurrent)

	for i, sec := range secs {
		sem <- struct{}{}
		go func(i int, sec section.Section) {
			defer func() { <-sem }()
			text, err := s.Summarize(ctx, sec.Text, label)
			if err != nil {
				s.log.Warn("summarization failed", "section", string(sec.Label), "model", label, "error", err)
				results <- result{idx: i, summary: Summary{Label: sec.Label, Text: FailureMarker(err), Failed: true}}
				return
			}
			results <- result{idx: i, summary: Summary{Label: sec.Label, Text: text}}
		}(i, sec)
	}

	for range secs {
		r := <-results
		out[r.idx] = r.summary
	}
	return out
}

// Render formats summaries as the downloadable digest.
func Render(summaries []Summary) string {
	var sb strings.Builder
	for _, s := range summaries {
		sb.WriteString("### ")
		sb.WriteString(s.Label.Title())
		sb.WriteString("\n")
		sb.WriteString(s.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

package qa

import (
	"context"
	"strings"
	"unicode"
)

// LexicalBackend is an offline extractive backend. It returns the sentence
// of the passage that contains the largest share of the question's content
// terms, scored by that share.
type LexicalBackend struct{}

func (LexicalBackend) AnswerSpan(ctx context.Context, question, passage string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	terms := contentTerms(question)
	if len(terms) == 0 {
		return Candidate{}, nil
	}

	var best Candidate
	for _, sent := range splitSentences(passage) {
		seen := make(map[string]bool)
		for _, w := range tokenize(sent) {
			if terms[w] {
				seen[w] = true
			}
		}
		score := float64(len(seen)) / float64(len(terms))
		if score > best.Score {
			best = Candidate{Answer: sent, Score: score}
		}
	}
	return best, nil
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true, "were": true,
	"what": true, "which": true, "who": true, "whom": true, "why": true, "how": true,
	"when": true, "where": true, "does": true, "did": true, "this": true, "that": true,
	"these": true, "those": true, "with": true, "from": true, "into": true, "paper": true,
	"about": true, "has": true, "have": true, "had": true, "its": true, "their": true,
	"there": true, "can": true, "could": true, "would": true, "should": true, "you": true,
	"use": true, "used": true, "using": true, "than": true, "then": true, "they": true,
	"is": true, "of": true, "in": true, "to": true, "an": true, "it": true, "be": true,
	"by": true, "on": true, "as": true, "at": true, "or": true, "do": true, "we": true,
}

// contentTerms returns the lowercase question words worth matching.
func contentTerms(question string) map[string]bool {
	terms := make(map[string]bool)
	for _, w := range tokenize(question) {
		if len([]rune(w)) < 2 || stopwords[w] {
			continue
		}
		terms[w] = true
	}
	return terms
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// splitSentences cuts text after '.', '!' or '?' when followed by whitespace.
// Each returned sentence is a verbatim substring of text.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(text) && isSpace(text[i+1]) {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

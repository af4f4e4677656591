package qa

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLexicalBackend_BestSentence(t *testing.T) {
	passage := "We cooled the sample slowly. The critical temperature is 93 kelvin. Resistance vanished below it."
	got, err := LexicalBackend{}.AnswerSpan(context.Background(), "What is the critical temperature?", passage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Answer != "The critical temperature is 93 kelvin." {
		t.Errorf("unexpected answer %q", got.Answer)
	}
	if got.Score != 1 {
		t.Errorf("expected full term coverage, got %f", got.Score)
	}
	if !strings.Contains(passage, got.Answer) {
		t.Error("expected answer to be a span of the passage")
	}
}

func TestLexicalBackend_NoEvidence(t *testing.T) {
	got, err := LexicalBackend{}.AnswerSpan(context.Background(), "Which magnet was used?", "Plasma confinement improved.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (Candidate{}) {
		t.Errorf("expected no answer, got %+v", got)
	}
}

func TestLexicalBackend_StopwordOnlyQuestion(t *testing.T) {
	got, _ := LexicalBackend{}.AnswerSpan(context.Background(), "What is the?", "The thing is here.")
	if got != (Candidate{}) {
		t.Errorf("expected no answer for a question without content terms, got %+v", got)
	}
}

func TestLexicalBackend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (LexicalBackend{}).AnswerSpan(ctx, "q", "p"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two! Three? Four has e.g.no break")
	want := []string{"One.", "Two!", "Three?", "Four has e.g.no break"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

type fakeCompleter struct {
	out    string
	err    error
	prompt string
	model  string
}

func (f *fakeCompleter) Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	f.prompt = prompt
	f.model = model
	return f.out, f.err
}

func TestLLMBackend_ParsesFencedJSON(t *testing.T) {
	fc := &fakeCompleter{out: "```json\n{\"answer\": \"93 kelvin\", \"score\": 0.87}\n```"}
	b := NewLLMBackend(fc, "qa-model")

	got, err := b.AnswerSpan(context.Background(), "What is Tc?", "Tc is 93 kelvin.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Answer != "93 kelvin" || got.Score != 0.87 {
		t.Errorf("unexpected candidate %+v", got)
	}
	if fc.model != "qa-model" {
		t.Errorf("expected model to be forwarded, got %q", fc.model)
	}
	if !strings.Contains(fc.prompt, `Question: "What is Tc?"`) || !strings.HasSuffix(fc.prompt, "Tc is 93 kelvin.") {
		t.Errorf("unexpected prompt %q", fc.prompt)
	}
}

func TestLLMBackend_RejectsNonSpanAnswer(t *testing.T) {
	fc := &fakeCompleter{out: `{"answer": "about ninety kelvin", "score": 0.9}`}
	got, err := NewLLMBackend(fc, "").AnswerSpan(context.Background(), "q", "Tc is 93 kelvin.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (Candidate{}) {
		t.Errorf("expected paraphrased answer to be dropped, got %+v", got)
	}
}

func TestLLMBackend_InvalidJSON(t *testing.T) {
	fc := &fakeCompleter{out: "I think it is 93 kelvin"}
	if _, err := NewLLMBackend(fc, "").AnswerSpan(context.Background(), "q", "p"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLLMBackend_PropagatesClientError(t *testing.T) {
	boom := errors.New("unavailable")
	fc := &fakeCompleter{err: boom}
	if _, err := NewLLMBackend(fc, "").AnswerSpan(context.Background(), "q", "p"); !errors.Is(err, boom) {
		t.Fatalf("expected client error, got %v", err)
	}
}

func TestValidateSpan(t *testing.T) {
	passage := "alpha beta gamma"
	tests := []struct {
		name   string
		answer string
		score  float64
		want   Candidate
	}{
		{"valid", "beta", 0.5, Candidate{Answer: "beta", Score: 0.5}},
		{"trimmed", "  beta gamma ", 0.5, Candidate{Answer: "beta gamma", Score: 0.5}},
		{"clamp high", "alpha", 1.7, Candidate{Answer: "alpha", Score: 1}},
		{"clamp low", "alpha", -0.2, Candidate{Answer: "alpha", Score: 0}},
		{"empty", "", 0.9, Candidate{}},
		{"not a span", "delta", 0.9, Candidate{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateSpan(tc.answer, tc.score, passage); got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/paperdigest/internal/llm"
)

const answerPrompt = `You are an extractive question answering system. Answer the question using ONLY an exact, contiguous span copied from the passage below.

Return a JSON object with these fields:
- "answer": the exact span from the passage (string). Use "" if the passage does not answer the question.
- "score": your confidence from 0.0 to 1.0 that the span answers the question (float).

Respond with ONLY the JSON object, no other text.`

// LLMBackend asks a completion model for an extractive answer.
type LLMBackend struct {
	client    llm.Completer
	model     string
	maxTokens int
}

func NewLLMBackend(client llm.Completer, model string) *LLMBackend {
	return &LLMBackend{client: client, model: model, maxTokens: 256}
}

// BuildAnswerPrompt creates the prompt for one question and passage.
func BuildAnswerPrompt(question, passage string) string {
	var sb strings.Builder
	sb.WriteString(answerPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Question: %q\n", question))
	sb.WriteString("---\n")
	sb.WriteString(passage)
	return sb.String()
}

type spanResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

func (b *LLMBackend) AnswerSpan(ctx context.Context, question, passage string) (Candidate, error) {
	out, err := b.client.Complete(ctx, b.model, BuildAnswerPrompt(question, passage), b.maxTokens)
	if err != nil {
		return Candidate{}, err
	}
	text := llm.StripCodeBlock(out)

	var resp spanResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return Candidate{}, fmt.Errorf("parse answer json: %w (raw: %s)", err, llm.Truncate(text, 200))
	}
	return ValidateSpan(resp.Answer, resp.Score, passage), nil
}

// ValidateSpan normalizes a model answer. Answers that are not a contiguous
// span of the passage count as no answer; scores are clamped to [0,1].
func ValidateSpan(answer string, score float64, passage string) Candidate {
	answer = strings.TrimSpace(answer)
	if answer == "" || !strings.Contains(passage, answer) {
		return Candidate{}
	}
	if math.IsNaN(score) || score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return Candidate{Answer: answer, Score: score}
}

// Package llm talks to hosted text-completion models. Summarization and the
// model-backed QA backend are both built on Completer.
package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Completer turns a prompt into model output text.
type Completer interface {
	Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

// ClientOptions tunes an API client.
type ClientOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables throttling.
	Burst             int
	StatsWindow       time.Duration
}

func (o ClientOptions) limiter() *rate.Limiter {
	if o.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := o.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(o.RequestsPerSecond), burst)
}

func (o ClientOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 120 * time.Second
	}
	return o.Timeout
}

// RetryableError indicates a transient upstream failure (rate limiting or a
// 5xx). Callers may surface it differently but nothing retries it.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, Truncate(e.Message, 200))
}

func isRetryableStatus(code int) bool {
	return code == 429 || code >= 500
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeBlock removes a surrounding markdown code fence.
func StripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// Truncate shortens s to n bytes, marking the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

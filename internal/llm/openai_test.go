package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go"
)

const chatCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "finish_reason": "stop",
    "message": {"role": "assistant", "content": "  The sample is superconducting below 4 K.  "}
  }]
}`

type openAIRequest struct {
	Model               string `json:"model"`
	MaxCompletionTokens int    `json:"max_completion_tokens"`
	Messages            []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion))
	}))
	defer srv.Close()

	c := NewOpenAIClient("secret", "default-model", ClientOptions{BaseURL: srv.URL})
	defer c.Close()

	text, err := c.Complete(context.Background(), "", "What is the critical temperature?", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "The sample is superconducting below 4 K." {
		t.Errorf("expected trimmed text, got %q", text)
	}
	if got.Model != "default-model" {
		t.Errorf("expected default model, got %q", got.Model)
	}
	if got.MaxCompletionTokens != 200 {
		t.Errorf("expected max_completion_tokens=200, got %d", got.MaxCompletionTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" ||
		!strings.Contains(string(got.Messages[0].Content), "What is the critical temperature?") {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
	if snap := c.Stats.Snapshot(); snap.Count != 1 || snap.Errors != 0 {
		t.Errorf("expected one successful sample, got %+v", snap)
	}
}

func TestOpenAIClient_ExplicitModelAndDefaultTokens(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion))
	}))
	defer srv.Close()

	c := NewOpenAIClient("secret", "default-model", ClientOptions{BaseURL: srv.URL + "/"})
	defer c.Close()

	if _, err := c.Complete(context.Background(), "gpt-4o-mini", "hi", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Model != "gpt-4o-mini" {
		t.Errorf("expected explicit model, got %q", got.Model)
	}
	if got.MaxCompletionTokens != 1024 {
		t.Errorf("expected default max_completion_tokens=1024, got %d", got.MaxCompletionTokens)
	}
}

func TestOpenAIClient_RetryableStatus(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			w.Write([]byte(`{"error":{"message":"busy","type":"server_error"}}`))
		}))

		c := NewOpenAIClient("secret", "m", ClientOptions{BaseURL: srv.URL})
		_, err := c.Complete(context.Background(), "", "hi", 10)
		var retryErr *RetryableError
		if !errors.As(err, &retryErr) {
			t.Errorf("status %d: expected RetryableError, got %v", code, err)
		} else if retryErr.StatusCode != code {
			t.Errorf("expected status %d, got %d", code, retryErr.StatusCode)
		}
		if snap := c.Stats.Snapshot(); snap.Errors != 1 || snap.Retryable != 1 {
			t.Errorf("status %d: expected one retryable sample, got %+v", code, snap)
		}
		c.Close()
		srv.Close()
	}
}

func TestOpenAIClient_ClientErrorNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"unknown model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("secret", "m", ClientOptions{BaseURL: srv.URL})
	defer c.Close()

	_, err := c.Complete(context.Background(), "", "hi", 10)
	if err == nil {
		t.Fatal("expected error")
	}
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		t.Errorf("expected non-retryable error, got %v", err)
	}
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected wrapped openai error with status 400, got %v", err)
	}
	if snap := c.Stats.Snapshot(); snap.Errors != 1 || snap.Retryable != 0 {
		t.Errorf("expected one failed sample, got %+v", snap)
	}
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","created":1700000000,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("secret", "m", ClientOptions{BaseURL: srv.URL})
	defer c.Close()

	if _, err := c.Complete(context.Background(), "", "hi", 10); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

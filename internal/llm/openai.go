package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client     openai.Client
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter

	Stats *LatencyStats
}

func NewOpenAIClient(apiKey, model string, opts ClientOptions) *OpenAIClient {
	httpClient := &http.Client{Timeout: opts.timeout()}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/"))
	}
	return &OpenAIClient{
		client:     openai.NewClient(reqOpts...),
		model:      model,
		httpClient: httpClient,
		limiter:    opts.limiter(),
		Stats:      NewLatencyStats(opts.StatsWindow),
	}
}

// Model returns the default model used when Complete is called without one.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete sends a single user message and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if model == "" {
		model = c.model
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		err = classifyOpenAIError(err)
		c.Stats.Record(time.Since(start).Milliseconds(), err)
		return "", err
	}
	c.Stats.Record(time.Since(start).Milliseconds(), nil)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && isRetryableStatus(apiErr.StatusCode) {
		return &RetryableError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
	}
	return fmt.Errorf("openai api: %w", err)
}

// Close releases resources.
func (c *OpenAIClient) Close() {
	c.httpClient.CloseIdleConnections()
}

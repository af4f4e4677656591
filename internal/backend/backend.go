// Package backend builds the model-backed services once, on first use, and
// tears them down on shutdown.
package backend

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgallion1/paperdigest/internal/config"
	"github.com/dgallion1/paperdigest/internal/llm"
	"github.com/dgallion1/paperdigest/internal/qa"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

// Provider names as used in model table backends.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Set owns the LLM clients plus the summarization and QA services built on
// them.
type Set struct {
	cfg config.Config
	log *slog.Logger

	once sync.Once
	err  error

	claude       *llm.ClaudeClient
	openai       *llm.OpenAIClient
	summaries    *summarize.Service
	answers      qa.Backend
	defaultModel string
}

func New(cfg config.Config, log *slog.Logger) *Set {
	return &Set{cfg: cfg, log: log}
}

func (s *Set) init() {
	s.once.Do(func() {
		s.err = s.build()
		if s.err != nil {
			s.log.Error("backend init failed", "error", s.err)
		}
	})
}

func (s *Set) build() error {
	table := summarize.DefaultTable()
	if s.cfg.ModelsFile != "" {
		data, err := os.ReadFile(s.cfg.ModelsFile)
		if err != nil {
			return fmt.Errorf("read models file: %w", err)
		}
		if table, err = summarize.ParseTable(data); err != nil {
			return fmt.Errorf("%s: %w", s.cfg.ModelsFile, err)
		}
	}

	opts := llm.ClientOptions{
		Timeout:           s.cfg.LLMTimeout,
		RequestsPerSecond: s.cfg.LLMRequestsPerSecond,
	}
	providers := make(map[string]llm.Completer)
	if s.cfg.AnthropicAPIKey != "" {
		o := opts
		o.BaseURL = s.cfg.AnthropicBaseURL
		s.claude = llm.NewClaudeClient(s.cfg.AnthropicAPIKey, s.cfg.AnthropicModel, o)
		providers[ProviderAnthropic] = s.claude
	}
	if s.cfg.OpenAIAPIKey != "" {
		o := opts
		o.BaseURL = s.cfg.OpenAIBaseURL
		s.openai = llm.NewOpenAIClient(s.cfg.OpenAIAPIKey, s.cfg.QAModel, o)
		providers[ProviderOpenAI] = s.openai
	}

	for _, name := range table.Providers() {
		if _, ok := providers[name]; !ok {
			s.log.Warn("model provider not configured", "provider", name)
		}
	}
	var usable []string
	for _, m := range table {
		if _, ok := providers[m.Provider()]; ok {
			usable = append(usable, m.Label)
		}
	}
	if len(usable) == 0 {
		return fmt.Errorf("no model in the table has a configured provider")
	}
	s.defaultModel = usable[0]
	if s.cfg.DefaultModel != "" {
		if _, ok := table.Lookup(s.cfg.DefaultModel); !ok {
			return fmt.Errorf("DEFAULT_MODEL %q is not in the model table", s.cfg.DefaultModel)
		}
		s.defaultModel = s.cfg.DefaultModel
	}

	s.summaries = summarize.NewService(providers, table, summarize.Options{
		MaxConcurrent: s.cfg.MaxConcurrentSummarize,
		MaxTokens:     s.cfg.SummaryMaxTokens,
		MaxInputWords: s.cfg.SummaryMaxInputWords,
	}, s.log)

	switch s.cfg.QABackend {
	case "", "lexical":
		s.answers = qa.LexicalBackend{}
	case ProviderAnthropic:
		if s.claude == nil {
			return fmt.Errorf("qa backend %q has no API key", s.cfg.QABackend)
		}
		model := s.cfg.QAModel
		if model == "" {
			model = s.cfg.AnthropicModel
		}
		s.answers = qa.NewLLMBackend(s.claude, model)
	case ProviderOpenAI:
		if s.openai == nil {
			return fmt.Errorf("qa backend %q has no API key", s.cfg.QABackend)
		}
		s.answers = qa.NewLLMBackend(s.openai, s.cfg.QAModel)
	default:
		return fmt.Errorf("unknown qa backend %q", s.cfg.QABackend)
	}

	s.log.Info("backends ready",
		"models", len(table),
		"default_model", s.defaultModel,
		"qa_backend", s.cfg.QABackend,
	)
	return nil
}

// Summaries returns the summarization service.
func (s *Set) Summaries() (*summarize.Service, error) {
	s.init()
	return s.summaries, s.err
}

// Answers returns the QA backend.
func (s *Set) Answers() (qa.Backend, error) {
	s.init()
	return s.answers, s.err
}

// DefaultModel returns the label used when an upload names no model.
func (s *Set) DefaultModel() string {
	s.init()
	return s.defaultModel
}

// ProviderStats is the latency snapshot of one provider client.
type ProviderStats struct {
	Provider string            `json:"provider"`
	Model    string            `json:"model"`
	Stats    llm.StatsSnapshot `json:"stats"`
}

// Stats returns latency snapshots for the configured providers.
func (s *Set) Stats() []ProviderStats {
	s.init()
	var out []ProviderStats
	if s.claude != nil {
		out = append(out, ProviderStats{Provider: ProviderAnthropic, Model: s.claude.Model(), Stats: s.claude.Stats.Snapshot()})
	}
	if s.openai != nil {
		out = append(out, ProviderStats{Provider: ProviderOpenAI, Model: s.openai.Model(), Stats: s.openai.Stats.Snapshot()})
	}
	return out
}

// Close releases client resources. It is safe to call before first use.
func (s *Set) Close() {
	if s.claude != nil {
		s.claude.Close()
	}
	if s.openai != nil {
		s.openai.Close()
	}
}

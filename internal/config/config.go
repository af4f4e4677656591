package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/paperdigest/internal/chunker"
	"github.com/dgallion1/paperdigest/internal/qa"
	"github.com/dgallion1/paperdigest/internal/section"
)

type Config struct {
	Port string

	// Auth
	PaperdigestAPIKey string

	// Anthropic
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	// OpenAI-compatible
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// LLM client behavior
	LLMRequestsPerSecond float64
	LLMTimeout           time.Duration

	// Summarization
	ModelsFile             string
	DefaultModel           string
	MaxConcurrentSummarize int
	SummaryMaxTokens       int
	SummaryMaxInputWords   int

	// Question answering
	QABackend       string // lexical, anthropic, openai
	QAModel         string
	QAFailurePolicy string
	QATimeout       time.Duration
	MaxConcurrentQA int
	ChunkWindow     int
	ChunkOverlap    int

	// Segmentation
	DuplicateHeadings string
	KeepPreamble      bool

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		PaperdigestAPIKey: os.Getenv("PAPERDIGEST_API_KEY"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		LLMRequestsPerSecond: envFloat("LLM_REQUESTS_PER_SECOND", 5),
		LLMTimeout:           envDuration("LLM_TIMEOUT", 120*time.Second),

		ModelsFile:             os.Getenv("MODELS_FILE"),
		DefaultModel:           os.Getenv("DEFAULT_MODEL"),
		MaxConcurrentSummarize: envInt("MAX_CONCURRENT_SUMMARIZE", 4),
		SummaryMaxTokens:       envInt("SUMMARY_MAX_TOKENS", 300),
		SummaryMaxInputWords:   envInt("SUMMARY_MAX_INPUT_WORDS", 3000),

		QABackend:       strings.ToLower(envOr("QA_BACKEND", "lexical")),
		QAModel:         os.Getenv("QA_MODEL"),
		QAFailurePolicy: envOr("QA_FAILURE_POLICY", "fail"),
		QATimeout:       envDuration("QA_TIMEOUT", 60*time.Second),
		MaxConcurrentQA: envInt("MAX_CONCURRENT_QA", 4),
		ChunkWindow:     envInt("CHUNK_WINDOW", 400),
		ChunkOverlap:    envInt("CHUNK_OVERLAP", 50),

		DuplicateHeadings: envOr("DUPLICATE_HEADINGS", "last"),
		KeepPreamble:      envBool("KEEP_PREAMBLE", false),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxConcurrentSummarize <= 0 {
		cfg.MaxConcurrentSummarize = 4
	}
	if cfg.MaxConcurrentQA <= 0 {
		cfg.MaxConcurrentQA = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkWindow <= 0 {
		cfg.ChunkWindow = 400
	}
	// Zero overlap is valid.
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PaperdigestAPIKey == "" {
		return fmt.Errorf("PAPERDIGEST_API_KEY is required")
	}
	if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY or OPENAI_API_KEY is required")
	}
	switch c.QABackend {
	case "lexical":
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("QA_BACKEND=anthropic requires ANTHROPIC_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("QA_BACKEND=openai requires OPENAI_API_KEY")
		}
		if c.QAModel == "" {
			return fmt.Errorf("QA_BACKEND=openai requires QA_MODEL")
		}
	default:
		return fmt.Errorf("QA_BACKEND must be lexical, anthropic or openai, got %q", c.QABackend)
	}
	switch strings.ToLower(c.QAFailurePolicy) {
	case "fail", "skip":
	default:
		return fmt.Errorf("QA_FAILURE_POLICY must be fail or skip, got %q", c.QAFailurePolicy)
	}
	switch strings.ToLower(c.DuplicateHeadings) {
	case "first", "last":
	default:
		return fmt.Errorf("DUPLICATE_HEADINGS must be first or last, got %q", c.DuplicateHeadings)
	}
	if c.ChunkOverlap >= c.ChunkWindow {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_WINDOW (%d)", c.ChunkOverlap, c.ChunkWindow)
	}
	return nil
}

// SectionOptions returns the segmenter settings.
func (c Config) SectionOptions() section.Options {
	return section.Options{
		Duplicates:   section.ParseDuplicatePolicy(c.DuplicateHeadings),
		KeepPreamble: c.KeepPreamble,
	}
}

// QAOptions returns the aggregator settings.
func (c Config) QAOptions() qa.Options {
	return qa.Options{
		Chunking:      chunker.Config{WindowSize: c.ChunkWindow, Overlap: c.ChunkOverlap},
		MaxConcurrent: c.MaxConcurrentQA,
		Policy:        qa.ParseFailurePolicy(c.QAFailurePolicy),
		Timeout:       c.QATimeout,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// Package qa answers questions over long text by running an extractive
// backend on every chunk and keeping the highest-scoring span.
package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/paperdigest/internal/chunker"
)

// ErrAllChunksFailed is returned under SkipFailed when no chunk could be answered.
var ErrAllChunksFailed = errors.New("qa: every chunk failed")

// Candidate is an answer span with a confidence score in [0,1].
type Candidate struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Backend extracts an answer span for question from a bounded passage.
// An empty Answer means the passage holds no evidence.
type Backend interface {
	AnswerSpan(ctx context.Context, question, passage string) (Candidate, error)
}

// FailurePolicy decides what a backend error on one chunk does to the query.
type FailurePolicy int

const (
	// FailFast aborts the query on the first chunk error.
	FailFast FailurePolicy = iota
	// SkipFailed logs chunk errors and answers from the remaining chunks.
	SkipFailed
)

func (p FailurePolicy) String() string {
	switch p {
	case FailFast:
		return "fail"
	case SkipFailed:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy maps "skip" to SkipFailed; anything else is FailFast.
func ParseFailurePolicy(s string) FailurePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "skip") {
		return SkipFailed
	}
	return FailFast
}

// Options configures an Aggregator.
type Options struct {
	Chunking      chunker.Config
	MaxConcurrent int
	Policy        FailurePolicy
	Timeout       time.Duration // Whole-query budget; 0 means none.
}

// DefaultOptions returns 400/50 word windows, four workers, fail-fast.
func DefaultOptions() Options {
	return Options{
		Chunking:      chunker.DefaultConfig(),
		MaxConcurrent: 4,
		Policy:        FailFast,
		Timeout:       60 * time.Second,
	}
}

// Aggregator runs a Backend over every chunk of a context.
type Aggregator struct {
	backend Backend
	opts    Options
	log     *slog.Logger
}

func NewAggregator(backend Backend, opts Options, log *slog.Logger) *Aggregator {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{backend: backend, opts: opts, log: log}
}

type chunkResult struct {
	cand Candidate
	err  error
	ran  bool
}

// Answer chunks contextText, asks the backend about each chunk, and returns
// the candidate with the highest score. Ties go to the earliest chunk. An
// empty context, or one where no chunk scores above zero, yields the zero
// Candidate.
func (a *Aggregator) Answer(ctx context.Context, question, contextText string) (Candidate, error) {
	chunks := chunker.Split(contextText, a.opts.Chunking)
	if len(chunks) == 0 {
		return Candidate{}, nil
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	results := make([]chunkResult, len(chunks))
	sem := make(chan struct{}, a.opts.MaxConcurrent)
	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		fatalErr error
	)

dispatch:
	for i, chunk := range chunks {
		select {
		case sem <- struct{}{}:
		case <-runCtx.Done():
			break dispatch
		}
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			defer func() { <-sem }()
			cand, err := a.backend.AnswerSpan(runCtx, question, chunk)
			results[i] = chunkResult{cand: cand, err: err, ran: true}
			if err != nil && a.opts.Policy == FailFast {
				failOnce.Do(func() {
					fatalErr = fmt.Errorf("qa: chunk %d: %w", i, err)
					cancelRun()
				})
			}
		}(i, chunk)
	}
	wg.Wait()

	if fatalErr != nil {
		return Candidate{}, fatalErr
	}
	if err := ctx.Err(); err != nil {
		return Candidate{}, fmt.Errorf("qa: %w", err)
	}
	return a.reduce(results)
}

// reduce picks the best candidate in chunk order.
func (a *Aggregator) reduce(results []chunkResult) (Candidate, error) {
	var (
		best     Candidate
		failed   int
		firstErr error
	)
	for i, r := range results {
		if !r.ran {
			continue
		}
		if r.err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.err
			}
			a.log.Warn("qa chunk failed, skipping", "chunk", i, "error", r.err)
			continue
		}
		if r.cand.Score > best.Score {
			best = r.cand
		}
	}
	if failed > 0 && failed == len(results) {
		return Candidate{}, fmt.Errorf("%w: %w", ErrAllChunksFailed, firstErr)
	}
	a.log.Debug("qa aggregated", "chunks", len(results), "failed", failed, "score", best.Score)
	return best, nil
}

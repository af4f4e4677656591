package llm

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"time"
)

// outcome classifies a finished model call.
type outcome uint8

const (
	outcomeOK outcome = iota
	outcomeRetryable
	outcomeFailed
)

func classifyOutcome(err error) outcome {
	if err == nil {
		return outcomeOK
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return outcomeRetryable
	}
	return outcomeFailed
}

type call struct {
	at      time.Time
	ms      int64
	outcome outcome
}

// StatsSnapshot aggregates the model calls made inside the window.
// Errors counts every failed call; Retryable is the subset that failed
// with a rate limit or server error and would succeed on a later attempt.
type StatsSnapshot struct {
	Count     int     `json:"count"`
	Errors    int     `json:"errors"`
	Retryable int     `json:"retryable"`
	WindowSec int64   `json:"window_sec"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// LatencyStats keeps the model calls of the last window, oldest first.
type LatencyStats struct {
	mu     sync.Mutex
	calls  []call
	window time.Duration
}

// NewLatencyStats returns stats over a rolling window, one hour if window
// is not positive.
func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window}
}

// Record adds one call. Failed calls count toward latency too.
func (s *LatencyStats) Record(durationMs int64, err error) {
	c := call{ms: max(durationMs, 0), outcome: classifyOutcome(err)}

	s.mu.Lock()
	defer s.mu.Unlock()
	c.at = time.Now()
	s.expireLocked(c.at)
	s.calls = append(s.calls, c)
}

func (s *LatencyStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expireLocked(time.Now())
	calls := slices.Clone(s.calls)
	window := s.window
	s.mu.Unlock()

	snap := StatsSnapshot{WindowSec: int64(window / time.Second)}
	if len(calls) == 0 {
		return snap
	}

	ms := make([]int64, len(calls))
	var total int64
	for i, c := range calls {
		ms[i] = c.ms
		total += c.ms
		switch c.outcome {
		case outcomeRetryable:
			snap.Retryable++
			snap.Errors++
		case outcomeFailed:
			snap.Errors++
		}
	}
	slices.Sort(ms)

	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(total) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// expireLocked drops calls older than the window. Calls are appended in
// time order so the expired ones form a prefix.
func (s *LatencyStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	n := sort.Search(len(s.calls), func(i int) bool {
		return !s.calls[i].at.Before(cutoff)
	})
	if n > 0 {
		s.calls = slices.Delete(s.calls, 0, n)
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := float64(len(sorted)-1) * min(max(pct, 0), 100) / 100
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/paperdigest/internal/config"
	"github.com/dgallion1/paperdigest/internal/parser"
	"github.com/dgallion1/paperdigest/internal/qa"
	"github.com/dgallion1/paperdigest/internal/section"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

var (
	// ErrJobNotFound means the job ID is unknown or has expired.
	ErrJobNotFound = errors.New("job not found")
	// ErrNotReady means the job has not been segmented yet.
	ErrNotReady = errors.New("job has no sections yet")
	// ErrQueueFull means the job could not be queued.
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped means the pipeline is shutting down and takes no new jobs.
	ErrStopped = errors.New("pipeline is stopped")
)

// Orchestrator manages the paper pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	summaries *summarize.Service
	answers   qa.Backend
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards stopped and the close of queue.
	mu      sync.Mutex
	stopped bool
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, summaries *summarize.Service, answers qa.Backend, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		summaries: summaries,
		answers:   answers,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.summaries, section.NewSegmenter(o.cfg.SectionOptions()),
				parser.Options{PdftotextFallback: o.cfg.PDFFallbackPdftotext}, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Later calls are no-ops.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing. It fails with ErrStopped once
// Stop has been called.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Models returns the summarization model table.
func (o *Orchestrator) Models() summarize.Table {
	return o.summaries.Table()
}

// Ask answers question against the concatenated section texts of a job.
// It works as soon as segmentation is done, even while summaries are
// still running.
func (o *Orchestrator) Ask(ctx context.Context, jobID, question string) (qa.Candidate, error) {
	job := o.jobs.Get(jobID)
	if job == nil {
		return qa.Candidate{}, ErrJobNotFound
	}
	sections := job.Sections()
	if sections == nil {
		return qa.Candidate{}, ErrNotReady
	}

	log := o.log.With("job_id", jobID)
	start := time.Now()
	agg := qa.NewAggregator(o.answers, o.cfg.QAOptions(), log)
	cand, err := agg.Answer(ctx, question, sections.Text())
	if err != nil {
		log.Warn("question failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return qa.Candidate{}, err
	}
	log.Info("question answered", "score", cand.Score, "duration_ms", time.Since(start).Milliseconds())
	return cand, nil
}

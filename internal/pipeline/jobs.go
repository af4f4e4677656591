package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/paperdigest/internal/document"
	"github.com/dgallion1/paperdigest/internal/section"
	"github.com/dgallion1/paperdigest/internal/summarize"
	"github.com/google/uuid"
)

// JobStatus represents the state of a paper run.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusExtracting  JobStatus = "extracting"
	StatusSegmenting  JobStatus = "segmenting"
	StatusSummarizing JobStatus = "summarizing"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// Job tracks one uploaded paper through extraction, segmentation and
// summarization. Results stay in memory until the job expires.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
	Model    string    `json:"model"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	Pages       int       `json:"pages,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData  []byte
	sections  *section.Map
	summaries []summarize.Summary
	digest    string
	errors    []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalSections      int      `json:"total_sections"`
	SectionsSummarized int      `json:"sections_summarized"`
	SummaryFailures    int      `json:"summary_failures"`
	Errors             []string `json:"errors"`
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename, title, model string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetDocument records what extraction produced. The uploaded bytes are
// released since nothing reads them afterwards.
func (j *Job) SetDocument(doc *document.Document) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Title == "" {
		j.Title = doc.Title
	}
	j.ContentHash = doc.ContentHash()
	j.Pages = doc.Pages
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// SetSections stores the segmented paper.
func (j *Job) SetSections(m *section.Map) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sections = m
	j.Progress.TotalSections = m.Len()
	j.UpdatedAt = time.Now()
}

// Sections returns the segmented paper, or nil before segmentation.
func (j *Job) Sections() *section.Map {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sections
}

// SetSummaries stores the per-section summaries and the rendered digest and
// returns how many summaries failed.
func (j *Job) SetSummaries(summaries []summarize.Summary, digest string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	failed := 0
	for _, s := range summaries {
		if s.Failed {
			failed++
		}
	}
	j.summaries = summaries
	j.digest = digest
	j.Progress.SectionsSummarized = len(summaries) - failed
	j.Progress.SummaryFailures = failed
	j.UpdatedAt = time.Now()
	return failed
}

// Summaries returns a copy of the per-section summaries.
func (j *Job) Summaries() []summarize.Summary {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]summarize.Summary, len(j.summaries))
	copy(out, j.summaries)
	return out
}

// Digest returns the rendered summary artifact.
func (j *Job) Digest() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.digest
}

// Done reports whether summarization has finished, successfully or not.
func (j *Job) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status == StatusCompleted || j.Status == StatusPartial || j.Status == StatusFailed
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Model       string    `json:"model"`
	ContentHash string    `json:"content_hash,omitempty"`
	Pages       int       `json:"pages,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		Model:       j.Model,
		ContentHash: j.ContentHash,
		Pages:       j.Pages,
		Progress: Progress{
			TotalSections:      j.Progress.TotalSections,
			SectionsSummarized: j.Progress.SectionsSummarized,
			SummaryFailures:    j.Progress.SummaryFailures,
			Errors:             errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

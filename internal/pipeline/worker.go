package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/paperdigest/internal/parser"
	"github.com/dgallion1/paperdigest/internal/section"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

// previewChars bounds the raw text logged after extraction.
const previewChars = 3000

// Worker processes a single paper job.
type Worker struct {
	summaries  *summarize.Service
	segmenter  *section.Segmenter
	parserOpts parser.Options
	log        *slog.Logger
}

func NewWorker(summaries *summarize.Service, segmenter *section.Segmenter, parserOpts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		summaries:  summaries,
		segmenter:  segmenter,
		parserOpts: parserOpts,
		log:        log,
	}
}

// Process runs extraction, segmentation and summarization for a job.
// Extraction failure fails the job. Summary failures are per section.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "model", job.Model)

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	doc, err := parser.Extract(bytes.NewReader(job.FileData()), job.Filename, w.parserOpts)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetDocument(doc)
	log.Info("extracted text", "chars", len(doc.Text), "pages", doc.Pages, "content_hash", doc.ContentHash())
	log.Debug("raw text preview", "preview", doc.Preview(previewChars))

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	sections := w.segmenter.Segment(doc.Text)
	job.SetSections(sections)
	log.Info("segmented paper", "sections", sections.Len(), "labels", sections.Labels())

	// Phase 3: Summarize
	job.SetStatus(StatusSummarizing, "summarizing")
	summaries := w.summaries.SummarizeSections(ctx, sections, job.Model)
	for _, s := range summaries {
		if s.Failed {
			job.AddError(fmt.Sprintf("section %s: %s", s.Label, s.Text))
		}
	}
	failed := job.SetSummaries(summaries, summarize.Render(summaries))
	log.Info("summarization complete", "summaries", len(summaries), "failed", failed)

	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case failed < len(summaries):
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "summarizing")
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/paperdigest/internal/pipeline"
	"github.com/dgallion1/paperdigest/internal/qa"
	"github.com/go-chi/chi/v5"
)

// digestFilename is the download name of the summary artifact.
const digestFilename = "physics_summary.txt"

const maxQuestionBytes = 64 << 10

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromRequest(w, r)
	if job == nil {
		return
	}
	sections := job.Sections()
	if sections == nil {
		jsonError(w, pipeline.ErrNotReady.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"labels":   sections.Labels(),
		"sections": sections.Sections(),
	})
}

// summaryReady writes an error response and returns false unless the job
// has finished summarizing.
func summaryReady(w http.ResponseWriter, job *pipeline.Job) bool {
	if !job.Done() {
		jsonError(w, "summary not ready", http.StatusConflict)
		return false
	}
	if job.Sections() == nil {
		snap := job.Snapshot()
		msg := "extraction failed"
		if len(snap.Progress.Errors) > 0 {
			msg = snap.Progress.Errors[0]
		}
		jsonError(w, msg, http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromRequest(w, r)
	if job == nil || !summaryReady(w, job) {
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":    snap.ID,
		"status":    snap.Status,
		"model":     snap.Model,
		"summaries": job.Summaries(),
	})
}

func (s *Server) handleSummaryText(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromRequest(w, r)
	if job == nil || !summaryReady(w, job) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+digestFilename+`"`)
	w.Write([]byte(job.Digest()))
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	cand, err := s.orchestrator.Ask(r.Context(), chi.URLParam(r, "jobID"), question)
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrJobNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, pipeline.ErrNotReady):
		jsonError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, context.DeadlineExceeded):
		jsonError(w, "question timed out", http.StatusGatewayTimeout)
		return
	case errors.Is(err, qa.ErrAllChunksFailed):
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	default:
		jsonError(w, "question failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cand)
}

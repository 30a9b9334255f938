package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/docmark/internal/parser"
	"github.com/dgallion1/docmark/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type processRequest struct {
	HTML     string `json:"html"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// handleProcess queues a page for background ranking and highlighting.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.HTML == "" {
		jsonError(w, "html is required", http.StatusBadRequest)
		return
	}

	filename := "page.html"
	if req.Filename != "" {
		filename = sanitizeFilename(req.Filename)
	}
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, "unsupported file type: "+filename, http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(filename, req.URL, []byte(req.HTML))
	if err := s.orchestrator.Submit(job); err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/process/%s/status", job.ID),
	})
}

func (s *Server) handleProcessStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleProcessResult returns the result of a completed job. Running jobs
// answer 409; jobs that ended without a result answer 422.
func (s *Server) handleProcessResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	switch {
	case snap.Status == pipeline.StatusCompleted:
		writeJSON(w, http.StatusOK, job.Result())
	case snap.Status.Terminal():
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "job ended without a result",
			"status": snap.Status,
			"errors": snap.Progress.Errors,
		})
	default:
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not finished",
			"status": snap.Status,
		})
	}
}

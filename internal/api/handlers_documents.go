package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/dgallion1/docmark/internal/relocate"
	"github.com/dgallion1/docmark/internal/textindex"
)

type documentLocateResponse struct {
	Title  string           `json:"title"`
	Format string           `json:"format"`
	Leaves []textindex.Leaf `json:"leaves"`
	Ranges relocate.Groups  `json:"ranges"`
}

// handleDocumentLocate parses an uploaded file and locates sentences in it.
// Form fields: file (required) and sentences (JSON array, optional; the
// document is ranked when absent).
func (s *Server) handleDocumentLocate(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	var sentences []doctree.Sentence
	if raw := r.FormValue("sentences"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sentences); err != nil {
			jsonError(w, "invalid sentences json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validateSentences(sentences); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	page, err := s.engine.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if sentences == nil {
		sentences, err = s.engine.Relevant(r.Context(), page)
		if err != nil {
			s.pipelineError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, documentLocateResponse{
		Title:  page.Title,
		Format: page.Format,
		Leaves: page.Leaves,
		Ranges: s.engine.Locate(page, sentences),
	})
}

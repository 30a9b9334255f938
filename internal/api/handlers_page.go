package api

import (
	"net/http"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/relocate"
	"github.com/dgallion1/docmark/internal/textindex"
)

type relevantRequest struct {
	HTML string `json:"html"`
}

type relevantResponse struct {
	Title     string             `json:"title"`
	Sentences []doctree.Sentence `json:"sentences"`
}

// handleRelevant ranks the readable text of an HTML page.
func (s *Server) handleRelevant(w http.ResponseWriter, r *http.Request) {
	var req relevantRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	page, err := s.engine.Parse(strings.NewReader(req.HTML), "page.html")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sentences, err := s.engine.Relevant(r.Context(), page)
	if err != nil {
		s.pipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relevantResponse{Title: page.Title, Sentences: sentences})
}

type highlightRequest struct {
	HTML        string             `json:"html"`
	Sentences   []doctree.Sentence `json:"sentences"`
	IncludeHTML bool               `json:"include_html"`
}

type highlightResponse struct {
	Sentences []doctree.Sentence `json:"sentences"`
	Ranges    relocate.Groups    `json:"ranges"`
	Marked    int                `json:"marked"`
	HTML      string             `json:"html,omitempty"`
}

// handleHighlight locates sentences on an HTML page and marks them. When no
// sentences are given the page is ranked first.
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validateSentences(req.Sentences); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := s.engine.Parse(strings.NewReader(req.HTML), "page.html")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sentences := req.Sentences
	if sentences == nil {
		sentences, err = s.engine.Relevant(r.Context(), page)
		if err != nil {
			s.pipelineError(w, err)
			return
		}
	}

	// Ranges refer to the unmarked page, so locate before marking.
	groups := s.engine.Locate(page, sentences)
	marked, out, err := s.engine.Mark(page, groups)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	resp := highlightResponse{Sentences: sentences, Ranges: groups, Marked: marked}
	if req.IncludeHTML {
		resp.HTML = out
	}
	writeJSON(w, http.StatusOK, resp)
}

type locateRequest struct {
	Leaves    []textindex.Leaf   `json:"leaves"`
	Sentences []doctree.Sentence `json:"sentences"`
}

type locateResponse struct {
	Ranges relocate.Groups `json:"ranges"`
}

// handleLocate runs the relocation core over caller-supplied leaves.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validateSentences(req.Sentences); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	groups := s.engine.Relocator(req.Leaves).LocateAll(req.Sentences)
	writeJSON(w, http.StatusOK, locateResponse{Ranges: groups})
}

package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable for scorer "+s.cfg.Scorer, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scorer": s.cfg.Scorer,
		"model":  s.cfg.AnthropicModel,
		"stats":  s.stats.Snapshot(),
	})
}

package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleExportStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "export stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"cached": s.cache.Len(),
		"stats":  s.stats.Snapshot(),
	})
}

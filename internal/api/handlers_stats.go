package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docrank/internal/pipeline"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.orchestrator.Stats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"outline":     stats.Snapshot(pipeline.KindOutline),
		"collection":  stats.Snapshot(pipeline.KindCollection),
	})
}

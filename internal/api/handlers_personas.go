package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docrank/internal/relevance"
)

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	table := s.analyzer.Scorer().Table()
	type persona struct {
		Role     string   `json:"role"`
		Keywords []string `json:"keywords"`
	}
	out := []persona{}
	for _, label := range table.Labels() {
		out = append(out, persona{Role: label, Keywords: table.Keywords(label)})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"personas": out})
}

type explainRequest struct {
	Text    string `json:"text"`
	Persona string `json:"persona"`
	Task    string `json:"task"`
}

// handleExplain reports how a piece of text scores against a persona and
// task, with the keywords that matched.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	scorer := s.analyzer.Scorer()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"persona_relevance": scorer.Score(req.Text, req.Persona),
		"task_relevance":    scorer.Score(req.Text, req.Task),
		"persona_matches":   nonNil(scorer.MatchedKeywords(req.Text, req.Persona)),
		"task_matches":      nonNil(scorer.MatchedKeywords(req.Text, req.Task)),
		"tokens":            nonNil(relevance.Tokenize(req.Text)),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

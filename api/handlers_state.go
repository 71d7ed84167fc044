package api

import (
	"errors"
	"net/http"

	"sniper-dashboard/dashboard"
	"sniper-dashboard/models"
)

// decisionView adds presentation helpers to a decision.
type decisionView struct {
	models.Decision
	Conclusion    string                 `json:"conclusion"`
	Regime        string                 `json:"regime"`
	IsOpportunity bool                   `json:"is_opportunity"`
	Steps         []models.RationaleStep `json:"steps"`
}

func newDecisionView(d models.Decision) decisionView {
	return decisionView{
		Decision:      d,
		Conclusion:    d.Conclusion(),
		Regime:        d.Regime(),
		IsOpportunity: d.IsOpportunity(),
		Steps:         models.Steps(d.Rational),
	}
}

type lockResponse struct {
	Mode    models.PollMode `json:"mode"`
	Locked  bool            `json:"locked"`
	Polling bool            `json:"polling"`
}

func (s *Server) lockState() lockResponse {
	snap := s.engine.Snapshot()
	return lockResponse{Mode: snap.Mode, Locked: snap.Locked, Polling: s.engine.Scanner.Polling()}
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleGetDecisions(w http.ResponseWriter, r *http.Request) {
	filter := models.ParseDecisionFilter(r.URL.Query().Get("filter"))
	query := r.URL.Query().Get("q")

	decisions := models.FilterDecisions(s.engine.Store.Decisions(), filter, query)
	views := make([]decisionView, 0, len(decisions))
	for _, d := range decisions {
		views = append(views, newDecisionView(d))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"filter":    filter,
		"query":     query,
		"count":     len(views),
		"mood":      s.engine.Store.Mood(),
		"decisions": views,
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	err := s.engine.Scanner.RunScan(r.Context(), false)
	switch {
	case errors.Is(err, dashboard.ErrScanInFlight):
		respondWithError(w, http.StatusConflict, "scan already in flight", nil)
		return
	case err != nil:
		respondWithError(w, http.StatusBadGateway, "scan failed", err)
		return
	}
	respondJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleGetLock(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.lockState())
}

func (s *Server) handleToggleMode(w http.ResponseWriter, r *http.Request) {
	_, err := s.engine.Mode.Toggle()
	if errors.Is(err, dashboard.ErrLocked) {
		respondJSON(w, http.StatusLocked, map[string]interface{}{
			"error":  "auto mode is locked while the simulated account is alive",
			"mode":   s.engine.Mode.Mode(),
			"locked": true,
		})
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "toggle failed", err)
		return
	}
	respondJSON(w, http.StatusOK, s.lockState())
}

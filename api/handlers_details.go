package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sniper-dashboard/dashboard"
	"sniper-dashboard/models"
)

// detailsRequest opens the detail view either from a full payload or, when
// only the ticker is given, from the current batch.
type detailsRequest struct {
	Ticker     string                `json:"ticker"`
	Action     string                `json:"action"`
	Rational   []string              `json:"rational"`
	Confidence float64               `json:"confidence"`
	History    []models.HistoryPoint `json:"history"`
}

func (s *Server) handleGetDetails(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Details.Current())
}

func (s *Server) handleOpenDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Ticker = strings.TrimSpace(req.Ticker)
	if req.Ticker == "" {
		respondWithError(w, http.StatusBadRequest, "ticker is required", nil)
		return
	}

	if req.Action == "" && req.Rational == nil {
		sel, err := s.engine.Details.OpenFor(req.Ticker)
		if errors.Is(err, dashboard.ErrUnknownTicker) {
			respondWithError(w, http.StatusNotFound, "ticker not in current batch", err)
			return
		}
		respondJSON(w, http.StatusOK, sel)
		return
	}

	sel := s.engine.Details.Open(req.Ticker, req.Action, req.Rational, req.Confidence, req.History)
	respondJSON(w, http.StatusOK, sel)
}

func (s *Server) handleCloseDetails(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Details.Close())
}

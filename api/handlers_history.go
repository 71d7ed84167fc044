package api

import (
	"net/http"

	"sniper-dashboard/database"
)

func (s *Server) handleGetScanHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		respondWithError(w, http.StatusServiceUnavailable, "scan journal disabled", nil)
		return
	}

	limit, err := getIntParam(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	records, err := s.journal.GetRecentScans(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load scan history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scans": records,
		"count": len(records),
	})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		respondWithError(w, http.StatusServiceUnavailable, "scan journal disabled", nil)
		return
	}

	records, err := s.journal.GetScan(r.Context(), r.PathValue("scanID"))
	if database.IsNotFound(err) {
		respondWithError(w, http.StatusNotFound, "scan not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load scan", err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

package api

import (
	"net/http"

	"sniper-dashboard/models"
)

type simulationResponse struct {
	State   *models.SimulationState   `json:"state"`
	Summary *models.SimulationSummary `json:"summary"`
}

func (s *Server) simulationView(sim *models.SimulationState) simulationResponse {
	if sim == nil {
		return simulationResponse{}
	}
	summary := sim.Summarize(s.initialBalance)
	return simulationResponse{State: sim, Summary: &summary}
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.simulationView(s.engine.Store.Simulation()))
}

func (s *Server) handleResetSimulation(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Scanner.ResetSimulation(r.Context()); err != nil {
		respondWithError(w, http.StatusBadGateway, "simulation reset failed", err)
		return
	}
	respondJSON(w, http.StatusOK, s.simulationView(s.engine.Store.Simulation()))
}

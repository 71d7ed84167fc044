package api

import (
	"net/http"
	"time"

	"sniper-dashboard/models"
)

// EventSnapshot is the type of the first frame sent to a new subscriber.
const EventSnapshot = "snapshot"

func (s *Server) initialEvent() *models.StateEvent {
	return &models.StateEvent{
		Type:     EventSnapshot,
		At:       time.Now(),
		Snapshot: s.engine.Snapshot(),
	}
}

// handleEvents streams state events via Server-Sent Events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.broker == nil {
		respondWithError(w, http.StatusServiceUnavailable, "event stream disabled", nil)
		return
	}
	s.broker.Serve(w, r, s.initialEvent())
}

// handleWebSocket upgrades to a WebSocket subscription
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondWithError(w, http.StatusServiceUnavailable, "websocket disabled", nil)
		return
	}
	s.hub.Serve(w, r, s.initialEvent())
}

// handleHealth returns the health status of the API
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	status := map[string]interface{}{
		"status":         "ok",
		"mode":           snap.Mode,
		"locked":         snap.Locked,
		"polling":        s.engine.Scanner.Polling(),
		"scan_in_flight": s.engine.Scanner.InFlight(),
		"scan_count":     snap.ScanCount,
		"last_updated":   snap.LastUpdated,
		"journal":        s.journal != nil,
		"redis_mirror":   s.mirrorEnabled,
	}
	if s.broker != nil {
		status["sse_clients"] = s.broker.ClientCount()
	}
	if s.hub != nil {
		status["ws_clients"] = s.hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, status)
}

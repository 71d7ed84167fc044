package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"sniper-dashboard/dashboard"
	"sniper-dashboard/logging"
	"sniper-dashboard/models"
	"sniper-dashboard/realtime"
	"sniper-dashboard/websocket"
)

// JournalReader is the read side of the scan journal.
type JournalReader interface {
	GetRecentScans(ctx context.Context, limit int) ([]models.ScanRecord, error)
	GetScan(ctx context.Context, scanID string) ([]models.ScanRecord, error)
}

// Server handles HTTP API requests
type Server struct {
	engine         *dashboard.Engine
	broker         *realtime.Broker
	hub            *websocket.Hub
	journal        JournalReader // nil when the database is disabled
	initialBalance float64
	mirrorEnabled  bool
	log            *logrus.Entry
}

// Options wires the server's collaborators. Broker, Hub and Journal are
// optional.
type Options struct {
	Engine         *dashboard.Engine
	Broker         *realtime.Broker
	Hub            *websocket.Hub
	Journal        JournalReader
	InitialBalance float64
	MirrorEnabled  bool
}

// NewServer creates a new API server instance
func NewServer(opts Options) *Server {
	balance := opts.InitialBalance
	if balance <= 0 {
		balance = models.DefaultInitialBalance
	}
	return &Server{
		engine:         opts.Engine,
		broker:         opts.Broker,
		hub:            opts.Hub,
		journal:        opts.Journal,
		initialBalance: balance,
		mirrorEnabled:  opts.MirrorEnabled,
		log:            logging.WithComponent("api"),
	}
}

// Handler builds the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// State
	mux.HandleFunc("GET /api/state", s.handleGetState)
	mux.HandleFunc("GET /api/decisions", s.handleGetDecisions)
	mux.HandleFunc("POST /api/scan", s.handleScan)

	// Poll mode and lock
	mux.HandleFunc("GET /api/lock", s.handleGetLock)
	mux.HandleFunc("POST /api/mode/toggle", s.handleToggleMode)

	// Simulation
	mux.HandleFunc("GET /api/simulation", s.handleGetSimulation)
	mux.HandleFunc("POST /api/simulation/reset", s.handleResetSimulation)

	// Detail view
	mux.HandleFunc("GET /api/details", s.handleGetDetails)
	mux.HandleFunc("POST /api/details", s.handleOpenDetails)
	mux.HandleFunc("DELETE /api/details", s.handleCloseDetails)

	// Scan journal
	mux.HandleFunc("GET /api/scans/history", s.handleGetScanHistory)
	mux.HandleFunc("GET /api/scans/{scanID}", s.handleGetScan)

	// Push channels
	mux.HandleFunc("GET /api/events", s.handleEvents) // SSE Endpoint
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Start serves the API on port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("🚀 API Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("📡 API Server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("request")
	})
}

// Handlers are distributed across multiple files:
// - handlers_state.go: snapshot, decisions, scan trigger, mode and lock
// - handlers_simulation.go: simulation state, summary and reset
// - handlers_details.go: detail view selection
// - handlers_history.go: scan journal
// - handlers_stream.go: SSE and WebSocket push, health check

package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sniper-dashboard/backend"
	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// DefaultPollInterval is the AUTO mode scan period.
const DefaultPollInterval = 2 * time.Second

// ErrScanInFlight is returned when a scan is requested while another one
// has not resolved yet.
var ErrScanInFlight = errors.New("a scan is already in flight")

// Backend is the remote decision/simulation service contract.
type Backend interface {
	Scan(ctx context.Context) (*backend.ScanResponse, error)
	SimulationState(ctx context.Context) (*models.SimulationState, error)
	ResetSimulation(ctx context.Context) (*models.SimulationState, error)
}

// Scanner is the scan orchestrator. It is the only writer of the decision
// batch, the mood, the simulation state and the loading flag.
type Scanner struct {
	backend  Backend
	store    *Store
	publish  func(models.StateEvent)
	interval time.Duration
	now      func() time.Time
	log      *logrus.Entry

	// reqCtx bounds requests started by timer ticks. Stopping the timer does
	// not cancel it, so a tick's request still resolves and applies.
	reqCtx context.Context

	inFlight atomic.Bool
	spawned  sync.WaitGroup

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// NewScanner creates a scanner. reqCtx bounds timer-driven requests; a
// non-positive interval falls back to DefaultPollInterval.
func NewScanner(reqCtx context.Context, b Backend, store *Store, interval time.Duration, publish func(models.StateEvent)) *Scanner {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if publish == nil {
		publish = func(models.StateEvent) {}
	}
	if reqCtx == nil {
		reqCtx = context.Background()
	}
	return &Scanner{
		backend:  b,
		store:    store,
		publish:  publish,
		interval: interval,
		now:      time.Now,
		log:      logging.WithComponent("scanner"),
		reqCtx:   reqCtx,
	}
}

// RunScan fetches the current decision batch and applies it.
//
// Interactive scans (silent=false) raise the loading flag for their
// duration; silent scans never touch it. If any scan is already in flight
// the call does nothing and returns ErrScanInFlight. Transport failures are
// logged and returned but leave the state untouched; a non-success payload
// is a no-op and returns nil.
func (s *Scanner) RunScan(ctx context.Context, silent bool) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.WithField("silent", silent).Debug("⏭️  Scan suppressed, another scan is in flight")
		return ErrScanInFlight
	}
	defer s.inFlight.Store(false)

	return s.scan(ctx, silent)
}

// InFlight reports whether a scan is currently running.
func (s *Scanner) InFlight() bool {
	return s.inFlight.Load()
}

// scan runs one scan. The caller must hold the in-flight marker.
func (s *Scanner) scan(ctx context.Context, silent bool) error {
	scanID := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"scan_id": scanID, "silent": silent})

	if !silent {
		s.setLoading(scanID, true)
		defer s.setLoading(scanID, false)
	}

	resp, err := s.backend.Scan(ctx)
	if err != nil {
		log.WithError(err).Warn("⚠️  Scan failed, keeping last known data")
		return err
	}
	if !resp.OK() {
		log.WithFields(logrus.Fields{"status": resp.Status, "message": resp.Message}).Debug("Scan returned no usable data")
		return nil
	}

	decisions := models.CloneDecisions(resp.Data)
	mood := DeriveMood(decisions)
	at := s.now()
	s.store.emit(s.publish, func() (models.StateEvent, bool) {
		prev, snap := s.store.applyScan(decisions, mood, resp.Simulation.Clone(), at)
		return models.StateEvent{
			Type:     models.EventScanApplied,
			ScanID:   scanID,
			At:       at,
			Snapshot: snap,
			Previous: prev,
		}, true
	})

	for _, line := range resp.Logs {
		log.WithField("sim_log", line).Info("🎮 Simulation tick")
	}
	log.WithFields(logrus.Fields{
		"decisions":  len(decisions),
		"mood":       mood,
		"simulation": resp.Simulation != nil,
	}).Debug("✅ Scan applied")
	return nil
}

func (s *Scanner) setLoading(scanID string, v bool) {
	s.store.emit(s.publish, func() (models.StateEvent, bool) {
		snap := s.store.setLoading(v)
		return models.StateEvent{Type: models.EventLoadingChanged, ScanID: scanID, At: s.now(), Snapshot: snap}, true
	})
}

// HydrateSimulation loads the simulation state once at startup. The result
// is discarded when a reset or scan replaced the simulation while the
// request was in flight.
func (s *Scanner) HydrateSimulation(ctx context.Context) error {
	rev := s.store.simRevision()
	sim, err := s.backend.SimulationState(ctx)
	if err != nil {
		s.log.WithError(err).Warn("⚠️  Initial simulation fetch failed")
		return err
	}

	applied := false
	s.store.emit(s.publish, func() (models.StateEvent, bool) {
		prev, snap, ok := s.store.setSimulationAt(rev, sim.Clone())
		applied = ok
		return models.StateEvent{Type: models.EventSimulationLoaded, At: s.now(), Snapshot: snap, Previous: prev}, ok
	})
	if !applied {
		s.log.Info("Simulation state superseded during startup, keeping newer state")
		return nil
	}
	s.log.WithFields(logrus.Fields{"status": sim.Status, "balance": sim.Balance}).Info("🎮 Simulation state loaded")
	return nil
}

// StartPolling starts the recurring silent scan. Calling it while the timer
// is already running does nothing.
func (s *Scanner) StartPolling() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	if s.pollCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.pollCancel = cancel
	s.pollDone = done

	go s.pollLoop(ctx, done)
	s.log.WithField("interval", s.interval).Info("⏱️  Auto scan started")
}

// StopPolling cancels the timer and waits for the loop to exit, so no tick
// fires after it returns. A scan already in flight is left to finish.
func (s *Scanner) StopPolling() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	if s.pollCancel == nil {
		return
	}
	s.pollCancel()
	<-s.pollDone
	s.pollCancel = nil
	s.pollDone = nil
	s.log.Info("⏹️  Auto scan stopped")
}

// Polling reports whether the timer is running.
func (s *Scanner) Polling() bool {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	return s.pollCancel != nil
}

// Wait blocks until every scan started by the timer has resolved.
func (s *Scanner) Wait() {
	s.spawned.Wait()
}

func (s *Scanner) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks at random when both are ready.
			if ctx.Err() != nil {
				return
			}
			s.tick()
		}
	}
}

// tick acquires the in-flight marker before spawning the request so that a
// tick arriving while any scan is unresolved is dropped, never queued.
func (s *Scanner) tick() {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Debug("⏭️  Tick skipped, scan in flight")
		return
	}
	s.spawned.Add(1)
	go func() {
		defer s.spawned.Done()
		defer s.inFlight.Store(false)
		_ = s.scan(s.reqCtx, true)
	}()
}

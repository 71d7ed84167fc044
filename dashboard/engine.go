package dashboard

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// Publisher receives every state change the engine makes.
type Publisher interface {
	Publish(ev models.StateEvent)
}

// Options configures an Engine.
type Options struct {
	InitialMode  models.PollMode
	PollInterval time.Duration
}

// Engine composes the store and its three writers.
type Engine struct {
	Store   *Store
	Scanner *Scanner
	Mode    *ModeController
	Details *Details

	cancel context.CancelFunc
	log    *logrus.Entry
}

// NewEngine builds an engine around the given backend. A nil publisher
// drops events.
func NewEngine(b Backend, pub Publisher, opts Options) *Engine {
	publish := func(models.StateEvent) {}
	if pub != nil {
		publish = pub.Publish
	}

	reqCtx, cancel := context.WithCancel(context.Background())
	store := NewStore(opts.InitialMode)
	scanner := NewScanner(reqCtx, b, store, opts.PollInterval, publish)

	return &Engine{
		Store:   store,
		Scanner: scanner,
		Mode:    NewModeController(store, scanner, publish),
		Details: NewDetails(store, publish),
		cancel:  cancel,
		log:     logging.WithComponent("engine"),
	}
}

// Start runs the startup sequence: load the simulation, run one interactive
// scan, then start the timer if the mode is AUTO. Failures in the first two
// steps are logged and do not stop startup.
func (e *Engine) Start(ctx context.Context) {
	if err := e.Scanner.HydrateSimulation(ctx); err != nil {
		e.log.WithError(err).Warn("Starting without simulation state")
	}
	if err := e.Scanner.RunScan(ctx, false); err != nil {
		e.log.WithError(err).Warn("Initial scan failed")
	}
	if e.Store.Mode() == models.ModeAuto {
		e.Scanner.StartPolling()
	}
	e.log.WithField("mode", e.Store.Mode()).Info("🚀 Dashboard engine started")
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() models.Snapshot {
	return e.Store.Snapshot()
}

// Close stops the timer, cancels outstanding timer-driven requests and
// waits for them to resolve.
func (e *Engine) Close() {
	e.Scanner.StopPolling()
	e.cancel()
	e.Scanner.Wait()
	e.log.Info("✅ Dashboard engine stopped")
}

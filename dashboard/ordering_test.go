package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniper-dashboard/backend"
	"sniper-dashboard/models"
)

// heldPublisher blocks the first event of type holdType until release is
// closed and records everything it receives.
type heldPublisher struct {
	recorder
	holdType string
	held     chan struct{}
	release  chan struct{}
	once     sync.Once
}

func newHeldPublisher(holdType string) *heldPublisher {
	return &heldPublisher{holdType: holdType, held: make(chan struct{}), release: make(chan struct{})}
}

func (h *heldPublisher) Publish(ev models.StateEvent) {
	h.recorder.Publish(ev)
	if ev.Type != h.holdType {
		return
	}
	h.once.Do(func() {
		close(h.held)
		<-h.release
	})
}

func (h *heldPublisher) last() models.StateEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events[len(h.events)-1]
}

func TestEventsPublishedInWriteOrder(t *testing.T) {
	f := newFakeBackend()
	f.setScan(&backend.ScanResponse{
		Status:     backend.StatusSuccess,
		Data:       []models.Decision{decision("NIFTY", models.ActionWait)},
		Simulation: deadSim(),
	}, nil)

	pub := newHeldPublisher(models.EventScanApplied)
	store := NewStore(models.ModeAuto)
	s := NewScanner(context.Background(), f, store, time.Hour, pub.Publish)
	mc := NewModeController(store, s, pub.Publish)

	scanDone := make(chan error, 1)
	go func() { scanDone <- s.RunScan(context.Background(), true) }()

	select {
	case <-pub.held:
	case <-time.After(2 * time.Second):
		t.Fatal("scan never published")
	}

	toggled := make(chan models.PollMode, 1)
	go func() {
		mode, err := mc.Toggle()
		assert.NoError(t, err)
		toggled <- mode
	}()

	// The toggle may not publish while the scan's event is still being delivered.
	select {
	case <-toggled:
		t.Fatal("toggle completed while scan publication was held")
	case <-time.After(50 * time.Millisecond):
	}

	close(pub.release)
	require.NoError(t, <-scanDone)
	assert.Equal(t, models.ModeManual, <-toggled)

	last := pub.last()
	assert.Equal(t, models.EventModeChanged, last.Type)
	assert.Equal(t, models.ModeManual, last.Snapshot.Mode)
	assert.Equal(t, models.ModeManual, store.Mode())
	assert.Equal(t, []string{models.EventScanApplied, models.EventModeChanged}, pub.types())
}

func TestHydrateDoesNotOverwriteReset(t *testing.T) {
	f := newFakeBackend()
	stale := aliveSim()
	stale.Balance = 1
	f.simState = stale
	f.simGate = make(chan struct{})
	fresh := aliveSim()
	fresh.Balance = 10000
	f.reset = fresh

	s, store, rec := newTestScanner(f, models.ModeAuto, time.Hour)

	hydrated := make(chan error, 1)
	go func() { hydrated <- s.HydrateSimulation(context.Background()) }()

	select {
	case <-f.simStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("hydrate never reached the backend")
	}

	require.NoError(t, s.ResetSimulation(context.Background()))
	close(f.simGate)
	require.NoError(t, <-hydrated)

	assert.Equal(t, 10000.0, store.Simulation().Balance)
	assert.Equal(t, []string{models.EventSimulationReset}, rec.types())
}

package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"sniper-dashboard/backend"
	"sniper-dashboard/models"
)

var errBackendDown = errors.New("backend down")

// fakeBackend serves canned responses. When gate is set every Scan blocks on
// it until a value is sent or the channel is closed.
type fakeBackend struct {
	mu       sync.Mutex
	scanResp *backend.ScanResponse
	scanErr  error
	simState *models.SimulationState
	simErr   error
	reset    *models.SimulationState
	resetErr error

	gate    chan struct{}
	started chan struct{}
	// simGate, when set, holds SimulationState until it is closed.
	simGate    chan struct{}
	simStarted chan struct{}

	scans      atomic.Int32
	concurrent atomic.Int32
	maxSeen    atomic.Int32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{started: make(chan struct{}, 64), simStarted: make(chan struct{}, 8)}
}

func (f *fakeBackend) setScan(resp *backend.ScanResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanResp, f.scanErr = resp, err
}

func (f *fakeBackend) Scan(ctx context.Context) (*backend.ScanResponse, error) {
	n := f.concurrent.Add(1)
	defer f.concurrent.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	f.scans.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	if f.scanResp == nil {
		return &backend.ScanResponse{Status: backend.StatusSuccess}, nil
	}
	resp := *f.scanResp
	resp.Data = models.CloneDecisions(f.scanResp.Data)
	resp.Simulation = f.scanResp.Simulation.Clone()
	return &resp, nil
}

func (f *fakeBackend) SimulationState(ctx context.Context) (*models.SimulationState, error) {
	select {
	case f.simStarted <- struct{}{}:
	default:
	}
	if f.simGate != nil {
		select {
		case <-f.simGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.simErr != nil {
		return nil, f.simErr
	}
	return f.simState.Clone(), nil
}

func (f *fakeBackend) ResetSimulation(context.Context) (*models.SimulationState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	return f.reset.Clone(), nil
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []models.StateEvent
}

func (r *recorder) Publish(ev models.StateEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recorder) anyLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Snapshot.Loading {
			return true
		}
	}
	return false
}

func decision(ticker, action string, rational ...string) models.Decision {
	return models.Decision{Ticker: ticker, Action: action, Confidence: 0.5, Rational: rational}
}

func aliveSim() *models.SimulationState {
	return &models.SimulationState{
		Balance:   10250,
		Cash:      8000,
		Score:     12,
		Level:     "Novice",
		Status:    models.StatusAlive,
		Positions: map[string]models.Position{"NIFTY": {Qty: 50, AvgPrice: 45}},
		History:   []string{"BUY NIFTY"},
	}
}

func deadSim() *models.SimulationState {
	s := aliveSim()
	s.Status = models.StatusDead
	s.Balance = 0
	return s
}

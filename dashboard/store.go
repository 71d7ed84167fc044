// Package dashboard is the client-side polling and state-synchronization
// engine: the recurring scan loop, the AUTO/MANUAL toggle and its lock,
// market-mood derivation and simulation reconciliation.
//
// All process state lives in a single Store. Its mutators are unexported so
// that only the writer roles in this package can change it:
//
//   - Scanner:        decisions, simulation, mood, loading, last-updated
//   - ModeController: poll mode
//   - Details:        detail selection
//
// Everything outside the package reads copies through Snapshot. Writes that
// publish an event go through emit, so subscribers see events in write order.
package dashboard

import (
	"sync"
	"time"

	"sniper-dashboard/models"
)

// Store owns the dashboard's process-wide state.
type Store struct {
	// emitMu is held across a write and the publication of its event.
	emitMu sync.Mutex

	mu          sync.RWMutex
	decisions   []models.Decision
	sim         *models.SimulationState
	mood        models.MarketMood
	lastUpdated time.Time
	loading     bool
	mode        models.PollMode
	details     models.DetailSelection
	scanCount   int64
	// simRev counts simulation replacements.
	simRev uint64
}

// NewStore creates an empty store in the given initial mode.
func NewStore(mode models.PollMode) *Store {
	if mode != models.ModeManual {
		mode = models.ModeAuto
	}
	return &Store{
		decisions: []models.Decision{},
		mood:      models.MoodNeutral,
		mode:      mode,
	}
}

// Snapshot returns a deep copy of the current state with the lock derived
// from the current mode and simulation status.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Mode returns the current poll mode.
func (s *Store) Mode() models.PollMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Locked reports whether AUTO mode may currently not be turned off.
func (s *Store) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IsLocked(s.mode, s.sim)
}

// Loading reports whether an interactive scan is running.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Simulation returns a copy of the simulation state, or nil if never loaded.
func (s *Store) Simulation() *models.SimulationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sim.Clone()
}

// Decisions returns a copy of the current decision batch.
func (s *Store) Decisions() []models.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneDecisions(s.decisions)
}

// Mood returns the mood derived from the last applied batch.
func (s *Store) Mood() models.MarketMood {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mood
}

// Details returns a copy of the detail selection.
func (s *Store) Details() models.DetailSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.details.Clone()
}

func (s *Store) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		Decisions:   models.CloneDecisions(s.decisions),
		Simulation:  s.sim.Clone(),
		Mood:        s.mood,
		MoodLabel:   s.mood.Label(),
		LastUpdated: s.lastUpdated,
		Loading:     s.loading,
		Mode:        s.mode,
		Locked:      IsLocked(s.mode, s.sim),
		Details:     s.details.Clone(),
		ScanCount:   s.scanCount,
	}
}

// applyScan replaces the batch, mood and timestamp in one step, and the
// simulation too when sim is non-nil. It returns the replaced simulation.
func (s *Store) applyScan(decisions []models.Decision, mood models.MarketMood, sim *models.SimulationState, at time.Time) (*models.SimulationState, models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if decisions == nil {
		decisions = []models.Decision{}
	}
	prev := s.sim
	s.decisions = decisions
	s.mood = mood
	s.lastUpdated = at
	s.scanCount++
	if sim != nil {
		s.sim = sim
		s.simRev++
	}
	return prev.Clone(), s.snapshotLocked()
}

// setSimulation replaces the simulation wholesale and returns the old one.
func (s *Store) setSimulation(sim *models.SimulationState) (*models.SimulationState, models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.sim
	s.sim = sim
	s.simRev++
	return prev.Clone(), s.snapshotLocked()
}

func (s *Store) simRevision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simRev
}

// setSimulationAt is setSimulation that applies only while the simulation
// revision still equals rev. ok is false when a newer state got there first.
func (s *Store) setSimulationAt(rev uint64, sim *models.SimulationState) (prev *models.SimulationState, snap models.Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simRev != rev {
		return nil, models.Snapshot{}, false
	}
	prev = s.sim
	s.sim = sim
	s.simRev++
	return prev.Clone(), s.snapshotLocked(), true
}

// emit runs write and publishes the event it returns while holding emitMu.
// write returns false to skip publication.
func (s *Store) emit(publish func(models.StateEvent), write func() (models.StateEvent, bool)) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	if ev, ok := write(); ok {
		publish(ev)
	}
}

func (s *Store) setLoading(v bool) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
	return s.snapshotLocked()
}

// toggleMode flips the poll mode unless the lock holds. The lock check and
// the flip happen under the same write lock.
func (s *Store) toggleMode() (models.PollMode, models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if IsLocked(s.mode, s.sim) {
		return s.mode, s.snapshotLocked(), ErrLocked
	}
	if s.mode == models.ModeAuto {
		s.mode = models.ModeManual
	} else {
		s.mode = models.ModeAuto
	}
	return s.mode, s.snapshotLocked(), nil
}

func (s *Store) setDetails(d models.DetailSelection) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = d
	return s.snapshotLocked()
}

func (s *Store) hideDetails() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details.Visible = false
	return s.snapshotLocked()
}

// decision looks up a decision by ticker in the current batch.
func (s *Store) decision(ticker string) (models.Decision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.decisions {
		if d.Ticker == ticker {
			return d.Clone(), true
		}
	}
	return models.Decision{}, false
}

package dashboard

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// ErrLocked is returned when AUTO mode may not be turned off yet.
var ErrLocked = errors.New("auto mode is locked while the simulated account is alive")

// IsLocked reports whether the AUTO to MANUAL transition is forbidden.
// A simulation that was never loaded counts as alive.
func IsLocked(mode models.PollMode, sim *models.SimulationState) bool {
	return mode == models.ModeAuto && !sim.IsDead()
}

// poller is the part of the Scanner the mode controller drives.
type poller interface {
	StartPolling()
	StopPolling()
}

// ModeController is the only writer of the poll mode.
type ModeController struct {
	mu      sync.Mutex
	store   *Store
	poller  poller
	publish func(models.StateEvent)
	log     *logrus.Entry
}

// NewModeController wires the controller to the store and the scan timer.
func NewModeController(store *Store, p poller, publish func(models.StateEvent)) *ModeController {
	if publish == nil {
		publish = func(models.StateEvent) {}
	}
	return &ModeController{
		store:   store,
		poller:  p,
		publish: publish,
		log:     logging.WithComponent("lock"),
	}
}

// Toggle flips between AUTO and MANUAL. While locked it changes nothing and
// returns ErrLocked with the unchanged mode.
func (m *ModeController) Toggle() (models.PollMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		mode models.PollMode
		err  error
	)
	m.store.emit(m.publish, func() (models.StateEvent, bool) {
		var snap models.Snapshot
		mode, snap, err = m.store.toggleMode()
		return models.StateEvent{Type: models.EventModeChanged, At: time.Now(), Snapshot: snap}, err == nil
	})
	if err != nil {
		m.log.WithField("mode", mode).Info("🔒 Toggle ignored, simulated account still alive")
		return mode, err
	}

	if mode == models.ModeAuto {
		m.poller.StartPolling()
	} else {
		m.poller.StopPolling()
	}

	m.log.WithField("mode", mode).Info("🔁 Poll mode changed")
	return mode, nil
}

// Locked reports the current lock state.
func (m *ModeController) Locked() bool {
	return m.store.Locked()
}

// Mode returns the current poll mode.
func (m *ModeController) Mode() models.PollMode {
	return m.store.Mode()
}

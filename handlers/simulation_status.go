package handlers

import (
	"github.com/sirupsen/logrus"

	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// StatusNotifier is told when the simulated account dies or is revived.
type StatusNotifier interface {
	NotifyStatusChange(change models.StatusChange)
}

// SimulationStatusHandler watches simulation updates for ALIVE/DEAD
// transitions. A death releases the AUTO lock; a reset revives the account.
type SimulationStatusHandler struct {
	notifier StatusNotifier
	log      *logrus.Entry
}

// NewSimulationStatusHandler creates the handler. A nil notifier only logs.
func NewSimulationStatusHandler(notifier StatusNotifier) *SimulationStatusHandler {
	return &SimulationStatusHandler{
		notifier: notifier,
		log:      logging.WithComponent("sim-status"),
	}
}

// Name implements StateHandler.
func (h *SimulationStatusHandler) Name() string { return "simulation-status" }

// Handle implements StateHandler.
func (h *SimulationStatusHandler) Handle(ev models.StateEvent) error {
	switch ev.Type {
	case models.EventScanApplied, models.EventSimulationReset, models.EventSimulationLoaded:
	default:
		return nil
	}

	cur := ev.Snapshot.Simulation
	from, to, changed := models.DetectStatusChange(ev.Previous, cur)
	if !changed {
		return nil
	}

	change := models.StatusChange{
		From:    from,
		To:      to,
		Trigger: ev.Type,
		At:      ev.At,
		State:   cur.Clone(),
	}

	fields := logrus.Fields{"from": from, "to": to, "balance": cur.Balance, "score": cur.Score}
	if change.Died() {
		h.log.WithFields(fields).Warn("💀 Simulated account blown, auto mode unlocked")
	} else {
		h.log.WithFields(fields).Info("💚 Simulated account revived")
	}

	if h.notifier != nil {
		h.notifier.NotifyStatusChange(change)
	}
	return nil
}

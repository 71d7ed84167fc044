package handlers

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniper-dashboard/models"
)

type captureNotifier struct {
	mu      sync.Mutex
	changes []models.StatusChange
}

func (c *captureNotifier) NotifyStatusChange(ch models.StatusChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, ch)
}

func sim(status models.SimStatus) *models.SimulationState {
	return &models.SimulationState{Balance: 9000, Score: 3, Status: status}
}

func TestSimulationStatusHandler(t *testing.T) {
	tests := []struct {
		name     string
		evType   string
		prev     *models.SimulationState
		cur      *models.SimulationState
		wantFrom models.SimStatus
		wantTo   models.SimStatus
		notified bool
	}{
		{"death on scan", models.EventScanApplied, sim(models.StatusAlive), sim(models.StatusDead), models.StatusAlive, models.StatusDead, true},
		{"revived by reset", models.EventSimulationReset, sim(models.StatusDead), sim(models.StatusAlive), models.StatusDead, models.StatusAlive, true},
		{"still alive", models.EventScanApplied, sim(models.StatusAlive), sim(models.StatusAlive), "", "", false},
		{"first load", models.EventSimulationLoaded, nil, sim(models.StatusDead), "", "", false},
		{"unknown status counts as alive", models.EventScanApplied, sim(models.StatusAlive), sim("PAUSED"), "", "", false},
		{"mode change ignored", models.EventModeChanged, sim(models.StatusAlive), sim(models.StatusDead), "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &captureNotifier{}
			h := NewSimulationStatusHandler(n)

			err := h.Handle(models.StateEvent{
				Type:     tt.evType,
				Previous: tt.prev,
				Snapshot: models.Snapshot{Simulation: tt.cur},
			})
			require.NoError(t, err)

			if !tt.notified {
				assert.Empty(t, n.changes)
				return
			}
			require.Len(t, n.changes, 1)
			assert.Equal(t, tt.wantFrom, n.changes[0].From)
			assert.Equal(t, tt.wantTo, n.changes[0].To)
			assert.Equal(t, tt.evType, n.changes[0].Trigger)
		})
	}
}

package dashboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniper-dashboard/models"
)

type fakePoller struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (p *fakePoller) StartPolling() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
}

func (p *fakePoller) StopPolling() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func TestIsLocked(t *testing.T) {
	tests := []struct {
		name string
		mode models.PollMode
		sim  *models.SimulationState
		want bool
	}{
		{"auto alive", models.ModeAuto, aliveSim(), true},
		{"auto dead", models.ModeAuto, deadSim(), false},
		{"auto never loaded", models.ModeAuto, nil, true},
		{"auto unknown status", models.ModeAuto, &models.SimulationState{Status: "PAUSED"}, true},
		{"manual alive", models.ModeManual, aliveSim(), false},
		{"manual dead", models.ModeManual, deadSim(), false},
		{"manual never loaded", models.ModeManual, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLocked(tt.mode, tt.sim))
		})
	}
}

func TestToggleWhileLockedIsNoop(t *testing.T) {
	store := NewStore(models.ModeAuto)
	store.setSimulation(aliveSim())
	p := &fakePoller{}
	rec := &recorder{}
	mc := NewModeController(store, p, rec.Publish)

	mode, err := mc.Toggle()

	require.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, models.ModeAuto, mode)
	assert.Equal(t, models.ModeAuto, store.Mode())
	assert.Zero(t, p.starts)
	assert.Zero(t, p.stops)
	assert.Empty(t, rec.types())
}

func TestToggleNeverLoadedIsLocked(t *testing.T) {
	mc := NewModeController(NewStore(models.ModeAuto), &fakePoller{}, nil)

	_, err := mc.Toggle()

	assert.ErrorIs(t, err, ErrLocked)
	assert.True(t, mc.Locked())
}

func TestToggleAfterDeathStopsAndRestartsPolling(t *testing.T) {
	store := NewStore(models.ModeAuto)
	store.setSimulation(deadSim())
	p := &fakePoller{}
	rec := &recorder{}
	mc := NewModeController(store, p, rec.Publish)

	mode, err := mc.Toggle()
	require.NoError(t, err)
	assert.Equal(t, models.ModeManual, mode)
	assert.Equal(t, 1, p.stops)
	assert.False(t, mc.Locked())

	mode, err = mc.Toggle()
	require.NoError(t, err)
	assert.Equal(t, models.ModeAuto, mode)
	assert.Equal(t, 1, p.starts)

	assert.Equal(t, []string{models.EventModeChanged, models.EventModeChanged}, rec.types())
}

func TestManualToAutoAllowedWhileAlive(t *testing.T) {
	store := NewStore(models.ModeManual)
	store.setSimulation(aliveSim())
	p := &fakePoller{}
	mc := NewModeController(store, p, nil)

	mode, err := mc.Toggle()

	require.NoError(t, err)
	assert.Equal(t, models.ModeAuto, mode)
	assert.True(t, mc.Locked())
	assert.Equal(t, 1, p.starts)
}

package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniper-dashboard/backend"
	"sniper-dashboard/models"
)

func TestResetReplacesSimulationWholesale(t *testing.T) {
	f := newFakeBackend()
	f.setScan(&backend.ScanResponse{
		Status:     backend.StatusSuccess,
		Data:       []models.Decision{decision("NIFTY", models.ActionWait)},
		Simulation: deadSim(),
	}, nil)
	f.reset = &models.SimulationState{
		Balance:   models.DefaultInitialBalance,
		Cash:      models.DefaultInitialBalance,
		Score:     0,
		Level:     "Novice",
		Status:    models.StatusAlive,
		Positions: map[string]models.Position{},
		History:   []string{},
	}
	s, store, rec := newTestScanner(f, models.ModeManual, time.Second)
	require.NoError(t, s.RunScan(context.Background(), true))

	require.NoError(t, s.ResetSimulation(context.Background()))

	sim := store.Simulation()
	require.NotNil(t, sim)
	assert.Equal(t, 0, sim.Score)
	assert.Empty(t, sim.Positions)
	assert.Empty(t, sim.History)
	assert.Equal(t, models.StatusAlive, sim.Status)
	assert.Equal(t, models.ModeManual, store.Mode())
	assert.Len(t, store.Decisions(), 1)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, models.EventSimulationReset, last.Type)
	require.NotNil(t, last.Previous)
	assert.Equal(t, models.StatusDead, last.Previous.Status)
}

func TestResetFailureKeepsState(t *testing.T) {
	f := newFakeBackend()
	f.resetErr = errBackendDown
	s, store, rec := newTestScanner(f, models.ModeAuto, time.Second)
	store.setSimulation(deadSim())

	err := s.ResetSimulation(context.Background())

	require.ErrorIs(t, err, errBackendDown)
	assert.Equal(t, deadSim(), store.Simulation())
	assert.Empty(t, rec.types())
}

func TestResetDoesNotRestartPolling(t *testing.T) {
	f := newFakeBackend()
	f.reset = aliveSim()
	s, store, _ := newTestScanner(f, models.ModeManual, time.Second)
	store.setSimulation(deadSim())

	require.NoError(t, s.ResetSimulation(context.Background()))

	assert.False(t, s.Polling())
	assert.Equal(t, models.ModeManual, store.Mode())
	assert.False(t, store.Locked())
}

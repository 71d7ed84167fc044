package dashboard

import (
	"context"

	"sniper-dashboard/models"
)

// ResetSimulation asks the simulation service for a fresh account and, on
// success, replaces the simulation state wholesale with what it returned.
// On failure the prior state is kept and the error is returned. Neither the
// poll mode nor the decision batch is touched.
func (s *Scanner) ResetSimulation(ctx context.Context) error {
	sim, err := s.backend.ResetSimulation(ctx)
	if err != nil {
		s.log.WithError(err).Warn("⚠️  Simulation reset failed, keeping current state")
		return err
	}

	s.store.emit(s.publish, func() (models.StateEvent, bool) {
		prev, snap := s.store.setSimulation(sim.Clone())
		return models.StateEvent{
			Type:     models.EventSimulationReset,
			At:       s.now(),
			Snapshot: snap,
			Previous: prev,
		}, true
	})
	s.log.WithField("balance", sim.Balance).Info("♻️  Simulation reset")
	return nil
}

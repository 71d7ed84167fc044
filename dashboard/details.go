package dashboard

import (
	"errors"
	"fmt"
	"time"

	"sniper-dashboard/models"
)

// ErrUnknownTicker is returned when a detail view is requested for a ticker
// that is not in the current batch.
var ErrUnknownTicker = errors.New("ticker not in current decision batch")

// Details owns the detail selection. The poll loop never writes it.
type Details struct {
	store   *Store
	publish func(models.StateEvent)
}

// NewDetails creates the detail selection owner.
func NewDetails(store *Store, publish func(models.StateEvent)) *Details {
	if publish == nil {
		publish = func(models.StateEvent) {}
	}
	return &Details{store: store, publish: publish}
}

// Open stores a copy of the given payload and marks it visible. Later scans
// do not alter the copy.
func (d *Details) Open(ticker, action string, rational []string, confidence float64, history []models.HistoryPoint) models.DetailSelection {
	sel := models.DetailSelection{
		Ticker:     ticker,
		Action:     action,
		Rational:   rational,
		Confidence: confidence,
		History:    history,
		Visible:    true,
	}.Clone()

	var snap models.Snapshot
	d.store.emit(d.publish, func() (models.StateEvent, bool) {
		snap = d.store.setDetails(sel)
		return models.StateEvent{Type: models.EventDetailsChanged, At: time.Now(), Snapshot: snap}, true
	})
	return snap.Details
}

// OpenFor opens the detail view for a decision in the current batch.
func (d *Details) OpenFor(ticker string) (models.DetailSelection, error) {
	dec, ok := d.store.decision(ticker)
	if !ok {
		return models.DetailSelection{}, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	return d.Open(dec.Ticker, dec.Action, dec.Rational, dec.Confidence, dec.History), nil
}

// Close hides the detail view. The payload is kept.
func (d *Details) Close() models.DetailSelection {
	var snap models.Snapshot
	d.store.emit(d.publish, func() (models.StateEvent, bool) {
		snap = d.store.hideDetails()
		return models.StateEvent{Type: models.EventDetailsChanged, At: time.Now(), Snapshot: snap}, true
	})
	return snap.Details
}

// Current returns a copy of the selection.
func (d *Details) Current() models.DetailSelection {
	return d.store.Details()
}

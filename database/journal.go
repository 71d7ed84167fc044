package database

import (
	"context"
	"time"

	"sniper-dashboard/models"
)

// journalWriteTimeout bounds a single journal insert.
const journalWriteTimeout = 5 * time.Second

// journalEvents are the state changes worth keeping.
var journalEvents = map[string]bool{
	models.EventScanApplied:      true,
	models.EventSimulationReset:  true,
	models.EventSimulationLoaded: true,
	models.EventModeChanged:      true,
}

// JournalStore is the write side the journal handler needs.
type JournalStore interface {
	SaveScanRecord(ctx context.Context, rec *models.ScanRecord) error
}

// JournalHandler writes state events to the scan journal. It blocks on the
// database and is meant to be wrapped with handlers.NewAsyncHandler.
type JournalHandler struct {
	store JournalStore
}

// NewJournalHandler creates a journal writer.
func NewJournalHandler(store JournalStore) *JournalHandler {
	return &JournalHandler{store: store}
}

// Name implements handlers.StateHandler.
func (h *JournalHandler) Name() string { return "journal" }

// Handle implements handlers.StateHandler.
func (h *JournalHandler) Handle(ev models.StateEvent) error {
	if !journalEvents[ev.Type] {
		return nil
	}
	rec := models.NewScanRecord(ev)

	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()
	return h.store.SaveScanRecord(ctx, &rec)
}

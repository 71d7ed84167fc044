package models

import (
	"time"

	"github.com/lib/pq"
)

// ScanRecord is one applied state change kept in the scan journal.
//
// Key Fields:
//   - EventType: scan_applied or simulation_reset
//   - Tickers: tickers present in the applied batch (Postgres text[])
//   - Mood: mood derived from the batch
//   - SimStatus/SimBalance/SimScore: simulation values after the change
type ScanRecord struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ScanID        string         `gorm:"size:36;index" json:"scan_id"`
	EventType     string         `gorm:"size:32;index;not null" json:"event_type"`
	RecordedAt    time.Time      `gorm:"index;not null" json:"recorded_at"`
	DecisionCount int            `gorm:"not null" json:"decision_count"`
	Tickers       pq.StringArray `gorm:"type:text[]" json:"tickers"`
	Mood          string         `gorm:"size:32" json:"mood"`
	Mode          string         `gorm:"size:8" json:"mode"`
	SimStatus     string         `gorm:"size:16" json:"sim_status,omitempty"`
	SimBalance    *float64       `gorm:"type:decimal(20,2)" json:"sim_balance,omitempty"`
	SimScore      *int           `json:"sim_score,omitempty"`
}

// TableName specifies the table name for ScanRecord
func (ScanRecord) TableName() string {
	return "dashboard_scan_journal"
}

// NewScanRecord builds a journal row from a state event.
func NewScanRecord(ev StateEvent) ScanRecord {
	snap := ev.Snapshot
	rec := ScanRecord{
		ScanID:        ev.ScanID,
		EventType:     ev.Type,
		RecordedAt:    ev.At,
		DecisionCount: len(snap.Decisions),
		Mood:          string(snap.Mood),
		Mode:          string(snap.Mode),
	}
	tickers := make([]string, 0, len(snap.Decisions))
	for _, d := range snap.Decisions {
		tickers = append(tickers, d.Ticker)
	}
	rec.Tickers = tickers

	if sim := snap.Simulation; sim != nil {
		balance := sim.Balance
		score := sim.Score
		rec.SimStatus = string(sim.Status)
		rec.SimBalance = &balance
		rec.SimScore = &score
	}
	return rec
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// MarketMood is the coarse regime label derived from a decision batch.
type MarketMood string

const (
	MoodNeutral             MarketMood = "NEUTRAL"
	MoodHighVolatilityFear  MarketMood = "HIGH_VOLATILITY_FEAR"
	MoodLowVolatilityCoiled MarketMood = "LOW_VOLATILITY_COILED"
)

// Label is the human-readable form of the mood.
func (m MarketMood) Label() string {
	switch m {
	case MoodHighVolatilityFear:
		return "HIGH VOLATILITY (FEAR)"
	case MoodLowVolatilityCoiled:
		return "LOW VOLATILITY (COILED)"
	default:
		return "NEUTRAL"
	}
}

// PollMode says whether the recurring background scan is active.
type PollMode string

const (
	ModeAuto   PollMode = "AUTO"
	ModeManual PollMode = "MANUAL"
)

// ParsePollMode accepts AUTO or MANUAL in any case.
func ParsePollMode(s string) (PollMode, error) {
	switch PollMode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeAuto:
		return ModeAuto, nil
	case ModeManual:
		return ModeManual, nil
	default:
		return "", fmt.Errorf("unknown poll mode %q", s)
	}
}

// DetailSelection is the payload of the open detail view.
// Visible is authoritative; the payload is kept after closing.
type DetailSelection struct {
	Ticker     string         `json:"ticker"`
	Action     string         `json:"action"`
	Rational   []string       `json:"rational"`
	Confidence float64        `json:"confidence"`
	History    []HistoryPoint `json:"history"`
	Visible    bool           `json:"visible"`
}

// Clone deep-copies the selection.
func (d DetailSelection) Clone() DetailSelection {
	out := d
	out.Rational = cloneStrings(d.Rational)
	if d.History != nil {
		out.History = make([]HistoryPoint, len(d.History))
		copy(out.History, d.History)
	}
	return out
}

// Snapshot is a read-only copy of the engine's state for presentation.
type Snapshot struct {
	Decisions   []Decision       `json:"decisions"`
	Simulation  *SimulationState `json:"simulation"`
	Mood        MarketMood       `json:"mood"`
	MoodLabel   string           `json:"mood_label"`
	LastUpdated time.Time        `json:"last_updated"`
	Loading     bool             `json:"loading"`
	Mode        PollMode         `json:"mode"`
	Locked      bool             `json:"locked"`
	Details     DetailSelection  `json:"details"`
	ScanCount   int64            `json:"scan_count"`
}

// Event names published whenever engine state changes.
const (
	EventScanApplied      = "scan_applied"
	EventSimulationReset  = "simulation_reset"
	EventSimulationLoaded = "simulation_loaded"
	EventModeChanged      = "mode_changed"
	EventDetailsChanged   = "details_changed"
	EventLoadingChanged   = "loading_changed"
)

// StateEvent carries a snapshot taken right after a change.
type StateEvent struct {
	Type     string    `json:"type"`
	ScanID   string    `json:"scan_id,omitempty"`
	At       time.Time `json:"at"`
	Snapshot Snapshot  `json:"snapshot"`
	// Previous holds the simulation state replaced by this change, if any.
	Previous *SimulationState `json:"-"`
}

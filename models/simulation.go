package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimStatus is the simulated account's survival status.
type SimStatus string

const (
	StatusAlive SimStatus = "ALIVE"
	StatusDead  SimStatus = "DEAD"
)

// DefaultInitialBalance is the simulation service's starting cash.
const DefaultInitialBalance = 10000.0

// Position is an open simulated holding.
type Position struct {
	Qty      float64 `json:"qty"`
	AvgPrice float64 `json:"avg_price"`
}

// SimulationState is a snapshot of the simulated trading account.
//
// Any status other than StatusDead, including values this client does not
// know about, counts as alive.
type SimulationState struct {
	Balance   float64             `json:"balance"`
	Cash      float64             `json:"cash"`
	Score     int                 `json:"score"`
	Level     string              `json:"level"`
	Status    SimStatus           `json:"status"`
	Positions map[string]Position `json:"positions"`
	History   []string            `json:"history"`
}

// IsDead reports whether the account has been blown.
func (s *SimulationState) IsDead() bool {
	return s != nil && s.Status == StatusDead
}

// Clone returns a deep copy. Cloning nil yields nil.
func (s *SimulationState) Clone() *SimulationState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Positions != nil {
		out.Positions = make(map[string]Position, len(s.Positions))
		for k, v := range s.Positions {
			out.Positions[k] = v
		}
	}
	out.History = cloneStrings(s.History)
	return &out
}

// SimulationSummary is the derived view shown next to the account.
type SimulationSummary struct {
	PnL           decimal.Decimal `json:"pnl"`
	PnLPct        decimal.Decimal `json:"pnl_pct"`
	IsProfit      bool            `json:"is_profit"`
	DisplayLevel  int             `json:"display_level"`
	XPProgress    int             `json:"xp_progress"`
	PositionCount int             `json:"position_count"`
}

// Summarize derives P&L against initialBalance and the XP ladder values.
// A non-positive initialBalance falls back to DefaultInitialBalance.
func (s *SimulationState) Summarize(initialBalance float64) SimulationSummary {
	if s == nil {
		return SimulationSummary{}
	}
	if initialBalance <= 0 {
		initialBalance = DefaultInitialBalance
	}

	base := decimal.NewFromFloat(initialBalance)
	pnl := decimal.NewFromFloat(s.Balance).Sub(base)
	pct := pnl.Div(base).Mul(decimal.NewFromInt(100)).Round(2)

	level := 1
	if s.Score > 0 {
		level = s.Score/20 + 1
	}

	// Go's % keeps the sign of the dividend, so negative scores clamp to 0.
	xp := (s.Score % 50) * 2
	if xp < 0 {
		xp = 0
	}
	if xp > 100 {
		xp = 100
	}

	return SimulationSummary{
		PnL:           pnl.Round(2),
		PnLPct:        pct,
		IsProfit:      !pnl.IsNegative(),
		DisplayLevel:  level,
		XPProgress:    xp,
		PositionCount: len(s.Positions),
	}
}

// StatusChange records the simulated account crossing between alive and dead.
type StatusChange struct {
	From    SimStatus        `json:"from"`
	To      SimStatus        `json:"to"`
	Trigger string           `json:"trigger"`
	At      time.Time        `json:"at"`
	State   *SimulationState `json:"state"`
}

// Died reports whether the change is the account being blown.
func (c StatusChange) Died() bool {
	return c.To == StatusDead
}

// DetectStatusChange compares two consecutive states by liveness. Unknown
// statuses count as alive, so ALIVE to "PAUSED" is not a change. A nil
// previous state is a first load, not a change.
func DetectStatusChange(prev, cur *SimulationState) (from, to SimStatus, changed bool) {
	if prev == nil || cur == nil || prev.IsDead() == cur.IsDead() {
		return "", "", false
	}
	if cur.IsDead() {
		return StatusAlive, StatusDead, true
	}
	return StatusDead, StatusAlive, true
}

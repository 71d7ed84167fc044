package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		sim       SimulationState
		wantPnL   string
		wantPct   string
		profit    bool
		level     int
		xp        int
		positions int
	}{
		{
			name:    "fresh account",
			sim:     SimulationState{Balance: 10000, Score: 0},
			wantPnL: "0", wantPct: "0", profit: true, level: 1, xp: 0,
		},
		{
			name: "in profit",
			sim: SimulationState{
				Balance:   10250.5,
				Score:     45,
				Positions: map[string]Position{"NIFTY": {Qty: 50, AvgPrice: 45}},
			},
			wantPnL: "250.5", wantPct: "2.51", profit: true, level: 3, xp: 90, positions: 1,
		},
		{
			name:    "in loss",
			sim:     SimulationState{Balance: 9000, Score: 20},
			wantPnL: "-1000", wantPct: "-10", profit: false, level: 2, xp: 40,
		},
		{
			name:    "negative score",
			sim:     SimulationState{Balance: 10000, Score: -15},
			wantPnL: "0", wantPct: "0", profit: true, level: 1, xp: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sim.Summarize(DefaultInitialBalance)
			assert.True(t, decimal.RequireFromString(tt.wantPnL).Equal(got.PnL), "pnl %s", got.PnL)
			assert.True(t, decimal.RequireFromString(tt.wantPct).Equal(got.PnLPct), "pct %s", got.PnLPct)
			assert.Equal(t, tt.profit, got.IsProfit)
			assert.Equal(t, tt.level, got.DisplayLevel)
			assert.Equal(t, tt.xp, got.XPProgress)
			assert.Equal(t, tt.positions, got.PositionCount)
		})
	}
}

func TestSummarizeNil(t *testing.T) {
	var sim *SimulationState
	assert.Equal(t, SimulationSummary{}, sim.Summarize(DefaultInitialBalance))
}

func TestSimulationStateIsDead(t *testing.T) {
	var nilSim *SimulationState
	assert.False(t, nilSim.IsDead())
	assert.False(t, (&SimulationState{Status: StatusAlive}).IsDead())
	assert.False(t, (&SimulationState{Status: "SUSPENDED"}).IsDead())
	assert.True(t, (&SimulationState{Status: StatusDead}).IsDead())
}

func TestSimulationStateCloneIsDeep(t *testing.T) {
	orig := &SimulationState{
		Positions: map[string]Position{"NIFTY": {Qty: 1}},
		History:   []string{"BUY"},
	}
	cp := orig.Clone()
	cp.Positions["NIFTY"] = Position{Qty: 99}
	cp.History[0] = "SELL"

	assert.Equal(t, 1.0, orig.Positions["NIFTY"].Qty)
	assert.Equal(t, "BUY", orig.History[0])
}

func TestFilterDecisions(t *testing.T) {
	batch := []Decision{
		{Ticker: "NIFTY", Action: ActionLongCallSniper},
		{Ticker: "BANKNIFTY", Action: ActionWait},
		{Ticker: "RELIANCE", Action: ActionWatchForBreakout},
		{Ticker: "TCS", Action: ActionIronCondor},
	}

	tickers := func(ds []Decision) []string {
		out := []string{}
		for _, d := range ds {
			out = append(out, d.Ticker)
		}
		return out
	}

	tests := []struct {
		name   string
		filter string
		query  string
		want   []string
	}{
		{"all", "", "", []string{"NIFTY", "BANKNIFTY", "RELIANCE", "TCS"}},
		{"active", "active", "", []string{"NIFTY", "TCS"}},
		{"watch alias", "watchlist", "", []string{"BANKNIFTY", "RELIANCE"}},
		{"search is case-insensitive", "all", "nifty", []string{"NIFTY", "BANKNIFTY"}},
		{"active plus search", "opportunities", "nif", []string{"NIFTY"}},
		{"no match", "all", "INFY", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDecisions(batch, ParseDecisionFilter(tt.filter), tt.query)
			assert.Equal(t, tt.want, tickers(got))
		})
	}
}

func TestDecisionHelpers(t *testing.T) {
	d := Decision{
		Ticker:   "NIFTY",
		Action:   ActionBullPutSpread,
		Rational: []string{"IV rank high", "Solution: sell put spread"},
	}

	assert.Equal(t, "Income Mode", d.Regime())
	assert.Equal(t, "Sniper Mode", Decision{Action: ActionLongStock}.Regime())
	assert.Equal(t, "Solution: sell put spread", d.Conclusion())
	assert.Empty(t, Decision{}.Conclusion())

	steps := Steps(d.Rational)
	require.Len(t, steps, 2)
	assert.False(t, steps[0].IsSolution)
	assert.True(t, steps[1].IsSolution)
}

func TestParsePollMode(t *testing.T) {
	m, err := ParsePollMode(" manual ")
	require.NoError(t, err)
	assert.Equal(t, ModeManual, m)

	_, err = ParsePollMode("sometimes")
	assert.Error(t, err)
}

func TestNewScanRecord(t *testing.T) {
	at := time.Date(2026, 1, 2, 9, 15, 0, 0, time.UTC)
	ev := StateEvent{
		Type:   EventScanApplied,
		ScanID: "abc",
		At:     at,
		Snapshot: Snapshot{
			Decisions:  []Decision{{Ticker: "NIFTY"}, {Ticker: "TCS"}},
			Mood:       MoodLowVolatilityCoiled,
			Mode:       ModeAuto,
			Simulation: &SimulationState{Balance: 9800, Score: 7, Status: StatusAlive},
		},
	}

	rec := NewScanRecord(ev)

	assert.Equal(t, "abc", rec.ScanID)
	assert.Equal(t, at, rec.RecordedAt)
	assert.Equal(t, 2, rec.DecisionCount)
	assert.Equal(t, []string{"NIFTY", "TCS"}, []string(rec.Tickers))
	assert.Equal(t, "LOW_VOLATILITY_COILED", rec.Mood)
	require.NotNil(t, rec.SimBalance)
	assert.Equal(t, 9800.0, *rec.SimBalance)
	assert.Equal(t, "ALIVE", rec.SimStatus)
}

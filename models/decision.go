// Package models holds the data shapes shared by the dashboard engine, the
// backend client and the local API.
//
// Decision and HistoryPoint keep the capitalised JSON keys emitted by the
// decision service; SimulationState keeps its lower-case keys. Both are
// decoded as-is from the wire and re-encoded unchanged for presentation.
package models

import "strings"

// Action values emitted by the decision service.
const (
	ActionWait             = "WAIT"
	ActionWatchForBreakout = "WATCH_FOR_BREAKOUT"
	ActionLongStock        = "LONG_STOCK"
	ActionLongCallSniper   = "LONG_CALL_SNIPER"
	ActionBullPutSpread    = "BULL_PUT_SPREAD"
	ActionIronCondor       = "IRON_CONDOR"
)

// SolutionMarker tags the rationale entry holding the conclusion.
const SolutionMarker = "Solution"

// HistoryPoint is a single price/volume sample attached to a decision.
// Only presentation reads it.
type HistoryPoint struct {
	Time   string  `json:"Time"`
	Close  float64 `json:"Close"`
	Volume float64 `json:"Volume"`
}

// Decision is one asset's current trade recommendation.
//
// Rational is ordered: later entries are later reasoning steps and the entry
// containing SolutionMarker is the conclusion.
type Decision struct {
	Ticker     string         `json:"Ticker"`
	Action     string         `json:"Action"`
	Confidence float64        `json:"Confidence"`
	Rational   []string       `json:"Rational"`
	History    []HistoryPoint `json:"History,omitempty"`
	Price      float64        `json:"Price,omitempty"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (d Decision) Clone() Decision {
	out := d
	out.Rational = cloneStrings(d.Rational)
	if d.History != nil {
		out.History = make([]HistoryPoint, len(d.History))
		copy(out.History, d.History)
	}
	return out
}

// HasRationale reports whether any rationale entry contains marker.
func (d Decision) HasRationale(marker string) bool {
	for _, step := range d.Rational {
		if strings.Contains(step, marker) {
			return true
		}
	}
	return false
}

// Conclusion returns the last rationale entry, or "" when there is none.
func (d Decision) Conclusion() string {
	if len(d.Rational) == 0 {
		return ""
	}
	return d.Rational[len(d.Rational)-1]
}

// IsOpportunity reports whether the action is something other than waiting.
func (d Decision) IsOpportunity() bool {
	return d.Action != ActionWait && d.Action != ActionWatchForBreakout
}

// Regime labels premium-selling actions as income plays.
func (d Decision) Regime() string {
	if strings.Contains(d.Action, "CONDOR") || strings.Contains(d.Action, "SPREAD") {
		return "Income Mode"
	}
	return "Sniper Mode"
}

// RationaleStep is a rationale entry annotated for display.
type RationaleStep struct {
	Text       string `json:"text"`
	IsSolution bool   `json:"is_solution"`
}

// Steps annotates each rationale entry with whether it is a solution step.
func Steps(rational []string) []RationaleStep {
	steps := make([]RationaleStep, len(rational))
	for i, r := range rational {
		steps[i] = RationaleStep{Text: r, IsSolution: strings.Contains(r, SolutionMarker)}
	}
	return steps
}

// DecisionFilter selects a subset of a decision batch.
type DecisionFilter string

const (
	FilterAll    DecisionFilter = "all"
	FilterActive DecisionFilter = "active"
	FilterWatch  DecisionFilter = "watch"
)

// ParseDecisionFilter maps a query value to a filter, defaulting to FilterAll.
func ParseDecisionFilter(s string) DecisionFilter {
	switch DecisionFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterActive, "opportunities":
		return FilterActive
	case FilterWatch, "watchlist":
		return FilterWatch
	default:
		return FilterAll
	}
}

// FilterDecisions applies the tab filter and a case-insensitive ticker search.
// The input order is preserved.
func FilterDecisions(decisions []Decision, filter DecisionFilter, query string) []Decision {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Decision, 0, len(decisions))
	for _, d := range decisions {
		switch filter {
		case FilterActive:
			if !d.IsOpportunity() {
				continue
			}
		case FilterWatch:
			if d.IsOpportunity() {
				continue
			}
		}
		if q != "" && !strings.Contains(strings.ToLower(d.Ticker), q) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// CloneDecisions deep-copies a decision batch. A nil batch stays nil.
func CloneDecisions(in []Decision) []Decision {
	if in == nil {
		return nil
	}
	out := make([]Decision, len(in))
	for i, d := range in {
		out[i] = d.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

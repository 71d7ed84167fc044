package dashboard

import "sniper-dashboard/models"

// HighVolatilityMarker flags a rationale entry written under a high
// volatility regime.
const HighVolatilityMarker = "High Volatility"

// DeriveMood labels a decision batch. The batch reads as fearful only when
// strictly more than half of its decisions carry the high volatility marker;
// a tie and an empty batch both read as coiled.
func DeriveMood(decisions []models.Decision) models.MarketMood {
	flagged := 0
	for _, d := range decisions {
		if d.HasRationale(HighVolatilityMarker) {
			flagged++
		}
	}
	if flagged*2 > len(decisions) {
		return models.MoodHighVolatilityFear
	}
	return models.MoodLowVolatilityCoiled
}

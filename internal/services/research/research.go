// Package research turns the four analyst scores into competing bull and bear
// cases and folds them into one consensus.
package research

import (
	"math"

	"StockPilot/internal/domain/models"
)

const (
	ResearcherBull = "bull"
	ResearcherBear = "bear"
)

// ValidScores reports whether every score is a number inside [0, 100].
func ValidScores(s models.AnalystScores) bool {
	for _, v := range []float64{s.Fundamentals, s.Technical, s.Sentiment, s.News} {
		if !inRange(v) {
			return false
		}
	}
	return true
}

func inRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

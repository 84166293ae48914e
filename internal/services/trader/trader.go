// Package trader converts a research consensus into a sized BUY, SELL or HOLD.
package trader

import (
	"fmt"
	"math"
	"strings"

	"StockPilot/internal/domain/models"
)

// Params bounds position sizing.
type Params struct {
	MaxPosition         float64 // percent of portfolio
	MinPosition         float64 // smaller sizes collapse to HOLD
	ConfidenceThreshold float64
}

// DefaultParams returns a 20% cap, 1% floor and 40% confidence threshold.
func DefaultParams() Params {
	return Params{MaxPosition: 20, MinPosition: 1, ConfidenceThreshold: 40}
}

// Trader turns a consensus into a trading decision.
type Trader struct {
	p Params
}

// New returns a Trader using p.
func New(p Params) *Trader {
	return &Trader{p: p}
}

// Decide sizes the position as |net|/100 * confidence/100 * MaxPosition.
// Low confidence, a neutral stance or a size under MinPosition yield HOLD with size 0.
func (t *Trader) Decide(c models.ConsensusAssessment) models.TradingDecision {
	risk := models.RiskMetrics{
		MaxExposure:         t.p.MaxPosition,
		ConfidenceThreshold: t.p.ConfidenceThreshold,
		ScoreMagnitude:      round2(math.Abs(c.NetScore)),
	}

	if math.IsNaN(c.NetScore) || math.IsNaN(c.Confidence) {
		return models.TradingDecision{
			Action:      models.ActionHold,
			Stance:      models.StanceNeutral,
			Confidence:  0,
			Rationale:   "Consensus is not usable. Holding.",
			RiskMetrics: models.RiskMetrics{MaxExposure: t.p.MaxPosition, ConfidenceThreshold: t.p.ConfidenceThreshold},
		}
	}

	if c.Confidence < t.p.ConfidenceThreshold {
		return models.TradingDecision{
			Action:     models.ActionHold,
			Confidence: c.Confidence,
			Stance:     c.Stance,
			NetScore:   c.NetScore,
			Rationale: fmt.Sprintf("Confidence %.1f%% is below the %.0f%% threshold. Holding to avoid a low-conviction trade.",
				c.Confidence, t.p.ConfidenceThreshold),
			RiskMetrics: risk,
		}
	}

	action := models.ActionHold
	switch c.Stance {
	case models.StanceBullish:
		action = models.ActionBuy
	case models.StanceBearish:
		action = models.ActionSell
	}

	size, factor := 0.0, 0.0
	if action != models.ActionHold {
		factor = math.Abs(c.NetScore) / 100 * c.Confidence / 100
		size = clamp(factor*t.p.MaxPosition, 0, t.p.MaxPosition)
		if size < t.p.MinPosition {
			action, size = models.ActionHold, 0
		}
	}
	if action == models.ActionHold {
		factor = 0
	}

	size = round2(size)
	risk.ActualExposure = size
	risk.SizingFactor = round2(factor)

	return models.TradingDecision{
		Action:       action,
		PositionSize: size,
		Confidence:   c.Confidence,
		Stance:       c.Stance,
		NetScore:     c.NetScore,
		Rationale:    t.rationale(action, size, c),
		RiskMetrics:  risk,
	}
}

func (t *Trader) rationale(action models.Action, size float64, c models.ConsensusAssessment) string {
	var parts []string
	switch action {
	case models.ActionBuy:
		parts = append(parts,
			fmt.Sprintf("BUY from a bullish stance with %.1f%% confidence", c.Confidence),
			fmt.Sprintf("Position size %.2f%% of portfolio from net score %.1f", size, c.NetScore))
	case models.ActionSell:
		parts = append(parts,
			fmt.Sprintf("SELL from a bearish stance with %.1f%% confidence", c.Confidence),
			fmt.Sprintf("Position size %.2f%% of portfolio from net score magnitude %.1f", size, math.Abs(c.NetScore)))
	default:
		if c.Stance == models.StanceNeutral {
			parts = append(parts, fmt.Sprintf("HOLD on a neutral stance (net score %.1f)", c.NetScore))
		} else {
			parts = append(parts, fmt.Sprintf("HOLD despite a %s stance: position would be under %.0f%%", c.Stance, t.p.MinPosition))
		}
	}
	if c.Rationale != "" {
		parts = append(parts, "Research basis: "+strings.TrimSuffix(c.Rationale, "."))
	}
	if size > 0 {
		parts = append(parts, fmt.Sprintf("Exposure capped at %.0f%%", t.p.MaxPosition))
	}
	return strings.Join(parts, ". ") + "."
}

// Validate repairs a decision so that it is internally consistent. Applying it
// twice gives the same result.
func (t *Trader) Validate(d models.TradingDecision) models.TradingDecision {
	switch d.Action {
	case models.ActionBuy, models.ActionSell, models.ActionHold:
	default:
		d.Action = models.ActionHold
	}

	if math.IsNaN(d.PositionSize) {
		d.PositionSize = 0
	}
	d.PositionSize = clamp(d.PositionSize, 0, t.p.MaxPosition)

	if math.IsNaN(d.Confidence) {
		d.Confidence = 0
	}
	d.Confidence = clamp(d.Confidence, 0, 100)

	if d.Action == models.ActionHold {
		d.PositionSize = 0
	} else if d.PositionSize == 0 {
		d.Action = models.ActionHold
	}
	d.RiskMetrics.ActualExposure = d.PositionSize
	return d
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

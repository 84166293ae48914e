package trader

import (
	"math"
	"testing"

	"StockPilot/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func consensus(net, conf float64, stance models.Stance) models.ConsensusAssessment {
	return models.ConsensusAssessment{NetScore: net, Confidence: conf, Stance: stance, Rationale: "test basis."}
}

func TestDecide(t *testing.T) {
	tr := New(DefaultParams())

	tests := []struct {
		name   string
		in     models.ConsensusAssessment
		action models.Action
		size   float64
	}{
		{"strong bullish", consensus(62, 84.6, models.StanceBullish), models.ActionBuy, 10.49},
		{"strong bearish", consensus(-62, 69.6, models.StanceBearish), models.ActionSell, 8.63},
		{"threshold buy", consensus(20, 40, models.StanceBullish), models.ActionBuy, 1.6},
		{"low confidence", consensus(80, 39.9, models.StanceBullish), models.ActionHold, 0},
		{"neutral stance", consensus(10, 80, models.StanceNeutral), models.ActionHold, 0},
		{"too small to trade", consensus(10, 45, models.StanceBullish), models.ActionHold, 0},
		{"maximum", consensus(100, 100, models.StanceBullish), models.ActionBuy, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Decide(tt.in)
			assert.Equal(t, tt.action, got.Action)
			assert.InDelta(t, tt.size, got.PositionSize, 1e-9)
			assert.Equal(t, got.PositionSize, got.RiskMetrics.ActualExposure)
			assert.Equal(t, 20.0, got.RiskMetrics.MaxExposure)
			assert.Equal(t, 40.0, got.RiskMetrics.ConfidenceThreshold)
			assert.NotEmpty(t, got.Rationale)
		})
	}
}

func TestDecideRiskMetrics(t *testing.T) {
	got := New(DefaultParams()).Decide(consensus(-62, 69.6, models.StanceBearish))
	assert.InDelta(t, 62, got.RiskMetrics.ScoreMagnitude, 1e-9)
	assert.InDelta(t, 0.43, got.RiskMetrics.SizingFactor, 1e-9)
	assert.Contains(t, got.Rationale, "Research basis: test basis")
}

func TestDecideNaN(t *testing.T) {
	got := New(DefaultParams()).Decide(consensus(math.NaN(), 80, models.StanceBullish))
	assert.Equal(t, models.ActionHold, got.Action)
	assert.Equal(t, 0.0, got.PositionSize)
}

func TestHoldIffZeroSize(t *testing.T) {
	tr := New(DefaultParams())
	stances := []models.Stance{models.StanceBullish, models.StanceNeutral, models.StanceBearish}

	for net := -100.0; net <= 100; net += 7.5 {
		for conf := 0.0; conf <= 100; conf += 5 {
			for _, st := range stances {
				d := tr.Validate(tr.Decide(consensus(net, conf, st)))
				assert.Equal(t, d.Action == models.ActionHold, d.PositionSize == 0,
					"net=%v conf=%v stance=%s action=%s size=%v", net, conf, st, d.Action, d.PositionSize)
				assert.LessOrEqual(t, d.PositionSize, 20.0)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tr := New(DefaultParams())

	tests := []struct {
		name   string
		in     models.TradingDecision
		action models.Action
		size   float64
		conf   float64
	}{
		{"unknown action", models.TradingDecision{Action: "SHORT", PositionSize: 5, Confidence: 70}, models.ActionHold, 0, 70},
		{"oversized", models.TradingDecision{Action: models.ActionBuy, PositionSize: 45, Confidence: 70}, models.ActionBuy, 20, 70},
		{"negative size", models.TradingDecision{Action: models.ActionSell, PositionSize: -3, Confidence: 70}, models.ActionHold, 0, 70},
		{"hold with size", models.TradingDecision{Action: models.ActionHold, PositionSize: 4, Confidence: 70}, models.ActionHold, 0, 70},
		{"confidence out of range", models.TradingDecision{Action: models.ActionBuy, PositionSize: 4, Confidence: 140}, models.ActionBuy, 4, 100},
		{"nan size", models.TradingDecision{Action: models.ActionBuy, PositionSize: math.NaN(), Confidence: -5}, models.ActionHold, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Validate(tt.in)
			assert.Equal(t, tt.action, got.Action)
			assert.Equal(t, tt.size, got.PositionSize)
			assert.Equal(t, tt.conf, got.Confidence)
			assert.Equal(t, got, tr.Validate(got))
		})
	}
}

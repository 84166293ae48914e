package research

import (
	"fmt"
	"math"
	"strings"

	"StockPilot/internal/domain/models"
)

// ConsensusParams sets the net-score stance bands and the confidence curve.
type ConsensusParams struct {
	BearDamping      float64 // bear score multiplier
	BullishThreshold float64 // net >= threshold is bullish, net <= -threshold bearish

	// base confidence is min(ConfidenceCap, |net|*ConfidenceSlope+ConfidenceBase)
	ConfidenceSlope float64
	ConfidenceBase  float64
	ConfidenceCap   float64

	// researcher confidence gaps above WideGap cost WideGapPenalty, gaps below
	// NarrowGap earn NarrowGapBonus
	WideGap        float64
	WideGapPenalty float64
	NarrowGap      float64
	NarrowGapBonus float64

	MinConfidence float64
	MaxConfidence float64
}

// DefaultConsensusParams returns the calibrated consensus parameters.
func DefaultConsensusParams() ConsensusParams {
	return ConsensusParams{
		BearDamping:      0.9,
		BullishThreshold: 20,
		ConfidenceSlope:  0.8,
		ConfidenceBase:   30,
		ConfidenceCap:    90,
		WideGap:          30,
		WideGapPenalty:   10,
		NarrowGap:        10,
		NarrowGapBonus:   5,
		MinConfidence:    30,
		MaxConfidence:    95,
	}
}

// Consensus nets the bull score against the dampened bear score.
type Consensus struct {
	p ConsensusParams
}

// NewConsensus returns a consensus manager using p.
func NewConsensus(p ConsensusParams) *Consensus {
	return &Consensus{p: p}
}

// Aggregate with the default parameters.
func Aggregate(bull, bear *models.ResearchAssessment) models.ConsensusAssessment {
	return NewConsensus(DefaultConsensusParams()).Aggregate(bull, bear)
}

// Aggregate nets bull against bear. A missing or invalid assessment on either
// side yields a neutral consensus with 50 confidence.
func (c *Consensus) Aggregate(bull, bear *models.ResearchAssessment) models.ConsensusAssessment {
	if !validAssessment(bull) || !validAssessment(bear) {
		return models.ConsensusAssessment{
			NetScore:   0,
			Stance:     models.StanceNeutral,
			Confidence: 50,
			Rationale:  "No usable research to aggregate; defaulting to a neutral stance.",
			Breakdown: models.ConsensusBreakdown{
				BearDamping:      c.p.BearDamping,
				BullishThreshold: c.p.BullishThreshold,
				BearishThreshold: -c.p.BullishThreshold,
			},
		}
	}

	dampened := bear.Score * c.p.BearDamping
	raw := bull.Score - dampened
	net := clamp(raw, -100, 100)

	stance := models.StanceNeutral
	switch {
	case net >= c.p.BullishThreshold:
		stance = models.StanceBullish
	case net <= -c.p.BullishThreshold:
		stance = models.StanceBearish
	}

	p := c.p
	confidence := math.Min(p.ConfidenceCap, math.Abs(net)*p.ConfidenceSlope+p.ConfidenceBase)
	gap := math.Abs(bull.Confidence - bear.Confidence)
	switch {
	case gap > p.WideGap:
		confidence -= p.WideGapPenalty
	case gap < p.NarrowGap:
		confidence += p.NarrowGapBonus
	}
	confidence = clamp(confidence, p.MinConfidence, p.MaxConfidence)

	return models.ConsensusAssessment{
		NetScore:   round2(net),
		Stance:     stance,
		Confidence: round2(confidence),
		Rationale:  c.rationale(bull, bear, dampened, net, stance),
		Breakdown: models.ConsensusBreakdown{
			BullScore:        bull.Score,
			BearScore:        bear.Score,
			BearDamping:      c.p.BearDamping,
			DampenedBear:     round2(dampened),
			RawNet:           round2(raw),
			BullConfidence:   bull.Confidence,
			BearConfidence:   bear.Confidence,
			ConfidenceGap:    round2(gap),
			BullishThreshold: c.p.BullishThreshold,
			BearishThreshold: -c.p.BullishThreshold,
		},
	}
}

func (c *Consensus) rationale(bull, bear *models.ResearchAssessment, dampened, net float64, stance models.Stance) string {
	parts := []string{
		fmt.Sprintf("Net score of %.1f from bull score %.1f minus dampened bear score %.1f", net, bull.Score, dampened),
	}

	switch stance {
	case models.StanceBullish:
		parts = append(parts, fmt.Sprintf("Bullish stance on a strong net positive signal (+%.1f)", net))
	case models.StanceBearish:
		parts = append(parts, fmt.Sprintf("Bearish stance on a strong net negative signal (%.1f)", net))
	default:
		parts = append(parts, fmt.Sprintf("Neutral stance as signals are balanced (net %.1f)", net))
	}

	switch {
	case bull.Confidence > bear.Confidence+15:
		parts = append(parts, fmt.Sprintf("Bull researcher is more confident (%.1f%% vs %.1f%%)", bull.Confidence, bear.Confidence))
	case bear.Confidence > bull.Confidence+15:
		parts = append(parts, fmt.Sprintf("Bear researcher is more confident (%.1f%% vs %.1f%%)", bear.Confidence, bull.Confidence))
	default:
		parts = append(parts, fmt.Sprintf("Researchers show similar confidence (bull %.1f%%, bear %.1f%%)", bull.Confidence, bear.Confidence))
	}

	parts = append(parts, fmt.Sprintf("Bear score dampened by %.0f%%", (1-c.p.BearDamping)*100))
	return strings.Join(parts, ". ") + "."
}

func validAssessment(a *models.ResearchAssessment) bool {
	return a != nil && inRange(a.Score) && inRange(a.Confidence)
}

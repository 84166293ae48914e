package research

import (
	"fmt"
	"math"
	"strings"

	"StockPilot/internal/domain/models"
)

// BullParams weights the optimistic composite and sets its boost rules.
// Weights should sum to 1.
type BullParams struct {
	FundamentalsWeight float64
	SentimentWeight    float64
	TechnicalWeight    float64
	NewsWeight         float64
	OptimismBias       float64 // added to every score

	// fundamentals >= StrongFundamentals earn ContrarianBoost when technicals
	// are below WeakTechnical, FundamentalBoost otherwise
	StrongFundamentals float64
	WeakTechnical      float64
	ContrarianBoost    float64
	FundamentalBoost   float64

	// sentiment above SentimentFloor adds (sentiment-floor)*SentimentBoostRate,
	// capped at MaxSentimentBoost
	SentimentFloor     float64
	SentimentBoostRate float64
	MaxSentimentBoost  float64

	ResilientFundamentals float64
	ResilientNews         float64
	ResilienceBoost       float64

	MomentumTechnical float64
	MomentumSentiment float64
	MomentumBoost     float64

	// stance bands on the final score
	StrongBullScore float64
	BullScore       float64
	NeutralFloor    float64
	NeutralConf     float64
}

// DefaultBullParams returns the calibrated bull parameters.
func DefaultBullParams() BullParams {
	return BullParams{
		FundamentalsWeight: 0.40,
		SentimentWeight:    0.30,
		TechnicalWeight:    0.20,
		NewsWeight:         0.10,
		OptimismBias:       2,

		StrongFundamentals: 70,
		WeakTechnical:      50,
		ContrarianBoost:    5,
		FundamentalBoost:   3,

		SentimentFloor:     60,
		SentimentBoostRate: 0.2,
		MaxSentimentBoost:  8,

		ResilientFundamentals: 65,
		ResilientNews:         45,
		ResilienceBoost:       3,

		MomentumTechnical: 65,
		MomentumSentiment: 55,
		MomentumBoost:     4,

		StrongBullScore: 70,
		BullScore:       55,
		NeutralFloor:    45,
		NeutralConf:     60,
	}
}

// Bull builds the optimistic case: fundamentals and sentiment lead, weak
// technicals and news are discounted.
type Bull struct {
	p BullParams
}

// NewBull returns a bull researcher using p.
func NewBull(p BullParams) *Bull {
	return &Bull{p: p}
}

// Assess scores the bull case. Invalid inputs yield a neutral 50/50 assessment.
func (b *Bull) Assess(s models.AnalystScores) models.ResearchAssessment {
	if !ValidScores(s) {
		return models.ResearchAssessment{
			Researcher: ResearcherBull,
			Stance:     models.StanceNeutral,
			Score:      models.NeutralScore,
			Confidence: 50,
			Rationale:  "Bull case unavailable: analyst scores are missing or out of range.",
			Factors:    []string{},
		}
	}

	p := b.p
	f, t, sent, n := s.Fundamentals, s.Technical, s.Sentiment, s.News

	score := f*p.FundamentalsWeight + sent*p.SentimentWeight + t*p.TechnicalWeight + n*p.NewsWeight
	var boosts []string

	if f >= p.StrongFundamentals {
		if t < p.WeakTechnical {
			score += p.ContrarianBoost
			boosts = append(boosts, "strong fundamentals outweigh technical weakness")
		} else {
			score += p.FundamentalBoost
			boosts = append(boosts, "excellent fundamental strength")
		}
	}
	if sent > p.SentimentFloor {
		boost := math.Min(p.MaxSentimentBoost, (sent-p.SentimentFloor)*p.SentimentBoostRate)
		score += boost
		boosts = append(boosts, fmt.Sprintf("positive market sentiment (+%.1f)", boost))
	}
	if f > p.ResilientFundamentals && n < p.ResilientNews {
		score += p.ResilienceBoost
		boosts = append(boosts, "solid fundamentals absorb news concerns")
	}
	if t > p.MomentumTechnical && sent > p.MomentumSentiment {
		score += p.MomentumBoost
		boosts = append(boosts, "technical momentum confirms sentiment")
	}
	score += p.OptimismBias
	boosts = append(boosts, "optimistic market outlook")

	score = clamp(score, 0, 100)

	var stance models.Stance
	var confidence float64
	switch {
	case score >= p.StrongBullScore:
		stance, confidence = models.StanceBullish, math.Min(95, score+5)
	case score >= p.BullScore:
		stance, confidence = models.StanceBullish, score
	case score >= p.NeutralFloor:
		stance, confidence = models.StanceNeutral, p.NeutralConf
	default:
		stance, confidence = models.StanceBearish, math.Max(30, 100-score)
	}

	return models.ResearchAssessment{
		Researcher: ResearcherBull,
		Stance:     stance,
		Score:      round2(score),
		Confidence: round2(confidence),
		Rationale:  bullRationale(s, boosts, confidence),
		Factors:    bullKeyPoints(s),
	}
}

func bullRationale(s models.AnalystScores, boosts []string, confidence float64) string {
	var parts []string

	switch f := s.Fundamentals; {
	case f >= 70:
		parts = append(parts, fmt.Sprintf("Excellent fundamentals (%.0f) provide a strong foundation", f))
	case f >= 60:
		parts = append(parts, fmt.Sprintf("Solid fundamentals (%.0f) support long-term value", f))
	case f >= 50:
		parts = append(parts, fmt.Sprintf("Decent fundamentals (%.0f) offer stability", f))
	}

	switch v := s.Sentiment; {
	case v > 60:
		parts = append(parts, fmt.Sprintf("positive sentiment (%.0f) builds momentum", v))
	case v >= 50:
		parts = append(parts, fmt.Sprintf("neutral to positive sentiment (%.0f) gives support", v))
	}

	switch v := s.Technical; {
	case v >= 60:
		parts = append(parts, fmt.Sprintf("favorable technical setup (%.0f)", v))
	case v >= 45:
		parts = append(parts, fmt.Sprintf("mixed technicals (%.0f) leave room for entries", v))
	default:
		parts = append(parts, fmt.Sprintf("technical weakness (%.0f) may be temporary", v))
	}

	switch v := s.News; {
	case v >= 60:
		parts = append(parts, fmt.Sprintf("supportive news flow (%.0f)", v))
	case v >= 45:
		parts = append(parts, fmt.Sprintf("neutral news backdrop (%.0f)", v))
	default:
		parts = append(parts, fmt.Sprintf("news headwinds (%.0f) likely pass", v))
	}

	if len(boosts) > 3 {
		boosts = boosts[:3]
	}
	parts = append(parts, "Bullish factors: "+strings.Join(boosts, ", "))

	return fmt.Sprintf("Bull case: %s. Overall bullish tilt with %.0f%% confidence.", strings.Join(parts, ". "), confidence)
}

func bullKeyPoints(s models.AnalystScores) []string {
	points := []string{}
	if s.Fundamentals >= 65 {
		points = append(points, fmt.Sprintf("Strong fundamental value at %.0f/100", s.Fundamentals))
	} else if s.Fundamentals >= 50 {
		points = append(points, fmt.Sprintf("Fundamentals at %.0f/100 leave a value opportunity", s.Fundamentals))
	}
	if s.Sentiment > 60 {
		points = append(points, fmt.Sprintf("Positive sentiment momentum at %.0f/100", s.Sentiment))
	}
	if s.Technical >= 60 {
		points = append(points, fmt.Sprintf("Technical indicators support upward movement (%.0f/100)", s.Technical))
	} else if s.Technical >= 45 {
		points = append(points, fmt.Sprintf("Technical consolidation at %.0f/100 may precede a breakout", s.Technical))
	}
	if s.News >= 55 {
		points = append(points, fmt.Sprintf("Favorable news provides tailwinds (%.0f/100)", s.News))
	}
	return points
}

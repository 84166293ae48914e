package research

import (
	"fmt"
	"math"
	"strings"

	"StockPilot/internal/domain/models"
)

// BearParams weights the inverted scores and sets the confidence adjustments.
type BearParams struct {
	TechnicalWeight    float64
	NewsWeight         float64
	SentimentWeight    float64
	FundamentalsWeight float64

	// inverted technical or news above WeakSignalLimit adds WeakSignalBoost
	WeakSignalLimit float64
	WeakSignalBoost float64
	// inverted sentiment above PoorSentimentLimit adds PoorSentimentBoost
	PoorSentimentLimit float64
	PoorSentimentBoost float64
	// population variance of the inverted components above VarianceLimit
	// subtracts VariancePenalty
	VarianceLimit   float64
	VariancePenalty float64
}

// DefaultBearParams returns the calibrated bear parameters.
func DefaultBearParams() BearParams {
	return BearParams{
		TechnicalWeight:    0.35,
		NewsWeight:         0.30,
		SentimentWeight:    0.25,
		FundamentalsWeight: 0.10,
		WeakSignalLimit:    70,
		WeakSignalBoost:    15,
		PoorSentimentLimit: 80,
		PoorSentimentBoost: 10,
		VarianceLimit:      400,
		VariancePenalty:    10,
	}
}

// Bear argues the downside from short-term signals. Its stance is always bearish;
// the score measures conviction.
type Bear struct {
	p BearParams
}

// NewBear returns a bear researcher using p.
func NewBear(p BearParams) *Bear {
	return &Bear{p: p}
}

// Assess scores the bear case. The stance is bearish even for invalid inputs.
func (b *Bear) Assess(s models.AnalystScores) models.ResearchAssessment {
	if !ValidScores(s) {
		return models.ResearchAssessment{
			Researcher: ResearcherBear,
			Stance:     models.StanceBearish,
			Score:      models.NeutralScore,
			Confidence: 50,
			Rationale:  "Bear case unavailable: analyst scores are missing or out of range.",
			Factors:    []string{},
		}
	}

	invT := 100 - s.Technical
	invN := 100 - s.News
	invS := 100 - s.Sentiment
	invF := 100 - s.Fundamentals

	score := clamp(invT*b.p.TechnicalWeight+invN*b.p.NewsWeight+invS*b.p.SentimentWeight+invF*b.p.FundamentalsWeight, 0, 100)

	p := b.p
	confidence := score
	if invT > p.WeakSignalLimit || invN > p.WeakSignalLimit {
		confidence = math.Min(100, confidence+p.WeakSignalBoost)
	}
	if invS > p.PoorSentimentLimit {
		confidence = math.Min(100, confidence+p.PoorSentimentBoost)
	}
	if variance(invT, invN, invS, invF) > p.VarianceLimit {
		confidence = math.Max(0, confidence-p.VariancePenalty)
	}
	confidence = clamp(confidence, 0, 100)

	return models.ResearchAssessment{
		Researcher: ResearcherBear,
		Stance:     models.StanceBearish,
		Score:      round2(score),
		Confidence: round2(confidence),
		Rationale:  bearRationale(s, score),
		Factors:    riskFactors(s),
	}
}

func riskFactors(s models.AnalystScores) []string {
	var risks []string
	if s.Technical < 30 {
		risks = append(risks, "Weak technical indicators point to downward momentum")
	}
	if s.News < 40 {
		risks = append(risks, "Negative news events create headwinds")
	}
	if s.Sentiment < 35 {
		risks = append(risks, "Poor market sentiment signals selling pressure")
	}
	if s.Fundamentals < 45 {
		risks = append(risks, "Fundamental weakness may not support the current valuation")
	}
	if s.Technical < 40 && s.News < 40 {
		risks = append(risks, "Technical weakness combined with negative news makes a high risk setup")
	}
	if s.Sentiment < 30 && s.News < 35 {
		risks = append(risks, "Negative sentiment amplified by poor news coverage")
	}
	if len(risks) == 0 {
		risks = append(risks, "Market conditions appear relatively stable")
	}
	return risks
}

func bearRationale(s models.AnalystScores, score float64) string {
	parts := []string{fmt.Sprintf("Bear case shows %.1f/100 bearish conviction.", score)}

	switch {
	case score > 70:
		parts = append(parts, "Strong bearish signals across several indicators.")
	case score > 50:
		parts = append(parts, "Moderate bearish tilt with concerning signals.")
	default:
		parts = append(parts, "Limited bearish conviction, though risks remain.")
	}

	var concerns []string
	if 100-s.Technical > 60 {
		concerns = append(concerns, fmt.Sprintf("technical weakness (%.1f)", s.Technical))
	}
	if 100-s.News > 60 {
		concerns = append(concerns, fmt.Sprintf("negative news impact (%.1f)", s.News))
	}
	if 100-s.Sentiment > 70 {
		concerns = append(concerns, fmt.Sprintf("poor sentiment (%.1f)", s.Sentiment))
	}
	if len(concerns) > 0 {
		parts = append(parts, "Primary concerns: "+strings.Join(concerns, ", ")+".")
	}

	if s.Technical < 50 && s.News < 50 {
		parts = append(parts, "Short-term outlook is challenged by technical and news headwinds.")
	}
	if s.Sentiment < 40 {
		parts = append(parts, "Market psychology leaves room for further downside.")
	}
	return strings.Join(parts, " ")
}

// variance is the population variance.
func variance(xs ...float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sum float64
	for _, x := range xs {
		sum += (x - mean) * (x - mean)
	}
	return sum / float64(len(xs))
}

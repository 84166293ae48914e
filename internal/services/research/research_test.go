package research

import (
	"math"
	"testing"

	"StockPilot/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scores(f, t, s, n float64) models.AnalystScores {
	return models.AnalystScores{Fundamentals: f, Technical: t, Sentiment: s, News: n}
}

func TestBullAssess(t *testing.T) {
	bull := NewBull(DefaultBullParams())

	tests := []struct {
		name       string
		in         models.AnalystScores
		score      float64
		confidence float64
		stance     models.Stance
	}{
		{"all neutral", scores(50, 50, 50, 50), 52, 60, models.StanceNeutral},
		{"strong fundamentals weak technicals", scores(80, 40, 70, 40), 77, 82, models.StanceBullish},
		{"all zero", scores(0, 0, 0, 0), 2, 98, models.StanceBearish},
		{"all max", scores(100, 100, 100, 100), 100, 95, models.StanceBullish},
		{"moderate", scores(60, 60, 60, 60), 62, 62, models.StanceBullish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bull.Assess(tt.in)
			assert.Equal(t, ResearcherBull, got.Researcher)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.stance, got.Stance)
			assert.NotEmpty(t, got.Rationale)
		})
	}
}

func TestBullInvalidScores(t *testing.T) {
	bull := NewBull(DefaultBullParams())

	for _, in := range []models.AnalystScores{
		scores(math.NaN(), 50, 50, 50),
		scores(50, 120, 50, 50),
		scores(50, 50, -1, 50),
	} {
		got := bull.Assess(in)
		assert.Equal(t, models.StanceNeutral, got.Stance)
		assert.Equal(t, 50.0, got.Score)
		assert.Equal(t, 50.0, got.Confidence)
		assert.Contains(t, got.Rationale, "unavailable")
	}
}

func TestBearAssess(t *testing.T) {
	bear := NewBear(DefaultBearParams())

	t.Run("neutral inputs", func(t *testing.T) {
		got := bear.Assess(scores(50, 50, 50, 50))
		assert.Equal(t, models.StanceBearish, got.Stance)
		assert.InDelta(t, 50, got.Score, 1e-9)
		assert.InDelta(t, 50, got.Confidence, 1e-9)
		assert.Equal(t, []string{"Market conditions appear relatively stable"}, got.Factors)
	})

	t.Run("broad weakness", func(t *testing.T) {
		got := bear.Assess(scores(40, 10, 15, 20))
		assert.InDelta(t, 82.75, got.Score, 1e-9)
		assert.InDelta(t, 100, got.Confidence, 1e-9)
		assert.Len(t, got.Factors, 6)
		assert.Contains(t, got.Rationale, "Strong bearish signals")
	})

	t.Run("inconsistent signals lose confidence", func(t *testing.T) {
		// inverted components 0, 0, 100, 100: variance 2500
		got := bear.Assess(scores(0, 100, 0, 100))
		assert.InDelta(t, 35, got.Score, 1e-9)
		assert.InDelta(t, 35, got.Confidence, 1e-9)
		assert.Len(t, got.Factors, 2)
	})

	t.Run("invalid", func(t *testing.T) {
		got := bear.Assess(scores(50, 50, 50, math.Inf(1)))
		assert.Equal(t, models.StanceBearish, got.Stance)
		assert.Equal(t, 50.0, got.Score)
		assert.Equal(t, 50.0, got.Confidence)
	})
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 0.0, variance())
	assert.Equal(t, 0.0, variance(5, 5, 5))
	assert.InDelta(t, 2500, variance(0, 0, 100, 100), 1e-9)
}

func TestAggregate(t *testing.T) {
	t.Run("reference case", func(t *testing.T) {
		bull := &models.ResearchAssessment{Score: 80, Confidence: 80}
		bear := &models.ResearchAssessment{Score: 20, Confidence: 75}

		got := Aggregate(bull, bear)
		assert.Equal(t, 62.0, got.NetScore)
		assert.Equal(t, models.StanceBullish, got.Stance)
		// 62*0.8+30 = 79.6, aligned confidence adds 5
		assert.InDelta(t, 84.6, got.Confidence, 1e-9)
		assert.InDelta(t, 18, got.Breakdown.DampenedBear, 1e-9)
		assert.Equal(t, 20.0, got.Breakdown.BullishThreshold)
		assert.Equal(t, -20.0, got.Breakdown.BearishThreshold)
	})

	t.Run("confidence gap penalty", func(t *testing.T) {
		got := Aggregate(
			&models.ResearchAssessment{Score: 80, Confidence: 85},
			&models.ResearchAssessment{Score: 20, Confidence: 25},
		)
		assert.InDelta(t, 69.6, got.Confidence, 1e-9)
		assert.InDelta(t, 60, got.Breakdown.ConfidenceGap, 1e-9)
	})

	t.Run("bearish", func(t *testing.T) {
		got := Aggregate(
			&models.ResearchAssessment{Score: 10, Confidence: 70},
			&models.ResearchAssessment{Score: 80, Confidence: 60},
		)
		assert.InDelta(t, -62, got.NetScore, 1e-9)
		assert.Equal(t, models.StanceBearish, got.Stance)
	})

	t.Run("balanced is neutral", func(t *testing.T) {
		got := Aggregate(
			&models.ResearchAssessment{Score: 50, Confidence: 60},
			&models.ResearchAssessment{Score: 50, Confidence: 50},
		)
		assert.InDelta(t, 5, got.NetScore, 1e-9)
		assert.Equal(t, models.StanceNeutral, got.Stance)
	})

	t.Run("confidence floor", func(t *testing.T) {
		got := Aggregate(
			&models.ResearchAssessment{Score: 45, Confidence: 90},
			&models.ResearchAssessment{Score: 50, Confidence: 10},
		)
		assert.Equal(t, 30.0, got.Confidence)
	})

	t.Run("missing input", func(t *testing.T) {
		got := Aggregate(nil, &models.ResearchAssessment{Score: 20, Confidence: 75})
		assert.Equal(t, 0.0, got.NetScore)
		assert.Equal(t, models.StanceNeutral, got.Stance)
		assert.Equal(t, 50.0, got.Confidence)
		assert.NotEmpty(t, got.Rationale)

		got = Aggregate(&models.ResearchAssessment{Score: math.NaN()}, &models.ResearchAssessment{})
		assert.Equal(t, models.StanceNeutral, got.Stance)
	})
}

func TestAggregateCustomParams(t *testing.T) {
	p := DefaultConsensusParams()
	p.BearDamping = 1
	p.BullishThreshold = 10
	got := NewConsensus(p).Aggregate(
		&models.ResearchAssessment{Score: 60, Confidence: 60},
		&models.ResearchAssessment{Score: 48, Confidence: 60},
	)
	require.InDelta(t, 12, got.NetScore, 1e-9)
	assert.Equal(t, models.StanceBullish, got.Stance)
}

// The calibrated constants are tunable: each override below moves only the
// term it controls.
func TestTunableParams(t *testing.T) {
	t.Run("bull contrarian boost", func(t *testing.T) {
		p := DefaultBullParams()
		p.ContrarianBoost = 0
		got := NewBull(p).Assess(scores(80, 40, 70, 40))
		assert.InDelta(t, 72, got.Score, 1e-9)
		assert.InDelta(t, 77, got.Confidence, 1e-9)
		assert.Equal(t, models.StanceBullish, got.Stance)
	})

	t.Run("bull sentiment rate", func(t *testing.T) {
		p := DefaultBullParams()
		p.SentimentBoostRate = 1
		// (70-60)*1 = 10 capped at 8 instead of the default 2
		got := NewBull(p).Assess(scores(80, 40, 70, 40))
		assert.InDelta(t, 83, got.Score, 1e-9)
	})

	t.Run("bull neutral band", func(t *testing.T) {
		p := DefaultBullParams()
		p.NeutralConf = 55
		got := NewBull(p).Assess(scores(50, 50, 50, 50))
		assert.Equal(t, models.StanceNeutral, got.Stance)
		assert.InDelta(t, 55, got.Confidence, 1e-9)
	})

	t.Run("bear variance penalty", func(t *testing.T) {
		p := DefaultBearParams()
		p.VariancePenalty = 0
		got := NewBear(p).Assess(scores(0, 100, 0, 100))
		assert.InDelta(t, 35, got.Score, 1e-9)
		assert.InDelta(t, 45, got.Confidence, 1e-9)
	})

	t.Run("bear weak signal boost", func(t *testing.T) {
		p := DefaultBearParams()
		p.WeakSignalLimit = 100
		got := NewBear(p).Assess(scores(40, 10, 15, 20))
		// score 82.75, only the poor sentiment boost applies
		assert.InDelta(t, 92.75, got.Confidence, 1e-9)
	})

	t.Run("consensus confidence curve", func(t *testing.T) {
		bull := &models.ResearchAssessment{Score: 80, Confidence: 80}
		bear := &models.ResearchAssessment{Score: 20, Confidence: 75}

		p := DefaultConsensusParams()
		p.NarrowGapBonus = 0
		assert.InDelta(t, 79.6, NewConsensus(p).Aggregate(bull, bear).Confidence, 1e-9)

		p = DefaultConsensusParams()
		p.ConfidenceCap = 60
		assert.InDelta(t, 65, NewConsensus(p).Aggregate(bull, bear).Confidence, 1e-9)

		p = DefaultConsensusParams()
		p.MaxConfidence = 70
		assert.InDelta(t, 70, NewConsensus(p).Aggregate(bull, bear).Confidence, 1e-9)
	})
}

func TestBullAndBearFeedConsensus(t *testing.T) {
	in := scores(80, 70, 75, 65)
	bull := NewBull(DefaultBullParams()).Assess(in)
	bear := NewBear(DefaultBearParams()).Assess(in)

	got := Aggregate(&bull, &bear)
	assert.Equal(t, models.StanceBullish, got.Stance)
	assert.Greater(t, got.NetScore, 20.0)
	assert.GreaterOrEqual(t, got.Confidence, 30.0)
	assert.LessOrEqual(t, got.Confidence, 95.0)
}

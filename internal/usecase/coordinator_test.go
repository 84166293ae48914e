package usecase

import (
	"context"
	"regexp"
	"testing"
	"time"

	"StockPilot/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resolver = fakeResolver{"apple": "AAPL", "aapl": "AAPL", "microsoft": "MSFT"}

func eventNames(events []models.AuditEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Event)
	}
	return out
}

func TestRunPipelineCompleted(t *testing.T) {
	pub := &fakePublisher{}
	m := newFakeMetrics()
	c := NewCoordinator(healthyMarket(), resolver, nil, WithEventPublisher(pub), WithMetrics(m))

	res := c.RunPipeline(context.Background(), "apple")

	require.Equal(t, models.StatusCompleted, res.Status)
	assert.Equal(t, "AAPL", res.Ticker)
	assert.Equal(t, "apple", res.CompanyName)
	assert.Empty(t, res.Error)
	assert.Empty(t, res.AnalystErrors)
	assert.Regexp(t, regexp.MustCompile(`^analysis_\d{8}_\d{6}_[0-9a-f]{8}$`), res.WorkflowID)

	require.NotNil(t, res.AnalystScores)
	for _, s := range []float64{res.AnalystScores.Fundamentals, res.AnalystScores.Technical, res.AnalystScores.Sentiment, res.AnalystScores.News} {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
	}

	require.NotNil(t, res.ResearchAssessment)
	assert.Equal(t, models.StanceBullish, res.ResearchAssessment.Consensus.Stance)
	require.NotNil(t, res.TradingDecision)
	assert.Equal(t, models.ActionBuy, res.TradingDecision.Action)
	assert.Greater(t, res.TradingDecision.PositionSize, 0.0)
	assert.Contains(t, res.ExecutiveSummary, "Analysis recommends BUY with")

	assert.Equal(t, []string{
		models.EventWorkflowInitiated,
		models.EventTickerValidation,
		models.EventAnalystExecution,
		models.EventResearchExecution,
		models.EventConsensusBuilding,
		models.EventTradingDecision,
		models.EventWorkflowCompleted,
	}, eventNames(res.AuditTrail))
	assert.Equal(t, models.StateCompleted, res.AuditTrail[len(res.AuditTrail)-1].State)
	for _, e := range res.AuditTrail {
		assert.Equal(t, res.WorkflowID, e.WorkflowID)
	}

	assert.Equal(t, res.AuditTrail, pub.audit)
	assert.Equal(t, 1, m.runs[models.StatusCompleted])
	assert.Equal(t, 1, m.phases[string(models.StateAnalyzing)])
}

func TestRunPipelineCompanyNameForSymbolQuery(t *testing.T) {
	c := NewCoordinator(healthyMarket(), resolver, nil)

	res := c.RunPipeline(context.Background(), "aapl")
	assert.Equal(t, "AAPL", res.CompanyName)
}

func TestRunPipelineValidationFailure(t *testing.T) {
	m := newFakeMetrics()
	c := NewCoordinator(healthyMarket(), resolver, nil, WithMetrics(m))

	res := c.RunPipeline(context.Background(), "nvda stock xyz")

	assert.Equal(t, models.StatusFailed, res.Status)
	assert.Equal(t, "validation", res.Phase)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, []string{"NVDA"}, res.Suggestions)
	assert.Nil(t, res.AnalystScores)
	assert.Nil(t, res.TradingDecision)
	assert.Equal(t, []string{
		models.EventWorkflowInitiated,
		models.EventTickerValidation,
		models.EventWorkflowFailed,
	}, eventNames(res.AuditTrail))
	assert.Equal(t, models.StateFailed, res.AuditTrail[2].State)
	assert.Equal(t, 1, m.runs[models.StatusFailed])
}

func TestRunPipelineEmptyQuery(t *testing.T) {
	c := NewCoordinator(healthyMarket(), resolver, nil)

	res := c.RunPipeline(context.Background(), "   ")
	assert.Equal(t, models.StatusFailed, res.Status)
	assert.Len(t, res.Suggestions, 5)
}

func TestRunPipelineWithoutMarketData(t *testing.T) {
	m := newFakeMetrics()
	c := NewCoordinator(&fakeMarket{}, resolver, nil, WithMetrics(m))

	res := c.RunPipeline(context.Background(), "microsoft")

	require.Equal(t, models.StatusCompleted, res.Status)
	assert.Equal(t, models.NeutralScores(), *res.AnalystScores)
	assert.Len(t, res.AnalystErrors, 4)
	assert.Contains(t, res.AnalystErrors[models.AnalystFundamentals], ErrNoFundamentals.Error())
	assert.Contains(t, res.AnalystErrors[models.AnalystTechnical], ErrInsufficientHistory.Error())
	assert.Equal(t, 1, m.failures[models.AnalystNews])

	cons := res.ResearchAssessment.Consensus
	assert.InDelta(t, 7, cons.NetScore, 1e-9)
	assert.Equal(t, models.StanceNeutral, cons.Stance)
	assert.Equal(t, models.ActionHold, res.TradingDecision.Action)
	assert.Equal(t, 0.0, res.TradingDecision.PositionSize)
	assert.Contains(t, res.ExecutiveSummary, "Analysis recommends HOLD.")
}

func TestRunPipelineAnalystTimeout(t *testing.T) {
	md := healthyMarket()
	md.historyDelay = 500 * time.Millisecond
	c := NewCoordinator(md, resolver, nil, WithAnalystTimeout(20*time.Millisecond))

	start := time.Now()
	res := c.RunPipeline(context.Background(), "apple")

	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.Equal(t, models.StatusCompleted, res.Status)
	assert.Equal(t, models.NeutralScore, res.AnalystScores.Technical)
	assert.Contains(t, res.AnalystErrors[models.AnalystTechnical], "timed out")
	assert.NotContains(t, res.AnalystErrors, models.AnalystFundamentals)
	assert.Greater(t, res.AnalystScores.Fundamentals, 50.0)
}

func TestRunPipelineAnalystPanic(t *testing.T) {
	md := healthyMarket()
	md.panicNews = true
	c := NewCoordinator(md, resolver, nil)

	res := c.RunPipeline(context.Background(), "apple")

	assert.Equal(t, models.StatusCompleted, res.Status)
	assert.Contains(t, res.AnalystErrors[models.AnalystNews], "panic")
	assert.Contains(t, res.AnalystErrors[models.AnalystSentiment], "panic")
	assert.Equal(t, models.NeutralScore, res.AnalystScores.News)
}

func TestRunPipelinePublisherErrorsAreNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errPublish}
	c := NewCoordinator(healthyMarket(), resolver, nil, WithEventPublisher(pub))

	res := c.RunPipeline(context.Background(), "apple")
	assert.Equal(t, models.StatusCompleted, res.Status)
	assert.Len(t, pub.audit, 7)
}

func TestResolveAndValidateTicker(t *testing.T) {
	c := NewCoordinator(&fakeMarket{}, resolver, nil)

	v := c.ResolveAndValidateTicker(context.Background(), " Apple ")
	assert.True(t, v.Valid)
	assert.Equal(t, "AAPL", v.Symbol)
	assert.Equal(t, "Apple", v.CompanyName)
	assert.NotEmpty(t, v.Message)

	v = c.ResolveAndValidateTicker(context.Background(), "unknown co")
	assert.False(t, v.Valid)
	assert.Empty(t, v.Symbol)
	assert.NotEmpty(t, v.Suggestions)
}

func TestTickerSuggestions(t *testing.T) {
	assert.Equal(t, []string{"AAPL"}, TickerSuggestions("aap"))
	assert.Equal(t, []string{"META"}, TickerSuggestions("buy META now"))
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA"}, TickerSuggestions("zzz"))
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA"}, TickerSuggestions(""))
}

func TestExecutiveSummary(t *testing.T) {
	s := executiveSummary(
		models.ConsensusAssessment{Stance: models.StanceBearish, NetScore: -40.25, Confidence: 62},
		models.TradingDecision{Action: models.ActionSell, PositionSize: 4.96},
	)
	assert.Equal(t, "Analysis recommends SELL with 5.0% portfolio allocation. Research consensus is bearish "+
		"with net score of -40.2 and 62% confidence. Risk factors and negative signals suggest caution.", s)
}

func TestNewWorkflowID(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	id := NewWorkflowID(ts)
	assert.Regexp(t, `^analysis_20240305_140709_[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, NewWorkflowID(ts))
}

func TestWithTimeoutReturnsValue(t *testing.T) {
	v, err := withTimeout(context.Background(), time.Second, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = withTimeout(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

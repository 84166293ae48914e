package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockPilot/internal/domain/models"
	domrepo "StockPilot/internal/domain/repository"
	domsvc "StockPilot/internal/domain/service"
	"StockPilot/internal/services/research"
	"StockPilot/internal/services/trader"
	"StockPilot/pkg/logger"
	"StockPilot/pkg/metrics"

	"github.com/google/uuid"
)

// Coordinator drives one recommendation workflow:
// validating -> analyzing -> researching -> consensus_building -> deciding.
// Only validation can fail a run; later phases degrade to neutral values.
type Coordinator struct {
	md        domsvc.MarketData
	resolver  domsvc.Resolver
	log       *logger.Logger
	pub       domrepo.EventPublisher
	metrics   domrepo.Metrics
	analysts  *Analysts
	bull      *research.Bull
	bear      *research.Bear
	consensus *research.Consensus
	trader    *trader.Trader

	analystTimeout    time.Duration
	researcherTimeout time.Duration
	historyPeriod     string
	newsLimit         int
	now               func() time.Time
	newID             func(time.Time) string
}

type CoordinatorOption func(*Coordinator)

func WithAnalystTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.analystTimeout = d
		}
	}
}

func WithResearcherTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.researcherTimeout = d
		}
	}
}

// WithHistory sets the price window of the technical analyst and the number of
// articles read by the sentiment and news analysts.
func WithHistory(period string, newsLimit int) CoordinatorOption {
	return func(c *Coordinator) {
		c.historyPeriod = period
		c.newsLimit = newsLimit
	}
}

func WithResearchParams(bull research.BullParams, bear research.BearParams, cons research.ConsensusParams) CoordinatorOption {
	return func(c *Coordinator) {
		c.bull = research.NewBull(bull)
		c.bear = research.NewBear(bear)
		c.consensus = research.NewConsensus(cons)
	}
}

func WithTraderParams(p trader.Params) CoordinatorOption {
	return func(c *Coordinator) {
		c.trader = trader.New(p)
	}
}

// WithEventPublisher receives every audit event as it is recorded.
func WithEventPublisher(p domrepo.EventPublisher) CoordinatorOption {
	return func(c *Coordinator) {
		c.pub = p
	}
}

func WithMetrics(m domrepo.Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(md domsvc.MarketData, resolver domsvc.Resolver, l *logger.Logger, opts ...CoordinatorOption) *Coordinator {
	if l == nil {
		l = logger.NewNop()
	}
	c := &Coordinator{
		md:                md,
		resolver:          resolver,
		log:               l,
		metrics:           metrics.Noop{},
		bull:              research.NewBull(research.DefaultBullParams()),
		bear:              research.NewBear(research.DefaultBearParams()),
		consensus:         research.NewConsensus(research.DefaultConsensusParams()),
		trader:            trader.New(trader.DefaultParams()),
		analystTimeout:    30 * time.Second,
		researcherTimeout: 20 * time.Second,
		historyPeriod:     "1y",
		newsLimit:         10,
		now:               time.Now,
		newID:             NewWorkflowID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.analysts = NewAnalysts(md, c.historyPeriod, c.newsLimit)
	return c
}

// NewWorkflowID formats analysis_YYYYMMDD_HHMMSS_<8 hex>.
func NewWorkflowID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("analysis_%s_%s", t.UTC().Format("20060102_150405"), suffix)
}

// ResolveAndValidateTicker maps a free-text reference to a symbol.
func (c *Coordinator) ResolveAndValidateTicker(ctx context.Context, query string) models.TickerValidation {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.TickerValidation{
			Valid:       false,
			Message:     "Empty query: provide a company name or ticker symbol",
			Suggestions: TickerSuggestions(q),
		}
	}

	symbol, ok := c.resolver.Resolve(ctx, q)
	if !ok || symbol == "" {
		return models.TickerValidation{
			Valid:       false,
			Message:     fmt.Sprintf("Could not resolve %q to a ticker symbol", q),
			Suggestions: TickerSuggestions(q),
		}
	}

	name := symbol
	if !strings.EqualFold(q, symbol) {
		name = q
	}
	return models.TickerValidation{
		Symbol:      symbol,
		Valid:       true,
		Message:     fmt.Sprintf("Resolved %q to %s", q, symbol),
		CompanyName: name,
	}
}

// RunPipeline runs the full workflow for query. It always returns a result;
// failures are described on it rather than returned.
func (c *Coordinator) RunPipeline(ctx context.Context, query string) *models.WorkflowResult {
	start := c.now()
	id := c.newID(start)

	log := c.log.With(logger.String("workflow_id", id))
	trail := &auditTrail{workflowID: id, pub: c.pub, log: log, now: c.now}

	res := &models.WorkflowResult{
		WorkflowID: id,
		Query:      query,
	}
	finish := func(status string) *models.WorkflowResult {
		elapsed := c.now().Sub(start)
		res.Status = status
		res.AuditTrail = trail.events
		res.ProcessingTimeMS = elapsed.Milliseconds()
		res.Timestamp = c.now().UTC()
		c.metrics.RecordPipelineRun(status, elapsed.Seconds())
		return res
	}

	trail.transition(models.StateValidating)
	trail.record(ctx, models.EventWorkflowInitiated, map[string]interface{}{"query": query})

	phaseStart := c.now()
	v := c.ResolveAndValidateTicker(ctx, query)
	c.metrics.RecordPhaseLatency(string(models.StateValidating), c.now().Sub(phaseStart).Seconds())
	trail.record(ctx, models.EventTickerValidation, map[string]interface{}{
		"valid":   v.Valid,
		"symbol":  v.Symbol,
		"message": v.Message,
	})

	if !v.Valid {
		trail.transition(models.StateFailed)
		trail.record(ctx, models.EventWorkflowFailed, map[string]interface{}{
			"phase": "validation",
			"error": v.Message,
		})
		res.Phase = "validation"
		res.Error = v.Message
		res.Suggestions = v.Suggestions
		c.metrics.RecordError("validation")
		log.Warn("pipeline validation failed", logger.String("query", query), logger.String("reason", v.Message))
		return finish(models.StatusFailed)
	}
	res.Ticker = v.Symbol
	res.CompanyName = v.CompanyName
	log = log.With(logger.String("ticker", v.Symbol))

	trail.transition(models.StateAnalyzing)
	phaseStart = c.now()
	scores, analystErrs := c.runAnalysts(ctx, log, v.Symbol)
	c.metrics.RecordPhaseLatency(string(models.StateAnalyzing), c.now().Sub(phaseStart).Seconds())
	res.AnalystScores = &scores
	if len(analystErrs) > 0 {
		res.AnalystErrors = analystErrs
	}
	trail.record(ctx, models.EventAnalystExecution, map[string]interface{}{
		"scores": scores,
		"errors": len(analystErrs),
	})

	trail.transition(models.StateResearching)
	phaseStart = c.now()
	bull, bear := c.runResearchers(ctx, log, scores)
	c.metrics.RecordPhaseLatency(string(models.StateResearching), c.now().Sub(phaseStart).Seconds())
	trail.record(ctx, models.EventResearchExecution, map[string]interface{}{
		"bull_score":      bull.Score,
		"bull_confidence": bull.Confidence,
		"bear_score":      bear.Score,
		"bear_confidence": bear.Confidence,
	})

	trail.transition(models.StateConsensusBuilding)
	cons := c.consensus.Aggregate(&bull, &bear)
	trail.record(ctx, models.EventConsensusBuilding, map[string]interface{}{
		"net_score":  cons.NetScore,
		"stance":     cons.Stance,
		"confidence": cons.Confidence,
	})
	res.ResearchAssessment = &models.ResearchBundle{Bull: bull, Bear: bear, Consensus: cons}

	trail.transition(models.StateDeciding)
	decision := c.trader.Validate(c.trader.Decide(cons))
	trail.record(ctx, models.EventTradingDecision, map[string]interface{}{
		"action":        decision.Action,
		"position_size": decision.PositionSize,
		"confidence":    decision.Confidence,
	})
	res.TradingDecision = &decision
	res.ExecutiveSummary = executiveSummary(cons, decision)

	trail.transition(models.StateCompleted)
	trail.record(ctx, models.EventWorkflowCompleted, map[string]interface{}{
		"processing_time_ms": c.now().Sub(start).Milliseconds(),
	})

	log.Info("pipeline completed",
		logger.String("action", string(decision.Action)),
		logger.Float64("position_size", decision.PositionSize),
		logger.Float64("net_score", cons.NetScore),
		logger.Duration("duration_ms", c.now().Sub(start)),
	)
	return finish(models.StatusCompleted)
}

type analystFunc func(ctx context.Context, ticker string) (float64, error)

type analystResult struct {
	name  string
	score float64
	err   error
}

func (c *Coordinator) runAnalysts(ctx context.Context, log *logger.Logger, ticker string) (models.AnalystScores, map[string]string) {
	tasks := []struct {
		name string
		fn   analystFunc
	}{
		{models.AnalystFundamentals, c.analysts.Fundamentals},
		{models.AnalystTechnical, c.analysts.Technical},
		{models.AnalystSentiment, c.analysts.Sentiment},
		{models.AnalystNews, c.analysts.News},
	}

	ch := make(chan analystResult, len(tasks))
	var wg sync.WaitGroup

	for _, t := range tasks {
		wg.Add(1)
		go func(name string, fn analystFunc) {
			defer wg.Done()
			score, err := withTimeout(ctx, c.analystTimeout, func(ctx context.Context) (float64, error) {
				return fn(ctx, ticker)
			})
			ch <- analystResult{name: name, score: score, err: err}
		}(t.name, t.fn)
	}

	go func() { wg.Wait(); close(ch) }()

	scores := models.NeutralScores()
	errs := map[string]string{}
	for r := range ch {
		if r.err != nil {
			errs[r.name] = r.err.Error()
			c.metrics.RecordAnalystFailure(r.name)
			log.Warn("analyst failed, using neutral score", logger.String("analyst", r.name), logger.Error(r.err))
			continue
		}
		scores.Set(r.name, r.score)
	}
	return scores, errs
}

func (c *Coordinator) runResearchers(ctx context.Context, log *logger.Logger, scores models.AnalystScores) (bull, bear models.ResearchAssessment) {
	var wg sync.WaitGroup
	var bullErr, bearErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		bull, bullErr = withTimeout(ctx, c.researcherTimeout, func(context.Context) (models.ResearchAssessment, error) {
			return c.bull.Assess(scores), nil
		})
	}()
	go func() {
		defer wg.Done()
		bear, bearErr = withTimeout(ctx, c.researcherTimeout, func(context.Context) (models.ResearchAssessment, error) {
			return c.bear.Assess(scores), nil
		})
	}()
	wg.Wait()

	if bullErr != nil {
		log.Warn("bull research failed", logger.Error(bullErr))
		c.metrics.RecordError("research_bull")
		bull = neutralAssessment(research.ResearcherBull, models.StanceNeutral, bullErr)
	}
	if bearErr != nil {
		log.Warn("bear research failed", logger.Error(bearErr))
		c.metrics.RecordError("research_bear")
		bear = neutralAssessment(research.ResearcherBear, models.StanceBearish, bearErr)
	}
	return bull, bear
}

func neutralAssessment(researcher string, stance models.Stance, err error) models.ResearchAssessment {
	return models.ResearchAssessment{
		Researcher: researcher,
		Stance:     stance,
		Score:      models.NeutralScore,
		Confidence: 50,
		Rationale:  fmt.Sprintf("%s research unavailable: %v", researcher, err),
		Factors:    []string{},
	}
}

// withTimeout runs fn under its own deadline. A panic in fn becomes an error;
// a deadline is reported even if fn ignores its context.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- outcome{val: v, err: err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("timed out after %s", d)
		}
		return zero, fmt.Errorf("cancelled: %w", ctx.Err())
	}
}

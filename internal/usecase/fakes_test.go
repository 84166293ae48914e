package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"StockPilot/internal/domain/models"
)

type fakeMarket struct {
	prices       []float64
	fundamentals *models.Fundamentals
	news         []models.NewsArticle
	historyDelay time.Duration
	panicNews    bool
}

func (f *fakeMarket) Historical(ctx context.Context, ticker, period string) []float64 {
	// ignores ctx on purpose: the coordinator must enforce the deadline itself
	time.Sleep(f.historyDelay)
	return f.prices
}

func (f *fakeMarket) Fundamentals(ctx context.Context, ticker string) *models.Fundamentals {
	return f.fundamentals
}

func (f *fakeMarket) News(ctx context.Context, ticker string, limit, offset int) []models.NewsArticle {
	if f.panicNews {
		panic("news provider exploded")
	}
	if limit > 0 && len(f.news) > limit {
		return f.news[:limit]
	}
	return f.news
}

type fakeResolver map[string]string

func (r fakeResolver) Resolve(ctx context.Context, q string) (string, bool) {
	s, ok := r[strings.ToLower(strings.TrimSpace(q))]
	return s, ok
}

type fakePublisher struct {
	mu      sync.Mutex
	audit   []models.AuditEvent
	results map[string]*models.WorkflowResult
	err     error

	resultCalls int
	failResults int // first n PublishResult calls fail with errPublish
}

func (p *fakePublisher) PublishAudit(ctx context.Context, ev models.AuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audit = append(p.audit, ev)
	return p.err
}

func (p *fakePublisher) PublishResult(ctx context.Context, requestID string, res *models.WorkflowResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.results == nil {
		p.results = map[string]*models.WorkflowResult{}
	}
	p.resultCalls++
	if p.resultCalls <= p.failResults {
		return errPublish
	}
	p.results[requestID] = res
	return p.err
}

type fakeMetrics struct {
	mu       sync.Mutex
	runs     map[string]int
	failures map[string]int
	phases   map[string]int
	errors   map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{runs: map[string]int{}, failures: map[string]int{}, phases: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordPipelineRun(status string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[status]++
}

func (m *fakeMetrics) RecordPhaseLatency(phase string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases[phase]++
}

func (m *fakeMetrics) RecordAnalystFailure(analyst string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[analyst]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

type fakeRunner struct {
	mu      sync.Mutex
	queries []string
}

func (r *fakeRunner) RunPipeline(ctx context.Context, q string) *models.WorkflowResult {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()
	return &models.WorkflowResult{WorkflowID: "analysis_test", Status: models.StatusCompleted, Query: q}
}

type fakeResults struct {
	stored map[string]interface{}
	err    error
}

func (r *fakeResults) SetResult(ctx context.Context, id string, v interface{}) error {
	if r.err != nil {
		return r.err
	}
	if r.stored == nil {
		r.stored = map[string]interface{}{}
	}
	r.stored[id] = v
	return nil
}

var errPublish = errors.New("broker down")

func risingPrices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)*0.5
	}
	return out
}

func healthyMarket() *fakeMarket {
	return &fakeMarket{
		prices: risingPrices(260),
		fundamentals: &models.Fundamentals{
			Symbol:        "AAPL",
			MarketCap:     3e12,
			PERatio:       22,
			DividendYield: 2.5,
			Price:         190,
			Volume:        1.5e6,
			AvgVolume:     1e6,
			High52W:       200,
			Low52W:        150,
		},
		news: []models.NewsArticle{
			{Title: "Apple beats earnings with record revenue", Summary: "Strong growth in services"},
			{Title: "Analysts upgrade Apple after partnership", Summary: "Shares rally on bullish outlook"},
			{Title: "Apple expands buyback", Summary: "Profit rises again"},
		},
	}
}

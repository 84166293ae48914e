package marketdata

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"StockPilot/internal/domain/models"
	"StockPilot/internal/domain/repository"
	xhttp "StockPilot/pkg/http"
	"StockPilot/pkg/logger"
)

// ErrNoData means the provider answered but had nothing usable for the symbol.
var ErrNoData = errors.New("marketdata: no data")

var nasdaqHeaders = map[string]string{
	"Accept":  "application/json, text/plain, */*",
	"Origin":  "https://www.nasdaq.com",
	"Referer": "https://www.nasdaq.com/",
}

// Gateway fetches prices, fundamentals and news through the cached HTTP client.
// Every read degrades to an empty value; failures are only logged.
type Gateway struct {
	client       *xhttp.Client
	log          *logger.Logger
	store        repository.PriceStore
	chartURL     string
	nasdaqAPIURL string
	newsURL      string
	maxStaleness time.Duration
	batchWorkers int
	now          func() time.Time
}

type Option func(*Gateway)

func WithChartURL(u string) Option     { return func(g *Gateway) { g.chartURL = strings.TrimRight(u, "/") } }
func WithNasdaqAPIURL(u string) Option { return func(g *Gateway) { g.nasdaqAPIURL = strings.TrimRight(u, "/") } }
func WithNewsURL(u string) Option      { return func(g *Gateway) { g.newsURL = u } }

// WithPriceStore puts a bar store in front of the chart API. Stored bars are
// used while the newest one is younger than maxStaleness.
func WithPriceStore(store repository.PriceStore, maxStaleness time.Duration) Option {
	return func(g *Gateway) {
		g.store = store
		if maxStaleness > 0 {
			g.maxStaleness = maxStaleness
		}
	}
}

func WithBatchWorkers(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.batchWorkers = n
		}
	}
}

func NewGateway(client *xhttp.Client, l *logger.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		client:       client,
		log:          l,
		chartURL:     DefaultChartURL,
		nasdaqAPIURL: DefaultNasdaqAPIURL,
		newsURL:      DefaultNasdaqNewsURL,
		maxStaleness: 24 * time.Hour,
		batchWorkers: 4,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.NewNop()
	}
	return g
}

// Historical returns daily closes oldest to newest, or an empty slice.
func (g *Gateway) Historical(ctx context.Context, ticker, period string) []float64 {
	return models.Closes(g.HistoricalBars(ctx, ticker, period))
}

// HistoricalBars is Historical with full OHLCV bars.
func (g *Gateway) HistoricalBars(ctx context.Context, ticker, period string) []models.PriceBar {
	symbol := normalizeTicker(ticker)
	if symbol == "" {
		return []models.PriceBar{}
	}

	rng := repository.RangeForMonths(ParsePeriodMonths(period))
	from := rng.Since(g.now())

	if bars := g.storedBars(ctx, symbol, from); len(bars) > 0 {
		return bars
	}

	raw, ok := g.client.FetchJSON(ctx, g.chartURL+"/"+url.PathEscape(symbol), xhttp.FetchOptions{
		Query: map[string][]string{
			"interval": {"1d"},
			"range":    {string(rng)},
		},
	})
	if !ok {
		return []models.PriceBar{}
	}

	bars, err := parseChart(symbol, raw)
	if err != nil {
		g.log.Warn("historical data unavailable", logger.String("ticker", symbol), logger.String("range", string(rng)), logger.Error(err))
		return []models.PriceBar{}
	}

	if g.store != nil {
		if err := g.store.StoreBars(ctx, bars); err != nil {
			g.log.Warn("price store write failed", logger.String("ticker", symbol), logger.Error(err))
		}
	}
	return bars
}

// storedBars returns bars from the store when they cover [from, now] closely enough.
func (g *Gateway) storedBars(ctx context.Context, symbol string, from time.Time) []models.PriceBar {
	if g.store == nil {
		return nil
	}
	bars, err := g.store.Bars(ctx, symbol, from)
	if err != nil {
		g.log.Warn("price store read failed", logger.String("ticker", symbol), logger.Error(err))
		return nil
	}
	if len(bars) == 0 {
		return nil
	}
	// a week of slack on both ends for weekends and holidays
	if bars[0].Date.After(from.AddDate(0, 0, 7)) {
		return nil
	}
	if g.now().Sub(bars[len(bars)-1].Date) > g.maxStaleness+72*time.Hour {
		return nil
	}
	return bars
}

// HistoricalBatch fetches several tickers concurrently. Failed tickers map to an empty slice.
func (g *Gateway) HistoricalBatch(ctx context.Context, tickers []string, period string) map[string][]float64 {
	out := make(map[string][]float64, len(tickers))
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, g.batchWorkers)
	)

	for _, t := range tickers {
		symbol := normalizeTicker(t)
		if symbol == "" {
			continue
		}
		mu.Lock()
		_, seen := out[symbol]
		out[symbol] = nil
		mu.Unlock()
		if seen {
			continue
		}

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			closes := g.Historical(ctx, symbol, period)
			mu.Lock()
			out[symbol] = closes
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()
	return out
}

// Fundamentals returns the company snapshot, or nil.
func (g *Gateway) Fundamentals(ctx context.Context, ticker string) *models.Fundamentals {
	symbol := normalizeTicker(ticker)
	if symbol == "" {
		return nil
	}

	raw, ok := g.client.FetchJSON(ctx, g.nasdaqAPIURL+"/quote/"+url.PathEscape(symbol)+"/summary", xhttp.FetchOptions{
		Headers: nasdaqHeaders,
		Query:   map[string][]string{"assetclass": {"stocks"}},
	})
	if !ok {
		return nil
	}

	f, err := parseSummary(symbol, raw)
	if err != nil {
		g.log.Warn("fundamentals unavailable", logger.String("ticker", symbol), logger.Error(err))
		return nil
	}
	return f
}

// News returns up to limit recent articles, or an empty slice.
func (g *Gateway) News(ctx context.Context, ticker string, limit, offset int) []models.NewsArticle {
	symbol := normalizeTicker(ticker)
	if symbol == "" {
		return []models.NewsArticle{}
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	raw, ok := g.client.FetchJSON(ctx, g.newsURL, xhttp.FetchOptions{
		Headers: nasdaqHeaders,
		Query: map[string][]string{
			"q":        {symbol + "|STOCKS"},
			"offset":   {strconv.Itoa(offset)},
			"limit":    {strconv.Itoa(limit)},
			"fallback": {"true"},
		},
	})
	if !ok {
		return []models.NewsArticle{}
	}

	articles, err := parseNews(raw)
	if err != nil {
		g.log.Warn("news unavailable", logger.String("ticker", symbol), logger.Error(err))
		return []models.NewsArticle{}
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

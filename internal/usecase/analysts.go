package usecase

import (
	"context"
	"errors"
	"fmt"

	"StockPilot/internal/domain/models"
	domsvc "StockPilot/internal/domain/service"
	"StockPilot/internal/services/indicators"
	"StockPilot/internal/services/scoring"
)

var (
	ErrNoFundamentals      = errors.New("no fundamentals data")
	ErrInsufficientHistory = errors.New("insufficient price history")
	ErrNoNews              = errors.New("no news articles")
)

// Analysts scores one ticker from four angles. Each method returns an error
// instead of a neutral score so the caller can record why a signal is missing.
type Analysts struct {
	md            domsvc.MarketData
	historyPeriod string
	newsLimit     int
}

func NewAnalysts(md domsvc.MarketData, historyPeriod string, newsLimit int) *Analysts {
	if historyPeriod == "" {
		historyPeriod = "1y"
	}
	if newsLimit <= 0 {
		newsLimit = 10
	}
	return &Analysts{md: md, historyPeriod: historyPeriod, newsLimit: newsLimit}
}

func (a *Analysts) Fundamentals(ctx context.Context, ticker string) (float64, error) {
	f := a.md.Fundamentals(ctx, ticker)
	if f == nil || !f.HasData() {
		return 0, fmt.Errorf("%s: %w", ticker, ErrNoFundamentals)
	}
	return scoring.FundamentalsScore(f), nil
}

func (a *Analysts) Technical(ctx context.Context, ticker string) (float64, error) {
	prices := a.md.Historical(ctx, ticker, a.historyPeriod)
	if len(prices) < indicators.DefaultRSIWindow {
		return 0, fmt.Errorf("%s: %d points over %s: %w", ticker, len(prices), a.historyPeriod, ErrInsufficientHistory)
	}
	return scoring.TechnicalScore(indicators.Compute(prices)), nil
}

func (a *Analysts) Sentiment(ctx context.Context, ticker string) (float64, error) {
	articles, err := a.articles(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return scoring.SentimentScore(articles), nil
}

func (a *Analysts) News(ctx context.Context, ticker string) (float64, error) {
	articles, err := a.articles(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return scoring.NewsScore(articles), nil
}

func (a *Analysts) articles(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	articles := a.md.News(ctx, ticker, a.newsLimit, 0)
	if len(articles) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoNews)
	}
	return articles, nil
}

package service

import (
	"context"

	"StockPilot/internal/domain/models"
)

// MarketData is the read side of the market data gateway. Every method
// degrades to an empty result instead of returning an error.
type MarketData interface {
	Historical(ctx context.Context, ticker, period string) []float64
	Fundamentals(ctx context.Context, ticker string) *models.Fundamentals
	News(ctx context.Context, ticker string, limit, offset int) []models.NewsArticle
}

// Resolver maps a free-text company reference to a ticker symbol.
type Resolver interface {
	Resolve(ctx context.Context, query string) (string, bool)
}

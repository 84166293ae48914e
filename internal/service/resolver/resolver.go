package resolver

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	xhttp "StockPilot/pkg/http"
	"StockPilot/pkg/logger"
)

const DefaultSearchURL = "https://query1.finance.yahoo.com/v1/finance/search"

type searchResponse struct {
	Quotes []quote `json:"quotes"`
}

type quote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	QuoteType string `json:"quoteType"`
}

// Resolver maps company names or symbols to tickers through the Yahoo symbol search.
type Resolver struct {
	client    *xhttp.Client
	log       *logger.Logger
	searchURL string
	maxQuotes int
}

type Option func(*Resolver)

func WithSearchURL(u string) Option {
	return func(r *Resolver) { r.searchURL = u }
}

func WithMaxQuotes(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxQuotes = n
		}
	}
}

func New(client *xhttp.Client, l *logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		client:    client,
		log:       l,
		searchURL: DefaultSearchURL,
		maxQuotes: 10,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.NewNop()
	}
	return r
}

// Resolve returns the uppercased ticker for query, or ("", false) when nothing
// tradable matches or the lookup fails.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", false
	}

	raw, ok := r.client.FetchJSON(ctx, r.searchURL, xhttp.FetchOptions{
		Query: map[string][]string{
			"q":           {q},
			"quotesCount": {strconv.Itoa(r.maxQuotes)},
			"newsCount":   {"0"},
		},
	})
	if !ok {
		r.log.Warn("symbol search failed", logger.String("query", q))
		return "", false
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		r.log.Warn("symbol search response malformed", logger.String("query", q), logger.Error(err))
		return "", false
	}

	symbol := pick(resp.Quotes, q)
	if symbol == "" {
		r.log.Info("no equity match", logger.String("query", q))
		return "", false
	}
	return symbol, true
}

// pick prefers a candidate whose name contains the query, else the first tradable one.
func pick(quotes []quote, query string) string {
	needle := strings.ToLower(query)
	first := ""
	for _, q := range quotes {
		if !tradable(q.QuoteType) || strings.TrimSpace(q.Symbol) == "" {
			continue
		}
		if first == "" {
			first = q.Symbol
		}
		if strings.Contains(strings.ToLower(q.ShortName), needle) || strings.Contains(strings.ToLower(q.LongName), needle) {
			return strings.ToUpper(strings.TrimSpace(q.Symbol))
		}
	}
	return strings.ToUpper(strings.TrimSpace(first))
}

func tradable(quoteType string) bool {
	switch strings.ToUpper(quoteType) {
	case "EQUITY", "ETF":
		return true
	}
	return false
}

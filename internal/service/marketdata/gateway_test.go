package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"StockPilot/internal/domain/models"
	xhttp "StockPilot/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1700179200,1700006400,1700092800,1700265600],
"indicators":{"quote":[{"open":[11,9,10,null],"high":[12,10,11,null],"low":[10,8,9,null],
"close":[11.5,9.5,10.5,null],"volume":[300,100,200,null]}]}}],"error":null}}`

const summaryBody = `{"data":{"symbol":"AAPL","summaryData":{
"CompanyName":{"label":"Company","value":"Apple Inc."},
"Sector":{"label":"Sector","value":"Technology"},
"Industry":{"label":"Industry","value":"Computer Manufacturing"},
"MarketCap":{"label":"Market Cap","value":"$2.5T"},
"PERatio":{"label":"P/E Ratio","value":28.5},
"Yield":{"label":"Current Yield","value":"0.5%"},
"LastSale":{"label":"Last","value":"$189.50"},
"Volume":{"label":"Volume","value":"55,000,000"},
"AverageVolume":{"label":"Avg","value":"60,000,000"},
"FiftTwoWeekHighLow":{"label":"52 Week High/Low","value":"$199.62/$164.08"}
}}}`

const newsBody = `{"data":{"rows":[
{"title":"Apple beats earnings","url":"/articles/apple-beats","created":"Nov 01, 2024","publisher":"Zacks"},
{"title":"Second","summary":"s","url":"https://example.com/x","published_date":"2024-11-02","source":"Reuters","tags":["tech"]},
{"title":"Third","url":"articles/third"}
]}}`

type fakeStore struct {
	mu     sync.Mutex
	bars   []models.PriceBar
	stored []models.PriceBar
}

func (f *fakeStore) Init(context.Context) error { return nil }
func (f *fakeStore) Bars(_ context.Context, symbol string, from time.Time) ([]models.PriceBar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PriceBar
	for _, b := range f.bars {
		if b.Symbol == symbol && !b.Date.Before(from) {
			out = append(out, b)
		}
	}
	return out, nil
}
func (f *fakeStore) StoreBars(_ context.Context, bars []models.PriceBar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, bars...)
	return nil
}
func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

func newGateway(t *testing.T, opts ...Option) (*Gateway, *int32) {
	t.Helper()
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/chart/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		if strings.HasSuffix(r.URL.Path, "/MISSING") {
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
			return
		}
		_, _ = w.Write([]byte(chartBody))
	})
	mux.HandleFunc("/api/quote/AAPL/summary", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stocks", r.URL.Query().Get("assetclass"))
		_, _ = w.Write([]byte(summaryBody))
	})
	mux.HandleFunc("/api/quote/NONE/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"status":{"rCode":400}}`))
	})
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL|STOCKS", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(newsBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := xhttp.NewClient(xhttp.WithFetchDefaults(xhttp.FetchOptions{Retries: 1}))
	base := []Option{
		WithChartURL(srv.URL + "/chart"),
		WithNasdaqAPIURL(srv.URL + "/api"),
		WithNewsURL(srv.URL + "/news"),
	}
	return NewGateway(client, nil, append(base, opts...)...), &hits
}

func TestHistoricalSortsAndSkipsNullBars(t *testing.T) {
	g, _ := newGateway(t)

	closes := g.Historical(context.Background(), "aapl", "3mo")
	assert.Equal(t, []float64{9.5, 10.5, 11.5}, closes)
}

func TestHistoricalFailureIsEmpty(t *testing.T) {
	g, _ := newGateway(t)

	closes := g.Historical(context.Background(), "MISSING", "1y")
	require.NotNil(t, closes)
	assert.Empty(t, closes)
	assert.Empty(t, g.Historical(context.Background(), "  ", "1y"))
}

func TestHistoricalUsesFreshStore(t *testing.T) {
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	for d := now.AddDate(0, -3, 0); !d.After(now); d = d.AddDate(0, 0, 1) {
		store.bars = append(store.bars, models.PriceBar{Symbol: "AAPL", Date: d, Close: 100})
	}

	g, hits := newGateway(t, WithPriceStore(store, 24*time.Hour))
	g.now = func() time.Time { return now }

	closes := g.Historical(context.Background(), "AAPL", "3mo")
	assert.NotEmpty(t, closes)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestHistoricalRefreshesStaleStore(t *testing.T) {
	store := &fakeStore{}
	g, hits := newGateway(t, WithPriceStore(store, time.Hour))

	closes := g.Historical(context.Background(), "AAPL", "6mo")
	assert.Len(t, closes, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Len(t, store.stored, 3)
	assert.Equal(t, "AAPL", store.stored[0].Symbol)
}

func TestHistoricalBatch(t *testing.T) {
	g, _ := newGateway(t)

	out := g.HistoricalBatch(context.Background(), []string{"aapl", "MSFT", "AAPL", "MISSING", ""}, "1y")
	assert.Len(t, out, 3)
	assert.Len(t, out["AAPL"], 3)
	assert.Len(t, out["MSFT"], 3)
	assert.Empty(t, out["MISSING"])
}

func TestFundamentals(t *testing.T) {
	g, _ := newGateway(t)

	f := g.Fundamentals(context.Background(), "aapl")
	require.NotNil(t, f)
	assert.Equal(t, "AAPL", f.Symbol)
	assert.Equal(t, "Apple Inc.", f.CompanyName)
	assert.Equal(t, "Technology", f.Sector)
	assert.InDelta(t, 2.5e12, f.MarketCap, 1)
	assert.InDelta(t, 28.5, f.PERatio, 1e-9)
	assert.InDelta(t, 0.5, f.DividendYield, 1e-9)
	assert.InDelta(t, 189.5, f.Price, 1e-9)
	assert.InDelta(t, 55e6, f.Volume, 1)
	assert.InDelta(t, 60e6, f.AvgVolume, 1)
	assert.InDelta(t, 199.62, f.High52W, 1e-9)
	assert.InDelta(t, 164.08, f.Low52W, 1e-9)

	assert.Nil(t, g.Fundamentals(context.Background(), "NONE"))
}

func TestNews(t *testing.T) {
	g, _ := newGateway(t)

	articles := g.News(context.Background(), "AAPL", 10, 0)
	require.Len(t, articles, 3)
	assert.Equal(t, "https://www.nasdaq.com/articles/apple-beats", articles[0].URL)
	assert.Equal(t, "Nov 01, 2024", articles[0].PublishedDate)
	assert.Equal(t, "Zacks", articles[0].Source)
	assert.Equal(t, []string{}, articles[0].Tags)
	assert.Equal(t, "https://example.com/x", articles[1].URL)
	assert.Equal(t, []string{"tech"}, articles[1].Tags)
	assert.Equal(t, "https://www.nasdaq.com/articles/third", articles[2].URL)

	assert.Len(t, g.News(context.Background(), "AAPL", 2, 0), 2)
}

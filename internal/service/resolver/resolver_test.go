package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	xhttp "StockPilot/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T, body string, status int) (*Resolver, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "0", r.URL.Query().Get("newsCount"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := xhttp.NewClient(xhttp.WithFetchDefaults(xhttp.FetchOptions{Retries: 1}))
	return New(client, nil, WithSearchURL(srv.URL)), &hits
}

func TestResolvePrefersNameMatch(t *testing.T) {
	r, _ := newResolver(t, `{"quotes":[
		{"symbol":"APLE","shortname":"Apple Hospitality REIT","quoteType":"EQUITY"},
		{"symbol":"aapl","shortname":"Apple Inc.","longname":"Apple Inc.","quoteType":"EQUITY"}
	]}`, http.StatusOK)

	sym, ok := r.Resolve(context.Background(), "apple inc")
	require.True(t, ok)
	assert.Equal(t, "AAPL", sym)
}

func TestResolveFallsBackToFirstEquity(t *testing.T) {
	r, _ := newResolver(t, `{"quotes":[
		{"symbol":"^GSPC","shortname":"S&P 500","quoteType":"INDEX"},
		{"symbol":"msft","shortname":"Microsoft Corporation","quoteType":"equity"},
		{"symbol":"QQQ","shortname":"Invesco QQQ","quoteType":"ETF"}
	]}`, http.StatusOK)

	sym, ok := r.Resolve(context.Background(), "xyz")
	require.True(t, ok)
	assert.Equal(t, "MSFT", sym)
}

func TestResolveNoTradableCandidate(t *testing.T) {
	r, _ := newResolver(t, `{"quotes":[{"symbol":"BTC-USD","shortname":"Bitcoin","quoteType":"CRYPTOCURRENCY"}]}`, http.StatusOK)

	sym, ok := r.Resolve(context.Background(), "bitcoin")
	assert.False(t, ok)
	assert.Empty(t, sym)
}

func TestResolveEmptyQuerySkipsNetwork(t *testing.T) {
	r, hits := newResolver(t, `{}`, http.StatusOK)

	for _, q := range []string{"", "   ", "\t\n"} {
		sym, ok := r.Resolve(context.Background(), q)
		assert.False(t, ok)
		assert.Empty(t, sym)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestResolveProviderFailure(t *testing.T) {
	r, _ := newResolver(t, `not found`, http.StatusNotFound)
	_, ok := r.Resolve(context.Background(), "apple")
	assert.False(t, ok)

	r, _ = newResolver(t, `{"quotes": "oops"}`, http.StatusOK)
	_, ok = r.Resolve(context.Background(), "apple")
	assert.False(t, ok)
}

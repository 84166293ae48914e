package http

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"StockPilot/pkg/cache"
	"StockPilot/pkg/logger"
)

// Fetch outcomes reported to the observer.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRetry    = "retry"
)

// FetchOptions controls a single FetchJSON or PostJSON call. Zero fields take
// the client defaults.
type FetchOptions struct {
	Headers   map[string]string
	Query     map[string][]string
	SkipCache bool
	Retries   int           // total attempts
	Backoff   time.Duration // base delay, doubled per attempt
	Timeout   time.Duration // per attempt
	TTL       time.Duration // cache lifetime of a successful response
}

// DefaultFetchOptions returns 3 attempts, 800ms backoff, 20s timeout and a one hour TTL.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Retries: 3,
		Backoff: 800 * time.Millisecond,
		Timeout: 20 * time.Second,
		TTL:     time.Hour,
	}
}

func (o FetchOptions) withDefaults(d FetchOptions) FetchOptions {
	if o.Retries <= 0 {
		o.Retries = d.Retries
	}
	if o.Backoff <= 0 {
		o.Backoff = d.Backoff
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.TTL <= 0 {
		o.TTL = d.TTL
	}
	return o
}

// Observer receives one outcome per cache hit, retry, success or final failure.
type Observer func(outcome string)

// WithObserver registers a callback for fetch outcomes (metrics).
func WithObserver(fn Observer) ClientOption {
	return func(c *Client) {
		c.observe = fn
	}
}

// FetchJSON GETs url and returns the raw JSON payload. It never returns an
// error: (nil, false) means every attempt failed or the body was not JSON.
func (c *Client) FetchJSON(ctx context.Context, url string, opts FetchOptions) (json.RawMessage, bool) {
	o := opts.withDefaults(c.defaults)
	useCache := c.cache != nil && !o.SkipCache

	key := cache.RequestKey(url+encodeQuery(o.Query), c.mergedHeaders(o.Headers))
	if useCache {
		var raw json.RawMessage
		if err := c.cache.Get(ctx, key, &raw); err == nil {
			c.report(OutcomeCacheHit)
			return raw, true
		}
	}

	raw, ok := c.withRetry(ctx, &RequestOptions{
		Method:      MethodGet,
		URL:         url,
		Headers:     o.Headers,
		QueryParams: o.Query,
	}, o)
	if !ok {
		return nil, false
	}

	if useCache {
		if err := c.cache.Set(ctx, key, raw, o.TTL); err != nil {
			c.log.Warn("http cache write failed", logger.String("url", url), logger.Error(err))
		}
	}
	return raw, true
}

// PostJSON POSTs body as JSON with the same retry policy as FetchJSON. Responses are never cached.
func (c *Client) PostJSON(ctx context.Context, url string, body interface{}, opts FetchOptions) (json.RawMessage, bool) {
	o := opts.withDefaults(c.defaults)
	return c.withRetry(ctx, &RequestOptions{
		Method:      MethodPost,
		URL:         url,
		Headers:     o.Headers,
		QueryParams: o.Query,
		Body:        body,
	}, o)
}

// ClearCache drops every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Clear(ctx)
}

func (c *Client) withRetry(ctx context.Context, req *RequestOptions, o FetchOptions) (json.RawMessage, bool) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt < o.Retries; attempt++ {
		attempts++
		raw, err := c.attemptOnce(ctx, req, o.Timeout)
		if err == nil {
			c.report(OutcomeSuccess)
			return raw, true
		}
		lastErr = err

		if !c.retryable(ctx, err) || attempt == o.Retries-1 {
			break
		}

		c.report(OutcomeRetry)
		delay := o.Backoff*time.Duration(1<<attempt) + c.jitter()
		c.log.Debug("http retry",
			logger.String("url", req.URL),
			logger.Int("attempt", attempt+1),
			logger.Duration("delay_ms", delay),
			logger.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	c.report(OutcomeFailure)
	c.log.Warn("http fetch failed",
		logger.String("method", req.Method),
		logger.String("url", req.URL),
		logger.Int("attempts", attempts),
		logger.Error(lastErr),
	)
	return nil, false
}

func (c *Client) attemptOnce(ctx context.Context, req *RequestOptions, timeout time.Duration) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var raw json.RawMessage
	if err := c.SendAndParse(attemptCtx, req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// retryable: transport errors, timeouts, 429 and 5xx. Decode errors, other
// 4xx and a cancelled caller context stop immediately.
func (c *Client) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrDecode) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

func (c *Client) mergedHeaders(extra map[string]string) map[string]string {
	merged := make(map[string]string, len(c.headers)+len(extra))
	for k, v := range c.headers {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (c *Client) report(outcome string) {
	if c.observe != nil {
		c.observe(outcome)
	}
}

func encodeQuery(q map[string][]string) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + urlValues(q).Encode()
}

func defaultJitter() time.Duration {
	return 100*time.Millisecond + time.Duration(rand.Int63n(int64(200*time.Millisecond)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

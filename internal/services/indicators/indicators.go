// Package indicators implements the moving-average and momentum indicators
// used by the technical analyst. All functions are pure; a nil result means
// the input was invalid or too short.
package indicators

import (
	"math"

	"StockPilot/internal/domain/models"
)

const (
	DefaultRSIWindow  = 14
	DefaultMACDShort  = 12
	DefaultMACDLong   = 26
	DefaultMACDSignal = 9
)

// Valid reports whether prices is non-empty and every value is finite and strictly positive.
func Valid(prices []float64) bool {
	if len(prices) == 0 {
		return false
	}
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return false
		}
	}
	return true
}

// SMA is the mean of the last window prices.
func SMA(prices []float64, window int) *float64 {
	if window <= 0 || !Valid(prices) || len(prices) < window {
		return nil
	}
	sum := 0.0
	for _, p := range prices[len(prices)-window:] {
		sum += p
	}
	return ptr(sum / float64(window))
}

// EMA is the last value of EMASeries.
func EMA(prices []float64, window int) *float64 {
	series := EMASeries(prices, window)
	if len(series) == 0 {
		return nil
	}
	return ptr(series[len(series)-1])
}

// EMASeries seeds with the SMA of the first window prices and smooths forward
// with k = 2/(window+1). The series has len(prices)-window+1 points.
func EMASeries(prices []float64, window int) []float64 {
	if window <= 0 || !Valid(prices) || len(prices) < window {
		return nil
	}
	return emaSeries(prices, window)
}

// emaSeries skips validation; the MACD line it smooths may be negative.
func emaSeries(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nil
	}
	k := 2.0 / float64(window+1)

	seed := 0.0
	for _, v := range values[:window] {
		seed += v
	}
	seed /= float64(window)

	out := make([]float64, 0, len(values)-window+1)
	out = append(out, seed)
	for _, v := range values[window:] {
		prev := out[len(out)-1]
		out = append(out, v*k+prev*(1-k))
	}
	return out
}

// RSI uses Wilder smoothing. It needs window+1 prices and is 100 when no losses occurred.
func RSI(prices []float64, window int) *float64 {
	if window <= 0 || !Valid(prices) || len(prices) < window+1 {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		gain, loss := change(prices[i-1], prices[i])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)

	for i := window + 1; i < len(prices); i++ {
		gain, loss := change(prices[i-1], prices[i])
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
	}

	if avgLoss == 0 {
		return ptr(100)
	}
	rsi := 100 - 100/(1+avgGain/avgLoss)
	return ptr(math.Max(0, math.Min(100, rsi)))
}

func change(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

// MACD aligns the fast EMA on the slow EMA's first point. All fields are nil
// unless short < long, every window is positive and len(prices) >= long+signal.
func MACD(prices []float64, short, long, signal int) models.MACDResult {
	if short <= 0 || long <= 0 || signal <= 0 || short >= long || len(prices) < long+signal || !Valid(prices) {
		return models.MACDResult{}
	}

	fast := emaSeries(prices, short)
	slow := emaSeries(prices, long)
	offset := len(fast) - len(slow)

	line := make([]float64, len(slow))
	for i := range slow {
		line[i] = fast[i+offset] - slow[i]
	}

	sig := emaSeries(line, signal)
	if len(sig) == 0 {
		return models.MACDResult{}
	}

	m := line[len(line)-1]
	s := sig[len(sig)-1]
	return models.MACDResult{
		MACDLine:   ptr(m),
		SignalLine: ptr(s),
		Histogram:  ptr(m - s),
	}
}

// Compute builds the full indicator set for the technical analyst.
func Compute(prices []float64) models.IndicatorSet {
	set := models.IndicatorSet{
		RSI:    RSI(prices, DefaultRSIWindow),
		MACD:   MACD(prices, DefaultMACDShort, DefaultMACDLong, DefaultMACDSignal),
		SMA50:  SMA(prices, 50),
		SMA200: SMA(prices, 200),
		EMA12:  EMA(prices, 12),
		EMA26:  EMA(prices, 26),
	}
	if Valid(prices) {
		set.CurrentPrice = ptr(prices[len(prices)-1])
	}
	return set
}

func ptr(v float64) *float64 { return &v }

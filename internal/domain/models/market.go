package models

import "time"

// Fundamentals is the company snapshot used by the fundamentals analyst.
type Fundamentals struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
	Price         float64 `json:"price"`
	Volume        float64 `json:"volume"`
	AvgVolume     float64 `json:"avg_volume"`
	High52W       float64 `json:"high_52w"`
	Low52W        float64 `json:"low_52w"`
}

// HasData reports whether at least one numeric field is positive.
func (f *Fundamentals) HasData() bool {
	if f == nil {
		return false
	}
	for _, v := range []float64{f.MarketCap, f.PERatio, f.DividendYield, f.Price, f.Volume, f.AvgVolume, f.High52W, f.Low52W} {
		if v > 0 {
			return true
		}
	}
	return false
}

type NewsArticle struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"published_date"`
	Source        string   `json:"source"`
	Tags          []string `json:"tags"`
}

// PriceBar is one daily OHLCV bar.
type PriceBar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Closes extracts closing prices in bar order.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, 0, len(bars))
	for _, b := range bars {
		out = append(out, b.Close)
	}
	return out
}

type MACDResult struct {
	MACDLine   *float64 `json:"macd_line"`
	SignalLine *float64 `json:"signal_line"`
	Histogram  *float64 `json:"histogram"`
}

// IndicatorSet holds the technical indicators; a nil field means not enough data.
type IndicatorSet struct {
	RSI          *float64   `json:"rsi"`
	MACD         MACDResult `json:"macd"`
	SMA50        *float64   `json:"sma_50"`
	SMA200       *float64   `json:"sma_200"`
	EMA12        *float64   `json:"ema_12"`
	EMA26        *float64   `json:"ema_26"`
	CurrentPrice *float64   `json:"current_price"`
}

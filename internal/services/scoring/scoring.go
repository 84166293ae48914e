// Package scoring maps raw analyst inputs onto 0-100 scores where 50 is neutral.
package scoring

import (
	"math"
	"strings"

	"StockPilot/internal/domain/models"
)

const neutral = models.NeutralScore

// FundamentalsScore sums tiered points for size, valuation, yield, liquidity
// and the position inside the 52-week range.
func FundamentalsScore(f *models.Fundamentals) float64 {
	if !f.HasData() {
		return neutral
	}

	score := 0.0

	if mc := f.MarketCap; mc > 0 {
		switch {
		case mc >= 10e9:
			score += 25
		case mc >= 2e9:
			score += 15 + (mc-2e9)/8e9*10
		default:
			score += math.Max(5, mc/2e9*15)
		}
	}

	if pe := f.PERatio; pe > 0 {
		switch {
		case pe >= 15 && pe <= 25:
			score += 20
		case (pe >= 10 && pe < 15) || (pe > 25 && pe <= 35):
			score += 15
		case (pe >= 5 && pe < 10) || (pe > 35 && pe <= 50):
			score += 10
		default:
			score += 5
		}
	}

	if dy := f.DividendYield; dy > 0 {
		switch {
		case dy >= 2 && dy <= 6:
			score += 15
		case (dy >= 1 && dy < 2) || (dy > 6 && dy <= 8):
			score += 10
		case dy > 8:
			score += 5
		default:
			score += 3
		}
	}

	if f.Volume > 0 && f.AvgVolume > 0 {
		switch ratio := f.Volume / f.AvgVolume; {
		case ratio >= 1.5:
			score += 15
		case ratio >= 1.2:
			score += 12
		case ratio >= 0.8:
			score += 8
		default:
			score += 5
		}
	}

	if f.Price > 0 && f.High52W > 0 && f.Low52W > 0 && f.High52W > f.Low52W {
		score += (f.Price - f.Low52W) / (f.High52W - f.Low52W) * 25
	}

	return clamp(score)
}

// TechnicalScore starts at 50 and applies each rule whose inputs are present.
func TechnicalScore(ind models.IndicatorSet) float64 {
	score := neutral

	if r := ind.RSI; r != nil {
		switch {
		case *r < 30:
			score += 20
		case *r > 70:
			score -= 20
		case *r >= 40 && *r <= 60:
			score += 5
		}
	}

	if m, s := ind.MACD.MACDLine, ind.MACD.SignalLine; m != nil && s != nil {
		if *m > *s {
			score += 15
		} else {
			score -= 15
		}
	}
	if h := ind.MACD.Histogram; h != nil {
		if *h > 0 {
			score += 5
		} else {
			score -= 5
		}
	}

	if ind.SMA50 != nil && ind.SMA200 != nil {
		if *ind.SMA50 > *ind.SMA200 {
			score += 15
		} else {
			score -= 15
		}
	}

	if ind.CurrentPrice != nil && ind.SMA50 != nil {
		if *ind.CurrentPrice > *ind.SMA50 {
			score += 10
		} else {
			score -= 10
		}
	}

	return clamp(score)
}

// SentimentCounts returns how many lexicon keywords hit across all articles.
// A keyword counts at most once per article.
func SentimentCounts(articles []models.NewsArticle) (positive, negative int) {
	for _, a := range articles {
		text := articleText(a)
		positive += countMatches(text, PositiveKeywords)
		negative += countMatches(text, NegativeKeywords)
	}
	return positive, negative
}

// SentimentScore is the positive share of keyword hits, or 50 with no hits.
func SentimentScore(articles []models.NewsArticle) float64 {
	pos, neg := SentimentCounts(articles)
	if pos+neg == 0 {
		return neutral
	}
	return clamp(float64(pos) / float64(pos+neg) * 100)
}

// NewsScore weights high-impact phrases heavier than generic keywords.
func NewsScore(articles []models.NewsArticle) float64 {
	if len(articles) == 0 {
		return neutral
	}

	score := neutral
	for _, a := range articles {
		text := articleText(a)
		score += 10 * float64(countMatches(text, HighImpactPositive))
		score -= 12 * float64(countMatches(text, HighImpactNegative))
		score += 2 * float64(countMatches(text, PositiveKeywords))
		score -= 2 * float64(countMatches(text, NegativeKeywords))
	}
	return clamp(score)
}

func articleText(a models.NewsArticle) string {
	return strings.ToLower(a.Title + " " + a.Summary)
}

func countMatches(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return neutral
	}
	return math.Max(0, math.Min(100, v))
}

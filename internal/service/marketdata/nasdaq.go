package marketdata

import (
	"encoding/json"
	"fmt"
	"strings"

	"StockPilot/internal/domain/models"
	"StockPilot/pkg/util"
)

const (
	DefaultNasdaqAPIURL  = "https://api.nasdaq.com/api"
	DefaultNasdaqNewsURL = "https://www.nasdaq.com/api/news/topic/articlebysymbol"
	nasdaqSite           = "https://www.nasdaq.com"
)

type summaryField struct {
	Label string          `json:"label"`
	Value json.RawMessage `json:"value"`
}

// text returns the value as a string whether the provider sent a string or a number.
func (f summaryField) text() string {
	if len(f.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(f.Value, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(f.Value))
}

type summaryResponse struct {
	Data *struct {
		Symbol      string                  `json:"symbol"`
		SummaryData map[string]summaryField `json:"summaryData"`
	} `json:"data"`
}

func parseSummary(symbol string, raw []byte) (*models.Fundamentals, error) {
	var resp summaryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if resp.Data == nil || len(resp.Data.SummaryData) == 0 {
		return nil, ErrNoData
	}

	sd := resp.Data.SummaryData
	get := func(key string) string { return sd[key].text() }

	f := &models.Fundamentals{
		Symbol:        strings.ToUpper(symbol),
		CompanyName:   get("CompanyName"),
		Sector:        get("Sector"),
		Industry:      get("Industry"),
		MarketCap:     util.ParseScaled(get("MarketCap")),
		PERatio:       util.ParseNumber(get("PERatio")),
		DividendYield: util.ParseNumber(get("Yield")),
		Price:         util.ParseNumber(get("LastSale")),
		Volume:        util.ParseScaled(get("Volume")),
		AvgVolume:     util.ParseScaled(get("AverageVolume")),
		High52W:       util.ParseNumber(get("High52Weeks")),
		Low52W:        util.ParseNumber(get("Low52Weeks")),
	}

	// current payloads carry "$199.62/$164.08" in a single field
	if f.High52W == 0 && f.Low52W == 0 {
		if hl := get("FiftTwoWeekHighLow"); hl != "" {
			if parts := strings.SplitN(hl, "/", 2); len(parts) == 2 {
				f.High52W = util.ParseNumber(parts[0])
				f.Low52W = util.ParseNumber(parts[1])
			}
		}
	}
	if f.Price == 0 {
		f.Price = util.ParseNumber(get("PreviousClose"))
	}
	return f, nil
}

type newsRow struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"published_date"`
	Created       string   `json:"created"`
	Source        string   `json:"source"`
	Publisher     string   `json:"publisher"`
	Tags          []string `json:"tags"`
}

type newsResponse struct {
	Data *struct {
		Rows []newsRow `json:"rows"`
	} `json:"data"`
}

func parseNews(raw []byte) ([]models.NewsArticle, error) {
	var resp newsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode news: %w", err)
	}
	if resp.Data == nil {
		return nil, ErrNoData
	}

	articles := make([]models.NewsArticle, 0, len(resp.Data.Rows))
	for _, row := range resp.Data.Rows {
		a := models.NewsArticle{
			Title:         row.Title,
			Summary:       row.Summary,
			URL:           absoluteURL(row.URL),
			PublishedDate: firstNonEmpty(row.PublishedDate, row.Created),
			Source:        firstNonEmpty(row.Source, row.Publisher),
			Tags:          row.Tags,
		}
		if a.Tags == nil {
			a.Tags = []string{}
		}
		articles = append(articles, a)
	}
	return articles, nil
}

func absoluteURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return nasdaqSite + u
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

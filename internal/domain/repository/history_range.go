package repository

import "time"

// HistoryRange is a provider range bucket for daily history.
type HistoryRange string

const (
	Range1mo HistoryRange = "1mo"
	Range3mo HistoryRange = "3mo"
	Range6mo HistoryRange = "6mo"
	Range1y  HistoryRange = "1y"
	Range2y  HistoryRange = "2y"
	Range5y  HistoryRange = "5y"
)

var rangeMonths = []struct {
	r      HistoryRange
	months int
}{
	{Range1mo, 1},
	{Range3mo, 3},
	{Range6mo, 6},
	{Range1y, 12},
	{Range2y, 24},
	{Range5y, 60},
}

// RangeForMonths returns the smallest range covering months, capped at 5y.
func RangeForMonths(months int) HistoryRange {
	for _, rm := range rangeMonths {
		if months <= rm.months {
			return rm.r
		}
	}
	return Range5y
}

// Months returns the month count of r, or 3 for an unknown range.
func (r HistoryRange) Months() int {
	for _, rm := range rangeMonths {
		if rm.r == r {
			return rm.months
		}
	}
	return 3
}

// Since returns the first day covered by r when counted back from now.
func (r HistoryRange) Since(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, -r.Months(), 0)
}

package marketdata

import (
	"testing"

	"StockPilot/internal/domain/repository"
)

func TestParsePeriodMonths(t *testing.T) {
	cases := map[string]int{
		"3mo":   3,
		"6m":    6,
		"1y":    12,
		"2Y":    24,
		"90d":   3,
		"15d":   1,
		"365d":  12,
		"":      3,
		"abc":   3,
		"0mo":   3,
		"-2y":   3,
		"1.5y":  3,
		" 6mo ": 6,
		"mo":    3,
		"max":   60,
		" MAX ": 60,
	}
	for in, want := range cases {
		if got := ParsePeriodMonths(in); got != want {
			t.Fatalf("ParsePeriodMonths(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParsePeriodMonthsOverflow(t *testing.T) {
	// 768614336404564651*12 wraps past math.MaxInt
	if got := ParsePeriodMonths("768614336404564651y"); got != 3 {
		t.Fatalf("overflowing year count = %d, want 3", got)
	}
}

func TestMaxPeriodUsesLongestRange(t *testing.T) {
	if got := repository.RangeForMonths(ParsePeriodMonths("max")); got != repository.Range5y {
		t.Fatalf("range for max = %s, want %s", got, repository.Range5y)
	}
}

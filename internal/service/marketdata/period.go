package marketdata

import (
	"math"
	"strconv"
	"strings"

	"StockPilot/internal/domain/repository"
)

const defaultPeriodMonths = 3

// ParsePeriodMonths converts "6mo", "6m", "2y" or "90d" into a month count.
// "max" is the longest provider range (5y). Anything it cannot read,
// including zero, negative or overflowing amounts, yields 3.
func ParsePeriodMonths(period string) int {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "max" {
		return repository.Range5y.Months()
	}

	var unit string
	for _, suffix := range []string{"mo", "m", "y", "d"} {
		if strings.HasSuffix(p, suffix) {
			unit = suffix
			p = strings.TrimSuffix(p, suffix)
			break
		}
	}
	if unit == "" {
		return defaultPeriodMonths
	}

	n, err := strconv.Atoi(p)
	if err != nil || n <= 0 {
		return defaultPeriodMonths
	}

	switch unit {
	case "y":
		if n > math.MaxInt/12 {
			return defaultPeriodMonths
		}
		return n * 12
	case "d":
		if m := n / 30; m > 1 {
			return m
		}
		return 1
	default:
		return n
	}
}

package util

import (
	"math"
	"strconv"
	"strings"
)

var (
	numberCleaner = strings.NewReplacer("$", "", ",", "", "%", "")
	emptyNumbers  = map[string]bool{"": true, "n/a": true, "na": true, "--": true, "null": true}
	scaleSuffixes = map[byte]float64{'T': 1e12, 'B': 1e9, 'M': 1e6, 'K': 1e3}
)

// ParseNumber reads display values such as "$1,234.50", "3.2%" or "-0.45".
// Placeholders (n/a, --, null, empty) and garbage yield 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(numberCleaner.Replace(s))
	if emptyNumbers[strings.ToLower(s)] {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseScaled is ParseNumber plus T/B/M/K magnitude suffixes ("$2.5T", "830M").
func ParseScaled(s string) float64 {
	s = strings.TrimSpace(numberCleaner.Replace(s))
	if s == "" {
		return 0
	}
	upper := strings.ToUpper(s)
	if mult, ok := scaleSuffixes[upper[len(upper)-1]]; ok {
		return ParseNumber(upper[:len(upper)-1]) * mult
	}
	return ParseNumber(s)
}

package scoring

var (
	PositiveKeywords = []string{
		"beat", "beats", "surge", "record", "raise", "upgraded", "profit",
		"growth", "strong", "upgrade", "bullish", "outperform", "buy",
		"partnership", "deal", "contract", "expansion", "innovation",
	}
	NegativeKeywords = []string{
		"miss", "drop", "downgrade", "lawsuit", "probe", "recession",
		"weak", "cut", "recall", "layoff", "bearish", "underperform",
		"sell", "decline", "loss", "bankruptcy", "investigation",
	}
	HighImpactPositive = []string{
		"beat earnings", "contract win", "partnership", "acquisition",
		"record revenue", "guidance raise", "dividend increase",
	}
	HighImpactNegative = []string{
		"guidance cut", "sec probe", "regulatory action", "recall",
		"lawsuit filed", "earnings miss", "downgrade",
	}
)

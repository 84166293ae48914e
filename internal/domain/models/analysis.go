package models

type Stance string

const (
	StanceBullish Stance = "bullish"
	StanceNeutral Stance = "neutral"
	StanceBearish Stance = "bearish"
)

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// NeutralScore is the value substituted for any missing or failed signal.
const NeutralScore = 50.0

// Analyst names, also used as keys of AnalystErrors.
const (
	AnalystFundamentals = "fundamentals"
	AnalystTechnical    = "technical"
	AnalystSentiment    = "sentiment"
	AnalystNews         = "news"
)

// AnalystScores is the bundle of the four 0-100 signals.
type AnalystScores struct {
	Fundamentals float64 `json:"fundamentals_score"`
	Technical    float64 `json:"technical_score"`
	Sentiment    float64 `json:"sentiment_score"`
	News         float64 `json:"news_score"`
}

func NeutralScores() AnalystScores {
	return AnalystScores{
		Fundamentals: NeutralScore,
		Technical:    NeutralScore,
		Sentiment:    NeutralScore,
		News:         NeutralScore,
	}
}

// Set stores score under the analyst name. Unknown names are ignored.
func (s *AnalystScores) Set(analyst string, score float64) {
	switch analyst {
	case AnalystFundamentals:
		s.Fundamentals = score
	case AnalystTechnical:
		s.Technical = score
	case AnalystSentiment:
		s.Sentiment = score
	case AnalystNews:
		s.News = score
	}
}

type ResearchAssessment struct {
	Researcher string   `json:"researcher"`
	Stance     Stance   `json:"stance"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale"`
	Factors    []string `json:"factors"`
}

type ConsensusBreakdown struct {
	BullScore        float64 `json:"bull_score"`
	BearScore        float64 `json:"bear_score"`
	BearDamping      float64 `json:"bear_damping"`
	DampenedBear     float64 `json:"dampened_bear"`
	RawNet           float64 `json:"raw_net"`
	BullConfidence   float64 `json:"bull_confidence"`
	BearConfidence   float64 `json:"bear_confidence"`
	ConfidenceGap    float64 `json:"confidence_gap"`
	BullishThreshold float64 `json:"bullish_threshold"`
	BearishThreshold float64 `json:"bearish_threshold"`
}

type ConsensusAssessment struct {
	NetScore   float64            `json:"net_score"`
	Stance     Stance             `json:"stance"`
	Confidence float64            `json:"confidence"`
	Rationale  string             `json:"rationale"`
	Breakdown  ConsensusBreakdown `json:"breakdown"`
}

type RiskMetrics struct {
	MaxExposure         float64 `json:"max_exposure"`
	ActualExposure      float64 `json:"actual_exposure"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	ScoreMagnitude      float64 `json:"score_magnitude"`
	SizingFactor        float64 `json:"sizing_factor"`
}

// TradingDecision is the final recommendation. Action HOLD holds exactly when PositionSize is 0.
type TradingDecision struct {
	Action       Action      `json:"action"`
	PositionSize float64     `json:"position_size"`
	Confidence   float64     `json:"confidence"`
	Stance       Stance      `json:"stance"`
	NetScore     float64     `json:"net_score"`
	Rationale    string      `json:"rationale"`
	RiskMetrics  RiskMetrics `json:"risk_metrics"`
}

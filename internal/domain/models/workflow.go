package models

import "time"

type WorkflowState string

const (
	StateValidating        WorkflowState = "validating"
	StateAnalyzing         WorkflowState = "analyzing"
	StateResearching       WorkflowState = "researching"
	StateConsensusBuilding WorkflowState = "consensus_building"
	StateDeciding          WorkflowState = "deciding"
	StateCompleted         WorkflowState = "completed"
	StateFailed            WorkflowState = "failed"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Audit event names.
const (
	EventWorkflowInitiated = "workflow_initiated"
	EventTickerValidation  = "ticker_validation"
	EventAnalystExecution  = "analyst_execution"
	EventResearchExecution = "research_execution"
	EventConsensusBuilding = "consensus_building"
	EventTradingDecision   = "trading_decision"
	EventWorkflowCompleted = "workflow_completed"
	EventWorkflowFailed    = "workflow_failed"
)

type AuditEvent struct {
	Timestamp  time.Time              `json:"timestamp"`
	Event      string                 `json:"event"`
	WorkflowID string                 `json:"workflow_id"`
	State      WorkflowState          `json:"state"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

type ResearchBundle struct {
	Bull      ResearchAssessment  `json:"bull"`
	Bear      ResearchAssessment  `json:"bear"`
	Consensus ConsensusAssessment `json:"consensus"`
}

type TickerValidation struct {
	Symbol      string   `json:"symbol"`
	Valid       bool     `json:"valid"`
	Message     string   `json:"message"`
	CompanyName string   `json:"company_name,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// WorkflowResult is returned by every pipeline run, completed or failed.
type WorkflowResult struct {
	WorkflowID         string            `json:"workflow_id"`
	Status             string            `json:"status"`
	Phase              string            `json:"phase,omitempty"`
	Error              string            `json:"error,omitempty"`
	Suggestions        []string          `json:"suggestions,omitempty"`
	Query              string            `json:"query"`
	Ticker             string            `json:"ticker,omitempty"`
	CompanyName        string            `json:"company_name,omitempty"`
	AnalystScores      *AnalystScores    `json:"analyst_scores,omitempty"`
	AnalystErrors      map[string]string `json:"analyst_errors,omitempty"`
	ResearchAssessment *ResearchBundle   `json:"research_assessment,omitempty"`
	TradingDecision    *TradingDecision  `json:"trading_decision,omitempty"`
	ExecutiveSummary   string            `json:"executive_summary,omitempty"`
	AuditTrail         []AuditEvent      `json:"audit_trail"`
	ProcessingTimeMS   int64             `json:"processing_time_ms"`
	Timestamp          time.Time         `json:"timestamp"`
}

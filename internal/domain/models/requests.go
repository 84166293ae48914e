package models

// Transport-facing requests. Kept in domain so the HTTP handler, Kafka handler
// and queue job share one shape.

type PipelineRequest struct {
	Query string `json:"query" validate:"required,min=1,max=100"`
}

type ResolveRequest struct {
	Q string `query:"q" json:"q" validate:"required,max=100"`
}

// AnalysisRequest arrives on the requests topic and as a queue job payload.
type AnalysisRequest struct {
	Query     string `json:"query" validate:"required,max=100"`
	RequestID string `json:"request_id"`
}

// AnalysisResponse is published on the results topic.
type AnalysisResponse struct {
	RequestID string          `json:"request_id"`
	Result    *WorkflowResult `json:"result"`
}

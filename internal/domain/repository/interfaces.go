package repository

import (
	"context"
	"time"

	"StockPilot/internal/domain/models"
)

// PriceStore keeps daily bars so repeated history requests skip the provider.
type PriceStore interface {
	Init(ctx context.Context) error
	// Bars returns bars for symbol with Date >= from, oldest first.
	Bars(ctx context.Context, symbol string, from time.Time) ([]models.PriceBar, error)
	StoreBars(ctx context.Context, bars []models.PriceBar) error
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher fans workflow output out to other systems (Kafka, websocket).
type EventPublisher interface {
	PublishAudit(ctx context.Context, event models.AuditEvent) error
	PublishResult(ctx context.Context, requestID string, result *models.WorkflowResult) error
}

type Metrics interface {
	RecordPipelineRun(status string, seconds float64)
	RecordPhaseLatency(phase string, seconds float64)
	RecordAnalystFailure(analyst string)
	RecordError(kind string)
}

package repository

import (
	"context"

	"StockPilot/internal/domain/models"
	domrepo "StockPilot/internal/domain/repository"
)

// MessageWriter is satisfied by *kafka.Producer.
type MessageWriter interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaEventPublisher writes audit events keyed by workflow id and results
// keyed by request id.
type KafkaEventPublisher struct {
	w            MessageWriter
	auditTopic   string
	resultsTopic string
}

func NewKafkaEventPublisher(w MessageWriter, auditTopic, resultsTopic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{w: w, auditTopic: auditTopic, resultsTopic: resultsTopic}
}

func (p *KafkaEventPublisher) PublishAudit(ctx context.Context, ev models.AuditEvent) error {
	if p.auditTopic == "" {
		return nil
	}
	return p.w.Publish(ctx, p.auditTopic, []byte(ev.WorkflowID), ev)
}

func (p *KafkaEventPublisher) PublishResult(ctx context.Context, requestID string, res *models.WorkflowResult) error {
	if p.resultsTopic == "" {
		return nil
	}
	return p.w.Publish(ctx, p.resultsTopic, []byte(requestID), models.AnalysisResponse{
		RequestID: requestID,
		Result:    res,
	})
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

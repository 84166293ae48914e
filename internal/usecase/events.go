package usecase

import (
	"context"
	"errors"

	"StockPilot/internal/domain/models"
	domrepo "StockPilot/internal/domain/repository"
)

// EventFanout forwards every event to all publishers and joins their errors.
type EventFanout []domrepo.EventPublisher

func NewEventFanout(pubs ...domrepo.EventPublisher) EventFanout {
	out := make(EventFanout, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f EventFanout) PublishAudit(ctx context.Context, event models.AuditEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishAudit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f EventFanout) PublishResult(ctx context.Context, requestID string, result *models.WorkflowResult) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishResult(ctx, requestID, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ domrepo.EventPublisher = EventFanout(nil)

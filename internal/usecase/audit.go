package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockPilot/internal/domain/models"
	domrepo "StockPilot/internal/domain/repository"
	"StockPilot/pkg/logger"
)

// auditTrail collects the events of one workflow and forwards each of them to
// the publisher as it is recorded. Only the coordinator goroutine writes to it.
type auditTrail struct {
	workflowID string
	state      models.WorkflowState
	events     []models.AuditEvent
	pub        domrepo.EventPublisher
	log        *logger.Logger
	now        func() time.Time
}

func (t *auditTrail) transition(state models.WorkflowState) {
	t.state = state
}

func (t *auditTrail) record(ctx context.Context, event string, details map[string]interface{}) {
	ev := models.AuditEvent{
		Timestamp:  t.now().UTC(),
		Event:      event,
		WorkflowID: t.workflowID,
		State:      t.state,
		Details:    details,
	}
	t.events = append(t.events, ev)

	if t.pub == nil {
		return
	}
	if err := t.pub.PublishAudit(ctx, ev); err != nil {
		t.log.Warn("audit publish failed",
			logger.String("workflow_id", t.workflowID),
			logger.String("event", event),
			logger.Error(err))
	}
}

var commonTickers = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX"}

// TickerSuggestions lists well-known symbols that contain the query or are
// contained in it. With no match the first five are returned.
func TickerSuggestions(query string) []string {
	q := strings.ToUpper(strings.TrimSpace(query))

	var out []string
	if q != "" {
		for _, t := range commonTickers {
			if strings.Contains(t, q) || strings.Contains(q, t) {
				out = append(out, t)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, commonTickers[:5]...)
	}
	return out
}

func executiveSummary(c models.ConsensusAssessment, d models.TradingDecision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis recommends %s", d.Action)
	if d.Action != models.ActionHold {
		fmt.Fprintf(&b, " with %.1f%% portfolio allocation", d.PositionSize)
	}
	fmt.Fprintf(&b, ". Research consensus is %s with net score of %.1f and %.0f%% confidence. ", c.Stance, c.NetScore, c.Confidence)

	switch c.Stance {
	case models.StanceBullish:
		b.WriteString("Positive fundamentals and sentiment support upside potential.")
	case models.StanceBearish:
		b.WriteString("Risk factors and negative signals suggest caution.")
	default:
		b.WriteString("Mixed signals warrant neutral positioning.")
	}
	return b.String()
}

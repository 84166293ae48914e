package repository

import (
	"context"
	"errors"
	"testing"

	"StockPilot/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	topic string
	key   string
	value interface{}
}

type fakeWriter struct {
	sent []sentMessage
	err  error
}

func (w *fakeWriter) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	w.sent = append(w.sent, sentMessage{topic: topic, key: string(key), value: value})
	return w.err
}

func TestKafkaEventPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaEventPublisher(w, "analysis.audit", "analysis.results")

	ev := models.AuditEvent{Event: models.EventWorkflowInitiated, WorkflowID: "analysis_1"}
	require.NoError(t, p.PublishAudit(context.Background(), ev))

	res := &models.WorkflowResult{WorkflowID: "analysis_1", Status: models.StatusCompleted}
	require.NoError(t, p.PublishResult(context.Background(), "req-9", res))

	require.Len(t, w.sent, 2)
	assert.Equal(t, sentMessage{topic: "analysis.audit", key: "analysis_1", value: ev}, w.sent[0])
	assert.Equal(t, "analysis.results", w.sent[1].topic)
	assert.Equal(t, "req-9", w.sent[1].key)
	assert.Equal(t, models.AnalysisResponse{RequestID: "req-9", Result: res}, w.sent[1].value)
}

func TestKafkaEventPublisherSkipsEmptyTopics(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaEventPublisher(w, "", "")

	assert.NoError(t, p.PublishAudit(context.Background(), models.AuditEvent{}))
	assert.NoError(t, p.PublishResult(context.Background(), "r", nil))
	assert.Empty(t, w.sent)
}

func TestKafkaEventPublisherError(t *testing.T) {
	boom := errors.New("leader not available")
	p := NewKafkaEventPublisher(&fakeWriter{err: boom}, "a", "r")
	assert.ErrorIs(t, p.PublishAudit(context.Background(), models.AuditEvent{}), boom)
}

func TestPriceQueries(t *testing.T) {
	ddl := PriceSchema("bars_test")
	require.Len(t, ddl, 1)
	assert.Contains(t, ddl[0], "CREATE TABLE IF NOT EXISTS bars_test")
	assert.Contains(t, ddl[0], "ReplacingMergeTree(updated_at)")
	assert.Contains(t, ddl[0], "ORDER BY (symbol, date)")

	assert.Contains(t, selectBarsQuery("bars_test"), "FROM bars_test FINAL")
	assert.Equal(t, "INSERT INTO bars_test (symbol, date, open, high, low, close, volume)", insertBarsQuery("bars_test"))
}

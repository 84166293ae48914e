package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPilot/internal/domain/models"
	domrepo "StockPilot/internal/domain/repository"
	pkgkafka "StockPilot/pkg/kafka"
	"StockPilot/pkg/logger"
	"StockPilot/pkg/metrics"

	"github.com/google/uuid"
)

// PipelineRunner is the part of Coordinator the transports depend on.
type PipelineRunner interface {
	RunPipeline(ctx context.Context, query string) *models.WorkflowResult
}

var ErrEmptyQuery = errors.New("empty query")

const resultPublishAttempts = 3

// AnalysisRequestHandler consumes {query, request_id} messages, runs the
// pipeline and publishes the result keyed by request id.
type AnalysisRequestHandler struct {
	topic   string
	runner  PipelineRunner
	pub     domrepo.EventPublisher
	metrics domrepo.Metrics
	log     *logger.Logger
	backoff time.Duration // between result publish attempts
}

func NewAnalysisRequestHandler(topic string, runner PipelineRunner, pub domrepo.EventPublisher, m domrepo.Metrics, l *logger.Logger) *AnalysisRequestHandler {
	if l == nil {
		l = logger.NewNop()
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &AnalysisRequestHandler{topic: topic, runner: runner, pub: pub, metrics: m, log: l, backoff: 200 * time.Millisecond}
}

func (h *AnalysisRequestHandler) Topic() string { return h.topic }

// Handle returns an error for undecodable or empty requests so the consumer
// routes them to the DLQ after its retries. Once the pipeline has run the
// message is never failed: a result that cannot be published is logged.
func (h *AnalysisRequestHandler) Handle(ctx context.Context, b []byte) error {
	var req models.AnalysisRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode analysis request: %w", err)
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		h.metrics.RecordError("consumer_validation")
		return ErrEmptyQuery
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	start := time.Now()
	res := h.runner.RunPipeline(ctx, req.Query)

	h.log.Info("analysis request processed",
		logger.String("request_id", req.RequestID),
		logger.String("trace_id", pkgkafka.TraceIDFrom(ctx)),
		logger.String("workflow_id", res.WorkflowID),
		logger.String("status", res.Status),
		logger.Duration("duration_ms", time.Since(start)),
	)

	if h.pub != nil {
		h.publishResult(ctx, req.RequestID, res)
	}
	return nil
}

// publishResult retries only the publish; rerunning the pipeline would
// duplicate its audit events.
func (h *AnalysisRequestHandler) publishResult(ctx context.Context, requestID string, res *models.WorkflowResult) {
	var err error
	for attempt := 1; ; attempt++ {
		if err = h.pub.PublishResult(ctx, requestID, res); err == nil {
			return
		}
		if attempt == resultPublishAttempts {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(h.backoff * time.Duration(attempt)):
		}
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
	}
	h.metrics.RecordError("result_publish")
	h.log.Error("analysis result publish failed",
		logger.String("request_id", requestID),
		logger.String("workflow_id", res.WorkflowID),
		logger.Int("attempts", resultPublishAttempts),
		logger.Error(err))
}

var _ pkgkafka.MessageHandler = (*AnalysisRequestHandler)(nil)

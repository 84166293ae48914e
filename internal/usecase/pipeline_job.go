package usecase

import (
	"context"
	"fmt"
	"strings"

	"StockPilot/internal/domain/models"
	domrepo "StockPilot/internal/domain/repository"
	"StockPilot/pkg/logger"
	"StockPilot/pkg/queue"
)

// JobTypePipeline routes queued analysis requests to PipelineJob.
const JobTypePipeline = "pipeline.run"

// JobResults stores a job's output under its message id.
type JobResults interface {
	SetResult(ctx context.Context, id string, result interface{}) error
}

// PipelineJob runs queued analysis requests. The result is stored with the
// job status and published like a Kafka-sourced result.
type PipelineJob struct {
	runner  PipelineRunner
	results JobResults
	pub     domrepo.EventPublisher
	log     *logger.Logger
}

func NewPipelineJob(runner PipelineRunner, results JobResults, pub domrepo.EventPublisher, l *logger.Logger) *PipelineJob {
	if l == nil {
		l = logger.NewNop()
	}
	return &PipelineJob{runner: runner, results: results, pub: pub, log: l}
}

func (j *PipelineJob) Name() string { return "pipeline_job" }
func (j *PipelineJob) Type() string { return JobTypePipeline }

func (j *PipelineJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.AnalysisRequest](payload)
	if err != nil {
		return fmt.Errorf("pipeline job payload: %w", err)
	}
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}

	id := queue.MessageID(ctx)
	if req.RequestID == "" {
		req.RequestID = id
	}

	res := j.runner.RunPipeline(ctx, req.Query)

	if j.results != nil && id != "" {
		if err := j.results.SetResult(ctx, id, res); err != nil {
			return fmt.Errorf("store result %s: %w", id, err)
		}
	}
	if j.pub != nil {
		if err := j.pub.PublishResult(ctx, req.RequestID, res); err != nil {
			j.log.Warn("pipeline job result publish failed",
				logger.String("job_id", id),
				logger.String("request_id", req.RequestID),
				logger.Error(err))
		}
	}
	return nil
}

var _ queue.Job = (*PipelineJob)(nil)

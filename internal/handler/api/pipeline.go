package api

import (
	"context"
	"errors"
	"strings"
	"time"

	models "StockPilot/internal/domain/models"
	"StockPilot/internal/service/ratelimit"
	"StockPilot/internal/usecase"
	xhttp "StockPilot/pkg/http"
	xlogger "StockPilot/pkg/logger"
	"StockPilot/pkg/queue"

	"github.com/labstack/echo/v4"
)

// Pipeline is the slice of the coordinator the HTTP surface needs.
type Pipeline interface {
	RunPipeline(ctx context.Context, query string) *models.WorkflowResult
	ResolveAndValidateTicker(ctx context.Context, query string) models.TickerValidation
}

type CacheClearer interface {
	ClearCache(ctx context.Context) error
}

// PipelineHandler serves the analysis endpoints under /api/v1.
type PipelineHandler struct {
	logger  *xlogger.Logger
	core    Pipeline
	cache   CacheClearer
	jobs    queue.QueueService
	stream  *StreamHub
	limiter *ratelimit.Limiter
}

type PipelineHandlerOption func(*PipelineHandler)

// WithJobs enables the async endpoints.
func WithJobs(q queue.QueueService) PipelineHandlerOption {
	return func(h *PipelineHandler) { h.jobs = q }
}

func WithStream(s *StreamHub) PipelineHandlerOption {
	return func(h *PipelineHandler) { h.stream = s }
}

func WithRateLimiter(l *ratelimit.Limiter) PipelineHandlerOption {
	return func(h *PipelineHandler) { h.limiter = l }
}

func NewPipelineHandler(logger *xlogger.Logger, core Pipeline, cache CacheClearer, opts ...PipelineHandlerOption) *PipelineHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	h := &PipelineHandler{logger: logger, core: core, cache: cache}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *PipelineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1", h.rateLimit)
	g.POST("/pipeline", h.Run)
	g.POST("/pipeline/async", h.Enqueue)
	g.GET("/pipeline/jobs/:id", h.JobStatus)
	g.GET("/tickers/resolve", h.Resolve)
	g.DELETE("/cache", h.ClearCache)
	if h.stream != nil {
		e.GET("/api/v1/pipeline/stream", h.stream.Serve)
	}
}

func (h *PipelineHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP()) {
			h.logger.Warn("rate limited", xlogger.String("remote", c.RealIP()), xlogger.String("route", c.Path()))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
		}
		return next(c)
	}
}

func (h *PipelineHandler) Run(c echo.Context) error {
	req := &models.PipelineRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}

	start := time.Now()
	res := h.core.RunPipeline(c.Request().Context(), req.Query)
	h.logger.Info("pipeline served",
		xlogger.String("workflow_id", res.WorkflowID),
		xlogger.String("status", string(res.Status)),
		xlogger.Duration("elapsed_ms", time.Since(start)))
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) Resolve(c echo.Context) error {
	req := &models.ResolveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.core.ResolveAndValidateTicker(c.Request().Context(), req.Q))
}

func (h *PipelineHandler) ClearCache(c echo.Context) error {
	if h.cache == nil {
		return xhttp.NoContentResponse(c)
	}
	if err := h.cache.ClearCache(c.Request().Context()); err != nil {
		h.logger.Error("cache clear error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cache clear failed").WithError(err))
	}
	h.logger.Info("response cache cleared")
	return xhttp.NoContentResponse(c)
}

type enqueueResponse struct {
	JobID string `json:"job_id"`
	Query string `json:"query"`
}

func (h *PipelineHandler) Enqueue(c echo.Context) error {
	if h.jobs == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("async pipeline is disabled"))
	}
	req := &models.PipelineRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	query := strings.TrimSpace(req.Query)

	id, err := h.jobs.Enqueue(c.Request().Context(), usecase.JobTypePipeline, models.AnalysisRequest{Query: query})
	if err != nil {
		h.logger.Error("enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue failed").WithError(err))
	}
	return xhttp.AcceptedResponse(c, enqueueResponse{JobID: id, Query: query})
}

func (h *PipelineHandler) JobStatus(c echo.Context) error {
	if h.jobs == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("async pipeline is disabled"))
	}
	id := c.Param("id")
	st, err := h.jobs.Status(c.Request().Context(), id)
	if errors.Is(err, queue.ErrJobNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("job %s not found", id))
	}
	if err != nil {
		h.logger.Error("job status error", xlogger.String("job_id", id), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("job status failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, st)
}

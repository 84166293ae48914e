package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	domrepo "StockPilot/internal/domain/repository"
	"StockPilot/internal/handler/api"
	internalrepo "StockPilot/internal/repository"
	"StockPilot/internal/service/marketdata"
	"StockPilot/internal/service/ratelimit"
	"StockPilot/internal/service/resolver"
	"StockPilot/internal/services/research"
	"StockPilot/internal/services/trader"
	"StockPilot/internal/usecase"
	"StockPilot/pkg/cache"
	pkgch "StockPilot/pkg/clickhouse"
	"StockPilot/pkg/config"
	xhttp "StockPilot/pkg/http"
	pkgkafka "StockPilot/pkg/kafka"
	"StockPilot/pkg/logger"
	"StockPilot/pkg/metrics"
	"StockPilot/pkg/queue"
	"StockPilot/pkg/server"

	"github.com/redis/go-redis/v9"
)

// Optional infrastructure providers return nil when the section is disabled;
// consumers check for nil instead of failing startup.

func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ProvideResponseCache builds the HTTP client cache: file, memory over file,
// or memory over Redis.
func ProvideResponseCache(cfg *config.Config, rc *redis.Client) (cache.Service, error) {
	layered := func(l2 cache.Service) cache.Service {
		return cache.NewLayeredCache(l2,
			cache.WithLayeredMemorySize(cfg.Cache.MemoryItems),
			cache.WithLayeredL1TTL(cfg.Cache.MemoryTTL),
		)
	}

	switch cfg.Cache.Type {
	case "redis":
		if rc == nil {
			return nil, fmt.Errorf("cache.type=redis needs redis.enabled")
		}
		return layered(cache.NewRedisCacheFromClient(rc, cfg.Redis.Prefix+":http")), nil
	default:
		fc, err := cache.NewFileCache(cache.WithFileRoot(cfg.Cache.Dir), cache.WithFileTTL(cfg.Cache.TTL))
		if err != nil {
			return nil, fmt.Errorf("file cache: %w", err)
		}
		if cfg.Cache.Type == "layered" {
			return layered(fc), nil
		}
		return fc, nil
	}
}

func ProvideHTTPClient(cfg *config.Config, store cache.Service, m *metrics.Recorder, l *logger.Logger) *xhttp.Client {
	hc := cfg.HTTPClient
	opts := []xhttp.ClientOption{
		xhttp.WithTimeout(hc.Timeout),
		xhttp.WithCache(store),
		xhttp.WithLogger(l),
		xhttp.WithFetchDefaults(xhttp.FetchOptions{
			Retries: hc.Retries,
			Backoff: hc.Backoff,
			Timeout: hc.Timeout,
			TTL:     cfg.Cache.TTL,
		}),
	}
	if hc.RateLimit > 0 {
		opts = append(opts, xhttp.WithRateLimit(hc.RateLimit, hc.Burst))
	}
	if m != nil {
		opts = append(opts, xhttp.WithObserver(m.RecordFetch))
	}
	return xhttp.NewClient(opts...)
}

func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePriceStore creates the bar table on first use.
func ProvidePriceStore(ch *pkgch.Client, l *logger.Logger) (*internalrepo.CHPriceStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHPriceStore(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

func ProvideGateway(cfg *config.Config, client *xhttp.Client, store *internalrepo.CHPriceStore, l *logger.Logger) *marketdata.Gateway {
	var opts []marketdata.Option
	if store != nil {
		opts = append(opts, marketdata.WithPriceStore(store, cfg.ClickHouse.MaxStaleness))
	}
	return marketdata.NewGateway(client, l, opts...)
}

func ProvideResolver(client *xhttp.Client, l *logger.Logger) *resolver.Resolver {
	return resolver.New(client, l)
}

func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID("stockpilot-"+cfg.Environment),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func ProvideStreamHub(cfg *config.Config, l *logger.Logger) *api.StreamHub {
	return api.NewStreamHub(l, cfg.Server.StreamPing)
}

// ProvideEventPublisher publishes to the websocket hub and, when enabled, Kafka.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, hub *api.StreamHub) domrepo.EventPublisher {
	pubs := []domrepo.EventPublisher{hub}
	if producer != nil {
		pubs = append(pubs, internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topics.Audit, cfg.Kafka.Topics.Results))
	}
	return usecase.NewEventFanout(pubs...)
}

func ProvideCoordinator(
	cfg *config.Config,
	gw *marketdata.Gateway,
	res *resolver.Resolver,
	pub domrepo.EventPublisher,
	m *metrics.Recorder,
	l *logger.Logger,
) *usecase.Coordinator {
	bull, bear, cons := researchParams(cfg)

	return usecase.NewCoordinator(gw, res, l,
		usecase.WithAnalystTimeout(cfg.Pipeline.AnalystTimeout),
		usecase.WithResearcherTimeout(cfg.Pipeline.ResearcherTimeout),
		usecase.WithHistory(cfg.Pipeline.HistoryPeriod, cfg.Pipeline.NewsLimit),
		usecase.WithResearchParams(bull, bear, cons),
		usecase.WithTraderParams(trader.Params{
			MaxPosition:         cfg.Trader.MaxPosition,
			MinPosition:         cfg.Trader.MinPosition,
			ConfidenceThreshold: cfg.Trader.ConfidenceThreshold,
		}),
		usecase.WithEventPublisher(pub),
		usecase.WithMetrics(m),
	)
}

// researchParams overlays the configured research knobs on the calibrated defaults.
func researchParams(cfg *config.Config) (research.BullParams, research.BearParams, research.ConsensusParams) {
	r := cfg.Research

	bull := research.DefaultBullParams()
	bull.OptimismBias = r.OptimismBias
	bull.SentimentBoostRate = r.SentimentBoostRate
	bull.MaxSentimentBoost = r.MaxSentimentBoost

	bear := research.DefaultBearParams()
	bear.VarianceLimit = r.VarianceLimit
	bear.VariancePenalty = r.VariancePenalty

	cons := research.DefaultConsensusParams()
	cons.BearDamping = r.BearDamping
	cons.BullishThreshold = r.BullishThreshold
	cons.ConfidenceSlope = r.ConfidenceSlope
	cons.ConfidenceBase = r.ConfidenceBase

	return bull, bear, cons
}

// ProvideQueue registers the pipeline job on the Redis queue. The coordinator
// already publishes audit events, so the job only publishes the result.
func ProvideQueue(cfg *config.Config, rc *redis.Client, coord *usecase.Coordinator, pub domrepo.EventPublisher, l *logger.Logger) *queue.RedisQueue {
	if !cfg.Queue.Enabled || rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.MaxRetries,
		JobTimeout: cfg.Queue.JobTimeout,
	}, rc, queue.ModeProducerConsumer,
		queue.WithKeyPrefix(cfg.Redis.Prefix+":queue:"+cfg.Queue.Name),
	)
	q.RegisterJob(usecase.NewPipelineJob(coord, q, pub, l))
	return q
}

func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook{}, pkgkafka.LoggingHook{Log: l}))
	return consumer, nil
}

func ProvideAnalysisRequestHandler(cfg *config.Config, coord *usecase.Coordinator, producer *pkgkafka.Producer, pub domrepo.EventPublisher, m *metrics.Recorder, l *logger.Logger) *usecase.AnalysisRequestHandler {
	if producer == nil {
		return nil
	}
	return usecase.NewAnalysisRequestHandler(cfg.Kafka.Topics.Requests, coord, pub, m, l)
}

func ProvidePipelineHandler(
	cfg *config.Config,
	coord *usecase.Coordinator,
	client *xhttp.Client,
	q *queue.RedisQueue,
	hub *api.StreamHub,
	l *logger.Logger,
) *api.PipelineHandler {
	opts := []api.PipelineHandlerOption{
		api.WithStream(hub),
		api.WithRateLimiter(ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateBurst)),
	}
	if q != nil {
		opts = append(opts, api.WithJobs(q))
	}
	return api.NewPipelineHandler(l, coord, client, opts...)
}

func ProvideHTTPServer(cfg *config.Config, h *api.PipelineHandler, l *logger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithSlowThreshold(cfg.Server.SlowRequest),
	)
}

func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.AnalysisRequestHandler,
	q *queue.RedisQueue,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	rc *redis.Client,
	respCache cache.Service,
) *server.App {
	app := server.New(cfg, l, srv)
	if consumer != nil && kh != nil {
		app.WithConsumer(consumer, kh)
	}
	if q != nil {
		app.WithQueue(q)
	}
	if producer != nil {
		app.AddCloser("kafka producer", producer.Close)
	}
	if producer != nil && cfg.Kafka.Topics.Logs != "" {
		// warn and error lines are aggregated and shipped to the log topic
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topics.Logs,
			Publisher:      producer,
		})
		app.AddCloser("log collector", func() error {
			l.RemoveCollector()
			return nil
		})
	}
	if ch != nil {
		app.AddCloser("clickhouse", ch.Close)
	}
	app.AddCloser("response cache", respCache.Close)
	// a redis-backed response cache closes the shared client itself
	if rc != nil && cfg.Cache.Type != "redis" {
		app.AddCloser("redis", rc.Close)
	}
	return app
}

// Toolkit is the pipeline without any transport, used by the CLI.
type Toolkit struct {
	Coordinator *usecase.Coordinator
	HTTP        *xhttp.Client
	closers     []func() error
}

func (t *Toolkit) Close() error {
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProvideLocalPublisher keeps audit events in the result only.
func ProvideLocalPublisher() domrepo.EventPublisher {
	return usecase.NewEventFanout()
}

func ProvideToolkit(
	cfg *config.Config,
	coord *usecase.Coordinator,
	client *xhttp.Client,
	ch *pkgch.Client,
	rc *redis.Client,
	respCache cache.Service,
) *Toolkit {
	t := &Toolkit{Coordinator: coord, HTTP: client}
	if rc != nil && cfg.Cache.Type != "redis" {
		t.closers = append(t.closers, rc.Close)
	}
	t.closers = append(t.closers, respCache.Close)
	if ch != nil {
		t.closers = append(t.closers, ch.Close)
	}
	return t
}

//go:build !wireinject
// +build !wireinject

// Injectors for the provider sets in wire.go, kept in the order wire would
// emit them. Running `go run github.com/google/wire/cmd/wire` in this
// directory regenerates an equivalent file.

package di

import (
	"StockPilot/pkg/config"
	"StockPilot/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	recorder := ProvideMetrics()
	client, err := ProvideRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	service, err := ProvideResponseCache(cfg, client)
	if err != nil {
		return nil, err
	}
	httpClient := ProvideHTTPClient(cfg, service, recorder, logger)
	clickhouseClient, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	chPriceStore, err := ProvidePriceStore(clickhouseClient, logger)
	if err != nil {
		return nil, err
	}
	gateway := ProvideGateway(cfg, httpClient, chPriceStore, logger)
	resolver := ProvideResolver(httpClient, logger)
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	streamHub := ProvideStreamHub(cfg, logger)
	eventPublisher := ProvideEventPublisher(cfg, producer, streamHub)
	coordinator := ProvideCoordinator(cfg, gateway, resolver, eventPublisher, recorder, logger)
	redisQueue := ProvideQueue(cfg, client, coordinator, eventPublisher, logger)
	pipelineHandler := ProvidePipelineHandler(cfg, coordinator, httpClient, redisQueue, streamHub, logger)
	httpServer := ProvideHTTPServer(cfg, pipelineHandler, logger)
	consumer, err := ProvideKafkaConsumer(cfg, logger)
	if err != nil {
		return nil, err
	}
	analysisRequestHandler := ProvideAnalysisRequestHandler(cfg, coordinator, producer, eventPublisher, recorder, logger)
	app := ProvideApp(cfg, logger, httpServer, consumer, analysisRequestHandler, redisQueue, producer, clickhouseClient, client, service)
	return app, nil
}

// InitializeToolkit builds the pipeline for one-shot CLI use: no servers,
// consumers or queues.
func InitializeToolkit(cfg *config.Config) (*Toolkit, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	recorder := ProvideMetrics()
	client, err := ProvideRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	service, err := ProvideResponseCache(cfg, client)
	if err != nil {
		return nil, err
	}
	httpClient := ProvideHTTPClient(cfg, service, recorder, logger)
	clickhouseClient, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	chPriceStore, err := ProvidePriceStore(clickhouseClient, logger)
	if err != nil {
		return nil, err
	}
	gateway := ProvideGateway(cfg, httpClient, chPriceStore, logger)
	resolver := ProvideResolver(httpClient, logger)
	eventPublisher := ProvideLocalPublisher()
	coordinator := ProvideCoordinator(cfg, gateway, resolver, eventPublisher, recorder, logger)
	toolkit := ProvideToolkit(cfg, coordinator, httpClient, clickhouseClient, client, service)
	return toolkit, nil
}

//go:build wireinject
// +build wireinject

package di

import (
	"StockPilot/pkg/config"
	"StockPilot/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideRedisClient,
	ProvideResponseCache,
	ProvideHTTPClient,
	ProvideClickHouseClient,
	ProvidePriceStore,
	ProvideKafkaProducer,
	ProvideKafkaConsumer,
)

var pipelineSet = wire.NewSet(
	ProvideGateway,
	ProvideResolver,
	ProvideCoordinator,
)

var transportSet = wire.NewSet(
	ProvideQueue,
	ProvideAnalysisRequestHandler,
	ProvidePipelineHandler,
	ProvideHTTPServer,
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(infraSet, pipelineSet, transportSet, ProvideStreamHub, ProvideEventPublisher, ProvideApp)
	return &server.App{}, nil
}

// InitializeToolkit builds the pipeline for one-shot CLI use: no servers,
// consumers or queues.
func InitializeToolkit(cfg *config.Config) (*Toolkit, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideRedisClient,
		ProvideResponseCache,
		ProvideHTTPClient,
		ProvideClickHouseClient,
		ProvidePriceStore,
		pipelineSet,
		ProvideLocalPublisher,
		ProvideToolkit,
	)
	return &Toolkit{}, nil
}

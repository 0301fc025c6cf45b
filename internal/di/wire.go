//go:build wireinject
// +build wireinject

package di

import (
	"UniPredict/pkg/config"
	"UniPredict/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideClickHouseClient,
		ProvideCache,

		// Repositories
		ProvideContentStore,
		ProvideSnapshotPublisher,
		ProvideProfiles,
		ProvideHistoryRegistry,

		// Services
		ProvideForecaster,
		ProvideScraper,

		// Use cases
		ProvidePredictor,
		ProvideCollector,

		// HTTP
		ProvideHandlers,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

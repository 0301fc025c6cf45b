//go:build !wireinject
// +build !wireinject

// The injector below is maintained by hand and must follow the provider set
// in wire.go.

package di

import (
	"UniPredict/pkg/config"
	"UniPredict/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	registry := ProvideRegistry()
	producer, err := ProvideKafkaProducer(cfg, registry)
	if err != nil {
		return nil, err
	}
	logger, err := ProvideLogger(cfg, producer)
	if err != nil {
		return nil, err
	}
	v := ProvideProfiles(cfg)
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	historyRegistry, err := ProvideHistoryRegistry(cfg, v, client, logger)
	if err != nil {
		return nil, err
	}
	cutoffForecaster := ProvideForecaster(cfg)
	metrics := ProvideMetrics(registry)
	admissionPredictor := ProvidePredictor(cfg, v, historyRegistry, cutoffForecaster, metrics, logger)
	contentScraper := ProvideScraper(cfg, logger)
	service, err := ProvideCache(cfg)
	if err != nil {
		return nil, err
	}
	contentStore := ProvideContentStore(cfg, service)
	snapshotPublisher := ProvideSnapshotPublisher(cfg, producer)
	contentCollector := ProvideCollector(cfg, contentScraper, contentStore, snapshotPublisher, metrics, logger)
	handler := ProvideHandlers(cfg, logger, admissionPredictor, contentCollector)
	app := ProvideApp(cfg, logger, handler, registry, client, service, snapshotPublisher)
	return app, nil
}

package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	domsvc "UniPredict/internal/domain/service"
	"UniPredict/internal/handler/api"
	internalrepo "UniPredict/internal/repository"
	"UniPredict/internal/service/ratelimit"
	"UniPredict/internal/services/admission"
	"UniPredict/internal/services/scraper"
	"UniPredict/internal/usecase"
	"UniPredict/pkg/cache"
	pkgch "UniPredict/pkg/clickhouse"
	"UniPredict/pkg/config"
	xhttp "UniPredict/pkg/http"
	pkgkafka "UniPredict/pkg/kafka"
	applogger "UniPredict/pkg/logger"
	"UniPredict/pkg/metrics"
	"UniPredict/pkg/server"
)

// ProvideRegistry creates the Prometheus registry shared by every component.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) domrepo.Metrics {
	return metrics.New(reg)
}

// ProvideKafkaProducer creates a Kafka producer. It returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the application logger. Error logs are aggregated and
// shipped to the log topic when a producer is available.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Kafka.LogTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and prepares the merit
// history table. It returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	chc := cfg.History.ClickHouse
	if !chc.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(chc.Host),
		pkgch.WithPort(chc.Port),
		pkgch.WithDatabase(chc.Database),
		pkgch.WithCredentials(chc.User, chc.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(chc.UseHTTP),
		pkgch.WithTimeouts(chc.DialTimeout, chc.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + chc.Database},
		internalrepo.MeritHistorySchema(chc.Database+"."+chc.Table)...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideCache creates the snapshot cache for the configured backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	cc := cfg.Scrape.Cache
	switch cc.Backend {
	case "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cc.MemoryMaxSize),
			cache.WithMemoryTTL(cc.TTL),
		), nil
	case "redis", "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cc.Redis.Addr),
			cache.WithRedisPassword(cc.Redis.Password),
			cache.WithRedisDB(cc.Redis.DB),
			cache.WithRedisPrefix(cc.Redis.Prefix),
			cache.WithRedisTTL(cc.TTL),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cc.Backend == "redis" {
			return rc, nil
		}
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cc.MemoryMaxSize),
		), nil
	default:
		fc, err := cache.NewFileCache(cc.FilePath, cache.WithFileTTL(cc.TTL))
		if err != nil {
			return nil, fmt.Errorf("file cache: %w", err)
		}
		return fc, nil
	}
}

// ProvideContentStore keeps the last good snapshot per source in the cache.
func ProvideContentStore(cfg *config.Config, c cache.Service) domrepo.ContentStore {
	return internalrepo.NewCacheContentStore(c, cfg.Scrape.Cache.TTL)
}

// ProvideSnapshotPublisher ships fresh snapshots to Kafka, or drops them when
// no producer is configured.
func ProvideSnapshotPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.SnapshotPublisher {
	if producer == nil {
		return internalrepo.NopSnapshotPublisher{}
	}
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.SnapshotTopic)
}

// ProvideProfiles converts the university catalog into domain profiles.
func ProvideProfiles(cfg *config.Config) []models.UniversityProfile {
	return internalrepo.ProfilesFromConfig(cfg.Universities)
}

// ProvideHistoryRegistry resolves each university's historical cutoff source.
func ProvideHistoryRegistry(
	cfg *config.Config,
	profiles []models.UniversityProfile,
	ch *pkgch.Client,
	l *applogger.Logger,
) (domrepo.HistoryRegistry, error) {
	opts := []internalrepo.RegistryOption{
		internalrepo.WithDataDir(cfg.History.DataDir),
		internalrepo.WithRegistryLogger(l),
	}
	if ch != nil {
		opts = append(opts, internalrepo.WithClickHouse(ch, cfg.History.ClickHouse.Database+"."+cfg.History.ClickHouse.Table))
	}
	reg, err := internalrepo.NewHistoryRegistry(profiles, opts...)
	if err != nil {
		return nil, fmt.Errorf("history registry: %w", err)
	}
	return reg, nil
}

// ProvideForecaster creates the cutoff forecaster.
func ProvideForecaster(cfg *config.Config) domsvc.CutoffForecaster {
	return admission.NewForecaster(
		admission.WithTrend(admission.Trend(cfg.Prediction.SinglePointTrend)),
		admission.WithReferenceYear(cfg.Prediction.SinglePointReferenceYear),
		admission.WithIndexPolicy(admission.IndexPolicy(cfg.Prediction.IndexAxisPolicy)),
	)
}

// ProvidePredictor creates the admission predictor use case.
func ProvidePredictor(
	cfg *config.Config,
	profiles []models.UniversityProfile,
	history domrepo.HistoryRegistry,
	forecaster domsvc.CutoffForecaster,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.AdmissionPredictor {
	zero := make([]models.TestName, 0, len(cfg.Prediction.AssumeZeroTests))
	for _, t := range cfg.Prediction.AssumeZeroTests {
		zero = append(zero, models.TestName(t))
	}
	return usecase.NewAdmissionPredictor(profiles, history, forecaster, cfg.Prediction.TargetYear,
		usecase.WithPredictorLogger(l),
		usecase.WithPredictorMetrics(m),
		usecase.WithOLevelMatricTotal(cfg.Prediction.OLevelMatricTotal),
		usecase.WithAssumeZeroTests(zero...),
	)
}

// ProvideScraper creates the page scraper with a per-host rate limit.
func ProvideScraper(cfg *config.Config, l *applogger.Logger) domsvc.ContentScraper {
	client := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Scrape.Timeout),
		xhttp.WithUserAgent(cfg.Scrape.UserAgent),
	)
	limiter := ratelimit.New(cfg.Scrape.RatePerSecond, cfg.Scrape.Burst)
	return scraper.New(client, limiter, l)
}

// ProvideCollector creates the content collector use case.
func ProvideCollector(
	cfg *config.Config,
	s domsvc.ContentScraper,
	store domrepo.ContentStore,
	pub domrepo.SnapshotPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.ContentCollector {
	return usecase.NewContentCollector(internalrepo.SourcesFromConfig(cfg.Sources), s, store,
		usecase.WithCollectorLogger(l),
		usecase.WithCollectorMetrics(m),
		usecase.WithSnapshotPublisher(pub),
	)
}

// ProvideHandlers collects the HTTP route groups.
func ProvideHandlers(
	cfg *config.Config,
	l *applogger.Logger,
	predictor *usecase.AdmissionPredictor,
	collector *usecase.ContentCollector,
) xhttp.Handler {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.Handlers{
		api.NewIndexHandler(metricsPath),
		api.NewPredictHandler(l, predictor),
		api.NewContentHandler(l, collector),
	}
}

// ProvideApp creates the application server and registers resources to close on shutdown.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	reg *prometheus.Registry,
	ch *pkgch.Client,
	c cache.Service,
	pub domrepo.SnapshotPublisher,
) *server.App {
	var opts []server.Option
	if cfg.Metrics.Enabled {
		opts = append(opts, server.WithRegistry(reg))
	}
	app := server.New(cfg, l, handler, opts...)

	// Closed in registration order. The snapshot publisher owns the Kafka producer.
	app.OnShutdown("snapshot publisher", pub)
	app.OnShutdown("cache", c)
	if ch != nil {
		app.OnShutdown("clickhouse", ch)
	}
	return app
}

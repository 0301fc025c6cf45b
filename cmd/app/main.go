package main

import (
	"flag"
	"log"
	"os"

	"UniPredict/internal/di"
	"UniPredict/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s target_year=%d universities=%d", cfg.Environment, cfg.Prediction.TargetYear, len(cfg.Universities))

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.History.ClickHouse.Enabled {
		log.Printf("clickhouse: connected and schema ready - db: %s\n", cfg.History.ClickHouse.Database)
	}
	if cfg.Kafka.Enabled {
		log.Printf("kafka: brokers=%v snapshot_topic=%s", cfg.Kafka.Brokers, cfg.Kafka.SnapshotTopic)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

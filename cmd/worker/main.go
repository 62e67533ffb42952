// worker relays committed audit events from the Kafka audit topic to Loki.
// Set AUDIT_KAFKA_BROKERS, AUDIT_KAFKA_TOPIC, AUDIT_KAFKA_GROUP_ID and AUDIT_LOKI_URL.
// The worker opens no store, but config validation still applies (DATABASE_URL, or STORAGE_DRIVER=memory outside production).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"votetrail/backend/internal/config"
	"votetrail/backend/internal/logging"
	"votetrail/backend/internal/telemetry/loki"
	"votetrail/backend/internal/telemetry/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	brokers := cfg.AuditKafkaBrokersList()
	if len(brokers) == 0 {
		logger.Fatal("worker: AUDIT_KAFKA_BROKERS is required")
	}
	sink := loki.NewEmitter(cfg.AuditLokiURL, nil)
	if sink == nil {
		logger.Fatal("worker: AUDIT_LOKI_URL is required")
	}

	reader := relay.NewKafkaReader(brokers, cfg.AuditKafkaTopic, cfg.AuditKafkaGroupID)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker: relaying audit events",
		zap.String("topic", cfg.AuditKafkaTopic),
		zap.String("group", cfg.AuditKafkaGroupID),
		zap.String("loki", cfg.AuditLokiURL),
	)
	if err := relay.New(reader, sink, logger).Run(ctx); err != nil {
		logger.Error("worker: relay stopped", zap.Error(err))
		return
	}
	logger.Info("worker: stopped")
}

// server runs the votetrail HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"votetrail/backend/internal/app"
	"votetrail/backend/internal/config"
	"votetrail/backend/internal/logging"
	"votetrail/backend/internal/server"
	"votetrail/backend/internal/telemetry"
	"votetrail/backend/internal/telemetry/loki"
	telemetryotel "votetrail/backend/internal/telemetry/otel"
	"votetrail/backend/internal/telemetry/producer"
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

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	providers, err := telemetryotel.NewProviders(context.Background(), cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	providers.SetGlobal()

	var otelEmitter telemetry.EventEmitter
	if providers.Exporting {
		otelEmitter = telemetryotel.NewEventEmitter(providers.LoggerProvider)
	}
	var kafkaProducer producer.Producer
	if p := producer.NewKafkaProducer(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic); p != nil {
		kafkaProducer = p
	}
	var lokiEmitter telemetry.EventEmitter
	if e := loki.NewEmitter(cfg.AuditLokiURL, nil); e != nil {
		lokiEmitter = e
	}
	dispatcher := telemetry.NewDispatcher(telemetry.Multi(otelEmitter, kafkaProducer, lokiEmitter), logger)

	opts := app.Options{Migrate: cfg.AutoMigrate}
	if dispatcher != nil {
		opts.Publisher = dispatcher
	}
	a, err := app.New(cfg, logger, opts)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.Deps{
			Votes:          a.Votes,
			Audits:         a.Audits,
			HealthPinger:   a.Pinger(),
			Gatherer:       a.Registry,
			Logger:         logger,
			RequestTimeout: cfg.RequestTimeout,
			ServiceName:    cfg.ServiceName,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.StorageDriver),
			zap.Bool("otlp", providers.Exporting),
			zap.Bool("kafka", kafkaProducer != nil),
			zap.Bool("loki", lokiEmitter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	logger.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), telemetry.ShutdownDrainDuration)
	defer drainCancel()
	if err := dispatcher.Drain(drainCtx); err != nil {
		logger.Warn("audit stream drain timed out", zap.Error(err))
	}
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Warn("kafka producer close", zap.Error(err))
		}
	}
	if err := providers.Shutdown(ctx); err != nil {
		logger.Warn("otel shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
	return nil
}

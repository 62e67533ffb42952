// Package app wires the stores, unit of work, auditor and services selected by config.
package app

import (
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"votetrail/backend/internal/audit"
	auditrepo "votetrail/backend/internal/audit/repository"
	auditservice "votetrail/backend/internal/audit/service"
	"votetrail/backend/internal/config"
	"votetrail/backend/internal/db"
	"votetrail/backend/internal/db/migrate"
	"votetrail/backend/internal/db/uow"
	healthhandler "votetrail/backend/internal/health/handler"
	"votetrail/backend/internal/metrics"
	"votetrail/backend/internal/vote/domain"
	voterepo "votetrail/backend/internal/vote/repository"
	voteservice "votetrail/backend/internal/vote/service"
)

// Options tune New.
type Options struct {
	// Migrate applies the embedded migrations before opening the Postgres store.
	Migrate bool
	// Publisher receives committed audit records (e.g. *telemetry.Dispatcher). Optional.
	Publisher audit.Publisher
}

// App holds the wired services.
type App struct {
	// DB is the Postgres handle; nil for the memory store.
	DB       *sql.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Votes    *voteservice.Service
	Audits   *auditservice.Service
}

// New opens the store selected by cfg and wires the services over it.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	a := &App{Registry: reg, Metrics: m}
	var (
		votes    voterepo.Repository
		audits   auditrepo.Repository
		beginner uow.Beginner
	)
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-memory store; data is lost on exit")
		votes = voterepo.NewMemoryRepository()
		audits = auditrepo.NewMemoryRepository()
		beginner = uow.NopBeginner{}
	} else {
		if opts.Migrate {
			if err := migrate.Run(cfg.DatabaseURL, migrate.Up); err != nil {
				return nil, fmt.Errorf("app: %w", err)
			}
			logger.Info("migrations applied")
		}
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app: open db: %w", err)
		}
		a.DB = conn
		votes = voterepo.NewPostgresRepository(conn)
		audits = auditrepo.NewPostgresRepository(conn)
		beginner = uow.SQLBeginner{DB: conn}
	}

	auditOpts := []audit.Option{audit.WithRecorder(m), audit.WithLogger(logger)}
	if opts.Publisher != nil {
		auditOpts = append(auditOpts, audit.WithPublisher(opts.Publisher))
	}
	auditor := audit.NewAuditor(audits, auditOpts...)
	tracked := voterepo.NewAudited(votes, auditor.Track(domain.EntityName))

	a.Votes = voteservice.NewService(uow.NewRunner(beginner, cfg.TxTimeout), tracked, m)
	a.Audits = auditservice.NewService(audits, m)
	return a, nil
}

// Pinger returns the readiness pinger, or nil for the memory store.
func (a *App) Pinger() healthhandler.Pinger {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

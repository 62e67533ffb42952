// Package server assembles the HTTP router: chi middleware, the vote, audit and health
// handlers, and the Prometheus endpoint.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	audithandler "votetrail/backend/internal/audit/handler"
	healthhandler "votetrail/backend/internal/health/handler"
	"votetrail/backend/internal/server/middleware"
	votehandler "votetrail/backend/internal/vote/handler"
)

// Deps holds the dependencies of the HTTP router.
type Deps struct {
	// Votes serves /votes and /results. Required.
	Votes votehandler.VoteService
	// Audits serves /audits and /audits/report. Required.
	Audits audithandler.AuditService
	// HealthPinger is used by /readyz (e.g. *sql.DB). If nil, readiness skips the DB ping.
	HealthPinger healthhandler.Pinger
	// Gatherer backs /metrics. If nil, /metrics is not mounted.
	Gatherer prometheus.Gatherer
	// Logger is used for request logs and handler errors. If nil, a no-op logger is used.
	Logger *zap.Logger
	// RequestTimeout is applied to every request. Zero means 30s.
	RequestTimeout time.Duration
	// ServiceName names the otelhttp server spans.
	ServiceName string
}

// quietPaths are not request-logged.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// NewRouter returns the HTTP handler for the API.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	name := deps.ServiceName
	if name == "" {
		name = "votetrail"
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger, quietPaths))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))

	votehandler.New(deps.Votes, logger).Register(r)
	audithandler.New(deps.Audits, logger).Register(r)
	healthhandler.New(deps.HealthPinger, logger).Register(r)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return otelhttp.NewHandler(r, name,
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

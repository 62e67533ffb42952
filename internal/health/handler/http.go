// Package handler serves liveness and readiness probes.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"votetrail/backend/internal/platform/httputil"
)

const pingTimeout = 2 * time.Second

// Pinger checks connectivity to the store. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves /healthz and /readyz.
type Handler struct {
	pinger Pinger
	logger *zap.Logger
}

// New returns a health handler. pinger may be nil (e.g. the in-memory store); then readiness
// always reports ok.
func New(pinger Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pinger: pinger, logger: logger}
}

// StatusResponse is the body of both probes.
type StatusResponse struct {
	Status string `json:"status"`
}

// Register mounts the probe routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			h.logger.Warn("readiness ping failed", zap.Error(err))
			httputil.WriteJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

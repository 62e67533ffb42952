// Package handler exposes the audit log over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"votetrail/backend/internal/audit/domain"
	"votetrail/backend/internal/platform/httputil"
)

// AuditService is the audit query service used by the handler.
type AuditService interface {
	List(ctx context.Context) ([]*domain.AuditRecord, error)
	Report(ctx context.Context) (string, error)
}

// Handler serves /audits and /audits/report.
type Handler struct {
	svc    AuditService
	logger *zap.Logger
}

// New returns an audit HTTP handler.
func New(svc AuditService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the audit routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audits", h.handleList)
	r.Get("/audits/report", h.handleReport)
}

// AuditEntryResponse is the JSON shape of one audit record.
type AuditEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	EntityName string     `json:"entityName"`
	EntityID   *uuid.UUID `json:"entityId"`
	Action     string     `json:"action"`
	Payload    *string    `json:"payload"`
	Timestamp  time.Time  `json:"timestamp"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("list audits failed", zap.Error(err))
		httputil.WriteInternalError(w)
		return
	}
	out := make([]AuditEntryResponse, 0, len(records))
	for _, a := range records {
		out = append(out, AuditEntryResponse{
			ID:         a.ID,
			EntityName: a.EntityName,
			EntityID:   a.EntityID,
			Action:     string(a.Action),
			Payload:    a.Payload,
			Timestamp:  a.Timestamp,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Report(r.Context())
	if err != nil {
		h.logger.Error("audit report failed", zap.Error(err))
		httputil.WriteInternalError(w)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

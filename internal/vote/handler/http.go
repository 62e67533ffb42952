// Package handler exposes vote registration, listing and results over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"votetrail/backend/internal/platform/httputil"
	"votetrail/backend/internal/vote/domain"
)

// VoteService is the vote service used by the handler.
type VoteService interface {
	RegisterVote(ctx context.Context, v domain.Vote) (string, error)
	CalculateResults(ctx context.Context) ([]domain.Result, error)
	ListVotes(ctx context.Context) ([]*domain.VoteRecord, error)
	GetVote(ctx context.Context, id uuid.UUID) (*domain.VoteRecord, error)
}

// Handler serves /votes and /results.
type Handler struct {
	svc    VoteService
	logger *zap.Logger
}

// New returns a vote HTTP handler.
func New(svc VoteService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the vote routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/votes", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
	})
	r.Get("/results", h.handleResults)
}

// VoteResponse is the JSON shape of a stored vote.
type VoteResponse struct {
	ID        uuid.UUID `json:"id"`
	Candidate string    `json:"candidate"`
	Party     string    `json:"party"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidationErrorResponse is the 400 body for a rejected vote.
type ValidationErrorResponse struct {
	Errors []domain.FieldError `json:"errors"`
}

func toResponse(v *domain.VoteRecord) VoteResponse {
	return VoteResponse{ID: v.ID, Candidate: v.Candidate, Party: v.Party, Timestamp: v.Timestamp}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	votes, err := h.svc.ListVotes(r.Context())
	if err != nil {
		h.writeError(w, "list votes", err)
		return
	}
	out := make([]VoteResponse, 0, len(votes))
	for _, v := range votes {
		out = append(out, toResponse(v))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid vote id")
		return
	}
	v, err := h.svc.GetVote(r.Context(), id)
	if err != nil {
		h.writeError(w, "get vote", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(v))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.Vote
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := h.svc.RegisterVote(r.Context(), req)
	if err != nil {
		h.writeError(w, "register vote", err)
		return
	}
	w.Header().Set("Location", "/votes/"+id)
	httputil.WriteJSON(w, http.StatusCreated, id)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.CalculateResults(r.Context())
	if err != nil {
		h.writeError(w, "calculate results", err)
		return
	}
	if results == nil {
		results = []domain.Result{}
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}

// writeError maps service errors to status codes. Anything unrecognized is a 500.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		httputil.WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: ve.Errors})
	case errors.Is(err, domain.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "vote not found")
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		httputil.WriteInternalError(w)
	}
}

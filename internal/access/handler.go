package access

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/veritract/veritract/internal/platform/httpx"
	"github.com/veritract/veritract/internal/shared"
)

// Handler exposes the evaluation API over HTTP.
type Handler struct {
	resolver *Resolver
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler returns a new evaluation handler.
func NewHandler(resolver *Resolver, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{resolver: resolver, validate: validator.New(), logger: logger}
}

type filterRequest struct {
	ActorID   string               `json:"actor_id" validate:"required"`
	TenantID  string               `json:"tenant_id" validate:"required"`
	Domain    shared.Domain        `json:"domain" validate:"required,oneof=contracts knowledge_base"`
	Action    string               `json:"action" validate:"required"`
	Resources []shared.ResourceRef `json:"resources" validate:"required,min=1,max=500,dive"`
}

type filterResponse struct {
	Allowed []shared.ResourceRef `json:"allowed"`
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	decision, err := h.resolver.CheckAccess(r.Context(), req)
	if err != nil {
		h.respondEvaluationError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, decision)
}

func (h *Handler) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	allowed, err := h.resolver.FilterAllowed(r.Context(), req.ActorID, req.TenantID, req.Domain, req.Action, req.Resources)
	if err != nil {
		h.respondEvaluationError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, filterResponse{Allowed: allowed})
}

// respondEvaluationError reports infrastructure failure distinctly from a
// policy deny: 503, never a 200 with a decision body.
func (h *Handler) respondEvaluationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrAuditUnavailable):
		h.logger.Error("audit write failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Audit Unavailable", "decision withheld: audit record not committed")
	case errors.Is(err, shared.ErrEvaluationFailed):
		h.logger.Error("evaluation failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Evaluation Failed", "could not evaluate policy")
	default:
		h.logger.Error("evaluation error", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

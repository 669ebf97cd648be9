// Package admin exposes the administrative write interfaces: access
// policies, knowledge-base grants, contract visibility, delegations, and
// API key issuance. Every accepted write bumps the snapshot version, so
// evaluations observe it on their next pinned snapshot.
package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/veritract/veritract/internal/auth"
	"github.com/veritract/veritract/internal/contracts"
	"github.com/veritract/veritract/internal/delegation"
	"github.com/veritract/veritract/internal/kb"
	"github.com/veritract/veritract/internal/platform/httpx"
	"github.com/veritract/veritract/internal/policy"
	"github.com/veritract/veritract/internal/seclevel"
	"github.com/veritract/veritract/internal/shared"
)

// Handler bundles the administrative services.
type Handler struct {
	policies    *policy.Service
	delegations *delegation.Service
	kbGrants    *kb.Service
	visibility  *contracts.Service
	keys        *auth.Service
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewHandler returns a new admin handler.
func NewHandler(policies *policy.Service, delegations *delegation.Service, kbGrants *kb.Service, visibility *contracts.Service, keys *auth.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		policies:    policies,
		delegations: delegations,
		kbGrants:    kbGrants,
		visibility:  visibility,
		keys:        keys,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var input policy.CreateInput
	if !h.decode(w, r, &input) {
		return
	}
	if !h.tenantAllowed(w, r, input.TenantID) {
		return
	}
	created, err := h.policies.Create(r.Context(), input)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleSupersedePolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.policies.Supersede(r.Context(), id); err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateDelegation(w http.ResponseWriter, r *http.Request) {
	var input delegation.CreateInput
	if !h.decode(w, r, &input) {
		return
	}
	if !h.tenantAllowed(w, r, input.TenantID) {
		return
	}
	created, err := h.delegations.Create(r.Context(), input)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGrantKBOrg(w http.ResponseWriter, r *http.Request) {
	var input kb.OrgAccessInput
	if !h.decode(w, r, &input) {
		return
	}
	if !h.tenantAllowed(w, r, input.TenantID) {
		return
	}
	granted, err := h.kbGrants.GrantOrg(r.Context(), input)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, granted)
}

func (h *Handler) handleGrantKBUser(w http.ResponseWriter, r *http.Request) {
	var input kb.UserAccessInput
	if !h.decode(w, r, &input) {
		return
	}
	if !h.tenantAllowed(w, r, input.TenantID) {
		return
	}
	granted, err := h.kbGrants.GrantUser(r.Context(), input)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, granted)
}

func (h *Handler) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	var input contracts.SetLevelInput
	if !h.decode(w, r, &input) {
		return
	}
	if !h.tenantAllowed(w, r, input.TenantID) {
		return
	}
	if err := h.visibility.SetLevel(r.Context(), input); err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddContractGrant(w http.ResponseWriter, r *http.Request) {
	var input contracts.GrantInput
	if !h.decode(w, r, &input) {
		return
	}
	if err := h.visibility.AddGrant(r.Context(), input); err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type issueKeyRequest struct {
	TenantID  string `json:"tenant_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Superuser bool   `json:"superuser"`
}

type issueKeyResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

func (h *Handler) handleIssueKey(w http.ResponseWriter, r *http.Request) {
	var input issueKeyRequest
	if !h.decode(w, r, &input) {
		return
	}
	key, token, err := h.keys.Issue(r.Context(), input.TenantID, input.Name, input.Superuser)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, issueKeyResponse{ID: key.ID, Token: token})
}

// tenantAllowed binds non-superuser writes to the caller's own tenant. A
// request without a principal is rejected outright; the write surface never
// runs unauthenticated.
func (h *Handler) tenantAllowed(w http.ResponseWriter, r *http.Request, tenantID string) bool {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "no authenticated principal")
		return false
	}
	if !principal.Superuser && principal.TenantID != tenantID {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "tenant does not match credentials")
		return false
	}
	return true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondWriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, policy.ErrInvalidScope),
		errors.Is(err, delegation.ErrInvalidWindow),
		errors.Is(err, seclevel.ErrUnknownLevel):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, delegation.ErrCycle):
		httpx.Problem(w, http.StatusConflict, "Delegation Cycle", err.Error())
	case errors.Is(err, policy.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("admin write failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

package admin

import (
	"github.com/go-chi/chi/v5"

	"github.com/veritract/veritract/internal/auth"
)

// MountRoutes registers the administrative endpoints. Key issuance is
// superuser-only; the remaining writes sit behind the bearer middleware and
// are bound to the caller's tenant unless the key is a superuser key.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/policies", h.handleCreatePolicy)
	r.Post("/policies/{id}/supersede", h.handleSupersedePolicy)
	r.Post("/delegations", h.handleCreateDelegation)
	r.Post("/kb/org-grants", h.handleGrantKBOrg)
	r.Post("/kb/user-grants", h.handleGrantKBUser)
	r.Put("/contracts/visibility", h.handleSetVisibility)
	r.Post("/contracts/grants", h.handleAddContractGrant)
	r.With(auth.RequireSuperuser).Post("/api-keys", h.handleIssueKey)
}

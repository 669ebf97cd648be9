package access

import "github.com/go-chi/chi/v5"

// MountRoutes registers the evaluation endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/access/check", h.handleCheck)
	r.Post("/access/filter", h.handleFilter)
}

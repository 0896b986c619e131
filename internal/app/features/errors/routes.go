package errors

import "github.com/go-chi/chi/v5"

// Mount registers the error pages directly on r.
func Mount(r chi.Router, h *Handler) {
	r.Get("/unauthorized", h.Unauthorized)
	r.Get("/forbidden", h.Forbidden)
	r.NotFound(h.NotFound)
}

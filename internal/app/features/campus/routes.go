// internal/app/features/campus/routes.go
package campus

import (
	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"github.com/dalemusser/talenthub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /campus and requires the campus role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(authz.RoleCampus))
		pr.Get("/", h.ServeOverview)
	})

	return r
}

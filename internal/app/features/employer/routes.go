// internal/app/features/employer/routes.go
package employer

import (
	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"github.com/dalemusser/talenthub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /employer. Every page requires the employer role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(authz.RoleEmployer))
		pr.Get("/analytics", h.ServeAnalytics)
	})

	return r
}

// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/talenthub/internal/app/system/authz"
	"go.uber.org/zap"
)

// Landing pages per role. A user holding several roles goes to the first
// match in this order.
var landings = []struct {
	role string
	path string
}{
	{authz.RoleEmployer, "/employer/analytics"},
	{authz.RoleCampus, "/campus"},
}

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// LandingFor returns the dashboard path for a set of normalized roles, or
// "/" when none of them has a dashboard.
func LandingFor(roles []string) string {
	for _, l := range landings {
		for _, have := range roles {
			if have == l.role {
				return l.path
			}
		}
	}
	return "/"
}

// ServeDashboard redirects the signed-in user to their role's landing page.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	roles, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	dest := LandingFor(roles)
	if dest == "/" {
		h.Log.Debug("no dashboard for roles", zap.String("user_id", userID.Hex()), zap.Strings("roles", roles))
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

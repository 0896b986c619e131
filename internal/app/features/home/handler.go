package home

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/talenthub/internal/app/features/dashboard"
	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler serves the site root.
type Handler struct {
	LoginPath string
	Log       *zap.Logger
}

func NewHandler(loginPath string, logger *zap.Logger) *Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Handler{LoginPath: loginPath, Log: logger}
}

type welcomeData struct {
	Title   string `json:"title"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot sends visitors to sign in and users with a dashboard role to
// their dashboard. Signed-in users without one get a plain welcome page.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, h.LoginPath, http.StatusSeeOther)
		return
	}

	if dest := dashboard.LandingFor(u.Roles); dest != "/" {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(welcomeData{
		Title:   "Welcome",
		Name:    u.Name,
		Message: "Your account does not have a dashboard yet.",
	}); err != nil {
		h.Log.Warn("encode welcome page", zap.Error(err))
	}
}

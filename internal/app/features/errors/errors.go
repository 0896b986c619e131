// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/talenthub/internal/app/system/authz"
)

// pageData is the body of an error page.
type pageData struct {
	Title      string   `json:"title"`
	IsLoggedIn bool     `json:"is_logged_in"`
	Roles      []string `json:"roles,omitempty"`
	UserName   string   `json:"user_name,omitempty"`
	Message    string   `json:"message"`
	BackURL    string   `json:"back_url"`
}

// Handler is the errors feature handler. It needs no database.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Unauthorized is where the role guard sends signed-in users lacking a role.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	roles, name, _, signedIn := authz.UserCtx(r)
	back := "/dashboard"
	if !signedIn {
		back = "/login"
	}
	render(w, http.StatusForbidden, pageData{
		Title:      "Not authorized",
		IsLoggedIn: signedIn,
		Roles:      roles,
		UserName:   name,
		Message:    "Your account does not have access to this page.",
		BackURL:    back,
	})
}

// Forbidden renders a generic "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	roles, name, _, signedIn := authz.UserCtx(r)
	render(w, http.StatusForbidden, pageData{
		Title:      "Access denied",
		IsLoggedIn: signedIn,
		Roles:      roles,
		UserName:   name,
		Message:    "You don't have permission to view this page.",
		BackURL:    "/",
	})
}

// NotFound is the router's fallback.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusNotFound, pageData{
		Title:   "Not found",
		Message: "The page you requested does not exist.",
		BackURL: "/",
	})
}

func render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

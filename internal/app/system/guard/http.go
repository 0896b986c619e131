package guard

import (
	"net/http"
	"net/url"
	"strings"
)

// RequestIdentity resolves the identity carried by a request. It returns a
// nil identity for visitors and an error when identity cannot be determined.
type RequestIdentity func(r *http.Request) (*Identity, error)

// StaticSource is an IdentitySource over a fixed identity (or failure).
type StaticSource struct {
	ID  *Identity
	Err error
}

// Current returns the fixed identity.
func (s StaticSource) Current() (*Identity, error) { return s.ID, s.Err }

// HasRole reports whether the identity holds role (case-insensitive).
func (s StaticSource) HasRole(role string) bool {
	if s.Err != nil || s.ID == nil {
		return false
	}
	role = strings.ToLower(strings.TrimSpace(role))
	for _, have := range s.ID.Roles {
		if strings.ToLower(strings.TrimSpace(have)) == role {
			return true
		}
	}
	return false
}

// Require returns middleware that guards next with a per-request Guard.
// Each request starts Unresolved, so a failing request gets exactly one
// redirect (or status) and next is never called.
//
// Navigation mirrors the session middleware conventions:
//   - HTMX: HX-Redirect header with 401/403
//   - HTML: 303 redirect (login carries ?return=<current uri>)
//   - API:  plain 401/403
func Require(resolve RequestIdentity, opts Options, roles ...string) func(http.Handler) http.Handler {
	opts = opts.withDefaults()
	p := NewPolicy(roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var src IdentitySource
			if resolve != nil {
				id, err := resolve(r)
				src = StaticSource{ID: id, Err: err}
			}

			g := New(p, src, &httpNavigator{w: w, r: r, opts: opts}, opts)
			if !g.Evaluate() {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// httpNavigator turns a guard redirect into an HTTP response.
type httpNavigator struct {
	w    http.ResponseWriter
	r    *http.Request
	opts Options
}

func (n *httpNavigator) NavigateTo(path string) {
	toLogin := path == n.opts.LoginPath
	dest := path
	if toLogin {
		dest = path + "?return=" + url.QueryEscape(n.r.URL.RequestURI())
	}

	status, text := http.StatusForbidden, "forbidden"
	if toLogin {
		status, text = http.StatusUnauthorized, "unauthorized"
	}

	if n.r.Header.Get("HX-Request") == "true" {
		n.w.Header().Set("HX-Redirect", dest)
		n.w.WriteHeader(status)
		return
	}
	if wantsHTML(n.r) {
		http.Redirect(n.w, n.r, dest, http.StatusSeeOther)
		return
	}
	http.Error(n.w, text, status)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"github.com/dalemusser/talenthub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role names known to the dashboard.
const (
	RoleEmployer = "employer"
	RoleCampus   = "campus"
)

// UserCtx returns the user's normalized roles, name, Mongo ObjectID, and a
// found flag. A missing user or a malformed user ID yields ok=false, so
// callers can trust that ok=true means a valid, authenticated user.
func UserCtx(r *http.Request) (roles []string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return nil, "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Corrupt session; fail closed.
		return nil, "", primitive.NilObjectID, false
	}
	return normalize.Roles(user.Roles), user.Name, userID, true
}

// HasAnyRole reports whether the current request's user holds any of roles.
// Returns false when no user is present.
func HasAnyRole(r *http.Request, roles ...string) bool {
	have, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		want = normalize.Role(want)
		for _, h := range have {
			if h == want {
				return true
			}
		}
	}
	return false
}

// HasRole is a convenience wrapper for a single role.
func HasRole(r *http.Request, role string) bool {
	return HasAnyRole(r, role)
}

// IsEmployer reports whether the current request's user is an employer.
func IsEmployer(r *http.Request) bool { return HasRole(r, RoleEmployer) }

// IsCampus reports whether the current request's user is campus staff.
func IsCampus(r *http.Request) bool { return HasRole(r, RoleCampus) }

package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID      string
	Name    string
	LoginID string
	Roles   []string
}

// EmployerUser returns a TestUser with the employer role.
func EmployerUser() TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Employer",
		LoginID: "employer@test.com",
		Roles:   []string{"employer"},
	}
}

// CampusUser returns a TestUser with the campus role.
func CampusUser() TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Campus",
		LoginID: "campus@test.com",
		Roles:   []string{"campus"},
	}
}

// StudentUser returns a TestUser with a role no dashboard page accepts.
func StudentUser() TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Student",
		LoginID: "student@test.com",
		Roles:   []string{"student"},
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers. It bypasses the session middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:      user.ID,
		Name:    user.Name,
		LoginID: user.LoginID,
		Roles:   user.Roles,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging, CORS and request limits.
// Everything below is specific to the dashboard service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name (default: talenthub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Recruitment backend
	AnalyticsAPIURL        string        // Absolute URL of GET /api/employer/analytics/
	AnalyticsTokenSecret   string        // HS256 secret shared with the backend (blank sends no bearer token)
	AnalyticsTokenIssuer   string        // iss claim on minted tokens
	AnalyticsTokenTTL      time.Duration // Lifetime of one minted token
	AnalyticsTimeout       time.Duration // Bound on one analytics request
	AnalyticsDefaultPeriod string        // week | month | year

	// Guard redirect targets
	LoginPath        string
	UnauthorizedPath string

	// Optional first account, created on startup when missing
	BootstrapLoginID  string
	BootstrapPassword string
	BootstrapRoles    []string
}

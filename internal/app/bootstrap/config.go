// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/talenthub/internal/app/system/guard"
	"github.com/dalemusser/talenthub/internal/app/system/normalize"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for TalentHub.
//   - Config files: mongo_uri, analytics_api_url, etc.
//   - Environment variables: TALENTHUB_MONGO_URI, TALENTHUB_ANALYTICS_API_URL, etc.
//   - Command-line flags: --mongo_uri, --analytics_api_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "talenthub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "talenthub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	{Name: "analytics_api_url", Default: "http://localhost:8000/api/employer/analytics/", Desc: "Employer analytics endpoint of the recruitment backend"},
	{Name: "analytics_token_secret", Default: "", Desc: "HS256 secret for bearer tokens sent to the backend"},
	{Name: "analytics_token_issuer", Default: "talenthub", Desc: "Issuer claim on bearer tokens"},
	{Name: "analytics_token_ttl", Default: "5m", Desc: "Lifetime of one bearer token"},
	{Name: "analytics_timeout", Default: "15s", Desc: "Timeout for one analytics request"},
	{Name: "analytics_default_period", Default: "month", Desc: "Period requested when none is given: week, month or year"},

	{Name: "login_path", Default: guard.DefaultLoginPath, Desc: "Where visitors are sent by the role guard"},
	{Name: "unauthorized_path", Default: guard.DefaultUnauthorizedPath, Desc: "Where users lacking a role are sent"},

	{Name: "bootstrap_login_id", Default: "", Desc: "Login ID of an account to create on startup if missing"},
	{Name: "bootstrap_password", Default: "", Desc: "Password for the bootstrap account"},
	{Name: "bootstrap_roles", Default: "employer", Desc: "Comma-separated roles for the bootstrap account"},
}

// validPeriods are the periods the recruitment backend accepts.
var validPeriods = map[string]bool{"week": true, "month": true, "year": true}

// LoadConfig loads WAFFLE core config and app-specific config.
// Precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TALENTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		AnalyticsAPIURL:        appValues.String("analytics_api_url"),
		AnalyticsTokenSecret:   appValues.String("analytics_token_secret"),
		AnalyticsTokenIssuer:   appValues.String("analytics_token_issuer"),
		AnalyticsTokenTTL:      appValues.Duration("analytics_token_ttl", 5*time.Minute),
		AnalyticsTimeout:       appValues.Duration("analytics_timeout", 15*time.Second),
		AnalyticsDefaultPeriod: strings.ToLower(strings.TrimSpace(appValues.String("analytics_default_period"))),

		LoginPath:        appValues.String("login_path"),
		UnauthorizedPath: appValues.String("unauthorized_path"),

		BootstrapLoginID:  appValues.String("bootstrap_login_id"),
		BootstrapPassword: appValues.String("bootstrap_password"),
		BootstrapRoles:    splitRoles(appValues.String("bootstrap_roles")),
	}

	return coreCfg, appCfg, nil
}

func splitRoles(s string) []string {
	return normalize.Roles(strings.Split(s, ","))
}

// ValidateConfig rejects configurations that cannot serve requests.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
	}
	if !urlutil.IsValidAbsHTTPURL(appCfg.AnalyticsAPIURL) {
		errs = append(errs, fmt.Errorf("analytics_api_url must be an absolute http(s) URL, got %q", appCfg.AnalyticsAPIURL))
	}
	if !validPeriods[appCfg.AnalyticsDefaultPeriod] {
		errs = append(errs, fmt.Errorf("analytics_default_period must be week, month or year, got %q", appCfg.AnalyticsDefaultPeriod))
	}
	if appCfg.AnalyticsTimeout <= 0 {
		errs = append(errs, errors.New("analytics_timeout must be positive"))
	}
	for name, p := range map[string]string{"login_path": appCfg.LoginPath, "unauthorized_path": appCfg.UnauthorizedPath} {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("%s must start with '/', got %q", name, p))
		}
	}
	if appCfg.BootstrapLoginID != "" && appCfg.BootstrapPassword == "" {
		errs = append(errs, errors.New("bootstrap_password is required when bootstrap_login_id is set"))
	}

	isProd := coreCfg != nil && coreCfg.Env == "prod"
	if isProd && appCfg.AnalyticsTokenSecret == "" {
		errs = append(errs, errors.New("analytics_token_secret is required in prod"))
	}
	if isProd && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		errs = append(errs, errors.New("session_key must be changed from the development default in prod"))
	}

	return errors.Join(errs...)
}

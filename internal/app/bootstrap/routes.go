// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"

	analyticsapi "github.com/dalemusser/talenthub/internal/app/clients/analyticsapi"
	campusfeature "github.com/dalemusser/talenthub/internal/app/features/campus"
	dashboardfeature "github.com/dalemusser/talenthub/internal/app/features/dashboard"
	employerfeature "github.com/dalemusser/talenthub/internal/app/features/employer"
	errorsfeature "github.com/dalemusser/talenthub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/talenthub/internal/app/features/health"
	homefeature "github.com/dalemusser/talenthub/internal/app/features/home"
	loginfeature "github.com/dalemusser/talenthub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/talenthub/internal/app/features/logout"
	loginstore "github.com/dalemusser/talenthub/internal/app/store/logins"
	userstore "github.com/dalemusser/talenthub/internal/app/store/users"
	"github.com/dalemusser/talenthub/internal/app/system/analytics"
	"github.com/dalemusser/talenthub/internal/app/system/apitoken"
	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"github.com/dalemusser/talenthub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the session manager, the
// analytics backend client, and mounts the feature routers: health, login,
// logout, dashboard dispatch, the employer analytics page and the campus
// overview.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	sessionMgr, err := newSessionManager(coreCfg, appCfg, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.UsePaths(appCfg.LoginPath, appCfg.UnauthorizedPath)

	newAPI, err := analyticsFactory(appCfg, logger)
	if err != nil {
		logger.Error("analytics client init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// Roles are re-read from the users collection on every request.
	r.Use(sessionMgr.LoadSessionUser(userstore.NewFetcher(deps.MongoDatabase)))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// The root only dispatches; anything unmatched falls through to NotFound.
	homeHandler := homefeature.NewHandler(appCfg.LoginPath, logger)
	r.Get("/", homeHandler.ServeRoot)

	// Authentication
	loginHandler := loginfeature.NewHandler(
		userstore.New(deps.MongoDatabase),
		loginstore.New(deps.MongoDatabase),
		ratelimit.NewLoginLimiter(),
		sessionMgr,
		logger,
	)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsfeature.Mount(r, errorsfeature.NewHandler())

	// Role-based dashboards
	dashboardHandler := dashboardfeature.NewHandler(logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	employerHandler := employerfeature.NewHandler(newAPI, appCfg.AnalyticsDefaultPeriod, logger)
	r.Mount("/employer", employerfeature.Routes(employerHandler, sessionMgr))

	campusHandler := campusfeature.NewHandler(loginstore.New(deps.MongoDatabase), logger)
	r.Mount("/campus", campusfeature.Routes(campusHandler, sessionMgr))

	return r, nil
}

// newSessionManager uses a throwaway key in dev when none is configured.
// Secure cookies are enabled in production mode.
func newSessionManager(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (*auth.SessionManager, error) {
	key := appCfg.SessionKey
	if key == "" && coreCfg.Env == "dev" {
		k, err := auth.DevSessionKey()
		if err != nil {
			return nil, err
		}
		logger.Warn("no session_key configured; using a random key, sessions end on restart")
		key = k
	}
	secure := coreCfg.Env == "prod"
	return auth.NewSessionManager(key, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
}

// analyticsFactory builds one backend client and returns a factory that
// scopes it to the signed-in user. Without a token secret requests go out
// with no Authorization header.
func analyticsFactory(appCfg AppConfig, logger *zap.Logger) (employerfeature.APIFactory, error) {
	client, err := analyticsapi.New(analyticsapi.Config{
		Endpoint: appCfg.AnalyticsAPIURL,
		Timeout:  appCfg.AnalyticsTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("analytics client: %w", err)
	}

	if appCfg.AnalyticsTokenSecret == "" {
		logger.Warn("analytics_token_secret is empty; backend requests are unauthenticated")
		return func(*auth.SessionUser) analytics.API { return client }, nil
	}

	minter, err := apitoken.NewMinter(appCfg.AnalyticsTokenSecret, appCfg.AnalyticsTokenIssuer, appCfg.AnalyticsTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("analytics tokens: %w", err)
	}
	return func(u *auth.SessionUser) analytics.API {
		if u == nil {
			return client
		}
		return client.WithTokens(minter.TokenSource(u.ID, u.Roles))
	}, nil
}

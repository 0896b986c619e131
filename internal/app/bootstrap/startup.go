// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/talenthub/internal/app/store/users"
	"github.com/dalemusser/talenthub/internal/app/system/timeouts"
	"github.com/dalemusser/talenthub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Fetch: appCfg.AnalyticsTimeout})

	if appCfg.BootstrapLoginID == "" {
		return nil
	}
	if deps.MongoDatabase == nil {
		return errors.New("bootstrap account: no database")
	}
	return ensureBootstrapUser(ctx, deps.MongoDatabase, appCfg, logger)
}

// ensureBootstrapUser creates the configured first account if no user with
// that login ID exists. An existing account is left untouched.
func ensureBootstrapUser(ctx context.Context, db *mongo.Database, appCfg AppConfig, logger *zap.Logger) error {
	store := userstore.New(db)

	existing, err := store.GetByLoginID(ctx, appCfg.BootstrapLoginID)
	switch {
	case err == nil:
		logger.Debug("bootstrap account already exists", zap.String("login_id", existing.LoginID))
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("bootstrap account lookup: %w", err)
	}

	u, err := store.Create(ctx, models.User{
		LoginID:  appCfg.BootstrapLoginID,
		FullName: appCfg.BootstrapLoginID,
		Roles:    appCfg.BootstrapRoles,
	}, appCfg.BootstrapPassword)
	if errors.Is(err, userstore.ErrDuplicateLoginID) {
		// another instance won the race
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap account create: %w", err)
	}

	logger.Info("created bootstrap account",
		zap.String("login_id", u.LoginID),
		zap.Strings("roles", u.Roles))
	return nil
}

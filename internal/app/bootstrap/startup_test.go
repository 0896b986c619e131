package bootstrap

import (
	"testing"

	"github.com/dalemusser/talenthub/internal/app/system/timeouts"
	"github.com/dalemusser/talenthub/internal/domain/models"
	"github.com/dalemusser/talenthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func bootstrapConfig() AppConfig {
	return AppConfig{
		BootstrapLoginID:  "Owner@Test.com",
		BootstrapPassword: "s3cret-pass",
		BootstrapRoles:    []string{"employer"},
	}
}

func TestEnsureBootstrapUser_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureBootstrapUser(ctx, db, bootstrapConfig(), testLogger()); err != nil {
		t.Fatalf("ensureBootstrapUser failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"login_id": "owner@test.com"}).Decode(&user); err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "employer" {
		t.Errorf("roles: got %v, want [employer]", user.Roles)
	}
	if user.Status != "active" {
		t.Errorf("status: got %q, want active", user.Status)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("password hash does not match: %v", err)
	}
}

func TestEnsureBootstrapUser_LeavesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateUser(ctx, "owner@test.com", "Existing Owner", "original", "campus")

	if err := ensureBootstrapUser(ctx, db, bootstrapConfig(), testLogger()); err != nil {
		t.Fatalf("ensureBootstrapUser failed: %v", err)
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("user count: got %d, want 1", n)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if user.FullName != "Existing Owner" || user.Roles[0] != "campus" {
		t.Errorf("existing account changed: got %+v", user)
	}
}

func TestStartup_NoBootstrapAccount(t *testing.T) {
	defer timeouts.Reset()

	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := AppConfig{AnalyticsTimeout: 3 * timeouts.DefaultPing}
	if err := Startup(ctx, nil, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if got := timeouts.Fetch(); got != cfg.AnalyticsTimeout {
		t.Errorf("Fetch timeout: got %v, want %v", got, cfg.AnalyticsTimeout)
	}
}

func TestStartup_BootstrapWithoutDatabase(t *testing.T) {
	defer timeouts.Reset()

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := Startup(ctx, nil, bootstrapConfig(), DBDeps{}, testLogger()); err == nil {
		t.Error("expected error when bootstrap account is configured without a database")
	}
}

package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/database"
)

// TestDB holds a migrated PostgreSQL container
type TestDB struct {
	Container *postgres.PostgresContainer
	DB        *sql.DB
	ConnStr   string
}

// SetupPostgres starts PostgreSQL, applies the embedded migrations and
// registers cleanup. Skipped in -short mode.
func SetupPostgres(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17",
		postgres.WithDatabase("indicador_test"),
		postgres.WithUsername("indicador_test"),
		postgres.WithPassword("indicador_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := database.NewMigrationExecutor(db).RunMigrations(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tdb := &TestDB{Container: container, DB: db, ConnStr: connStr}
	t.Cleanup(func() {
		_ = db.Close()
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("Failed to terminate PostgreSQL container: %v", err)
		}
	})
	return tdb
}

// UpstreamToken signs an access token shaped like the upstream API's. Only
// the claims matter; the dashboard never verifies the signature.
func UpstreamToken(t *testing.T, userID, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       userID,
		"email":     userID + "@storaze.test",
		"role":      role,
		"companyId": 1,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(ttl).Unix(),
		"jti":       time.Now().UnixNano(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key-for-testing-only"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

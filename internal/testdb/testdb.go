// Package testdb spins up a disposable Postgres container for integration
// tests. Tests that need a real database call New and get a migrated
// connection, or a skip when no container runtime is available.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/database"
)

// New starts a Postgres container, connects and migrates. The container is
// terminated when the test finishes.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ibunity_test"),
		tcpostgres.WithUsername("ibunity"),
		tcpostgres.WithPassword("ibunity"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("could not build connection string: %v", err)
	}

	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("could not connect to test database: %v", err)
	}
	return db
}

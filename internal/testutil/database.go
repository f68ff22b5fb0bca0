// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"testing"

	"gorm.io/gorm"

	"centavo/internal/database"
)

// SetupTestDB creates an in-memory SQLite database with the production
// schema applied, foreign keys on, and the pool pinned to one connection.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	manager, err := database.NewManager(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := manager.InitSchema(); err != nil {
		t.Fatalf("failed to initialize test schema: %v", err)
	}

	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return manager.DB()
}

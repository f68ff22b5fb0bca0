// Package database manages the embedded SQLite store: opening the single
// connection and creating the schema on startup.
package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Manager handles the embedded store connection.
type Manager struct {
	db *gorm.DB
}

// NewManager opens the SQLite database at path and prepares it for use.
// Foreign-key enforcement is switched on before any other statement runs;
// SQLite defaults to off.
func NewManager(path string) (*Manager, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	// Single local user, single process, single connection. Pinning the pool
	// to one connection also keeps the foreign_keys pragma in effect for
	// every statement.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Manager{db: db}, nil
}

// InitSchema creates all tables and indexes if they do not exist yet.
// Safe to call on every process start; a failure here is fatal to boot.
func (m *Manager) InitSchema() error {
	for _, stmt := range schemaStatements {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// DB returns the underlying GORM database instance.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close closes the underlying connection.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle holding the run ledger.
type DB struct {
	*sql.DB
}

// NewConnection opens (creating if needed) the ledger at path and applies
// pending migrations. Use ":memory:" for a throwaway ledger.
func NewConnection(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases intact and serialises
	// writers on file databases.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{DB: sqlDB}
	if _, err := RunMigrations(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

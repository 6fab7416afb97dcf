package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var ledgerMigrations embed.FS

// ErrDirtyLedger is returned when an earlier migration stopped half way.
// The ledger has to be repaired or removed by hand.
var ErrDirtyLedger = errors.New("ledger schema is dirty")

// RunMigrations brings the ledger schema up to date and returns its version.
//
// The migrate instance is not closed: its sqlite driver would close the
// shared handle along with it. Only the embedded source is released.
func RunMigrations(db *DB) (uint, error) {
	source, err := iofs.New(ledgerMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to load ledger migrations: %w", err)
	}
	defer source.Close()

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return 0, fmt.Errorf("%w at version %d", ErrDirtyLedger, dirty.Version)
		}
		return 0, fmt.Errorf("failed to migrate ledger: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read ledger version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("%w at version %d", ErrDirtyLedger, version)
	}

	slog.Debug("Ledger schema ready", "version", version)
	return version, nil
}

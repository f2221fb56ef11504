package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// Status describes where the database schema stands relative to the
// migrations compiled into the binary.
type Status struct {
	Current uint
	Latest  uint
	Dirty   bool
	// Empty is true when no migration has ever been applied.
	Empty bool
}

// UpToDate reports whether the schema matches the binary.
func (s Status) UpToDate() bool {
	return !s.Empty && !s.Dirty && s.Current == s.Latest
}

func (s Status) String() string {
	switch {
	case s.Empty:
		return fmt.Sprintf("no schema version (latest is %d)", s.Latest)
	case s.Dirty:
		return fmt.Sprintf("dirty at version %d (a migration failed previously)", s.Current)
	case s.Current < s.Latest:
		return fmt.Sprintf("at version %d, latest is %d (%d behind)", s.Current, s.Latest, s.Latest-s.Current)
	case s.Current > s.Latest:
		return fmt.Sprintf("at version %d, ahead of binary version %d", s.Current, s.Latest)
	default:
		return fmt.Sprintf("up to date at version %d", s.Current)
	}
}

// MigrateUp applies all pending migrations. An already current schema is
// not an error.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	// m is not closed: closing it would close db, which the caller owns.

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// CheckStatus reports the applied and latest migration versions.
func CheckStatus(db *sql.DB) (Status, error) {
	latest, err := LatestVersion()
	if err != nil {
		return Status{}, err
	}

	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return Status{Latest: latest, Empty: true}, nil
		}
		return Status{}, fmt.Errorf("failed to get database version: %w", err)
	}

	return Status{Current: version, Latest: latest, Dirty: dirty}, nil
}

// LatestVersion returns the highest migration version embedded in the binary.
func LatestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("failed to read migration files: %w", err)
	}
	defer src.Close()

	return latestVersion(src)
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

func latestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}

	for {
		next, err := src.Next(version)
		if err != nil {
			// Next fails once there is nothing after version.
			break
		}
		version = next
	}

	return version, nil
}

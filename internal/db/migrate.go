package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

// RequiredSchemaVersion is the migration version the code expects. The server
// must not serve requests against an older schema.
const RequiredSchemaVersion uint = 2

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrSchemaTooOld = errors.New("database schema is older than required")

// MigrationSource returns the embedded migration files as a migrate source.
func MigrationSource() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return src, nil
}

// Migrate applies pending migrations and verifies the resulting version.
func (p *Postgres) Migrate() error {
	// migrate closes the *sql.DB it is given, so it gets its own view of the
	// pool. Closing that view leaves the pool open.
	sqlDB := stdlib.OpenDBFromPool(p.Pool)

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := MigrationSource()
	if err != nil {
		driver.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("failed to initialize migration instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source_error", srcErr).AnErr("database_error", dbErr).Msg("Failed to close migration instance")
		}
	}()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Msg("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	default:
		log.Info().Msg("New migrations applied successfully")
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	return checkVersion(version, dirty)
}

func checkVersion(version uint, dirty bool) error {
	if dirty {
		return fmt.Errorf("database schema version %d is dirty", version)
	}
	if version < RequiredSchemaVersion {
		return fmt.Errorf("%w: have %d, need %d", ErrSchemaTooOld, version, RequiredSchemaVersion)
	}
	log.Info().Uint("schema_version", version).Msg("Database schema is up to date")
	return nil
}

package postgres

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema is returned when a previous migration failed part way.
// The schema has to be repaired and forced to a clean version by hand.
var ErrDirtySchema = errors.New("schema is dirty")

// Migrate applies all pending migrations to the database at databaseURL.
// It refuses to run against a dirty schema and returns ErrDirtySchema.
func Migrate(databaseURL string, logger *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrationURL(databaseURL))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator",
				slog.Any("source_error", srcErr),
				slog.Any("database_error", dbErr),
			)
		}
	}()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		logger.Error("schema is dirty, refusing to migrate", slog.Uint64("version", uint64(version)))
		return fmt.Errorf("version %d: %w", version, ErrDirtySchema)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema up to date", slog.Uint64("version", uint64(version)))
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("schema migrated", slog.Uint64("version", uint64(newVersion)))
	return nil
}

// migrationURL rewrites a postgres URL to the scheme the pgx/v5 migrate
// driver registers under
func migrationURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(databaseURL, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}

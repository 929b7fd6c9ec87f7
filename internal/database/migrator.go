package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// versionTable records the applied schema version.
const versionTable = "schema_version"

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationsFS exposes the embedded migrations rooted at their directory.
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(migrations, "migrations")
}

// Migrate applies pending migrations over a dedicated connection, logging
// each step as tern runs it.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, DSN(&cfg.Database))
	if err != nil {
		return fmt.Errorf("migrate: connect: %w", err)
	}
	defer conn.Close(ctx)

	migrator, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return fmt.Errorf("migrate: new migrator: %w", err)
	}

	dir, err := MigrationsFS()
	if err != nil {
		return fmt.Errorf("migrate: open embedded migrations: %w", err)
	}
	if err := migrator.LoadMigrations(dir); err != nil {
		return fmt.Errorf("migrate: load: %w", err)
	}

	current, err := migrator.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("migrate: current version: %w", err)
	}
	target := int32(len(migrator.Migrations))
	if current == target {
		logger.Info().Int32("version", current).Msg("database schema up to date")
		return nil
	}

	migrator.OnStart = func(seq int32, name, direction, _ string) {
		logger.Info().Int32("sequence", seq).Str("name", name).Str("direction", direction).Msg("applying migration")
	}
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: from version %d: %w", current, err)
	}

	logger.Info().Int32("from", current).Int32("to", target).Msg("database schema migrated")
	return nil
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/habitutor/habitutor-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// errMigrationsPending is returned by validate when the schema is behind the embedded migrations.
var errMigrationsPending = errors.New("database schema has pending migrations")

// slogGooseLogger routes goose output through slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level. goose calls it on unrecoverable failures; the
// command still returns the error, so the process is not terminated here.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// migrator applies the embedded goose migrations to a database.
type migrator struct {
	db     *sql.DB
	logger *slog.Logger
}

func newMigrator(db *sql.DB, logger *slog.Logger, verbose bool) (*migrator, error) {
	logger = logger.With("component", "migrations")

	goose.SetBaseFS(postgres.Migrations)
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetVerbose(verbose)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return &migrator{db: db, logger: logger}, nil
}

// run executes one of the goose commands exposed on the CLI.
func (m *migrator) run(ctx context.Context, command string) error {
	m.logger.Info("running migrations", "command", command)

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, m.db, postgres.MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, m.db, postgres.MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, m.db, postgres.MigrationsDir)
	case "version":
		err = goose.VersionContext(ctx, m.db, postgres.MigrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	m.logger.Info("migrations finished", "command", command)
	return nil
}

// validate compares the applied schema version with the newest embedded migration.
func (m *migrator) validate(ctx context.Context) error {
	migrations, err := goose.CollectMigrations(postgres.MigrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return fmt.Errorf("failed to collect migrations: %w", err)
	}
	latest, err := migrations.Last()
	if err != nil {
		return fmt.Errorf("no migrations embedded: %w", err)
	}

	current, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if current < latest.Version {
		m.logger.Error("schema is behind",
			"current_version", current,
			"latest_version", latest.Version)
		return fmt.Errorf("%w: at version %d, latest is %d", errMigrationsPending, current, latest.Version)
	}

	m.logger.Info("schema is up to date", "version", current)
	return nil
}

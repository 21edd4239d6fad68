package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/habitutor/habitutor-api/internal/config"
	"github.com/habitutor/habitutor-api/internal/redact"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// pingTimeout bounds a single connectivity check.
const pingTimeout = 5 * time.Second

// setupAppDatabase opens the connection pool and waits until the database
// answers, retrying with exponential backoff for up to
// ConnectMaxElapsedSeconds.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = time.Duration(cfg.Database.ConnectMaxElapsedSeconds) * time.Second

	if err := pingWithRetry(ctx, db, b, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Database connection established",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns)
	return db, nil
}

// pingWithRetry pings db until it succeeds, the policy gives up or ctx ends.
func pingWithRetry(ctx context.Context, db *sql.DB, policy backoff.BackOff, logger *slog.Logger) error {
	attempt := 0
	op := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("database not reachable yet, retrying",
			"attempt", attempt,
			"retry_in", wait.String(),
			"error", redact.Error(err))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		return fmt.Errorf("failed to ping database after %d attempts: %s", attempt, redact.Error(err))
	}
	return nil
}

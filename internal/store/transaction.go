package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/habitutor/habitutor-api/internal/platform/logger"
)

// TxFn is the body of a transaction. Returning an error rolls it back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// Transactor runs a TxFn inside a database transaction. Services depend on
// it instead of *sql.DB; tests substitute an in-memory implementation.
type Transactor interface {
	RunInTx(ctx context.Context, fn TxFn) error
}

// SQLTransactor is a Transactor backed by a database/sql pool.
type SQLTransactor struct {
	db   *sql.DB
	opts *sql.TxOptions
}

var _ Transactor = (*SQLTransactor)(nil)

// NewSQLTransactor returns a Transactor over db using the driver's default
// isolation level. It panics on a nil db, which is a wiring bug.
func NewSQLTransactor(db *sql.DB) *SQLTransactor {
	if db == nil {
		panic("store: NewSQLTransactor called with nil db")
	}
	return &SQLTransactor{db: db}
}

// WithOptions returns a copy of t that begins transactions with opts.
func (t *SQLTransactor) WithOptions(opts *sql.TxOptions) *SQLTransactor {
	return &SQLTransactor{db: t.db, opts: opts}
}

// RunInTx begins a transaction, runs fn and commits. On error the
// transaction is rolled back and fn's error is returned, joined with the
// rollback error if that failed too. A panic in fn rolls back and re-panics.
func (t *SQLTransactor) RunInTx(ctx context.Context, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := t.db.BeginTx(ctx, t.opts)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback after panic failed",
				slog.String("error", rbErr.Error()),
				slog.Any("panic", p))
		}
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback failed",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("error", err.Error()))
			return errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
		log.Debug("transaction rolled back", slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/habitutor/habitutor-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes from the integrity constraint violation class (23xxx).
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// constraintClass describes how a constraint failure is reported to callers.
type constraintClass struct {
	sentinel error
	kind     string
	// column reports the offending column instead of the constraint name.
	column bool
}

var constraintClasses = map[string]constraintClass{
	uniqueViolationCode:     {sentinel: store.ErrDuplicate, kind: "unique violation"},
	foreignKeyViolationCode: {sentinel: store.ErrInvalidEntity, kind: "foreign key violation"},
	checkViolationCode:      {sentinel: store.ErrInvalidEntity, kind: "check constraint violation"},
	notNullViolationCode:    {sentinel: store.ErrInvalidEntity, kind: "not null violation", column: true},
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func hasCode(err error, code string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == code
}

// MapError translates driver errors into the store error set. Errors without
// a mapping are returned untouched; mapped ones keep the driver error in the
// message for logging.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	pgErr, ok := pgError(err)
	if !ok {
		return err
	}
	class, known := constraintClasses[pgErr.Code]
	if !known {
		return err
	}

	subject := pgErr.ConstraintName
	if class.column {
		subject = pgErr.ColumnName
	}
	return fmt.Errorf("%w: %s (%s): %v", class.sentinel, class.kind, subject, err)
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolationCode)
}

// IsForeignKeyViolation reports whether err carries SQLSTATE 23503, e.g. a
// flashcard slot pointing at a question that was deleted mid-session.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolationCode)
}

// CheckRowsAffected turns a zero-row UPDATE into store.ErrNotFound. The
// subject names what the statement targeted and ends up in the message.
func CheckRowsAffected(result sql.Result, subject string) error {
	if result == nil {
		return errors.New("no sql result to inspect")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	if subject == "" {
		return store.ErrNotFound
	}
	return fmt.Errorf("%w: %s not found", store.ErrNotFound, subject)
}

// MapUniqueViolation replaces a unique violation on the named constraint with
// target. Violations of other constraints fall back to MapError, and errors
// that are not unique violations pass through as-is.
func MapUniqueViolation(err error, constraint string, target error) error {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != uniqueViolationCode {
		return err
	}
	if pgErr.ConstraintName != constraint || target == nil {
		return MapError(err)
	}
	return fmt.Errorf("%w: %v", target, err)
}

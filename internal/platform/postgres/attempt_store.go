package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/platform/logger"
	"github.com/habitutor/habitutor-api/internal/store"
)

const attemptColumns = `id, user_id, date, started_at, deadline, submitted_at`

// PostgresAttemptStore implements the store.AttemptStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAttemptStore creates a new PostgreSQL implementation of the AttemptStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAttemptStore(db store.DBTX, logger *slog.Logger) *PostgresAttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "attempt_store")),
	}
}

// Ensure PostgresAttemptStore implements store.AttemptStore interface
var _ store.AttemptStore = (*PostgresAttemptStore)(nil)

// WithTx implements store.AttemptStore.WithTx
func (s *PostgresAttemptStore) WithTx(tx *sql.Tx) store.AttemptStore {
	return &PostgresAttemptStore{db: tx, logger: s.logger}
}

// Create implements store.AttemptStore.Create
func (s *PostgresAttemptStore) Create(ctx context.Context, attempt *domain.Attempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		log.Warn("attempt validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", attempt.UserID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_flashcard_attempts (user_id, date, started_at, deadline, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		attempt.UserID,
		dateParam(attempt.Date),
		attempt.StartedAt,
		attempt.Deadline,
		nullTime(attempt.SubmittedAt),
	).Scan(&attempt.ID)
	if err != nil {
		log.Error("failed to create flashcard attempt",
			slog.String("error", err.Error()),
			slog.String("user_id", attempt.UserID.String()))
		return MapError(err)
	}

	log.Debug("flashcard attempt created",
		slog.Int64("attempt_id", attempt.ID),
		slog.String("user_id", attempt.UserID.String()),
		slog.Time("deadline", attempt.Deadline))
	return nil
}

// GetLatest implements store.AttemptStore.GetLatest
func (s *PostgresAttemptStore) GetLatest(ctx context.Context, userID uuid.UUID) (*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + `
		FROM user_flashcard_attempts
		WHERE user_id = $1
		ORDER BY started_at DESC, id DESC
		LIMIT 1`

	return s.getOne(ctx, query, userID)
}

// GetByID implements store.AttemptStore.GetByID
func (s *PostgresAttemptStore) GetByID(ctx context.Context, userID uuid.UUID, attemptID int64) (*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + `
		FROM user_flashcard_attempts
		WHERE id = $1 AND user_id = $2`

	return s.getOne(ctx, query, attemptID, userID)
}

func (s *PostgresAttemptStore) getOne(ctx context.Context, query string, args ...any) (*domain.Attempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	attempt, err := scanAttempt(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttemptNotFound
		}
		log.Error("failed to load flashcard attempt", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return attempt, nil
}

// MarkSubmitted implements store.AttemptStore.MarkSubmitted
func (s *PostgresAttemptStore) MarkSubmitted(ctx context.Context, attemptID int64, submittedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE user_flashcard_attempts
		SET submitted_at = $2
		WHERE id = $1 AND submitted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, attemptID, submittedAt)
	if err != nil {
		log.Error("failed to submit flashcard attempt",
			slog.String("error", err.Error()),
			slog.Int64("attempt_id", attemptID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "flashcard attempt"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrAttemptNotFound
		}
		return err
	}
	return nil
}

// ListByUser implements store.AttemptStore.ListByUser
func (s *PostgresAttemptStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + attemptColumns + `
		FROM user_flashcard_attempts
		WHERE user_id = $1
		ORDER BY started_at DESC, id DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		log.Error("failed to list flashcard attempts",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	attempts := make([]domain.Attempt, 0, limit)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, MapError(err)
		}
		attempts = append(attempts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return attempts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*domain.Attempt, error) {
	var a domain.Attempt
	var submittedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.StartedAt, &a.Deadline, &submittedAt); err != nil {
		return nil, err
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		a.SubmittedAt = &t
	}
	return &a, nil
}

// dateParam renders a calendar day as YYYY-MM-DD in the time's own location,
// so the stored date matches the caller's notion of "today".
func dateParam(t time.Time) string {
	return t.Format(time.DateOnly)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/platform/logger"
	"github.com/habitutor/habitutor-api/internal/store"
)

// PostgresSlotStore implements the store.SlotStore interface on the
// user_flashcard_question_answers table.
type PostgresSlotStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSlotStore creates a new PostgreSQL implementation of the SlotStore interface.
func NewPostgresSlotStore(db store.DBTX, logger *slog.Logger) *PostgresSlotStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSlotStore{
		db:     db,
		logger: logger.With(slog.String("component", "slot_store")),
	}
}

var _ store.SlotStore = (*PostgresSlotStore)(nil)

// WithTx implements store.SlotStore.WithTx
func (s *PostgresSlotStore) WithTx(tx *sql.Tx) store.SlotStore {
	return &PostgresSlotStore{db: tx, logger: s.logger}
}

// CreateBatch implements store.SlotStore.CreateBatch.
// The slice order is persisted as the slot position.
func (s *PostgresSlotStore) CreateBatch(ctx context.Context, slots []domain.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	const cols = 4
	placeholders := make([]string, 0, len(slots))
	args := make([]any, 0, len(slots)*cols)
	for i, slot := range slots {
		base := i * cols
		placeholders = append(placeholders,
			fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, slot.AttemptID, dateParam(slot.AssignedDate), slot.QuestionID, i)
	}

	query := `INSERT INTO user_flashcard_question_answers (attempt_id, assigned_date, question_id, position)
		VALUES ` + strings.Join(placeholders, ", ")

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create flashcard slots",
			slog.String("error", err.Error()),
			slog.Int64("attempt_id", slots[0].AttemptID),
			slog.Int("count", len(slots)))
		return MapError(err)
	}

	log.Debug("flashcard slots created",
		slog.Int64("attempt_id", slots[0].AttemptID),
		slog.Int("count", len(slots)))
	return nil
}

// FindForQuestion implements store.SlotStore.FindForQuestion
func (s *PostgresSlotStore) FindForQuestion(
	ctx context.Context,
	userID uuid.UUID,
	questionID int64,
	assignedDate time.Time,
) (*domain.Slot, *domain.Attempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT s.attempt_id, s.assigned_date, s.question_id, s.selected_answer_id, s.answered_at,
		       a.id, a.user_id, a.date, a.started_at, a.deadline, a.submitted_at
		FROM user_flashcard_question_answers s
		JOIN user_flashcard_attempts a ON a.id = s.attempt_id
		WHERE a.user_id = $1 AND s.question_id = $2 AND s.assigned_date = $3
		ORDER BY a.started_at DESC, a.id DESC
		LIMIT 1
	`

	var slot domain.Slot
	var selected sql.NullInt64
	var answeredAt sql.NullTime
	var attempt domain.Attempt
	var submittedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, userID, questionID, dateParam(assignedDate)).Scan(
		&slot.AttemptID,
		&slot.AssignedDate,
		&slot.QuestionID,
		&selected,
		&answeredAt,
		&attempt.ID,
		&attempt.UserID,
		&attempt.Date,
		&attempt.StartedAt,
		&attempt.Deadline,
		&submittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no flashcard slot for question today",
				slog.String("user_id", userID.String()),
				slog.Int64("question_id", questionID))
			return nil, nil, store.ErrSlotNotFound
		}
		log.Error("failed to find flashcard slot",
			slog.String("error", err.Error()),
			slog.Int64("question_id", questionID))
		return nil, nil, MapError(err)
	}

	applySlotNullables(&slot, selected, answeredAt)
	if submittedAt.Valid {
		t := submittedAt.Time
		attempt.SubmittedAt = &t
	}
	return &slot, &attempt, nil
}

// SaveAnswer implements store.SlotStore.SaveAnswer
func (s *PostgresSlotStore) SaveAnswer(ctx context.Context, slot domain.Slot, answerID int64, answeredAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE user_flashcard_question_answers
		SET selected_answer_id = $4, answered_at = $5
		WHERE attempt_id = $1 AND assigned_date = $2 AND question_id = $3
	`
	result, err := s.db.ExecContext(ctx, query,
		slot.AttemptID, dateParam(slot.AssignedDate), slot.QuestionID, answerID, answeredAt)
	if err != nil {
		log.Error("failed to save flashcard answer",
			slog.String("error", err.Error()),
			slog.Int64("attempt_id", slot.AttemptID),
			slog.Int64("question_id", slot.QuestionID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "flashcard slot"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrSlotNotFound
		}
		return err
	}
	return nil
}

// ListByAttempt implements store.SlotStore.ListByAttempt
func (s *PostgresSlotStore) ListByAttempt(ctx context.Context, attemptID int64) ([]domain.Slot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT attempt_id, assigned_date, question_id, selected_answer_id, answered_at
		FROM user_flashcard_question_answers
		WHERE attempt_id = $1
		ORDER BY position, question_id
	`
	rows, err := s.db.QueryContext(ctx, query, attemptID)
	if err != nil {
		log.Error("failed to list flashcard slots",
			slog.String("error", err.Error()),
			slog.Int64("attempt_id", attemptID))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	slots := []domain.Slot{}
	for rows.Next() {
		var slot domain.Slot
		var selected sql.NullInt64
		var answeredAt sql.NullTime
		if err := rows.Scan(&slot.AttemptID, &slot.AssignedDate, &slot.QuestionID, &selected, &answeredAt); err != nil {
			return nil, MapError(err)
		}
		applySlotNullables(&slot, selected, answeredAt)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return slots, nil
}

func applySlotNullables(slot *domain.Slot, selected sql.NullInt64, answeredAt sql.NullTime) {
	if selected.Valid {
		v := selected.Int64
		slot.SelectedAnswerID = &v
	}
	if answeredAt.Valid {
		t := answeredAt.Time
		slot.AnsweredAt = &t
	}
}

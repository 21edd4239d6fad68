package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/domain"
)

// AttemptStore defines the interface for flashcard attempt persistence.
type AttemptStore interface {
	// Create inserts a new attempt and sets its ID.
	Create(ctx context.Context, attempt *domain.Attempt) error

	// GetLatest returns the user's most recently started attempt on any day.
	// Returns ErrAttemptNotFound if the user has never started one.
	GetLatest(ctx context.Context, userID uuid.UUID) (*domain.Attempt, error)

	// GetByID returns the attempt with the given ID if it belongs to the user.
	// Returns ErrAttemptNotFound otherwise.
	GetByID(ctx context.Context, userID uuid.UUID, attemptID int64) (*domain.Attempt, error)

	// MarkSubmitted seals an unsubmitted attempt.
	// Returns ErrAttemptNotFound if no unsubmitted attempt with that ID exists.
	MarkSubmitted(ctx context.Context, attemptID int64, submittedAt time.Time) error

	// ListByUser returns the user's attempts, most recently started first, at most limit rows.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Attempt, error)

	// WithTx returns a new AttemptStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AttemptStore
}

// SlotStore defines the interface for the per-attempt question slots that hold answers.
type SlotStore interface {
	// CreateBatch inserts all slots in one statement.
	CreateBatch(ctx context.Context, slots []domain.Slot) error

	// FindForQuestion returns the slot assigning questionID on assignedDate within
	// the user's most recently started attempt that contains it, together with that attempt.
	// Returns ErrSlotNotFound if the question was not assigned to the user that day.
	FindForQuestion(
		ctx context.Context,
		userID uuid.UUID,
		questionID int64,
		assignedDate time.Time,
	) (*domain.Slot, *domain.Attempt, error)

	// SaveAnswer overwrites the selected answer of one slot.
	// Returns ErrSlotNotFound if the slot does not exist.
	SaveAnswer(ctx context.Context, slot domain.Slot, answerID int64, answeredAt time.Time) error

	// ListByAttempt returns every slot of the attempt in assignment order.
	ListByAttempt(ctx context.Context, attemptID int64) ([]domain.Slot, error)

	// WithTx returns a new SlotStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SlotStore
}

// QuestionStore provides read access to questions and their answer options.
type QuestionStore interface {
	// SampleFlashcardIDs returns up to limit distinct IDs of flashcard-eligible
	// questions in random order.
	SampleFlashcardIDs(ctx context.Context, limit int) ([]int64, error)

	// GetByIDs returns the questions with the given IDs. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Question, error)

	// GetAnswerOptions returns all answer options of the given questions ordered by question and code.
	GetAnswerOptions(ctx context.Context, questionIDs []int64) ([]domain.AnswerOption, error)

	// WithTx returns a new QuestionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) QuestionStore
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/domain"
)

// UserStore persists accounts and their flashcard streak.
type UserStore interface {
	// Create hashes user.Password, clears it, and inserts the row. A taken
	// email yields ErrEmailExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID and GetByEmail return ErrUserNotFound when nothing matches.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDForUpdate reads the user with SELECT ... FOR UPDATE, serializing
	// session starts and submits for that user. Call it on a WithTx store.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// UpdateFlashcardStreak stores the streak and the time of the submit
	// that produced it.
	UpdateFlashcardStreak(ctx context.Context, id uuid.UUID, streak int, lastCompletedAt time.Time) error

	WithTx(tx *sql.Tx) UserStore
}

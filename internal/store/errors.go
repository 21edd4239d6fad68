package store

import (
	"errors"
	"fmt"
)

// Base errors. Implementations wrap these so callers can branch with
// errors.Is without knowing which store produced the failure.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")
)

// Entity-specific variants. Each one matches its base error as well.
var (
	ErrUserNotFound     = notFound("user")
	ErrAttemptNotFound  = notFound("flashcard attempt")
	ErrSlotNotFound     = notFound("flashcard question slot")
	ErrQuestionNotFound = notFound("question")

	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

func notFound(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

// IsNotFoundError reports whether err is ErrNotFound or any entity variant of it.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

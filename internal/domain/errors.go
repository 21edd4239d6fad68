package domain

import "errors"

// ErrValidation and ErrInvalidID mark caller mistakes; the HTTP layer maps
// anything wrapping them to 400.
var (
	ErrValidation = errors.New("validation failed")
	ErrInvalidID  = errors.New("invalid ID")
)

// ErrInvalidAttempt flags an attempt whose timestamps or owner make no sense.
// It indicates a bug in session construction, not bad client input.
var ErrInvalidAttempt = errors.New("invalid flashcard attempt")

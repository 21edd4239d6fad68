package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(hashedPassword, password string) error
}

// BcryptVerifier checks bcrypt hashes. A wrong password comes back as
// ErrInvalidCredentials; a hash bcrypt cannot parse is returned wrapped.
type BcryptVerifier struct{}

// NewBcryptVerifier returns a BcryptVerifier.
func NewBcryptVerifier() BcryptVerifier {
	return BcryptVerifier{}
}

// Compare implements PasswordVerifier.
func (BcryptVerifier) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("checking password hash: %w", err)
	}
}

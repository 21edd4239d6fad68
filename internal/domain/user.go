package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrEmptyName        = errors.New("name cannot be empty")
)

// User represents a registered Habitutor student.
// Besides credentials it carries the premium entitlement and flashcard streak counters.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword string    `json:"-"`

	PremiumExpiresAt         *time.Time `json:"premium_expires_at,omitempty"`
	FlashcardStreak          int        `json:"flashcard_streak"`
	LastCompletedFlashcardAt *time.Time `json:"last_completed_flashcard_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given name, email and password.
// The caller is responsible for hashing the password before storing the user.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Name == "" {
		return ErrEmptyName
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// IsPremiumAt reports whether the user's premium entitlement is active at now.
func (u *User) IsPremiumAt(now time.Time) bool {
	return u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now)
}

// RecordFlashcardCompletion applies a submitted session to the streak counters.
// The streak grows at most once per calendar day: if a completion is already
// recorded on or after dayStart nothing changes and false is returned.
func (u *User) RecordFlashcardCompletion(now, dayStart time.Time) bool {
	if u.LastCompletedFlashcardAt != nil && OnOrAfter(*u.LastCompletedFlashcardAt, dayStart) {
		return false
	}
	u.FlashcardStreak++
	completed := now
	u.LastCompletedFlashcardAt = &completed
	return true
}

// validateEmailFormat performs a structural check: a non-empty local part,
// a single @, and a dotted domain without a leading or trailing dot.
func validateEmailFormat(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return false
	}

	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	return len(domainPart) >= 3 && dot > 0 && !strings.HasSuffix(domainPart, ".")
}

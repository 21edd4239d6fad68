package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("Siti", " Siti@Example.com ", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID")
	}
	if user.Email != "siti@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.FlashcardStreak != 0 || user.LastCompletedFlashcardAt != nil {
		t.Error("Expected a fresh user to have no streak")
	}

	cases := []struct {
		name, email, password string
		want                  error
	}{
		{"", "a@b.co", "correct-horse-battery", ErrEmptyName},
		{"Siti", "", "correct-horse-battery", ErrEmptyEmail},
		{"Siti", "invalidemail", "correct-horse-battery", ErrInvalidEmail},
		{"Siti", "a@b.", "correct-horse-battery", ErrInvalidEmail},
		{"Siti", "a@b.co", "short", ErrPasswordTooShort},
		{"Siti", "a@b.co", string(make([]byte, 73)), ErrPasswordTooLong},
		{"Siti", "a@b.co", "", ErrEmptyPassword},
	}
	for _, c := range cases {
		if _, err := NewUser(c.name, c.email, c.password); err != c.want {
			t.Errorf("NewUser(%q, %q): expected %v, got %v", c.name, c.email, c.want, err)
		}
	}
}

func TestUserIsPremiumAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	if (&User{}).IsPremiumAt(now) {
		t.Error("user without expiry should not be premium")
	}
	if !(&User{PremiumExpiresAt: &future}).IsPremiumAt(now) {
		t.Error("user with future expiry should be premium")
	}
	if (&User{PremiumExpiresAt: &past}).IsPremiumAt(now) {
		t.Error("user with past expiry should not be premium")
	}
	if (&User{PremiumExpiresAt: &now}).IsPremiumAt(now) {
		t.Error("premium should end at the expiry instant")
	}
}

func TestRecordFlashcardCompletion(t *testing.T) {
	today := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	now := today.Add(9 * time.Hour)
	yesterday := today.Add(-2 * time.Hour)

	u := &User{FlashcardStreak: 3, LastCompletedFlashcardAt: &yesterday}
	if !u.RecordFlashcardCompletion(now, today) {
		t.Fatal("expected first completion of the day to count")
	}
	if u.FlashcardStreak != 4 {
		t.Errorf("expected streak 4, got %d", u.FlashcardStreak)
	}
	if !u.LastCompletedFlashcardAt.Equal(now) {
		t.Errorf("expected last completion %v, got %v", now, u.LastCompletedFlashcardAt)
	}

	later := now.Add(time.Hour)
	if u.RecordFlashcardCompletion(later, today) {
		t.Error("expected second completion on the same day to be ignored")
	}
	if u.FlashcardStreak != 4 || !u.LastCompletedFlashcardAt.Equal(now) {
		t.Error("second completion must leave the counters untouched")
	}

	fresh := &User{}
	if !fresh.RecordFlashcardCompletion(now, today) || fresh.FlashcardStreak != 1 {
		t.Error("expected first ever completion to start the streak at 1")
	}
}

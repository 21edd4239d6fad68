package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Defaults for the daily flashcard session.
const (
	DefaultSessionDuration     = 10 * time.Minute
	DefaultGracePeriod         = 5 * time.Second
	DefaultQuestionsPerSession = 5
	DefaultMinQuestionPool     = 5
	DefaultHistoryLimit        = 50
)

// SessionStatus is the state of a user's flashcard session for the current day.
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionOngoing    SessionStatus = "ongoing"
	SessionSubmitted  SessionStatus = "submitted"
)

// Attempt is one flashcard session started by a user.
// Attempts are created by start, sealed by submit and never deleted.
type Attempt struct {
	ID          int64      `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Date        time.Time  `json:"date"`
	StartedAt   time.Time  `json:"started_at"`
	Deadline    time.Time  `json:"deadline"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// NewAttempt builds an unsubmitted attempt starting at now. Date is the calendar
// day of now in loc, and the deadline is now plus duration.
func NewAttempt(userID uuid.UUID, now time.Time, duration time.Duration, loc *time.Location) (*Attempt, error) {
	a := &Attempt{
		UserID:    userID,
		Date:      DayStartIn(now, loc),
		StartedAt: now,
		Deadline:  now.Add(duration),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks that the attempt has an owner and a deadline after its start.
func (a *Attempt) Validate() error {
	if a.UserID == uuid.Nil {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidAttempt)
	}
	if a.StartedAt.IsZero() {
		return fmt.Errorf("%w: start time cannot be zero", ErrInvalidAttempt)
	}
	if !a.Deadline.After(a.StartedAt) {
		return fmt.Errorf("%w: deadline must be after start time", ErrInvalidAttempt)
	}
	return nil
}

// IsSubmitted reports whether the attempt has been sealed.
func (a *Attempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// StartedSince reports whether the attempt began on or after dayStart.
func (a *Attempt) StartedSince(dayStart time.Time) bool {
	return OnOrAfter(a.StartedAt, dayStart)
}

// AcceptsAt reports whether answers and submission are still accepted at now.
// The boundary deadline+grace itself is accepted.
func (a *Attempt) AcceptsAt(now time.Time, grace time.Duration) bool {
	return !now.After(a.Deadline.Add(grace))
}

// StatusOn derives the session status for the day beginning at dayStart.
// A nil attempt, or one started on an earlier day, counts as not started.
func StatusOn(a *Attempt, dayStart time.Time) SessionStatus {
	switch {
	case a == nil || !a.StartedSince(dayStart):
		return SessionNotStarted
	case a.IsSubmitted():
		return SessionSubmitted
	default:
		return SessionOngoing
	}
}

// Slot is one question assigned to an attempt, holding the user's current choice.
type Slot struct {
	AttemptID        int64      `json:"attempt_id"`
	AssignedDate     time.Time  `json:"assigned_date"`
	QuestionID       int64      `json:"question_id"`
	SelectedAnswerID *int64     `json:"selected_answer_id,omitempty"`
	AnsweredAt       *time.Time `json:"answered_at,omitempty"`
}

// IsAnswered reports whether an answer has been selected for the slot.
func (s Slot) IsAnswered() bool {
	return s.SelectedAnswerID != nil
}

// NewSlots creates one empty slot per question for the given attempt.
func NewSlots(attemptID int64, assignedDate time.Time, questionIDs []int64) []Slot {
	slots := make([]Slot, 0, len(questionIDs))
	for _, qid := range questionIDs {
		slots = append(slots, Slot{
			AttemptID:    attemptID,
			AssignedDate: assignedDate,
			QuestionID:   qid,
		})
	}
	return slots
}

// IsSlotCorrect reports whether the slot's selection equals the correct option
// for its question. Unanswered slots and questions without a known correct
// option are never correct.
func IsSlotCorrect(s Slot, correctByQuestion map[int64]int64) bool {
	if s.SelectedAnswerID == nil {
		return false
	}
	correct, ok := correctByQuestion[s.QuestionID]
	return ok && *s.SelectedAnswerID == correct
}

// CountCorrect counts the slots whose selection matches the correct option.
func CountCorrect(slots []Slot, correctByQuestion map[int64]int64) int {
	n := 0
	for _, s := range slots {
		if IsSlotCorrect(s, correctByQuestion) {
			n++
		}
	}
	return n
}

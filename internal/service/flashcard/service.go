package flashcard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/habitutor/habitutor-api/internal/domain"
)

// Service manages the daily flashcard session of a user.
//
// Per calendar day a user's session moves forward only:
// not_started, then ongoing, then submitted. Free users get exactly one
// attempt per day. Premium users may start another attempt after submitting,
// but never while an attempt started today is still open.
type Service interface {
	// Start opens a new attempt with a freshly sampled set of questions.
	// The precondition checks and all inserts share one transaction, so a
	// failure at any point leaves nothing behind.
	//
	// Returns ErrAlreadyStartedToday for a free user who already started today,
	// ErrSessionInProgress for a premium user with an open attempt from today,
	// and ErrNotEnoughContent when the eligible question pool is too small.
	Start(ctx context.Context, p domain.Principal) (*StartResult, error)

	// Get reports today's session status. For an ongoing session it includes
	// the questions that are still unanswered, without revealing correct options.
	Get(ctx context.Context, p domain.Principal) (*SessionView, error)

	// Save records the chosen answer for a question assigned to the user today.
	// Saving again overwrites the earlier choice.
	//
	// Returns ErrQuestionNotInSession, ErrSessionExpired or ErrAnswerNotFound.
	Save(ctx context.Context, p domain.Principal, questionID, answerID int64) (*SaveResult, error)

	// Submit seals today's latest attempt and advances the streak at most once per day.
	//
	// Returns ErrAttemptNotFound, ErrAlreadySubmitted or ErrSessionExpired.
	Submit(ctx context.Context, p domain.Principal) (*SubmitResult, error)

	// Result scores an attempt. A nil attemptID selects the latest attempt.
	//
	// Returns ErrAttemptNotFound if the attempt does not exist or belongs to someone else.
	Result(ctx context.Context, p domain.Principal, attemptID *int64) (*AttemptResult, error)

	// History lists past attempts, most recent first, for premium users.
	//
	// Returns ErrPremiumRequired for free users.
	History(ctx context.Context, p domain.Principal) ([]HistoryEntry, error)
}

// Business rule violations reported by Service.
var (
	// ErrAlreadyStartedToday is returned when a free user starts a second attempt on the same day.
	ErrAlreadyStartedToday = errors.New("flashcard session already started today")

	// ErrSessionInProgress is returned when a premium user starts while today's attempt is open.
	ErrSessionInProgress = errors.New("finish your existing flashcard session first")

	// ErrAlreadySubmitted is returned when today's latest attempt has been submitted.
	ErrAlreadySubmitted = errors.New("flashcard session already submitted")

	// ErrSessionExpired is returned once the deadline plus grace period has passed.
	ErrSessionExpired = errors.New("flashcard session time has ended")

	// ErrNotEnoughContent is returned when fewer eligible questions exist than the minimum pool.
	ErrNotEnoughContent = errors.New("not enough flashcard content")

	// ErrAttemptNotFound is returned when no matching attempt exists.
	ErrAttemptNotFound = errors.New("flashcard attempt not found")

	// ErrQuestionNotInSession is returned when the question is not assigned to the user today.
	ErrQuestionNotInSession = errors.New("question is not part of today's flashcard session")

	// ErrAnswerNotFound is returned when the question has no options or the answer is not one of them.
	ErrAnswerNotFound = errors.New("answer option not found")

	// ErrPremiumRequired is returned when a free user requests a premium-only operation.
	ErrPremiumRequired = errors.New("premium subscription required")
)

// ServiceError wraps infrastructure failures with the operation that hit them.
type ServiceError struct {
	// Operation is the name of the operation that failed (e.g., "start")
	Operation string

	// Message is a human-readable description of the error
	Message string

	// Err is the underlying error that caused this error
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

// StartResult describes a newly opened attempt.
type StartResult struct {
	AttemptID   int64
	StartedAt   time.Time
	Deadline    time.Time
	QuestionIDs []int64
}

// AnswerView is an answer option as shown to a user before results are revealed.
type AnswerView struct {
	ID      int64
	Code    string
	Content json.RawMessage
}

// QuestionView is a question with its selectable options.
type QuestionView struct {
	ID      int64
	Content json.RawMessage
	Answers []AnswerView
}

// AttemptSummary identifies an attempt and its time window.
type AttemptSummary struct {
	ID          int64
	StartedAt   time.Time
	Deadline    time.Time
	SubmittedAt *time.Time
}

// SessionView is the read model returned by Get.
type SessionView struct {
	Status    domain.SessionStatus
	Attempt   *AttemptSummary
	Questions []QuestionView
}

// SaveResult is the immediate feedback for a saved answer.
type SaveResult struct {
	IsCorrect       bool
	CorrectAnswerID int64
	UserAnswerID    int64
}

// SubmitResult describes a sealed attempt.
type SubmitResult struct {
	AttemptID         int64
	SubmittedAt       time.Time
	Streak            int
	StreakIncremented bool
}

// QuestionResult is the scored breakdown of one slot.
type QuestionResult struct {
	QuestionID       int64
	Content          json.RawMessage
	SelectedAnswerID *int64
	CorrectAnswerID  int64
	IsCorrect        bool
	Answers          []AnswerView
}

// AttemptResult is the scored breakdown of a whole attempt.
type AttemptResult struct {
	AttemptID           int64
	StartedAt           time.Time
	Deadline            time.Time
	SubmittedAt         *time.Time
	CorrectAnswersCount int
	TotalQuestions      int
	Questions           []QuestionResult
}

// HistoryEntry is one past attempt.
type HistoryEntry struct {
	ID          int64
	StartedAt   time.Time
	SubmittedAt *time.Time
}

// Config holds the tunable rules of the session.
type Config struct {
	SessionDuration     time.Duration
	GracePeriod         time.Duration
	QuestionsPerSession int
	MinPool             int
	HistoryLimit        int
	// Location decides where calendar days begin.
	Location *time.Location
}

// DefaultConfig returns the standard rules evaluated in UTC.
func DefaultConfig() Config {
	return Config{
		SessionDuration:     domain.DefaultSessionDuration,
		GracePeriod:         domain.DefaultGracePeriod,
		QuestionsPerSession: domain.DefaultQuestionsPerSession,
		MinPool:             domain.DefaultMinQuestionPool,
		HistoryLimit:        domain.DefaultHistoryLimit,
		Location:            time.UTC,
	}
}

func (c Config) validate() error {
	switch {
	case c.SessionDuration <= 0:
		return errors.New("session duration must be positive")
	case c.GracePeriod < 0:
		return errors.New("grace period cannot be negative")
	case c.QuestionsPerSession <= 0:
		return errors.New("questions per session must be positive")
	case c.MinPool <= 0:
		return errors.New("minimum pool must be positive")
	case c.HistoryLimit <= 0:
		return errors.New("history limit must be positive")
	case c.Location == nil:
		return errors.New("location is required")
	}
	return nil
}

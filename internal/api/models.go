package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"userId"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

// SaveAnswerRequest selects an answer for one question of today's session.
type SaveAnswerRequest struct {
	QuestionID int64 `json:"questionId" validate:"required,gt=0"`
	AnswerID   int64 `json:"answerId"   validate:"required,gt=0"`
}

// SaveAnswerResponse is the immediate feedback for a saved answer.
type SaveAnswerResponse struct {
	IsCorrect       bool  `json:"isCorrect"`
	CorrectAnswerID int64 `json:"correctAnswerId"`
	UserAnswerID    int64 `json:"userAnswerId"`
}

// StartResponse describes a newly started attempt.
type StartResponse struct {
	AttemptID   int64     `json:"attemptId"`
	StartedAt   time.Time `json:"startedAt"`
	Deadline    time.Time `json:"deadline"`
	QuestionIDs []int64   `json:"questionIds"`
}

// AnswerResponse is a selectable option without its correctness flag.
type AnswerResponse struct {
	ID      int64           `json:"id"`
	Code    string          `json:"code"`
	Content json.RawMessage `json:"content"`
}

// QuestionResponse is an unanswered question of the ongoing session.
type QuestionResponse struct {
	ID      int64            `json:"id"`
	Content json.RawMessage  `json:"content"`
	Answers []AnswerResponse `json:"answers"`
}

// AttemptResponse identifies the attempt behind a session status.
type AttemptResponse struct {
	ID          int64      `json:"id"`
	StartedAt   time.Time  `json:"startedAt"`
	Deadline    time.Time  `json:"deadline"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

// SessionResponse is today's session status.
type SessionResponse struct {
	Status    domain.SessionStatus `json:"status"`
	Attempt   *AttemptResponse     `json:"attempt,omitempty"`
	Questions []QuestionResponse   `json:"questions"`
}

// SubmitResponse confirms a submitted session.
type SubmitResponse struct {
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
	Streak      int       `json:"streak"`
}

// QuestionResultResponse is the scored breakdown of one question.
type QuestionResultResponse struct {
	QuestionID       int64            `json:"questionId"`
	Content          json.RawMessage  `json:"content"`
	SelectedAnswerID *int64           `json:"selectedAnswerId"`
	CorrectAnswerID  int64            `json:"correctAnswerId"`
	IsCorrect        bool             `json:"isCorrect"`
	Answers          []AnswerResponse `json:"answers"`
}

// ResultResponse is the scored breakdown of an attempt.
type ResultResponse struct {
	AttemptID           int64                    `json:"attemptId"`
	StartedAt           time.Time                `json:"startedAt"`
	Deadline            time.Time                `json:"deadline"`
	SubmittedAt         *time.Time               `json:"submittedAt"`
	CorrectAnswersCount int                      `json:"correctAnswersCount"`
	TotalQuestions      int                      `json:"totalQuestions"`
	Questions           []QuestionResultResponse `json:"questions"`
}

// HistoryItemResponse is one past attempt.
type HistoryItemResponse struct {
	ID          int64      `json:"id"`
	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt"`
}

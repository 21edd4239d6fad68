package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Flashcard session lifecycle event types.
const (
	TypeSessionStarted   = "flashcard.session_started"
	TypeAnswerSaved      = "flashcard.answer_saved"
	TypeSessionSubmitted = "flashcard.session_submitted"
)

// Event is a fact published by a service after its transaction committed.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type names what happened, e.g. TypeSessionStarted
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SessionStartedPayload accompanies TypeSessionStarted.
type SessionStartedPayload struct {
	UserID        uuid.UUID `json:"user_id"`
	AttemptID     int64     `json:"attempt_id"`
	QuestionCount int       `json:"question_count"`
	Premium       bool      `json:"premium"`
}

// AnswerSavedPayload accompanies TypeAnswerSaved.
type AnswerSavedPayload struct {
	UserID     uuid.UUID `json:"user_id"`
	AttemptID  int64     `json:"attempt_id"`
	QuestionID int64     `json:"question_id"`
	Correct    bool      `json:"correct"`
}

// SessionSubmittedPayload accompanies TypeSessionSubmitted.
type SessionSubmittedPayload struct {
	UserID            uuid.UUID `json:"user_id"`
	AttemptID         int64     `json:"attempt_id"`
	Streak            int       `json:"streak"`
	StreakIncremented bool      `json:"streak_incremented"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }

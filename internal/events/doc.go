// Package events provides an in-process publish/subscribe seam.
//
// Services emit lifecycle events (a flashcard session started, an answer was
// saved, a session was submitted) without knowing who listens. Metrics
// collection subscribes as a handler.
package events

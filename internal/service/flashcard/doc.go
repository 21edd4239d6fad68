// Package flashcard implements the daily flashcard session: starting an attempt
// with a random question sample, saving answers before the deadline, submitting
// with streak accounting, and scoring results.
//
// Every rule is evaluated against the calendar day of the configured location.
// Start and Submit lock the user row inside a transaction so concurrent calls
// for one user serialize.
package flashcard

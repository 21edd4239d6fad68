// Package domain contains the core business entities and pure rules of the
// flashcard daily session: calendar-day boundaries, attempts and their
// answer slots, questions with their options, users with streak counters,
// and scoring. It has no knowledge of storage or transport.
package domain

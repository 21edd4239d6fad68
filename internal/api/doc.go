// Package api contains the HTTP handlers for authentication and the daily
// flashcard session. Handlers decode and validate requests, call the services
// and map service errors to status codes and safe messages.
package api

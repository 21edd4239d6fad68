package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/habitutor/habitutor-api/internal/api/shared"
	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/service/auth"
	"github.com/habitutor/habitutor-api/internal/service/flashcard"
	"github.com/habitutor/habitutor-api/internal/store"
)

// userValidationErrors are domain errors whose message is safe to show as-is.
var userValidationErrors = []error{
	domain.ErrEmptyName,
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrEmptyPassword,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, flashcard.ErrPremiumRequired):
		return http.StatusForbidden

	case errors.Is(err, flashcard.ErrAttemptNotFound),
		errors.Is(err, flashcard.ErrQuestionNotInSession),
		errors.Is(err, flashcard.ErrAnswerNotFound),
		errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, flashcard.ErrAlreadyStartedToday),
		errors.Is(err, flashcard.ErrSessionInProgress),
		errors.Is(err, flashcard.ErrAlreadySubmitted),
		errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, flashcard.ErrSessionExpired),
		errors.Is(err, flashcard.ErrNotEnoughContent):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		isUserValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, flashcard.ErrAlreadyStartedToday):
		return "You have already started today's flashcard session"
	case errors.Is(err, flashcard.ErrSessionInProgress):
		return "Finish your existing flashcard session first"
	case errors.Is(err, flashcard.ErrAlreadySubmitted):
		return "Flashcard session already submitted"
	case errors.Is(err, flashcard.ErrSessionExpired):
		return "Flashcard session time has ended"
	case errors.Is(err, flashcard.ErrNotEnoughContent):
		return "Not enough flashcard content"
	case errors.Is(err, flashcard.ErrAttemptNotFound):
		return "Flashcard attempt not found"
	case errors.Is(err, flashcard.ErrQuestionNotInSession):
		return "Question is not part of today's session"
	case errors.Is(err, flashcard.ErrAnswerNotFound):
		return "Answer not found"
	case errors.Is(err, flashcard.ErrPremiumRequired):
		return "Premium subscription required"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case isUserValidationError(err):
		return capitalize(err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
// A non-empty fallback replaces the safe message of internal errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

// SanitizeValidationError turns validator errors into a short message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gt", "gte":
		return "must be positive"
	default:
		return "validation failed"
	}
}

func isUserValidationError(err error) bool {
	for _, target := range userValidationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

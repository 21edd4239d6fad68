package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/api/shared"
	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/platform/logger"
	"github.com/habitutor/habitutor-api/internal/service/auth"
	"github.com/habitutor/habitutor-api/internal/store"
)

// UserLoader resolves the user named by a token.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AuthMiddleware authenticates bearer tokens and resolves the caller's entitlements.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      UserLoader
	now        func() time.Time
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(jwtService auth.JWTService, users UserLoader) *AuthMiddleware {
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	if users == nil {
		panic("users cannot be nil")
	}
	return &AuthMiddleware{jwtService: jwtService, users: users, now: time.Now}
}

// Authenticate validates the Authorization header, loads the user and stores a
// domain.Principal in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" || strings.Contains(token, " ") {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrWrongTokenType),
				errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithElevatedLogLevel())
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		p := domain.Principal{UserID: user.ID, IsPremium: user.IsPremiumAt(m.now())}
		ctx := shared.WithPrincipal(r.Context(), p)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With(slog.String("user_id", p.UserID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePremium rejects callers without an active premium entitlement.
// It must run after Authenticate.
func RequirePremium(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := shared.PrincipalFromContext(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !p.IsPremium {
			shared.RespondWithError(w, r, http.StatusForbidden, "Premium subscription required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

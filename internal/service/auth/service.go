package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/platform/logger"
	"github.com/habitutor/habitutor-api/internal/store"
)

// Session is the outcome of a successful authentication.
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// Service registers users and exchanges credentials for token pairs.
type Service interface {
	// Register creates a user and signs them in.
	// Returns domain validation errors or store.ErrEmailExists.
	Register(ctx context.Context, name, email, password string) (*Session, error)

	// Login verifies credentials. Returns ErrInvalidCredentials on any mismatch.
	Login(ctx context.Context, email, password string) (*Session, error)

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

type authService struct {
	users    store.UserStore
	jwt      JWTService
	verifier PasswordVerifier
	logger   *slog.Logger
}

var _ Service = (*authService)(nil)

// NewService creates an auth Service.
func NewService(
	users store.UserStore,
	jwtService JWTService,
	verifier PasswordVerifier,
	logger *slog.Logger,
) (Service, error) {
	if users == nil {
		return nil, errors.New("users cannot be nil")
	}
	if jwtService == nil {
		return nil, errors.New("jwtService cannot be nil")
	}
	if verifier == nil {
		return nil, errors.New("verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		users:    users,
		jwt:      jwtService,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Register implements Service.
func (s *authService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return s.issue(ctx, user)
}

// Login implements Service.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		} else {
			log.Error("stored password hash unusable",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
		}
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// Refresh implements Service.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.issue(ctx, user)
}

func (s *authService) issue(ctx context.Context, user *domain.User) (*Session, error) {
	access, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

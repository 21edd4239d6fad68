package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/habitutor/habitutor-api/internal/config"
	"github.com/habitutor/habitutor-api/internal/domain"
	"github.com/habitutor/habitutor-api/internal/platform/metrics"
	"github.com/habitutor/habitutor-api/internal/platform/ratelimit"
	"github.com/habitutor/habitutor-api/internal/service/auth"
	"github.com/habitutor/habitutor-api/internal/service/flashcard"
	"github.com/habitutor/habitutor-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerUserStore struct {
	users map[uuid.UUID]*domain.User
}

func (s *routerUserStore) Create(context.Context, *domain.User) error { return nil }

func (s *routerUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (s *routerUserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.GetByID(ctx, id)
}

func (s *routerUserStore) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

func (s *routerUserStore) UpdateFlashcardStreak(context.Context, uuid.UUID, int, time.Time) error {
	return nil
}

func (s *routerUserStore) WithTx(*sql.Tx) store.UserStore { return s }

type routerFlashcardService struct {
	flashcard.Service
}

func (routerFlashcardService) Get(context.Context, domain.Principal) (*flashcard.SessionView, error) {
	return &flashcard.SessionView{Status: domain.SessionNotStarted}, nil
}

func (routerFlashcardService) History(context.Context, domain.Principal) ([]flashcard.HistoryEntry, error) {
	return []flashcard.HistoryEntry{}, nil
}

type routerAuthService struct {
	auth.Service
}

func (routerAuthService) Login(context.Context, string, string) (*auth.Session, error) {
	return nil, auth.ErrInvalidCredentials
}

type routerFixture struct {
	handler  http.Handler
	jwt      auth.JWTService
	freeUser uuid.UUID
	premium  uuid.UUID
}

func newRouterFixture(t *testing.T, requestsPerWindow int) *routerFixture {
	t.Helper()

	authCfg := config.AuthConfig{
		JWTSecret:                   "router-test-secret-that-is-long-enough",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
		BCryptCost:                  4,
	}
	jwtService, err := auth.NewJWTService(authCfg)
	require.NoError(t, err)

	premiumUntil := time.Now().Add(30 * 24 * time.Hour)
	free := &domain.User{ID: uuid.New(), Email: "free@example.com"}
	premium := &domain.User{ID: uuid.New(), Email: "premium@example.com", PremiumExpiresAt: &premiumUntil}

	app := &application{
		config: &config.Config{
			Auth:      authCfg,
			RateLimit: config.RateLimitConfig{Requests: requestsPerWindow, WindowSeconds: 30, MaxKeys: 100},
			CORS:      config.CORSConfig{AllowedOrigins: []string{"https://app.habitutor.test"}},
		},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics.New(),
		limiter: ratelimit.NewLRUStore(requestsPerWindow, time.Minute, 100),
		userStore: &routerUserStore{users: map[uuid.UUID]*domain.User{
			free.ID:    free,
			premium.ID: premium,
		}},
		jwtService:       jwtService,
		authService:      routerAuthService{},
		flashcardService: routerFlashcardService{},
	}

	return &routerFixture{
		handler:  app.setupRouter(),
		jwt:      jwtService,
		freeUser: free.ID,
		premium:  premium.ID,
	}
}

func (f *routerFixture) do(t *testing.T, method, path string, userID *uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != nil {
		token, err := f.jwt.GenerateToken(context.Background(), *userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t, 100)

	rec := f.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `habitutor_http_request_duration_seconds_count{method="GET",route="/health",status="200"} 1`)
}

func TestRouterFlashcardRequiresAuthentication(t *testing.T) {
	f := newRouterFixture(t, 100)

	rec := f.do(t, http.MethodGet, "/api/flashcard", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/flashcard", &f.freeUser, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"not_started","questions":[]}`, rec.Body.String())

	stranger := uuid.New()
	rec = f.do(t, http.MethodGet, "/api/flashcard", &stranger, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterHistoryIsPremiumOnly(t *testing.T) {
	f := newRouterFixture(t, 100)

	rec := f.do(t, http.MethodGet, "/api/flashcard/history", &f.freeUser, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/flashcard/history", &f.premium, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouterRateLimitsAPI(t *testing.T) {
	f := newRouterFixture(t, 2)
	body := `{"email":"someone@example.com","password":"not the password"}`

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/api/auth/login", nil, body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/api/auth/login", nil, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	// the limiter's own window, not the config copy
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = f.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	f := newRouterFixture(t, 100)

	preflight := func(origin, headers string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/flashcard/start", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		if headers != "" {
			req.Header.Set("Access-Control-Request-Headers", headers)
		}
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		return rec
	}

	// Browsers send request header names lowercased.
	tests := []struct {
		name      string
		origin    string
		headers   string
		wantAllow string
	}{
		{"authorization", "https://app.habitutor.test", "authorization", "https://app.habitutor.test"},
		{"authorization and content type", "https://app.habitutor.test", "authorization,content-type", "https://app.habitutor.test"},
		{"no extra headers", "https://app.habitutor.test", "", "https://app.habitutor.test"},
		{"header not allowed", "https://app.habitutor.test", "x-debug", ""},
		{"unknown origin", "https://evil.test", "authorization", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := preflight(tt.origin, tt.headers)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

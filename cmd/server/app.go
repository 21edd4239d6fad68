package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitutor/habitutor-api/internal/config"
	"github.com/habitutor/habitutor-api/internal/events"
	"github.com/habitutor/habitutor-api/internal/platform/metrics"
	"github.com/habitutor/habitutor-api/internal/platform/postgres"
	"github.com/habitutor/habitutor-api/internal/platform/ratelimit"
	"github.com/habitutor/habitutor-api/internal/service/auth"
	"github.com/habitutor/habitutor-api/internal/service/flashcard"
	"github.com/habitutor/habitutor-api/internal/store"
)

// application holds the shared dependencies of the server and closes them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	metrics *metrics.Metrics
	limiter *ratelimit.LRUStore

	userStore store.UserStore

	jwtService       auth.JWTService
	authService      auth.Service
	flashcardService flashcard.Service
}

// newApplication wires stores, services and observability on top of an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
		limiter: ratelimit.NewLRUStore(
			cfg.RateLimit.Requests,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
			cfg.RateLimit.MaxKeys,
		),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	attemptStore := postgres.NewPostgresAttemptStore(db, logger)
	slotStore := postgres.NewPostgresSlotStore(db, logger)
	questionStore := postgres.NewPostgresQuestionStore(db, logger)

	app.authService, err = auth.NewService(app.userStore, app.jwtService, auth.NewBcryptVerifier(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	emitter := events.NewDispatcher(logger)
	emitter.Subscribe(app.metrics,
		events.TypeSessionStarted, events.TypeAnswerSaved, events.TypeSessionSubmitted)

	app.flashcardService, err = flashcard.NewService(
		store.NewSQLTransactor(db).WithOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted}),
		app.userStore,
		attemptStore,
		slotStore,
		questionStore,
		flashcardConfig(cfg.Flashcard),
		logger,
		flashcard.WithEmitter(emitter),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	logger.Info("Application initialized successfully",
		"flashcard_timezone", cfg.Flashcard.Timezone,
		"questions_per_session", cfg.Flashcard.QuestionsPerSession)
	return app, nil
}

func flashcardConfig(c config.FlashcardConfig) flashcard.Config {
	return flashcard.Config{
		SessionDuration:     c.SessionDuration(),
		GracePeriod:         c.GracePeriod(),
		QuestionsPerSession: c.QuestionsPerSession,
		MinPool:             c.MinPool,
		HistoryLimit:        c.HistoryLimit,
		Location:            c.Location(),
	}
}

// Run serves HTTP until ctx ends or the process receives SIGINT/SIGTERM.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources after the server has stopped.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}

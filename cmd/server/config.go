package main

import (
	"fmt"
	"log/slog"

	"github.com/habitutor/habitutor-api/internal/config"
	"github.com/habitutor/habitutor-api/internal/platform/logger"
)

// bootstrap loads configuration and installs the process-wide logger. Every
// CLI command starts here.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Group("flashcard",
			slog.String("timezone", cfg.Flashcard.Timezone),
			slog.Int("session_minutes", cfg.Flashcard.SessionMinutes),
			slog.Int("questions_per_session", cfg.Flashcard.QuestionsPerSession)),
		slog.Group("ratelimit",
			slog.Int("requests", cfg.RateLimit.Requests),
			slog.Int("window_seconds", cfg.RateLimit.WindowSeconds)),
		slog.Int("cors_origins", len(cfg.CORS.AllowedOrigins)))

	return cfg, log, nil
}

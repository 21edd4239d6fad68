package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. HABITUTOR_DATABASE_URL for database.url.
const EnvPrefix = "HABITUTOR"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound explicitly.
	for _, key := range []string{"database.url", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Flashcard.Timezone); err != nil {
		return nil, fmt.Errorf("config validation failed: unknown flashcard timezone %q: %w",
			cfg.Flashcard.Timezone, err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.connect_max_elapsed_seconds", 30)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("flashcard.timezone", "Asia/Jakarta")
	v.SetDefault("flashcard.session_minutes", 10)
	v.SetDefault("flashcard.grace_seconds", 5)
	v.SetDefault("flashcard.questions_per_session", 5)
	v.SetDefault("flashcard.min_pool", 5)
	v.SetDefault("flashcard.history_limit", 50)

	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("ratelimit.max_keys", 10000)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Location resolves the configured flashcard timezone. Load has already
// verified the name, so failures fall back to UTC.
func (c FlashcardConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SessionDuration is the time a user has to finish a started session.
func (c FlashcardConfig) SessionDuration() time.Duration {
	return time.Duration(c.SessionMinutes) * time.Minute
}

// GracePeriod is the tolerance past the deadline during which save and submit still succeed.
func (c FlashcardConfig) GracePeriod() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}

package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Flashcard FlashcardConfig `mapstructure:"flashcard" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" validate:"required"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                      string `mapstructure:"url"                         validate:"required,url"`
	MaxOpenConns             int    `mapstructure:"max_open_conns"              validate:"gte=1"`
	MaxIdleConns             int    `mapstructure:"max_idle_conns"              validate:"gte=0"`
	ConnMaxLifetimeMinutes   int    `mapstructure:"conn_max_lifetime_minutes"   validate:"gte=1"`
	ConnectMaxElapsedSeconds int    `mapstructure:"connect_max_elapsed_seconds" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=525600"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// FlashcardConfig tunes the daily flashcard session rules.
// Timezone is an IANA location name; it decides where a calendar day begins.
type FlashcardConfig struct {
	Timezone            string `mapstructure:"timezone"              validate:"required"`
	SessionMinutes      int    `mapstructure:"session_minutes"       validate:"gt=0"`
	GraceSeconds        int    `mapstructure:"grace_seconds"         validate:"gte=0"`
	QuestionsPerSession int    `mapstructure:"questions_per_session" validate:"gt=0"`
	MinPool             int    `mapstructure:"min_pool"              validate:"gt=0"`
	HistoryLimit        int    `mapstructure:"history_limit"         validate:"gt=0,lte=500"`
}

// RateLimitConfig contains settings for the request rate limiter.
type RateLimitConfig struct {
	Requests      int `mapstructure:"requests"       validate:"gt=0"`
	WindowSeconds int `mapstructure:"window_seconds" validate:"gt=0"`
	MaxKeys       int `mapstructure:"max_keys"       validate:"gt=0"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

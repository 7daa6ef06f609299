package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const defaultJWTSecret = "your_jwt_secret_minimum_32_chars_here_change_this"

type Config struct {
	// Application
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppPort     string `envconfig:"APP_PORT" default:"3000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	// Comma separated list of origins allowed for CORS and the feed socket
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"kudos"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"kudos_db"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Security
	JWTSecret                  string `envconfig:"JWT_SECRET"`
	JWTAccessExpirationMinutes int    `envconfig:"JWT_ACCESS_EXPIRATION_MINUTES" default:"30"`
	JWTRefreshExpirationDays   int    `envconfig:"JWT_REFRESH_EXPIRATION_DAYS" default:"30"`

	// Redis backs the one-time auth code exchange only
	RedisEnabled bool          `envconfig:"REDIS_ENABLED" default:"false"`
	RedisURL     string        `envconfig:"REDIS_URL"`
	AuthCodeTTL  time.Duration `envconfig:"AUTH_CODE_TTL" default:"5m"`

	// Rate Limiting
	RateLimitPerUser int           `envconfig:"RATE_LIMIT_PER_USER" default:"120"`
	RateLimitPerIP   int           `envconfig:"RATE_LIMIT_PER_IP" default:"300"`
	RateLimitWindow  time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// Ledger
	DefaultGivingBudget int    `envconfig:"DEFAULT_GIVING_BUDGET" default:"200"`
	BudgetResetSchedule string `envconfig:"BUDGET_RESET_SCHEDULE" default:"0 0 1 * *"`

	// Realtime feed
	FeedBufferSize   int `envconfig:"FEED_BUFFER_SIZE" default:"256"`
	FeedClientBuffer int `envconfig:"FEED_CLIENT_BUFFER" default:"32"`

	// Optional Telegram mirror of the kudo feed
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`

	// Password given to seeded demo users
	SeedPassword string `envconfig:"SEED_PASSWORD" default:"password123"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.JWTAccessExpirationMinutes <= 0 || c.JWTRefreshExpirationDays <= 0 {
		return fmt.Errorf("JWT expirations must be positive")
	}
	if c.RedisEnabled && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when REDIS_ENABLED is true")
	}
	if c.DefaultGivingBudget < 0 {
		return fmt.Errorf("DEFAULT_GIVING_BUDGET must not be negative")
	}
	if c.FeedBufferSize <= 0 || c.FeedClientBuffer <= 0 {
		return fmt.Errorf("FEED_BUFFER_SIZE and FEED_CLIENT_BUFFER must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be changed from default in production")
	}
	if c.SeedPassword == "password123" {
		return fmt.Errorf("SEED_PASSWORD must be changed from default in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTAccessExpirationMinutes) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWTRefreshExpirationDays) * 24 * time.Hour
}

// TelegramRelayEnabled reports whether kudo events are mirrored to Telegram.
func (c *Config) TelegramRelayEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.FrontendURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

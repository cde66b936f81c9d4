package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Session  SessionConfig
	Ratings  RatingsConfig
	Server   ServerConfig
	LogLevel string `env:"LOG_LEVEL" env-default:"info" env-description:"logrus level"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" env-required:"true" env-description:"postgres:// URL or sqlite path/DSN"`
}

// SessionConfig controls the login session cookie.
type SessionConfig struct {
	Secret     string        `env:"SECRET_KEY" env-default:"dev-secret-change-me" env-description:"session signing secret"`
	TTL        time.Duration `env:"SESSION_TTL" env-default:"24h"`
	CookieName string        `env:"SESSION_COOKIE" env-default:"session"`
	Secure     bool          `env:"SESSION_SECURE" env-default:"false"`
}

// RatingsConfig points at the external rating counts API.
type RatingsConfig struct {
	URL     string        `env:"RATINGS_URL" env-default:"https://www.goodreads.com/book/review_counts.json"`
	Key     string        `env:"GOODREADS_KEY"`
	Timeout time.Duration `env:"RATINGS_TIMEOUT" env-default:"10s"`
}

// ServerConfig contains listen addresses.
type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	FeedAddr string `env:"FEED_ADDR" env-default:":7070"`
	GRPCAddr string `env:"GRPC_ADDR" env-default:":50051"`
	GinMode  string `env:"GIN_MODE" env-default:"release"`
}

// LoadConfig reads the optional env files (default ".env") into the process
// environment and then builds Config from it. Variables already set in the
// environment win over the file.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// Usage describes the supported environment variables.
func Usage() string {
	var cfg Config
	help, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return help
}

// String returns a representation of the config with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, Feed: %s, gRPC: %s, Ratings: %s, Session: *** (masked) ***}",
		maskURL(c.Database.URL), c.Server.HTTPAddr, c.Server.FeedAddr, c.Server.GRPCAddr, c.Ratings.URL)
}

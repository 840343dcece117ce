package usersvc

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the service configuration, loaded from environment variables.
// The defaults make the service runnable with no configuration at all, which
// is what the contract test harness relies on when it launches the service
// itself.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8000".
	Addr string `env:"USERS_API_ADDR" envDefault:"127.0.0.1:8000"`

	// DBPath is the SQLite database file. The harness points this at a
	// per-session temp file so it can reset state between tests.
	DBPath string `env:"USERS_API_DB" envDefault:"users.db"`

	// JWTSecret signs bearer tokens. The default is a well-known value so
	// that the token flow is testable without provisioning secrets.
	JWTSecret string `env:"USERS_API_JWT_SECRET" envDefault:"test_jwt_secret"`

	// TokenTTL is the lifetime of issued bearer tokens.
	TokenTTL time.Duration `env:"USERS_API_TOKEN_TTL" envDefault:"60m"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"USERS_API_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

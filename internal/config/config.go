package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime knob the server needs. Values come from
// the environment, optionally seeded from a .env file.
type Config struct {
	Addr  string `env:"ADDR" envDefault:":3002"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:tally.db?cache=shared"`

	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required"`
	TokenIssuer        string `env:"TOKEN_ISSUER" envDefault:"tally"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:3000"`
	SuccessURL   string `env:"AUTH_SUCCESS_URL" envDefault:"http://localhost:3000/dashboard"`
	FailureURL   string `env:"AUTH_FAILURE_URL" envDefault:"http://localhost:3000/login"`
}

// GoogleEnabled reports whether the federated login routes should be
// mounted at all.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleCallbackURL != ""
}

// Load reads .env when present, then parses the environment.
func Load() (Config, error) {
	// Missing .env is fine in production, the environment is canonical.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

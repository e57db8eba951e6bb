// Package config loads application configuration from the environment.
//
// CONFIGURATION STRATEGY:
// 1. godotenv.Load() reads a .env file into the process environment if one
//    exists (local development convenience — production sets real env vars,
//    so a missing file is not an error).
// 2. env.Parse() then fills the Config struct from the environment using the
//    `env` struct tags, applying defaults where a variable is unset.
//
// Keeping all knobs in one struct means the rest of the codebase never calls
// os.Getenv — main.go loads the config once and passes values down.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting the server needs.
//
// SESSION_SECRET is the HMAC key for signing session cookies. It has no
// default on purpose: running with a guessable key would let anyone forge a
// session for any user id. Load() fails loudly if it's missing or short.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DBPath      string `env:"DB_PATH" envDefault:"data/gogitracker.db"`
	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"web/templates"`

	SessionSecret string `env:"SESSION_SECRET"`

	// GitHubCallbackURL is the fixed OAuth callback address registered with
	// each user's GitHub OAuth app. Empty means "derive from the port".
	GitHubCallbackURL string `env:"GITHUB_CALLBACK_URL"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (best effort) and the process environment into a Config.
func Load() (*Config, error) {
	// Best effort: absence of a .env file just means the environment is the
	// only source, which is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if len(cfg.SessionSecret) < 16 {
		return nil, fmt.Errorf("config: SESSION_SECRET must be set and at least 16 characters")
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/github-callback", cfg.Port)
	}

	return &cfg, nil
}

// SlogLevel maps the LOG_LEVEL string to a slog.Level, defaulting to Info
// for anything unrecognized.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

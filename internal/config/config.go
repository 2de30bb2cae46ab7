package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"auction-house/utils"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DevJWTSecret is used when JWT_SECRET is unset. Fine locally, never in production.
const DevJWTSecret = "auction-house-dev-secret"

// Config holds all runtime settings. It is read-only once loaded.
type Config struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Lifecycle sweeper cadence
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1s"`

	// Notification queue
	NotificationTTL time.Duration `env:"NOTIFICATION_TTL" envDefault:"5s"`
	NotificationMax int           `env:"NOTIFICATION_MAX" envDefault:"0"`

	// Sessions
	JWTSecret  string        `env:"JWT_SECRET"  envDefault:"auction-house-dev-secret"`
	TokenTTL   time.Duration `env:"TOKEN_TTL"   envDefault:"12h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	// Listing drafter; drafting is disabled unless both are set
	DrafterURL     string        `env:"DRAFTER_URL"`
	DrafterAPIKey  string        `env:"DRAFTER_API_KEY"`
	DrafterTimeout time.Duration `env:"DRAFTER_TIMEOUT" envDefault:"15s"`

	// Seed catalogue path; empty loads the built-in demo data
	SeedFile string `env:"SEED_FILE"`

	// Per-client bid throttling
	BidRatePerSec float64 `env:"BID_RATE_PER_SEC" envDefault:"5"`
	BidRateBurst  int     `env:"BID_RATE_BURST"   envDefault:"10"`
}

// Load reads optional .env files (".env" by default) into the process
// environment without overriding variables already set, then parses it.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read env file: %w", err)
		}
		utils.Info("config: no .env file found, relying on environment variables", nil)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, cfg.validate()
}

// FromMap parses settings from environ instead of the process environment
func FromMap(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch {
	case c.Port == "":
		return errors.New("config: PORT must not be empty")
	case c.SweepInterval <= 0:
		return errors.New("config: SWEEP_INTERVAL must be positive")
	case c.NotificationTTL <= 0:
		return errors.New("config: NOTIFICATION_TTL must be positive")
	case c.NotificationMax < 0:
		return errors.New("config: NOTIFICATION_MAX must not be negative")
	case c.JWTSecret == "":
		return errors.New("config: JWT_SECRET must not be empty")
	case c.BidRatePerSec <= 0 || c.BidRateBurst <= 0:
		return errors.New("config: BID_RATE_PER_SEC and BID_RATE_BURST must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

// DrafterEnabled reports whether listing drafts can be requested
func (c *Config) DrafterEnabled() bool {
	return c.DrafterURL != "" && c.DrafterAPIKey != ""
}

// UsesDevSecret reports whether sessions are signed with the built-in secret
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}

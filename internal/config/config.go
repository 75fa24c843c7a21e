// Package config loads service configuration from environment
// variables. All knobs have working defaults except the token secret,
// which has no safe default and must be provided.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration for the verification service.
type Config struct {
	Addr            string        `env:"FORTRESS_ADDR"               envDefault:":8080"`
	DBPath          string        `env:"FORTRESS_DB_PATH"            envDefault:"fortress.db"`
	TokenSecret     string        `env:"FORTRESS_TOKEN_SECRET"`
	TokenIssuer     string        `env:"FORTRESS_TOKEN_ISSUER"       envDefault:"fortress-replay"`
	RunTTL          time.Duration `env:"FORTRESS_RUN_TTL"            envDefault:"10m"`
	VerifyWorkers   int           `env:"FORTRESS_VERIFY_WORKERS"     envDefault:"0"`
	FinishPerMinute int           `env:"FORTRESS_FINISH_PER_MINUTE"  envDefault:"10"`
	StartPerMinute  int           `env:"FORTRESS_START_PER_MINUTE"   envDefault:"30"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.TokenSecret) < 16 {
		return Config{}, fmt.Errorf("FORTRESS_TOKEN_SECRET must be at least 16 bytes, got %d", len(cfg.TokenSecret))
	}
	return cfg, nil
}

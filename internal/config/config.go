package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`
	Debug   bool   `env:"DEBUG" envDefault:"false"`

	ContentFile    string `env:"CONTENT_FILE" envDefault:"health.csv"`
	ConditionsFile string `env:"CONDITIONS_FILE" envDefault:"condition.csv"`
	ReferenceItem  string `env:"REFERENCE_ITEM" envDefault:"Exercise for a Healthy Heart"`
	Limit          int    `env:"RECOMMENDATION_LIMIT" envDefault:"5"`

	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	EnableDB    bool   `env:"ENABLE_DB" envDefault:"false"`
	DatabaseURL string `env:"DATABASE_URL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.EnableDB && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if c.Limit <= 0 {
		return fmt.Errorf("RECOMMENDATION_LIMIT must be positive, got %d", c.Limit)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration, populated from environment
// variables.
type Config struct {
	// Google OAuth client credentials.
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `env:"GOOGLE_REDIRECT_URI"`

	// Store connection parameters. DBHost is a hostname or, for managed
	// databases reached over a local socket, the socket directory path.
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	PoolSize   int32  `env:"DB_POOL_SIZE" envDefault:"10"`

	// Shared secret for validating identity tokens from the webhook layer.
	IdentitySecret string `env:"IDENTITY_TOKEN_SECRET"`

	// HTTP listeners.
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports the first missing required value.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"GOOGLE_CLIENT_ID", c.ClientID},
		{"GOOGLE_CLIENT_SECRET", c.ClientSecret},
		{"GOOGLE_REDIRECT_URI", c.RedirectURI},
		{"DB_USER", c.DBUser},
		{"DB_NAME", c.DBName},
		{"IDENTITY_TOKEN_SECRET", c.IdentitySecret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("DB_POOL_SIZE must be positive, got %d", c.PoolSize)
	}
	return nil
}

// DSN builds the keyword/value connection string for the store. A DBHost
// starting with "/" is treated as a unix socket directory, in which case
// the port is omitted.
func (c *Config) DSN() string {
	parts := []string{
		"host=" + c.DBHost,
		"user=" + c.DBUser,
		"dbname=" + c.DBName,
	}
	if !strings.HasPrefix(c.DBHost, "/") {
		parts = append(parts, fmt.Sprintf("port=%d", c.DBPort))
	}
	if c.DBPassword != "" {
		parts = append(parts, "password="+c.DBPassword)
	}
	return strings.Join(parts, " ")
}

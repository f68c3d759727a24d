// Package config loads server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL settings. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	RefreshTTL  time.Duration `yaml:"refresh_ttl"`
	AdminUser   string        `yaml:"admin_user"`
	AdminPass   string        `yaml:"admin_pass"`
	DisableAuth bool          `yaml:"disable_auth"`
}

// LayoutConfig holds default canvas settings for layout runs.
type LayoutConfig struct {
	Width      float64 `yaml:"width" validate:"min=200"`
	Height     float64 `yaml:"height" validate:"min=200"`
	Iterations int     `yaml:"iterations" validate:"min=1,max=10000"`
}

// Config is the root server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Layout   LayoutConfig   `yaml:"layout"`
	LogLevel string         `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:   15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Layout: LayoutConfig{
			Width:      1200,
			Height:     800,
			Iterations: 150,
		},
		LogLevel: "info",
	}
}

// Load reads path (if non-empty), applies environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment overrides win over file values. This keeps container
// deployments configurable without a mounted file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGORA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AGORA_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("AGORA_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("AGORA_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("AGORA_ADMIN_USER"); v != "" {
		cfg.Auth.AdminUser = v
	}
	if v := os.Getenv("AGORA_ADMIN_PASS"); v != "" {
		cfg.Auth.AdminPass = v
	}
	if v := os.Getenv("AGORA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !c.Auth.DisableAuth && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes (or set auth.disable_auth)")
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Package config provides configuration loading using koanf.
// Precedence: TIMECONV_* environment variables, then compiled defaults.
package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/aelexs/timeconverter/internal/domain"
)

// EnvPrefix prefixes every environment variable the converter reads.
const EnvPrefix = "TIMECONV_"

// Config holds all service and CLI configuration.
type Config struct {
	// Environment identifier: "local", "dev", "prod"
	Environment string `koanf:"environment" validate:"required,oneof=local dev prod"`

	Log     LogConfig     `koanf:"log"`
	Server  ServerConfig  `koanf:"server"`
	Display DisplayConfig `koanf:"display"`
	OTEL    OTELConfig    `koanf:"otel"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// ServerConfig holds listener settings for cmd/timeconvd. Port 0 picks a free port.
type ServerConfig struct {
	HTTPPort int `koanf:"http_port" validate:"min=0,max=65535"`
	GRPCPort int `koanf:"grpc_port" validate:"min=0,max=65535"`

	// WriteTimeout bounds plain HTTP responses. Event streams lift it.
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=100ms,max=5m"`
}

// DisplayConfig holds what the original page took from its host: the zone
// selector default, the local time zone, and the refresh period.
type DisplayConfig struct {
	OffsetHours     int           `koanf:"offset_hours" validate:"min=-12,max=14"`
	Location        string        `koanf:"location"` // IANA name, "UTC" or "Local"
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"min=10ms,max=1h"`
}

// OTELConfig holds OpenTelemetry configuration.
type OTELConfig struct {
	Endpoint    string  `koanf:"endpoint"` // Empty disables OTLP export
	SampleRatio float64 `koanf:"sample_ratio" validate:"min=0,max=1"`
}

// defaults returns a Config with compiled default values.
func defaults() *Config {
	return &Config{
		Environment: "local",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			HTTPPort:     8080,
			GRPCPort:     9090,
			WriteTimeout: domain.HTTPWriteTimeout,
		},
		Display: DisplayConfig{
			OffsetHours:     domain.DefaultOffsetHours,
			Location:        domain.DefaultLocation,
			RefreshInterval: domain.RefreshInterval,
		},
		OTEL: OTELConfig{
			SampleRatio: 1,
		},
	}
}

var validate = newValidator()

// newValidator reports fields by their koanf key so errors name the
// environment variable's path.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Load loads configuration following the precedence:
// 1. Environment variables (highest)
// 2. Compiled defaults (lowest)
//
// TIMECONV_DISPLAY_OFFSET_HOURS maps to display.offset_hours: the first
// underscore after the prefix separates the section from the key.
func Load(ctx context.Context) (*Config, error) {
	k := koanf.New(".")

	// Start with compiled defaults
	cfg := defaults()

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config: %v", domain.ErrConfigInvalid, err)
	}

	if err := validateValues(cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := validateRequired(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateValues applies the struct tag rules and reports the first failing
// key by its koanf path.
func validateValues(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed %q (value %v)",
			domain.ErrConfigInvalid, strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
}

// validateRequired checks that required configuration is present.
func validateRequired(cfg *Config) error {
	// In local environment, host defaults are fine
	if cfg.IsLocal() {
		return nil
	}

	// In production the local display must not depend on the host zone
	if cfg.IsProd() {
		if cfg.Display.Location == "" || cfg.Display.Location == "Local" {
			return fmt.Errorf("%w: display.location", domain.ErrConfigRequired)
		}
	}

	return nil
}

// IsLocal returns true if running in local development environment.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}

// IsProd returns true if running in production environment.
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/aelexs/timeconverter/internal/config"
	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Listener ports
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.GRPCPort)
	assert.Equal(t, domain.HTTPWriteTimeout, cfg.Server.WriteTimeout)

	// Display defaults
	assert.Equal(t, domain.DefaultOffsetHours, cfg.Display.OffsetHours)
	assert.Equal(t, "Local", cfg.Display.Location)
	assert.Equal(t, time.Second, cfg.Display.RefreshInterval)

	assert.Empty(t, cfg.OTEL.Endpoint)
	assert.InDelta(t, 1.0, cfg.OTEL.SampleRatio, 0)
}

func TestIsLocal(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"local returns true", "local", true},
		{"prod returns false", "prod", false},
		{"dev returns false", "dev", false},
		{"empty returns false", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Environment: tt.env}

			assert.Equal(t, tt.want, cfg.IsLocal())
		})
	}
}

func TestIsProd(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"prod returns true", "prod", true},
		{"local returns false", "local", false},
		{"dev returns false", "dev", false},
		{"empty returns false", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Environment: tt.env}

			assert.Equal(t, tt.want, cfg.IsProd())
		})
	}
}

func TestLoadWithEnvOverride(t *testing.T) {
	t.Setenv("TIMECONV_ENVIRONMENT", "dev")
	t.Setenv("TIMECONV_LOG_LEVEL", "debug")
	t.Setenv("TIMECONV_LOG_FORMAT", "text")
	t.Setenv("TIMECONV_SERVER_HTTP_PORT", "18080")
	t.Setenv("TIMECONV_SERVER_WRITE_TIMEOUT", "2s")
	t.Setenv("TIMECONV_DISPLAY_OFFSET_HOURS", "-5")
	t.Setenv("TIMECONV_DISPLAY_LOCATION", "UTC")
	t.Setenv("TIMECONV_DISPLAY_REFRESH_INTERVAL", "250ms")
	t.Setenv("TIMECONV_OTEL_SAMPLE_RATIO", "0.25")

	cfg, err := config.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 18080, cfg.Server.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.GRPCPort, "unset keys keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, -5, cfg.Display.OffsetHours)
	assert.Equal(t, "UTC", cfg.Display.Location)
	assert.Equal(t, 250*time.Millisecond, cfg.Display.RefreshInterval)
	assert.InDelta(t, 0.25, cfg.OTEL.SampleRatio, 1e-9)
}

func TestLoadIgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := config.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidateValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantKey string
	}{
		{"offset above range", "TIMECONV_DISPLAY_OFFSET_HOURS", "15", "display.offset_hours"},
		{"offset below range", "TIMECONV_DISPLAY_OFFSET_HOURS", "-13", "display.offset_hours"},
		{"unknown environment", "TIMECONV_ENVIRONMENT", "staging", "environment"},
		{"unknown log format", "TIMECONV_LOG_FORMAT", "xml", "log.format"},
		{"port out of range", "TIMECONV_SERVER_HTTP_PORT", "70000", "server.http_port"},
		{"write timeout too short", "TIMECONV_SERVER_WRITE_TIMEOUT", "10ms", "server.write_timeout"},
		{"refresh too fast", "TIMECONV_DISPLAY_REFRESH_INTERVAL", "1ms", "display.refresh_interval"},
		{"sample ratio above one", "TIMECONV_OTEL_SAMPLE_RATIO", "2", "otel.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := config.Load(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfigInvalid)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestLoadRejectsNonNumericOffset(t *testing.T) {
	t.Setenv("TIMECONV_DISPLAY_OFFSET_HOURS", "nine")

	_, err := config.Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestValidateRequired_LocalAllowsHostZone(t *testing.T) {
	t.Setenv("TIMECONV_ENVIRONMENT", "local")

	cfg, err := config.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Local", cfg.Display.Location)
}

func TestValidateRequired_ProdRequiresLocation(t *testing.T) {
	t.Setenv("TIMECONV_ENVIRONMENT", "prod")

	_, err := config.Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigRequired)
	assert.Contains(t, err.Error(), "display.location")
}

func TestValidateRequired_ProdWithLocation(t *testing.T) {
	t.Setenv("TIMECONV_ENVIRONMENT", "prod")
	t.Setenv("TIMECONV_DISPLAY_LOCATION", "Asia/Seoul")

	cfg, err := config.Load(context.Background())

	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, "Asia/Seoul", cfg.Display.Location)
}

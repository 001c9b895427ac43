package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development", DefaultTimezone: "UTC"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/var/lib/habito"},
		Auth:    AuthConfig{RateLimit: 20, RateBurst: 5},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"unknown timezone", func(c *Config) { c.App.DefaultTimezone = "Mars/Olympus" }},
		{"empty timezone", func(c *Config) { c.App.DefaultTimezone = "" }},
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }},
		{"otel without endpoint", func(c *Config) { c.Telemetry.Enabled = true }},
		{"zero rate limit", func(c *Config) { c.Auth.RateLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(Flags{DataPath: dir, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "UTC", cfg.App.DefaultTimezone)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RefreshTokenDuration)
	assert.Equal(t, time.Hour, cfg.Auth.PasswordResetDuration)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Events.Brokers)
	assert.Equal(t, filepath.Join(dir, "habito.db"), cfg.Storage.DatabasePath())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# comment\nLOG_LEVEL=debug\nSERVER_PORT=9000\nKAFKA_BROKERS=\"k1:9092, k2:9092\"\n",
	), 0o600))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("DEFAULT_TIMEZONE", "America/Sao_Paulo")

	cfg, err := Load(Flags{DataPath: dir, Port: "9200", EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "9200", cfg.Server.Port, "flag beats env")
	assert.Equal(t, "debug", cfg.Logger.Level, ".env fills unset vars")
	assert.Equal(t, "America/Sao_Paulo", cfg.App.DefaultTimezone)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_DURATION", "soon")

	_, err := Load(Flags{DataPath: t.TempDir()})
	assert.ErrorContains(t, err, "ACCESS_TOKEN_DURATION")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/habito", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "habito"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)
}

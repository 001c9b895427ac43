// Package config loads settings from command-line flags, environment
// variables and a .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
	Events    EventsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment     string
	DefaultTimezone string // IANA name used when a user has none
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig locates on-disk state.
type StorageConfig struct {
	DataPath string // root for habito.db, kv/, search/ and auth.key
}

// DatabasePath is the SQLite file.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataPath, "habito.db")
}

// KVPath is the badger directory.
func (s StorageConfig) KVPath() string {
	return filepath.Join(s.DataPath, "kv")
}

// SearchPath is the bleve index directory.
func (s StorageConfig) SearchPath() string {
	return filepath.Join(s.DataPath, "search")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	MetricsEnabled bool
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	AccessTokenDuration   time.Duration
	RefreshTokenDuration  time.Duration
	PasswordResetDuration time.Duration
	// Requests per minute and burst per client IP on /auth routes.
	RateLimit int
	RateBurst int
}

// TelemetryConfig configures the OTLP metrics exporter.
type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
	Insecure bool
}

// EventsConfig configures the Kafka event publisher. No brokers disables it.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// Flags are the command-line overrides. Empty fields fall through to the
// environment.
type Flags struct {
	Env             string
	LogLevel        string
	DataPath        string
	Port            string
	DefaultTimezone string
	EnvFile         string
}

// LoadConfig parses the process flags and loads configuration with
// precedence flags > env > .env > defaults.
func LoadConfig() (*Config, error) {
	var f Flags
	flag.StringVar(&f.Env, "env", "", "Environment (development, staging, production)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.DataPath, "data-path", "", "Directory for the database, indexes and keys")
	flag.StringVar(&f.Port, "port", "", "Server port (default: 8080)")
	flag.StringVar(&f.DefaultTimezone, "timezone", "", "Default IANA timezone for users (default: UTC)")
	flag.StringVar(&f.EnvFile, "env-file", ".env", "Path to .env file")
	flag.Parse()

	return Load(f)
}

// Load builds the configuration from f, the environment and f.EnvFile.
func Load(f Flags) (*Config, error) {
	if f.EnvFile != "" {
		// A missing .env file is normal.
		_ = loadEnvFile(f.EnvFile)
	}

	cfg := &Config{
		App: AppConfig{
			Environment:     getConfigValue(f.Env, "ENV", "development"),
			DefaultTimezone: getConfigValue(f.DefaultTimezone, "DEFAULT_TIMEZONE", "UTC"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(f.LogLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(f.DataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(f.Port, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
			MetricsEnabled: getBoolConfigValue("", "METRICS_ENABLED", true),
		},
		Auth: AuthConfig{
			RateLimit: getIntConfigValue("", "AUTH_RATE_LIMIT", 20),
			RateBurst: getIntConfigValue("", "AUTH_RATE_BURST", 5),
		},
		Telemetry: TelemetryConfig{
			Enabled:  getBoolConfigValue("", "OTEL_ENABLED", false),
			Endpoint: getConfigValue("", "OTEL_ENDPOINT", ""),
			Insecure: getBoolConfigValue("", "OTEL_INSECURE", false),
		},
		Events: EventsConfig{
			Brokers: splitList(getConfigValue("", "KAFKA_BROKERS", "")),
			Topic:   getConfigValue("", "KAFKA_TOPIC", "habito.events"),
		},
	}

	durations := []struct {
		env, def string
		dst      *time.Duration
	}{
		{"ACCESS_TOKEN_DURATION", "15m", &cfg.Auth.AccessTokenDuration},
		{"REFRESH_TOKEN_DURATION", "720h", &cfg.Auth.RefreshTokenDuration},
		{"PASSWORD_RESET_DURATION", "1h", &cfg.Auth.PasswordResetDuration},
		{"SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue("", d.env, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.env, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if _, err := time.LoadLocation(c.App.DefaultTimezone); err != nil || c.App.DefaultTimezone == "" {
		return fmt.Errorf("invalid default timezone %q", c.App.DefaultTimezone)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("OTEL_ENDPOINT is required when OTEL_ENABLED is set")
	}

	if c.Auth.RateLimit < 1 || c.Auth.RateBurst < 1 {
		return errors.New("auth rate limit and burst must be positive")
	}
	return nil
}

// Location returns the default timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// expandPath expands ~ and makes the path absolute, using defaultPath when
// path is empty.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}
	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "Habito", "data"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines into the environment without
// overriding variables that are already set.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- config file path is operator supplied
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

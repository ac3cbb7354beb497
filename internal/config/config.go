// Package config loads movi configuration from a YAML file with
// environment overrides layered on top.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all movi configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Sessions SessionsConfig `yaml:"sessions"`
	Fleet    FleetConfig    `yaml:"fleet"`
	LLM      LLMConfig      `yaml:"llm"`
	Retry    RetryConfig    `yaml:"retry"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// SessionsConfig configures the session store.
type SessionsConfig struct {
	// Backend is "memory", "file" or "redis".
	Backend       string `yaml:"backend"`
	Directory     string `yaml:"directory"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTL           string `yaml:"ttl"`
	SweepInterval string `yaml:"sweep_interval"`

	// EncryptionKey, when set, seals persisted sessions with AES-256.
	// 64 hex characters.
	EncryptionKey string `yaml:"encryption_key"`
	// MaskParams lists key patterns whose operation parameters are
	// replaced with "***" in persisted turn history. Pending actions are
	// never masked; they must round-trip verbatim for confirmation to
	// work. Combine with encryption_key to protect them at rest.
	MaskParams []string `yaml:"mask_params"`
}

// FleetConfig configures the fleet database.
type FleetConfig struct {
	DatabasePath string `yaml:"database_path"`
	// Seed loads the demo fleet on startup when the database is empty.
	Seed bool `yaml:"seed"`
}

// LLMConfig configures the language-model backend.
type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
	// Timeout is the per-call deadline for model calls.
	Timeout string `yaml:"timeout"`
}

// RetryConfig bounds operation re-execution after transient failures.
type RetryConfig struct {
	MaxAttempts  int    `yaml:"max_attempts"`
	InitialDelay string `yaml:"initial_delay"`
	MaxDelay     string `yaml:"max_delay"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Sessions: SessionsConfig{
			Backend:       "memory",
			Directory:     "data/sessions",
			RedisAddr:     "localhost:6379",
			TTL:           "24h",
			SweepInterval: "10m",
		},
		Fleet: FleetConfig{
			DatabasePath: "data/fleet.db",
			Seed:         true,
		},
		LLM: LLMConfig{
			Model:   "gemini-2.0-flash",
			Timeout: "30s",
		},
		Retry: RetryConfig{
			MaxAttempts:  2,
			InitialDelay: "1s",
			MaxDelay:     "3s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; environment variables override in either case.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MOVI_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MOVI_SESSION_BACKEND"); v != "" {
		c.Sessions.Backend = v
	}
	if v := os.Getenv("MOVI_REDIS_ADDR"); v != "" {
		c.Sessions.RedisAddr = v
	}
	if v := os.Getenv("MOVI_REDIS_PASSWORD"); v != "" {
		c.Sessions.RedisPassword = v
	}
	if v := os.Getenv("MOVI_SESSION_KEY"); v != "" {
		c.Sessions.EncryptionKey = v
	}
	if v := os.Getenv("MOVI_DB"); v != "" {
		c.Fleet.DatabasePath = v
	}
	if v := os.Getenv("MOVI_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MOVI_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	switch c.Sessions.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("sessions.backend must be \"memory\", \"file\" or \"redis\", got %q", c.Sessions.Backend)
	}
	if c.Sessions.Backend == "redis" && c.Sessions.RedisAddr == "" {
		return fmt.Errorf("sessions.redis_addr cannot be empty with the redis backend")
	}
	if c.Sessions.Backend == "file" && c.Sessions.Directory == "" {
		return fmt.Errorf("sessions.directory cannot be empty with the file backend")
	}
	if c.Sessions.EncryptionKey != "" {
		key, err := hex.DecodeString(c.Sessions.EncryptionKey)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("sessions.encryption_key must be 64 hex characters (AES-256)")
		}
	}
	for _, p := range c.Sessions.MaskParams {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("sessions.mask_params pattern %q: %w", p, err)
		}
	}
	if c.Fleet.DatabasePath == "" {
		return fmt.Errorf("fleet.database_path cannot be empty")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1")
	}
	return nil
}

// SessionTTL returns the session TTL as a duration.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.Sessions.TTL, 24*time.Hour)
}

// SweepInterval returns the expired-session sweep interval.
func (c *Config) SweepInterval() time.Duration {
	return parseDuration(c.Sessions.SweepInterval, 10*time.Minute)
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// LLMTimeout returns the per-call deadline for model calls.
func (c *Config) LLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 30*time.Second)
}

// RetryInitialDelay returns the first retry backoff.
func (c *Config) RetryInitialDelay() time.Duration {
	return parseDuration(c.Retry.InitialDelay, time.Second)
}

// RetryMaxDelay returns the backoff ceiling.
func (c *Config) RetryMaxDelay() time.Duration {
	return parseDuration(c.Retry.MaxDelay, 3*time.Second)
}

// SessionEncryptionKey returns the decoded session sealing key, or nil
// when encryption is not configured.
func (c *Config) SessionEncryptionKey() []byte {
	if c.Sessions.EncryptionKey == "" {
		return nil
	}
	key, err := hex.DecodeString(c.Sessions.EncryptionKey)
	if err != nil || len(key) != 32 {
		return nil
	}
	return key
}

// LogLevel maps the configured level onto slog.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
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

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

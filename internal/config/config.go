// ABOUTME: Configuration loading and parsing for ecb-dashboard
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPINHash is the bcrypt hash of the factory PIN "112233".
// Replace it with `ecb-dashboard pin` before exposing the dashboard anywhere.
const DefaultPINHash = "$2b$12$yoH9SuJWxxfnV8oLpWj/tueHNOvbqqvpetJrZS99JRbu2rrO28cee"

// Config represents the complete ecb-dashboard configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database"`
	Security  SecurityConfig  `yaml:"security"`
	ECB       ECBConfig       `yaml:"ecb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	HTTPS     bool   `yaml:"https"`  // Serve on :443 with Tailscale-provisioned certs
	Funnel    bool   `yaml:"funnel"` // Enable public Funnel (implies HTTPS)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SecurityConfig holds the PIN gate configuration
type SecurityConfig struct {
	PINHash         string        `yaml:"pin_hash"`
	MaxAttempts     int           `yaml:"max_attempts"`
	SessionTimeout  time.Duration `yaml:"-"`
	LockoutDuration time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	SessionTimeoutRaw  string `yaml:"session_timeout"`
	LockoutDurationRaw string `yaml:"lockout_duration"`
}

// ECBConfig holds ECB SDMX REST API client configuration
type ECBConfig struct {
	BaseURL            string        `yaml:"base_url"`
	MaxRetries         int           `yaml:"max_retries"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	UseLocalData       bool          `yaml:"use_local_data"`
	LocalDataDir       string        `yaml:"local_data_dir"`
	DefaultRangeMonths int           `yaml:"default_range_months"`
	Timeout            time.Duration `yaml:"-"`
	RetryDelay         time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	TimeoutRaw    string `yaml:"timeout"`
	RetryDelayRaw string `yaml:"retry_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in values a minimal config file can omit. Server address
// and database path stay required so misconfiguration fails loudly.
func (c *Config) applyDefaults() {
	if c.Security.PINHash == "" {
		c.Security.PINHash = DefaultPINHash
	}
	if c.Security.MaxAttempts == 0 {
		c.Security.MaxAttempts = 5
	}
	if c.Security.SessionTimeoutRaw == "" {
		c.Security.SessionTimeoutRaw = "30m"
	}
	if c.Security.LockoutDurationRaw == "" {
		c.Security.LockoutDurationRaw = "15m"
	}

	if c.ECB.BaseURL == "" {
		c.ECB.BaseURL = "https://data-api.ecb.europa.eu/service"
	}
	if c.ECB.MaxRetries == 0 {
		c.ECB.MaxRetries = 3
	}
	if c.ECB.RateLimitPerMinute == 0 {
		c.ECB.RateLimitPerMinute = 10
	}
	if c.ECB.LocalDataDir == "" {
		c.ECB.LocalDataDir = "data/raw-data"
	}
	if c.ECB.DefaultRangeMonths == 0 {
		c.ECB.DefaultRangeMonths = 12
	}
	if c.ECB.TimeoutRaw == "" {
		c.ECB.TimeoutRaw = "30s"
	}
	if c.ECB.RetryDelayRaw == "" {
		c.ECB.RetryDelayRaw = "1s"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// Server address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Security.MaxAttempts < 1 {
		return fmt.Errorf("security.max_attempts must be at least 1")
	}

	if c.ECB.UseLocalData && c.ECB.LocalDataDir == "" {
		return fmt.Errorf("ecb.local_data_dir is required when use_local_data is enabled")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Security.SessionTimeoutRaw != "" {
		cfg.Security.SessionTimeout, err = time.ParseDuration(cfg.Security.SessionTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing session_timeout %q: %w", cfg.Security.SessionTimeoutRaw, err)
		}
	}

	if cfg.Security.LockoutDurationRaw != "" {
		cfg.Security.LockoutDuration, err = time.ParseDuration(cfg.Security.LockoutDurationRaw)
		if err != nil {
			return fmt.Errorf("parsing lockout_duration %q: %w", cfg.Security.LockoutDurationRaw, err)
		}
	}

	if cfg.ECB.TimeoutRaw != "" {
		cfg.ECB.Timeout, err = time.ParseDuration(cfg.ECB.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.ECB.TimeoutRaw, err)
		}
	}

	if cfg.ECB.RetryDelayRaw != "" {
		cfg.ECB.RetryDelay, err = time.ParseDuration(cfg.ECB.RetryDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing retry_delay %q: %w", cfg.ECB.RetryDelayRaw, err)
		}
	}

	return nil
}

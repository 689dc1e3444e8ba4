// ABOUTME: Configuration loading and parsing for synadminctl
// ABOUTME: Supports YAML files with environment variable expansion, duration parsing and env overrides

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/florianjacob/synadminctl/internal/matrix"
	"github.com/florianjacob/synadminctl/internal/session"
)

// Config represents the complete synadminctl configuration
type Config struct {
	// Homeserver pins the homeserver URL; discovery is skipped when set.
	Homeserver      string `yaml:"homeserver"`
	DeviceName      string `yaml:"device_name"`
	WellKnownScheme string `yaml:"well_known_scheme"`

	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`

	Session SessionConfig `yaml:"session"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
}

// SessionConfig holds the session file location
type SessionConfig struct {
	Path string `yaml:"path"`
}

// JournalConfig holds the local operation journal configuration
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// envOverrides are applied after the file is read.
type envOverrides struct {
	Homeserver string `env:"SYNADMINCTL_HOMESERVER"`
	LogLevel   string `env:"SYNADMINCTL_LOG_LEVEL"`
	Timeout    string `env:"SYNADMINCTL_TIMEOUT"`
	Journal    string `env:"SYNADMINCTL_JOURNAL"`
	Session    string `env:"SYNADMINCTL_SESSION"`
}

const (
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "warn"
	defaultScheme   = "https"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		WellKnownScheme: defaultScheme,
		Timeout:         defaultTimeout,
		Session:         SessionConfig{Path: session.DefaultPath()},
		Journal:         JournalConfig{Enabled: true, Path: defaultJournalPath()},
		Logging:         LoggingConfig{Level: defaultLogLevel},
	}
}

// Path returns the configuration file location: $SYNADMINCTL_CONFIG, then
// $XDG_CONFIG_HOME/synadminctl/config.yaml, then ~/.config/synadminctl/config.yaml.
func Path() string {
	if p := os.Getenv("SYNADMINCTL_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "synadminctl", "config.yaml")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".config")
}

func defaultJournalPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "synadminctl-journal.db")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "synadminctl", "journal.db")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// A missing file yields the defaults. Environment variables in the format
// ${VAR_NAME} are expanded, then SYNADMINCTL_* overrides are applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the raw YAML content
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnv overlays SYNADMINCTL_* variables. SYNADMINCTL_JOURNAL is either
// a boolean switch or the journal path.
func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return err
	}

	if env.Homeserver != "" {
		cfg.Homeserver = env.Homeserver
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.Timeout != "" {
		cfg.TimeoutRaw = env.Timeout
	}
	if env.Session != "" {
		cfg.Session.Path = env.Session
	}
	if env.Journal != "" {
		if on, err := strconv.ParseBool(env.Journal); err == nil {
			cfg.Journal.Enabled = on
		} else {
			cfg.Journal.Enabled = true
			cfg.Journal.Path = env.Journal
		}
	}
	return nil
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Homeserver != "" {
		if _, err := matrix.ParseBaseURL(c.Homeserver); err != nil {
			return fmt.Errorf("homeserver: %w", err)
		}
	}

	switch c.WellKnownScheme {
	case "http", "https":
	default:
		return fmt.Errorf("well_known_scheme must be http or https, got %q", c.WellKnownScheme)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.Session.Path == "" {
		return fmt.Errorf("session.path is required")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.TimeoutRaw == "" {
		return nil
	}
	timeout, err := time.ParseDuration(cfg.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing timeout %q: %w", cfg.TimeoutRaw, err)
	}
	cfg.Timeout = timeout
	return nil
}

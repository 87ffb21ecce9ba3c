// Package config loads shiftdesk settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultFileName        = "shiftdesk.yaml"
	DefaultBackend         = "csv"
	DefaultLockTimeout     = 10 * time.Second
	DefaultRequestCooldown = 30 * time.Second
	DefaultSuspiciousHours = 24
	DefaultRetentionDays   = 30
	DefaultBackupWorkers   = 4
)

// Config holds all shiftdesk configuration.
type Config struct {
	// DataDir holds the table files and their lock files. Every cooperating
	// process must point at the same directory.
	DataDir string `yaml:"data_dir"`

	// Backend is "csv" (one file per table) or "sqlite".
	Backend string `yaml:"backend"`

	// Timezone used to decide which calendar day a shift belongs to.
	Timezone string `yaml:"timezone"`

	Locks    LockConfig    `yaml:"locks"`
	Requests RequestConfig `yaml:"requests"`
	Shifts   ShiftConfig   `yaml:"shifts"`
	Backup   BackupConfig  `yaml:"backup"`
	Logging  LoggingConfig `yaml:"logging"`
}

// LockConfig configures table locking.
type LockConfig struct {
	Timeout string `yaml:"timeout"` // e.g. "10s"
}

// RequestConfig configures request creation.
type RequestConfig struct {
	// Cooldown between two requests of the same worker, e.g. "30s".
	Cooldown string `yaml:"cooldown"`
}

// ShiftConfig configures shift checks.
type ShiftConfig struct {
	// SuspiciousHours is the worked duration above which a close is logged
	// as suspicious. It is never rejected.
	SuspiciousHours float64 `yaml:"suspicious_hours"`
}

// BackupConfig configures snapshots.
type BackupConfig struct {
	Dir           string `yaml:"dir"` // defaults to <data_dir>/backups
	RetentionDays int    `yaml:"retention_days"`
	OnStart       bool   `yaml:"on_start"`
	Workers       int    `yaml:"workers"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
	File        string `yaml:"file,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  DefaultDataDir(),
		Backend:  DefaultBackend,
		Timezone: "UTC",
		Locks: LockConfig{
			Timeout: DefaultLockTimeout.String(),
		},
		Requests: RequestConfig{
			Cooldown: DefaultRequestCooldown.String(),
		},
		Shifts: ShiftConfig{
			SuspiciousHours: DefaultSuspiciousHours,
		},
		Backup: BackupConfig{
			RetentionDays: DefaultRetentionDays,
			OnStart:       true,
			Workers:       DefaultBackupWorkers,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultDataDir returns ~/.shiftdesk/data, or a relative path if the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".shiftdesk", "data")
	}
	return filepath.Join(home, ".shiftdesk", "data")
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, ".shiftdesk", DefaultFileName)
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults.
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

	// Override with environment variables
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("SHIFTDESK_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if backend := os.Getenv("SHIFTDESK_BACKEND"); backend != "" {
		c.Backend = backend
	}
	if tz := os.Getenv("SHIFTDESK_TIMEZONE"); tz != "" {
		c.Timezone = tz
	}
	if timeout := os.Getenv("SHIFTDESK_LOCK_TIMEOUT"); timeout != "" {
		c.Locks.Timeout = timeout
	}
	if cooldown := os.Getenv("SHIFTDESK_REQUEST_COOLDOWN"); cooldown != "" {
		c.Requests.Cooldown = cooldown
	}
	if days := os.Getenv("SHIFTDESK_RETENTION_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			c.Backup.RetentionDays = n
		}
	}
	if level := os.Getenv("SHIFTDESK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// ValidBackends lists the supported storage backends.
var ValidBackends = []string{"csv", "sqlite"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir not configured (set data_dir or SHIFTDESK_DATA_DIR)")
	}

	validBackend := false
	for _, b := range ValidBackends {
		if c.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid backend: %s (valid: %v)", c.Backend, ValidBackends)
	}

	for name, value := range map[string]string{
		"locks.timeout":     c.Locks.Timeout,
		"requests.cooldown": c.Requests.Cooldown,
	} {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid %s %q: must not be negative", name, value)
		}
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Backup.RetentionDays < 0 {
		return fmt.Errorf("invalid backup.retention_days %d: must not be negative", c.Backup.RetentionDays)
	}

	return nil
}

// GetLockTimeout returns the lock acquisition bound.
func (c *Config) GetLockTimeout() time.Duration {
	return parseDurationOr(c.Locks.Timeout, DefaultLockTimeout)
}

// GetRequestCooldown returns the minimum interval between two requests of
// one worker. Zero disables rate limiting.
func (c *Config) GetRequestCooldown() time.Duration {
	return parseDurationOr(c.Requests.Cooldown, DefaultRequestCooldown)
}

// GetSuspiciousShift returns the worked duration above which a close is
// logged as suspicious.
func (c *Config) GetSuspiciousShift() time.Duration {
	if c.Shifts.SuspiciousHours <= 0 {
		return DefaultSuspiciousHours * time.Hour
	}
	return time.Duration(c.Shifts.SuspiciousHours * float64(time.Hour))
}

// GetRetention returns how long snapshots are kept.
func (c *Config) GetRetention() time.Duration {
	days := c.Backup.RetentionDays
	if days == 0 {
		days = DefaultRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetBackupDir returns the snapshot directory.
func (c *Config) GetBackupDir() string {
	if c.Backup.Dir != "" {
		return c.Backup.Dir
	}
	return filepath.Join(c.DataDir, "backups")
}

// Location returns the configured time zone. Empty means UTC; "Local"
// selects the host zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for kin configuration.
	DefaultConfigDir = ".kin"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultFamiliesFile is the default family registry file name.
	DefaultFamiliesFile = "families.yaml"
	// DefaultDatabaseFile is the default SQLite file name.
	DefaultDatabaseFile = "kin.db"
)

// Environment variables read on Load.
const (
	EnvNumeroH  = "KIN_NUMERO_H"
	EnvAdmin    = "KIN_ADMIN"
	EnvLogLevel = "KIN_LOG_LEVEL"
	EnvDBPath   = "KIN_DB_PATH"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
	Caller CallerConfig `yaml:"caller,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Relative paths are
	// resolved against the directory holding .kin.
	Path string `yaml:"path,omitempty"`
}

// CallerConfig identifies who the CLI acts as.
type CallerConfig struct {
	NumeroH string `yaml:"numero_h,omitempty"`
	Admin   bool   `yaml:"admin,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		SQLite: SQLiteConfig{
			Path: filepath.Join(DefaultConfigDir, DefaultDatabaseFile),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load loads configuration from the .kin directory in the given path. An
// optional .env file in basePath is read first.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'kin init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// A missing .env is the normal case.
	_ = godotenv.Load(filepath.Join(basePath, ".env"))

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides fills values the file left empty from the environment.
// KIN_DB_PATH always wins so tests and scripts can redirect the database.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvNumeroH); v != "" && c.Caller.NumeroH == "" {
		c.Caller.NumeroH = v
	}
	if v := os.Getenv(EnvAdmin); v != "" && !c.Caller.Admin {
		if admin, err := strconv.ParseBool(v); err == nil {
			c.Caller.Admin = admin
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		if c.Log.Level == "" || c.Log.Level == Default().Log.Level {
			c.Log.Level = v
		}
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.SQLite.Path = v
	}
}

// DatabasePath resolves the configured SQLite path against basePath.
func (c *Config) DatabasePath(basePath string) string {
	path := c.SQLite.Path
	if path == "" {
		path = Default().SQLite.Path
	}
	if path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(basePath, path)
}

// ConfigDir returns the path to the .kin config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// FamiliesFilePath returns the path to the family registry file.
func FamiliesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultFamiliesFile)
}

// SanitizeFamilyName converts a family name to a safe directory name.
func SanitizeFamilyName(name string) string {
	name = strings.ToLower(name)

	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "default"
	}

	return name
}

// FamilyDir returns the directory holding a family's database.
func FamilyDir(basePath, family string) string {
	return filepath.Join(basePath, DefaultConfigDir, "families", SanitizeFamilyName(family))
}

// SQLitePathForFamily returns the SQLite database path for a given family.
func SQLitePathForFamily(basePath, family string) string {
	return filepath.Join(FamilyDir(basePath, family), DefaultDatabaseFile)
}

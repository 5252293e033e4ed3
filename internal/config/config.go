// Package config loads jobdash settings.
// Settings are layered: built-in defaults, then an optional YAML file
// ($XDG_CONFIG_HOME/jobdash/config.yaml, or the path in JOBDASH_CONFIG), then JOBDASH_*
// environment variables. Only the saved DSN lives outside this package, in the keychain.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"jobdash/cli/internal/xdg"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "JOBDASH_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "JOBDASH_CONFIG"

// Config holds jobdash settings.
type Config struct {
	LogLevel string `koanf:"log_level"`
	LogJSON  bool   `koanf:"log_json"`
	NoColor  bool   `koanf:"no_color"`
	// DSN is a full connection string; it takes precedence over DB.
	DSN string   `koanf:"dsn"`
	DB  DBConfig `koanf:"db"`
	// ConnectTimeout bounds establishing a session only. Queries have no timeout.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	// Reports are operator-authored catalog entries appended after the built-ins.
	Reports []ReportConfig `koanf:"reports"`
}

// DBConfig holds discrete connection parameters.
type DBConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`
}

// IsZero reports whether no discrete parameter was set.
func (d DBConfig) IsZero() bool {
	return d.Host == "" && d.Name == "" && d.User == "" && d.Password == "" && d.SSLMode == "" &&
		(d.Port == "" || d.Port == defaultPort)
}

// ReportConfig is one extra catalog entry.
type ReportConfig struct {
	ID    string `koanf:"id"`
	Label string `koanf:"label"`
	SQL   string `koanf:"sql"`
	// Chart is "" for a plain table or "bar".
	Chart string `koanf:"chart"`
}

const defaultPort = "5432"

func defaultConfig() *Config {
	return &Config{
		LogLevel:       "warn",
		DB:             DBConfig{Port: defaultPort},
		ConnectTimeout: 10 * time.Second,
	}
}

// LoadOptions tweaks Load; the zero value is what the CLI uses.
type LoadOptions struct {
	// Path is an explicit config file. It must exist when set.
	Path string
	// SkipDefaultFile disables the XDG lookup (tests).
	SkipDefaultFile bool
}

// Load builds the configuration from defaults, file and environment.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the file to load, or "" when there is none.
func findConfigFile(opts LoadOptions) (string, error) {
	explicit := opts.Path
	if explicit == "" {
		explicit = os.Getenv(ConfigPathEnvVar)
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if opts.SkipDefaultFile {
		return "", nil
	}

	path, err := xdg.ConfigFile()
	if err != nil {
		// No home directory is not fatal; env and flags still work.
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

// envTransformFunc maps environment variable names to koanf paths:
//   - JOBDASH_DB_HOST -> db.host
//   - JOBDASH_LOG_LEVEL -> log_level
//   - JOBDASH_DSN -> dsn
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "db_"); ok {
		return "db." + rest
	}
	return key
}

// Validate checks the non-connection settings. Connection parameters are checked by
// ResolveConnection, since they may come from the keychain instead.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not one of trace, debug, info, warn, error", c.LogLevel))
	}
	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect_timeout must not be negative"))
	}

	seen := make(map[string]bool, len(c.Reports))
	for i, r := range c.Reports {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Label) == "" || strings.TrimSpace(r.SQL) == "" {
			errs = append(errs, fmt.Errorf("reports[%d]: id, label and sql are required", i))
			continue
		}
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("reports[%d]: duplicate id %q", i, r.ID))
		}
		seen[r.ID] = true
		if r.Chart != "" && r.Chart != "bar" {
			errs = append(errs, fmt.Errorf("reports[%d]: chart must be empty or \"bar\"", i))
		}
	}

	return errors.Join(errs...)
}

// Package config loads the YAML configuration of the dlf command.
//
// Configuration comes from a single file, named by the --config flag or the
// DLF_CONFIG environment variable. Command line flags override file values.
//
//	log:
//	  level: info
//	  format: text
//	source:
//	  dir: /data/runs/42
//	  compression: zstd
//	store:
//	  path: runs.db
//	follow:
//	  interval: 1s
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/dlf/format"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "DLF_CONFIG"

// Config is the configuration of the dlf command.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Source SourceConfig `yaml:"source"`
	Store  StoreConfig  `yaml:"store"`
	Follow FollowConfig `yaml:"follow"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// SourceConfig selects where run streams are read from. Exactly one of Dir
// and URL may be set.
type SourceConfig struct {
	// Dir is a run directory holding meta.dlf, polled.dlf and event.dlf.
	Dir string `yaml:"dir"`
	// URL is the base URL of a run on an upload service.
	URL string `yaml:"url"`
	// Token is sent as a bearer token to URL.
	Token string `yaml:"token"`
	// Compression of the files behind URL: none, zstd, s2 or lz4.
	Compression string        `yaml:"compression"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
}

// StoreConfig configures the SQLite sample store.
type StoreConfig struct {
	Path string `yaml:"path"`
	// DeviceUID identifies the logger that produced ingested runs.
	DeviceUID string `yaml:"device_uid"`
}

// FollowConfig configures live run following.
type FollowConfig struct {
	// Interval is the polling period when file notifications are unavailable.
	Interval time.Duration `yaml:"interval"`
	// Debounce coalesces bursts of write notifications.
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Source: SourceConfig{
			Compression: "none",
			Timeout:     30 * time.Second,
		},
		Store: StoreConfig{
			Path:      "dlf.db",
			DeviceUID: "unknown",
		},
		Follow: FollowConfig{
			Interval: time.Second,
			Debounce: 200 * time.Millisecond,
		},
	}
}

// Load loads the file named by DLF_CONFIG, or returns the defaults when the
// variable is not set.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}

	return LoadFile(path)
}

// LoadFile loads configuration from path on top of the defaults.
// ${VAR} references in path-like values are expanded.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Source.Dir = os.ExpandEnv(cfg.Source.Dir)
	cfg.Source.Token = os.ExpandEnv(cfg.Source.Token)
	cfg.Store.Path = os.ExpandEnv(cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges and mutually exclusive settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: must be debug, info, warn or error", c.Log.Level))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: must be text or json", c.Log.Format))
	}

	if c.Source.Dir != "" && c.Source.URL != "" {
		errs = append(errs, errors.New("source.dir and source.url are mutually exclusive"))
	}
	if _, ok := format.ParseCompression(c.Source.Compression); !ok {
		errs = append(errs, fmt.Errorf("source.compression %q: must be none, zstd, s2 or lz4", c.Source.Compression))
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, errors.New("source.timeout must not be negative"))
	}
	if c.Source.Retries < 0 {
		errs = append(errs, errors.New("source.retries must not be negative"))
	}

	if c.Follow.Interval <= 0 {
		errs = append(errs, errors.New("follow.interval must be positive"))
	}
	if c.Follow.Debounce < 0 {
		errs = append(errs, errors.New("follow.debounce must not be negative"))
	}

	return errors.Join(errs...)
}

// Compression returns the parsed source compression.
func (c *Config) Compression() format.CompressionType {
	ct, _ := format.ParseCompression(c.Source.Compression)
	return ct
}

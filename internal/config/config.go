// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/logging"
)

// Duration accepts YAML scalars like "5s" or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full service configuration.
type Config struct {
	Server struct {
		Port              int      `yaml:"port"`
		ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	} `yaml:"server"`
	Solver struct {
		DefaultTimeLimit Duration `yaml:"default_time_limit"`
		MaxTimeLimit     Duration `yaml:"max_time_limit"`
	} `yaml:"solver"`
	Cache struct {
		Enabled    bool     `yaml:"enabled"`
		TTL        Duration `yaml:"ttl"`
		MaxEntries int      `yaml:"max_entries"`
	} `yaml:"cache"`
	RateLimit struct {
		PerSecond float64 `yaml:"per_second"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Log logging.Config `yaml:"log"`

	// Connection strings come from the environment only.
	DatabaseURL string `yaml:"-"`
	RedisURL    string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 5001
	cfg.Server.ReadHeaderTimeout = Duration(5 * time.Second)
	cfg.Solver.DefaultTimeLimit = Duration(5 * time.Second)
	cfg.Solver.MaxTimeLimit = Duration(60 * time.Second)
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = Duration(10 * time.Minute)
	cfg.Cache.MaxEntries = 256
	cfg.RateLimit.PerSecond = 10
	cfg.RateLimit.Burst = 20
	cfg.Log = logging.Config{Level: "info", Format: "json"}
	return cfg
}

// Load reads the file at path (when non-empty) over the defaults, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.RedisURL = os.Getenv("REDIS_URL")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

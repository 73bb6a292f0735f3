// Package config loads server settings from an optional YAML file with
// environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// Config is the server configuration
type Config struct {
	Server struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		StaticDir       string        `yaml:"static_dir"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		Type        string `yaml:"type"`
		RedisURL    string `yaml:"redis_url"`
		DatabaseURL string `yaml:"database_url"`
		Migrate     bool   `yaml:"migrate"`
	} `yaml:"storage"`

	Events struct {
		NATSURL string `yaml:"nats_url"`
	} `yaml:"events"`

	Rooms struct {
		TTL                 time.Duration `yaml:"ttl"`
		SweepInterval       time.Duration `yaml:"sweep_interval"`
		MaxPasscodeAttempts int           `yaml:"max_passcode_attempts"`
	} `yaml:"rooms"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 5000
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 15 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.Server.StaticDir = "public"
	cfg.Log.Level = "info"
	cfg.Storage.Type = StorageTypeMemory
	cfg.Storage.Migrate = true
	cfg.Rooms.TTL = 24 * time.Hour
	cfg.Rooms.SweepInterval = time.Minute
	cfg.Rooms.MaxPasscodeAttempts = 1000
	return cfg
}

// Load reads the YAML file at path, if path is non-empty, then applies
// environment overrides and validates the result
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - path comes from the operator's command line
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = strings.ToLower(v)
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Storage.DatabaseURL = v
	}
	if v := getenv("NATS_URL"); v != "" {
		c.Events.NATSURL = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := getenv("ROOM_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ROOM_TTL %q: %w", v, err)
		}
		c.Rooms.TTL = ttl
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Rooms.TTL <= 0 {
		return errors.New("room ttl must be positive")
	}

	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StorageTypePostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be 'memory', 'redis' or 'postgres'", c.Storage.Type)
	}
	return nil
}

// ParseLogLevel maps a level name to a slog level, defaulting to info
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

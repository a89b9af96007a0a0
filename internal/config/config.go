// Package config reads CPTRACK_* environment variables into a Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Slot backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config controls where progress is stored and how the process logs.
// Every field can be set from the environment; CLI flags override.
type Config struct {
	SlotBackend string `env:"CPTRACK_SLOT_BACKEND" envDefault:"file"`
	SlotKey     string `env:"CPTRACK_SLOT_KEY" envDefault:"antigravity_cp_db"`
	DataDir     string `env:"CPTRACK_DATA_DIR"`

	Redis RedisConfig `envPrefix:"CPTRACK_REDIS_"`

	// CatalogPath is empty to use the catalog embedded in the build.
	CatalogPath string `env:"CPTRACK_CATALOG"`

	LogMode string `env:"CPTRACK_LOG_MODE" envDefault:"nop"`
}

// RedisConfig locates the Redis server used by the redis slot backend.
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// FromEnv reads the process environment.
func FromEnv() (Config, error) {
	return parse(env.Options{})
}

// FromMap reads configuration from vars instead of the process environment.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	return cfg, cfg.Validate()
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	c.SlotBackend = strings.ToLower(strings.TrimSpace(c.SlotBackend))
	switch c.SlotBackend {
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("data dir is required for the %s backend", BackendFile)
		}
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for the %s backend", BackendRedis)
		}
	default:
		return fmt.Errorf("invalid slot backend %q", c.SlotBackend)
	}
	if strings.TrimSpace(c.SlotKey) == "" {
		return fmt.Errorf("slot key must not be empty")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cptrack"
	}
	return filepath.Join(home, ".cptrack")
}

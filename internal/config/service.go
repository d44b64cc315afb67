package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServiceConfig holds settings for the long-running projection service.
type ServiceConfig struct {
	Server struct {
		Addr        string        `yaml:"addr"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"server"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		TTL       time.Duration `yaml:"ttl"`
		Prefix    string        `yaml:"prefix"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron     string `yaml:"cron"`
		DeckPath string `yaml:"deck_path"`
	} `yaml:"schedule"`
	RateLimit struct {
		Capacity int           `yaml:"capacity"`
		Refill   time.Duration `yaml:"refill"`
	} `yaml:"rate_limit"`
}

// LoadServiceConfig reads path (a missing file is fine), then applies
// environment overrides and defaults.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	cfg := &ServiceConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read service config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse service config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("PROJECTOR_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PROJECTOR_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("PROJECTOR_DECK"); v != "" {
		cfg.Schedule.DeckPath = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "projection"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 3 * * *"
	}
	if cfg.RateLimit.Capacity == 0 {
		cfg.RateLimit.Capacity = 60
	}
	if cfg.RateLimit.Refill == 0 {
		cfg.RateLimit.Refill = time.Minute
	}

	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *ServiceConfig) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}
	if c.RateLimit.Capacity < 0 {
		return fmt.Errorf("rate_limit.capacity cannot be negative")
	}
	if c.RateLimit.Refill <= 0 {
		return fmt.Errorf("rate_limit.refill must be positive")
	}
	return nil
}

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceName string `yaml:"service_name" toml:"service_name"`
	Timezone    string `yaml:"timezone" toml:"timezone"`
	Storage     struct {
		Backend string `yaml:"backend" toml:"backend"`
		Key     string `yaml:"key" toml:"key"`
		Dir     string `yaml:"dir" toml:"dir"`
		Redis   struct {
			Addr       string `yaml:"addr" toml:"addr"`
			Password   string `yaml:"password" toml:"password"`
			DB         int    `yaml:"db" toml:"db"`
			TTLSeconds int    `yaml:"ttl_seconds" toml:"ttl_seconds"`
		} `yaml:"redis" toml:"redis"`
	} `yaml:"storage" toml:"storage"`
	Server struct {
		Addr                string `yaml:"addr" toml:"addr"`
		ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds" toml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `yaml:"write_timeout_seconds" toml:"write_timeout_seconds"`
		MaxUploadBytes      int64  `yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	} `yaml:"server" toml:"server"`
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "trade-journal"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "trades"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 30
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 30
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("invalid storage.backend '%s': must be 'memory', 'file' or 'redis'", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key cannot be empty")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	if c.Storage.Redis.TTLSeconds < 0 {
		return fmt.Errorf("storage.redis.ttl_seconds must be >= 0, got %d", c.Storage.Redis.TTLSeconds)
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must be >= 0, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LoadConfig reads a YAML or TOML file (chosen by extension), fills defaults,
// applies JOURNAL_* environment overrides and validates the result. An empty
// path yields the defaults plus environment overrides.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if _, err := toml.Decode(string(b), &c); err != nil {
				return nil, err
			}
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(&c)
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyEnvOverrides(c *Config) {
	setStr(&c.ServiceName, "JOURNAL_SERVICE_NAME")
	setStr(&c.Timezone, "JOURNAL_TIMEZONE")
	setStr(&c.Storage.Backend, "JOURNAL_STORAGE_BACKEND")
	setStr(&c.Storage.Key, "JOURNAL_STORAGE_KEY")
	setStr(&c.Storage.Dir, "JOURNAL_STORAGE_DIR")
	setStr(&c.Storage.Redis.Addr, "JOURNAL_REDIS_ADDR")
	setStr(&c.Storage.Redis.Password, "JOURNAL_REDIS_PASSWORD")
	setInt(&c.Storage.Redis.DB, "JOURNAL_REDIS_DB")
	setInt(&c.Storage.Redis.TTLSeconds, "JOURNAL_REDIS_TTL_SECONDS")
	setStr(&c.Server.Addr, "JOURNAL_SERVER_ADDR")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

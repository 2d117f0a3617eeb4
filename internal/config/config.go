package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Admin struct {
		Password string `yaml:"password"`
	} `yaml:"admin"`
	Storage struct {
		Driver     string `yaml:"driver"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// StorageDriver returns the configured driver, defaulting to postgres when a URL is set.
func (c Config) StorageDriver() string {
	if c.Storage.Driver != "" {
		return c.Storage.Driver
	}
	if c.Postgres.URL != "" {
		return DriverPostgres
	}
	return DriverMemory
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.StorageDriver() {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("storage driver %q requires postgres.url", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

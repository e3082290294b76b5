package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	Admin struct {
		Key string `yaml:"key"`
	} `yaml:"admin"`
	PIN struct {
		MinLen int `yaml:"minLen"`
		MaxLen int `yaml:"maxLen"`
	} `yaml:"pin"`
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
	return cfg, nil
}

// PINBounds returns the configured PIN length range, defaulting to the
// historical 4..10 convention when unset.
func (c Config) PINBounds() (int, int) {
	min, max := c.PIN.MinLen, c.PIN.MaxLen
	if min <= 0 {
		min = 4
	}
	if max <= 0 {
		max = 10
	}
	return min, max
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

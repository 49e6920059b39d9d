package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration loaded from a YAML file. Missing
// sections fall back to in-memory infrastructure so the service runs with an
// empty config.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		// TTL bounds how long immutable decks stay cached, e.g. "24h".
		TTL string `yaml:"ttl"`
		// LockTTL bounds how long a crashed generator can hold a location, e.g. "30s".
		LockTTL string `yaml:"lock_ttl"`
	} `yaml:"redis"`

	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`

	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"openai"`

	Deck struct {
		FreshnessDays int `yaml:"freshness_days"`
		MainTarget    int `yaml:"main_target"`
		NoveltyTarget int `yaml:"novelty_target"`
		Floor         int `yaml:"floor"`
		CodeAttempts  int `yaml:"code_attempts"`
	} `yaml:"deck"`
}

// Load reads and parses the YAML config at path.
func Load(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Duration parses a duration field, returning fallback on empty or bad input.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

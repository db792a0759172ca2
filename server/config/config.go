package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quantmarket/server/engine"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Coach struct {
		Model string `yaml:"model"`
	} `yaml:"coach"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Market engine.Config `yaml:"market"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; everything has a default.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("COACH_MODEL"); v != "" {
		cfg.Coach.Model = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Coach.Model == "" {
		cfg.Coach.Model = "gpt-4.1-mini"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Market.Spread == 0 {
		cfg.Market = engine.DefaultConfig()
	}
	return cfg, nil
}

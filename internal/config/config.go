// Package config provides configuration for the answer service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the answer service configuration.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Remote services
	SearchURL  string `yaml:"search_url"`
	LLMBaseURL string `yaml:"llm_base_url"`

	// SummaryModel is the fixed LLM used to condense the first question of a
	// conversation into a display name.
	SummaryModel string `yaml:"summary_model"`

	// Timeouts. Generation and search calls run against slow upstreams; the
	// multi-minute bound turns a hung stream into a generation error instead
	// of a stuck request.
	GenerationTimeout time.Duration `yaml:"-"`
	SearchTimeout     time.Duration `yaml:"-"`

	GenerationTimeoutMs int `yaml:"generation_timeout_ms"`
	SearchTimeoutMs     int `yaml:"search_timeout_ms"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Load loads configuration from environment variables, with an optional YAML
// file (CONFIG_FILE) applied first so environment variables win.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:            8080,
		DatabaseURL:         "file:answerd.db?cache=shared&mode=rwc",
		SearchURL:           "http://localhost:9200/search",
		LLMBaseURL:          "http://localhost:4000",
		SummaryModel:        "uccix_instruct_70b",
		GenerationTimeoutMs: 600000,
		SearchTimeoutMs:     600000,
		LogLevel:            "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SearchURL = getEnv("SEARCH_URL", cfg.SearchURL)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.SummaryModel = getEnv("SUMMARY_MODEL", cfg.SummaryModel)
	cfg.GenerationTimeoutMs = getEnvInt("GENERATION_TIMEOUT_MS", cfg.GenerationTimeoutMs)
	cfg.SearchTimeoutMs = getEnvInt("SEARCH_TIMEOUT_MS", cfg.SearchTimeoutMs)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.GenerationTimeout = time.Duration(cfg.GenerationTimeoutMs) * time.Millisecond
	cfg.SearchTimeout = time.Duration(cfg.SearchTimeoutMs) * time.Millisecond

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

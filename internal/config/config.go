// Package config reads process-wide configuration from the environment once
// at startup. Credentials are held immutably for the process lifetime.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	MaxConcurrency int64
	RequestTimeout time.Duration
	OverallTimeout time.Duration

	FootballDataKey string
	SoccerDataToken string
	OddsAPIKey      string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	RedisURL string
}

// Load reads and validates the environment. Malformed numeric values are a
// startup failure, not a silent default.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_CONCURRENCY", "15")
	v.SetDefault("REQUEST_TIMEOUT_S", "20")
	v.SetDefault("OVERALL_TIMEOUT_S", "60")
	v.SetDefault("LLM_BASE_URL", "")
	v.SetDefault("LLM_MODEL", "claude-sonnet-4-20250514")

	cfg := &Config{
		Port:            v.GetString("PORT"),
		Env:             v.GetString("ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		FootballDataKey: v.GetString("FOOTBALL_DATA_API_KEY"),
		SoccerDataToken: v.GetString("SOCCERDATA_API_TOKEN"),
		OddsAPIKey:      v.GetString("ODDS_API_KEY"),
		LLMAPIKey:       v.GetString("ANTHROPIC_API_KEY"),
		LLMBaseURL:      v.GetString("LLM_BASE_URL"),
		LLMModel:        v.GetString("LLM_MODEL"),
		RedisURL:        v.GetString("REDIS_URL"),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}

	maxConc, err := parsePositiveInt(v.GetString("MAX_CONCURRENCY"), "MAX_CONCURRENCY")
	if err != nil {
		return nil, err
	}
	cfg.MaxConcurrency = maxConc

	reqTimeout, err := parsePositiveInt(v.GetString("REQUEST_TIMEOUT_S"), "REQUEST_TIMEOUT_S")
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = time.Duration(reqTimeout) * time.Second

	overall, err := parsePositiveInt(v.GetString("OVERALL_TIMEOUT_S"), "OVERALL_TIMEOUT_S")
	if err != nil {
		return nil, err
	}
	cfg.OverallTimeout = time.Duration(overall) * time.Second

	return cfg, nil
}

func parsePositiveInt(s, name string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return n, nil
}

// IsDevelopment reports whether the process runs in a development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// LLMConfigured reports whether the analysis tools can reach an LLM.
func (c *Config) LLMConfigured() bool {
	return c.LLMAPIKey != "" || c.LLMBaseURL != ""
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, int64(15), cfg.MaxConcurrency)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 60*time.Second, cfg.OverallTimeout)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.LLMModel)
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.LLMConfigured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "development")
	t.Setenv("MAX_CONCURRENCY", "4")
	t.Setenv("REQUEST_TIMEOUT_S", "5")
	t.Setenv("ANTHROPIC_API_KEY", "k")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, int64(4), cfg.MaxConcurrency)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.LLMConfigured())
}

func TestLoad_MalformedNumericsFail(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "eighty"},
		{"MAX_CONCURRENCY", "many"},
		{"MAX_CONCURRENCY", "0"},
		{"MAX_CONCURRENCY", "-1"},
		{"REQUEST_TIMEOUT_S", "fast"},
		{"OVERALL_TIMEOUT_S", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLLMConfigured_BaseURLAlone(t *testing.T) {
	cfg := &Config{LLMBaseURL: "http://localhost:8080"}
	assert.True(t, cfg.LLMConfigured())
}

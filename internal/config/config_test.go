package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.001)
	assert.Equal(t, 20*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 10, cfg.ResultLimitDefault)
	assert.Equal(t, 50, cfg.ResultLimitMax)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("MODEL_TEMPERATURE", "0.2")
	t.Setenv("SEARCH_TIMEOUT", "5s")
	t.Setenv("SEARCH_RETRY_ATTEMPTS", "3")
	t.Setenv("RESULT_LIMIT_DEFAULT", "25")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.InDelta(t, 0.2, cfg.Temperature, 0.001)
	assert.Equal(t, 5*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 25, cfg.ResultLimitDefault)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SEARCH_RETRY_ATTEMPTS", "many")
	t.Setenv("MODEL_TEMPERATURE", "hot")
	t.Setenv("SEARCH_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.001)
	assert.Equal(t, 20*time.Second, cfg.SearchTimeout)
}

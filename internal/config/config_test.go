package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_PORT", "APP_ENV",
		"STREAM_TICKER_INTERVAL_MS", "STREAM_CANDLE_INTERVAL_MS", "STREAM_SEND_BUFFER",
	} {
		t.Setenv(key, "")
	}
}

func Test_Load_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Port)
	assert.Equal(t, "local", cfg.App.Env)
	assert.Equal(t, 1000, cfg.Stream.TickerIntervalMs)
	assert.Equal(t, 100, cfg.Stream.CandleIntervalMs)
	assert.Equal(t, 256, cfg.Stream.SendBuffer)
}

func Test_Load_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STREAM_TICKER_INTERVAL_MS", "500")
	t.Setenv("STREAM_CANDLE_INTERVAL_MS", "50")
	t.Setenv("STREAM_SEND_BUFFER", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.App.Port)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, 500, cfg.Stream.TickerIntervalMs)
	assert.Equal(t, 50, cfg.Stream.CandleIntervalMs)
	assert.Equal(t, 64, cfg.Stream.SendBuffer)
}

func Test_Load_LegacyPortVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3001", cfg.App.Port, "bare port number gets the colon prefix")
}

func Test_Load_AppPortWinsOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3001")
	t.Setenv("APP_PORT", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.App.Port)
}

func Test_Load_RejectsNonPositiveIntervals(t *testing.T) {
	clearEnv(t)
	t.Setenv("STREAM_TICKER_INTERVAL_MS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intervals must be positive")
}

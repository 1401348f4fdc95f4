// Package config loads service configuration from a .env file, environment
// variables, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Stream StreamConfig `mapstructure:"stream"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Port string `mapstructure:"port"` // Listen address, e.g. ":8080"
	Env  string `mapstructure:"env"`  // "local" or "prod"
}

// StreamConfig holds the broadcast cadences and per-connection buffering.
type StreamConfig struct {
	TickerIntervalMs int `mapstructure:"ticker_interval_ms"`
	CandleIntervalMs int `mapstructure:"candle_interval_ms"`
	SendBuffer       int `mapstructure:"send_buffer"`
}

// Load reads configuration from .env, environment variables, and defaults.
// The plain PORT variable is honored alongside APP_PORT for parity with the
// original deployment.
func Load() (*Config, error) {
	v := viper.New()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables only")
	}

	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")
	v.SetDefault("stream.ticker_interval_ms", 1000)
	v.SetDefault("stream.candle_interval_ms", 100)
	v.SetDefault("stream.send_buffer", 256)

	// Maps dot-notation keys to underscore env vars (app.port -> APP_PORT).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v,
		"app.port", "app.env",
		"stream.ticker_interval_ms", "stream.candle_interval_ms", "stream.send_buffer",
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if legacy := os.Getenv("PORT"); legacy != "" && os.Getenv("APP_PORT") == "" {
		cfg.App.Port = legacy
	}
	if cfg.App.Port != "" && !strings.HasPrefix(cfg.App.Port, ":") {
		cfg.App.Port = ":" + cfg.App.Port
	}

	if cfg.Stream.TickerIntervalMs <= 0 || cfg.Stream.CandleIntervalMs <= 0 {
		return nil, fmt.Errorf("broadcast intervals must be positive")
	}

	return &cfg, nil
}

// bindEnv binds multiple keys, logging rather than failing on bind errors.
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("could not bind env var")
		}
	}
}

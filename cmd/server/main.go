/*
Package main implements the market data simulation server.

The server maintains a continuously evolving synthetic price history per
instrument and streams it to WebSocket subscribers over two independent
cadences (ticker updates and candle updates), alongside HTTP endpoints that
serve the historical series and starter quotes for the dashboard's first
paint. All state is in-memory and rebuilt from scratch on restart.

Usage:

	APP_PORT=:8080 go run main.go

The listen address can also be supplied via the plain PORT variable.
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vigorakbar/trading-dashboard-mock/internal/config"
	"github.com/vigorakbar/trading-dashboard-mock/internal/server"
	"github.com/vigorakbar/trading-dashboard-mock/internal/service"
)

func main() {
	// Initialize structured logger with timestamp and info level
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Context for managing application lifecycle and graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := service.NewMarketService(service.BroadcasterConfig{
		TickerInterval: time.Duration(cfg.Stream.TickerIntervalMs) * time.Millisecond,
		CandleInterval: time.Duration(cfg.Stream.CandleIntervalMs) * time.Millisecond,
	})
	if err := svc.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start market service")
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:    cfg.App.Port,
		Handler: server.New(svc, cfg.Stream.SendBuffer).Handler(),
	}

	go func() {
		log.Info().
			Str("port", cfg.App.Port).
			Int("tickerIntervalMs", cfg.Stream.TickerIntervalMs).
			Int("candleIntervalMs", cfg.Stream.CandleIntervalMs).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to serve")
		}
	}()

	// Block until an interrupt signal arrives, then drain connections.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info().Msg("initiating graceful shutdown")
	cancel() // stop the broadcast loops

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

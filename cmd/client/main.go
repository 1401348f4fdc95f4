/*
Package main implements a demo WebSocket client for the market data stream.

The client connects to a running simulation server, subscribes to the ticker
and candle channels for the requested symbols, and logs every received batch
until interrupted.

Usage:

	go run main.go -addr=localhost:8080 -symbols=AAPL,BTCUSD
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
)

var (
	// serverAddr specifies the server host:port to connect to
	serverAddr = flag.String("addr", "localhost:8080", "The server address in the format host:port")
	// symbols contains the comma-separated list of instruments to subscribe to
	symbols = flag.String("symbols", "AAPL,MSFT,BTCUSD", "Comma-separated list of symbols to subscribe to")
)

func main() {
	flag.Parse()

	log := zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	if err := validateConfig(); err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	endpoint := url.URL{Scheme: "ws", Host: *serverAddr, Path: "/ws"}
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	conn, _, err := dialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		log.Fatal().Err(err).Str("endpoint", endpoint.String()).Msg("did not connect")
	}
	defer conn.Close()

	// Close the connection when the context ends so the read loop unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	symbolList := strings.Split(*symbols, ",")
	for _, channel := range []string{model.ChannelTicker, model.ChannelCandle} {
		req := model.SubscribeRequest{
			Type:    model.MessageSubscribe,
			Channel: channel,
			Symbols: symbolList,
		}
		payload, err := json.Marshal(req)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to marshal subscribe request")
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Fatal().Err(err).Str("channel", channel).Msg("could not subscribe")
		}
		log.Info().Str("channel", channel).Strs("symbols", symbolList).Msg("subscribed")
	}

	// Receive loop: log each batch until the connection closes.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("connection closed")
				return
			}
			log.Fatal().Err(err).Msg("failed to read message")
		}

		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			log.Error().Err(err).Msg("unexpected message shape")
			continue
		}

		switch envelope.Type {
		case model.ChannelTicker:
			var msg model.TickerMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				log.Error().Err(err).Msg("invalid ticker message")
				continue
			}
			for _, u := range msg.Data {
				log.Info().
					Str("symbol", u.Symbol).
					Str("last", u.Price.Last.String()).
					Str("change", u.Price.Change.String()).
					Str("percentChange", u.Price.PercentChange.String()).
					Msg("ticker")
			}
		case model.ChannelCandle:
			var msg model.CandleMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				log.Error().Err(err).Msg("invalid candle message")
				continue
			}
			for _, u := range msg.Data {
				log.Info().
					Str("symbol", u.Symbol).
					Time("time", time.UnixMilli(u.Candle.Time)).
					Str("open", u.Candle.Open.String()).
					Str("high", u.Candle.High.String()).
					Str("low", u.Candle.Low.String()).
					Str("close", u.Candle.Close.String()).
					Msg("candle")
			}
		default:
			log.Warn().Str("type", envelope.Type).Msg("unknown message type")
		}
	}
}

// validateConfig ensures required flags are set before connecting.
func validateConfig() error {
	if *serverAddr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if *symbols == "" {
		return fmt.Errorf("symbols list cannot be empty")
	}
	return nil
}

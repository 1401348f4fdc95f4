// Package model defines core data types for the market data simulation service.
//
// This package contains the fundamental structures used throughout the system
// for representing instruments, candlestick data, ticker quotes, and the wire
// messages exchanged with streaming clients. Broadcast price values use
// decimal.Decimal so that two-decimal rounding survives serialization without
// floating-point artifacts.
package model

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices serialize as JSON numbers, not strings, matching the wire format
	// consumed by the dashboard frontend.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category classifies an instrument by volatility and update-cadence profile.
type Category int

const (
	// Crypto represents cryptocurrency pairs: high volatility, fast updates.
	Crypto Category = iota

	// GrowthTech represents high-growth technology stocks.
	GrowthTech

	// LargeTech represents large-cap technology stocks.
	LargeTech

	// Semiconductor represents semiconductor stocks.
	Semiconductor

	// ETF represents exchange-traded funds: low volatility, slow updates.
	ETF
)

// String returns the human-readable category name used in logs.
func (c Category) String() string {
	switch c {
	case Crypto:
		return "crypto"
	case GrowthTech:
		return "growthTech"
	case LargeTech:
		return "largeTech"
	case Semiconductor:
		return "semiconductors"
	case ETF:
		return "etf"
	default:
		return "unknown"
	}
}

// Instrument describes a tradable symbol known to the catalog.
//
// Instruments are immutable for the process lifetime; the catalog is the only
// source of them. VolMultiplier scales the category volatility for symbols
// that historically trade hotter or cooler than their peers.
type Instrument struct {
	Symbol        string   // Ticker symbol (e.g. "AAPL", "BTCUSD")
	BasePrice     float64  // Anchor price the random walk is bounded around
	Category      Category // Volatility/cadence profile
	VolMultiplier float64  // Per-symbol volatility scale, 1.0 by default
}

// Candle is one OHLC price bar with an epoch-millisecond timestamp.
//
// Historical candles satisfy low <= min(open,close) <= max(open,close) <= high.
// All prices are rounded to two decimals before the candle is stored or sent.
//
// The JSON form is the compact 5-tuple [time, open, high, low, close] expected
// by the charting frontend.
type Candle struct {
	Time  int64 // Epoch milliseconds
	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// MarshalJSON encodes the candle as its 5-element array form.
func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal([5]interface{}{c.Time, c.Open, c.High, c.Low, c.Close})
}

// UnmarshalJSON decodes the 5-element array form produced by MarshalJSON.
func (c *Candle) UnmarshalJSON(data []byte) error {
	var tuple []json.Number
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 5 {
		return fmt.Errorf("candle tuple must have 5 elements, got %d", len(tuple))
	}

	ts, err := tuple[0].Int64()
	if err != nil {
		return fmt.Errorf("invalid candle timestamp %q: %w", tuple[0], err)
	}

	var prices [4]decimal.Decimal
	for i := 0; i < 4; i++ {
		p, err := decimal.NewFromString(tuple[i+1].String())
		if err != nil {
			return fmt.Errorf("invalid candle price %q: %w", tuple[i+1], err)
		}
		prices[i] = p
	}

	c.Time = ts
	c.Open, c.High, c.Low, c.Close = prices[0], prices[1], prices[2], prices[3]
	return nil
}

// TickerQuote carries the derived per-tick quote values for one symbol.
// Quotes are computed fresh on every broadcast tick and never stored.
type TickerQuote struct {
	Last          decimal.Decimal `json:"last"`
	Bid           decimal.Decimal `json:"bid"`
	Ask           decimal.Decimal `json:"ask"`
	Change        decimal.Decimal `json:"change"`
	PercentChange decimal.Decimal `json:"percentChange"`
}

// TickerUpdate is one symbol's entry in a ticker broadcast or snapshot.
type TickerUpdate struct {
	Symbol    string      `json:"symbol"`
	Price     TickerQuote `json:"price"`
	Timestamp int64       `json:"timestamp"` // Epoch milliseconds
}

// CandleUpdate is one symbol's entry in a candle broadcast.
type CandleUpdate struct {
	Symbol string `json:"symbol"`
	Candle Candle `json:"candle"`
}

// Stream channel names a connection can subscribe to.
const (
	ChannelTicker = "ticker"
	ChannelCandle = "candle"
)

// MessageSubscribe is the only inbound message type the server accepts.
const MessageSubscribe = "subscribe"

// SubscribeRequest is the client->server subscription message. A subscribe
// replaces the connection's symbol set for the named channel outright.
//
// Symbols intentionally has no validation tag: an empty-but-present list is a
// legal request that clears the channel subscription. A missing list is a
// malformed request and is rejected by the reader.
type SubscribeRequest struct {
	Type    string   `json:"type" validate:"required,eq=subscribe"`
	Channel string   `json:"channel" validate:"required,oneof=ticker candle"`
	Symbols []string `json:"symbols"`
}

// TickerMessage is the server->client ticker broadcast envelope.
type TickerMessage struct {
	Type string         `json:"type"` // Always "ticker"
	Data []TickerUpdate `json:"data"`
}

// CandleMessage is the server->client candle broadcast envelope.
type CandleMessage struct {
	Type string         `json:"type"` // Always "candle"
	Data []CandleUpdate `json:"data"`
}

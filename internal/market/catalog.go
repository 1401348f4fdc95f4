// Package market implements the synthetic market data core: the instrument
// catalog, the bounded random-walk series generator, and the per-instrument
// series store that keeps ticker and candle views of one symbol consistent.
package market

import (
	"time"

	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
)

// HistoricalPoints is the number of random-walk steps in a historical series.
// A generated series holds HistoricalPoints+1 candles.
const HistoricalPoints = 1000

// Profile holds the volatility and candle sampling interval of one category.
type Profile struct {
	Volatility float64       // Fraction of base price per step (e.g. 0.018)
	Interval   time.Duration // Candle sampling interval
}

// categoryProfiles maps each category to its volatility/cadence profile.
var categoryProfiles = map[model.Category]Profile{
	model.Crypto:        {Volatility: 0.018, Interval: 250 * time.Millisecond},
	model.GrowthTech:    {Volatility: 0.012, Interval: 500 * time.Millisecond},
	model.LargeTech:     {Volatility: 0.008, Interval: time.Second},
	model.Semiconductor: {Volatility: 0.010, Interval: 750 * time.Millisecond},
	model.ETF:           {Volatility: 0.003, Interval: 2 * time.Second},
}

// defaultInstruments is the full static universe served by the catalog.
// Multipliers scale category volatility for symbols that trade hotter or
// cooler than their category peers.
var defaultInstruments = []model.Instrument{
	{Symbol: "AAPL", BasePrice: 180, Category: model.LargeTech, VolMultiplier: 1.0},
	{Symbol: "MSFT", BasePrice: 350, Category: model.LargeTech, VolMultiplier: 1.0},
	{Symbol: "NVDA", BasePrice: 700, Category: model.GrowthTech, VolMultiplier: 1.3},
	{Symbol: "META", BasePrice: 450, Category: model.GrowthTech, VolMultiplier: 1.0},
	{Symbol: "GOOGL", BasePrice: 160, Category: model.LargeTech, VolMultiplier: 1.0},
	{Symbol: "AMZN", BasePrice: 180, Category: model.LargeTech, VolMultiplier: 1.0},
	{Symbol: "TSLA", BasePrice: 250, Category: model.GrowthTech, VolMultiplier: 1.5},
	{Symbol: "NFLX", BasePrice: 600, Category: model.LargeTech, VolMultiplier: 1.2},
	{Symbol: "AMD", BasePrice: 150, Category: model.Semiconductor, VolMultiplier: 1.0},
	{Symbol: "INTC", BasePrice: 40, Category: model.Semiconductor, VolMultiplier: 0.8},
	{Symbol: "BTCUSD", BasePrice: 40000, Category: model.Crypto, VolMultiplier: 1.0},
	{Symbol: "ETHUSD", BasePrice: 2500, Category: model.Crypto, VolMultiplier: 1.0},
	{Symbol: "SPY", BasePrice: 500, Category: model.ETF, VolMultiplier: 1.0},
	{Symbol: "QQQ", BasePrice: 430, Category: model.ETF, VolMultiplier: 1.2},
	{Symbol: "VOO", BasePrice: 450, Category: model.ETF, VolMultiplier: 1.0},
}

// Catalog is the static, read-only instrument universe. It is safe for
// concurrent use because it is never mutated after construction.
type Catalog struct {
	instruments map[string]model.Instrument
	order       []string
}

// NewCatalog builds the default instrument catalog.
func NewCatalog() *Catalog {
	c := &Catalog{
		instruments: make(map[string]model.Instrument, len(defaultInstruments)),
		order:       make([]string, 0, len(defaultInstruments)),
	}
	for _, inst := range defaultInstruments {
		c.instruments[inst.Symbol] = inst
		c.order = append(c.order, inst.Symbol)
	}
	return c
}

// Lookup returns the instrument for symbol, reporting whether it is known.
func (c *Catalog) Lookup(symbol string) (model.Instrument, bool) {
	inst, ok := c.instruments[symbol]
	return inst, ok
}

// Known reports whether symbol is part of the catalog universe.
func (c *Catalog) Known(symbol string) bool {
	_, ok := c.instruments[symbol]
	return ok
}

// Symbols returns all catalog symbols in their stable declaration order.
func (c *Catalog) Symbols() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Filter returns the subset of symbols known to the catalog, preserving
// request order. Unknown symbols are dropped silently; a subscription or
// snapshot request with invalid entries is not an error.
func (c *Catalog) Filter(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if c.Known(s) {
			out = append(out, s)
		}
	}
	return out
}

// Profile returns the volatility/cadence profile for a category. Unknown
// categories fall back to the large-cap tech profile.
func (c *Catalog) Profile(cat model.Category) Profile {
	if p, ok := categoryProfiles[cat]; ok {
		return p
	}
	return categoryProfiles[model.LargeTech]
}

// EffectiveVolatility resolves an instrument's volatility: category profile
// volatility scaled by the instrument's multiplier.
func (c *Catalog) EffectiveVolatility(inst model.Instrument) float64 {
	return c.Profile(inst.Category).Volatility * inst.VolMultiplier
}

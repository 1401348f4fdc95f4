package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
)

func Test_Catalog_Lookup(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name      string
		symbol    string
		wantKnown bool
		wantBase  float64
		wantCat   model.Category
	}{
		{name: "large-cap tech", symbol: "AAPL", wantKnown: true, wantBase: 180, wantCat: model.LargeTech},
		{name: "crypto", symbol: "BTCUSD", wantKnown: true, wantBase: 40000, wantCat: model.Crypto},
		{name: "etf", symbol: "VOO", wantKnown: true, wantBase: 450, wantCat: model.ETF},
		{name: "semiconductor", symbol: "INTC", wantKnown: true, wantBase: 40, wantCat: model.Semiconductor},
		{name: "unknown symbol", symbol: "GME", wantKnown: false},
		{name: "lowercase is not known", symbol: "aapl", wantKnown: false},
		{name: "empty symbol", symbol: "", wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, ok := catalog.Lookup(tt.symbol)
			require.Equal(t, tt.wantKnown, ok)
			if tt.wantKnown {
				assert.Equal(t, tt.wantBase, inst.BasePrice)
				assert.Equal(t, tt.wantCat, inst.Category)
			}
		})
	}
}

func Test_Catalog_Symbols(t *testing.T) {
	catalog := NewCatalog()

	symbols := catalog.Symbols()
	assert.Len(t, symbols, 15, "full default universe")
	assert.Equal(t, "AAPL", symbols[0], "declaration order is stable")
	assert.Equal(t, "VOO", symbols[len(symbols)-1])

	// Mutating the returned slice must not affect the catalog.
	symbols[0] = "HACKED"
	assert.Equal(t, "AAPL", catalog.Symbols()[0])
}

func Test_Catalog_Filter(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name    string
		symbols []string
		want    []string
	}{
		{name: "all known", symbols: []string{"AAPL", "MSFT"}, want: []string{"AAPL", "MSFT"}},
		{name: "unknown dropped", symbols: []string{"AAPL", "FAKE", "BTCUSD"}, want: []string{"AAPL", "BTCUSD"}},
		{name: "all unknown", symbols: []string{"FAKE", "ALSOFAKE"}, want: []string{}},
		{name: "empty request", symbols: []string{}, want: []string{}},
		{name: "request order preserved", symbols: []string{"VOO", "AAPL"}, want: []string{"VOO", "AAPL"}},
		{name: "duplicates kept", symbols: []string{"AAPL", "AAPL"}, want: []string{"AAPL", "AAPL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Filter(tt.symbols))
		})
	}
}

func Test_Catalog_Profiles(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name         string
		category     model.Category
		wantVol      float64
		wantInterval time.Duration
	}{
		{name: "crypto", category: model.Crypto, wantVol: 0.018, wantInterval: 250 * time.Millisecond},
		{name: "growth tech", category: model.GrowthTech, wantVol: 0.012, wantInterval: 500 * time.Millisecond},
		{name: "large tech", category: model.LargeTech, wantVol: 0.008, wantInterval: time.Second},
		{name: "semiconductors", category: model.Semiconductor, wantVol: 0.010, wantInterval: 750 * time.Millisecond},
		{name: "etf", category: model.ETF, wantVol: 0.003, wantInterval: 2 * time.Second},
		{name: "unknown falls back to large tech", category: model.Category(99), wantVol: 0.008, wantInterval: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := catalog.Profile(tt.category)
			assert.InDelta(t, tt.wantVol, p.Volatility, 1e-12)
			assert.Equal(t, tt.wantInterval, p.Interval)
		})
	}
}

func Test_Catalog_EffectiveVolatility(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name   string
		symbol string
		want   float64
	}{
		{name: "default multiplier", symbol: "AAPL", want: 0.008},
		{name: "amplified growth tech", symbol: "TSLA", want: 0.012 * 1.5},
		{name: "amplified large tech", symbol: "NFLX", want: 0.008 * 1.2},
		{name: "damped semiconductor", symbol: "INTC", want: 0.010 * 0.8},
		{name: "amplified etf", symbol: "QQQ", want: 0.003 * 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, ok := catalog.Lookup(tt.symbol)
			require.True(t, ok)
			assert.InDelta(t, tt.want, catalog.EffectiveVolatility(inst), 1e-12)
		})
	}
}

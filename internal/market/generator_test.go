package market

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
)

// assertOHLCInvariant checks low <= min(open,close) <= max(open,close) <= high.
func assertOHLCInvariant(t *testing.T, c model.Candle) {
	t.Helper()

	open := c.Open.InexactFloat64()
	high := c.High.InexactFloat64()
	low := c.Low.InexactFloat64()
	close := c.Close.InexactFloat64()

	assert.LessOrEqual(t, low, open, "low must not exceed open")
	assert.LessOrEqual(t, low, close, "low must not exceed close")
	assert.GreaterOrEqual(t, high, open, "high must cover open")
	assert.GreaterOrEqual(t, high, close, "high must cover close")
}

func Test_Generate_SeriesLength(t *testing.T) {
	tests := []struct {
		name   string
		points int
		want   int
	}{
		{name: "standard historical length", points: 1000, want: 1001},
		{name: "short series", points: 10, want: 11},
		{name: "single step", points: 1, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(rand.New(rand.NewSource(1)))
			candles := gen.Generate(180, 0.008, tt.points, time.Second)
			assert.Len(t, candles, tt.want)
		})
	}
}

func Test_Generate_PricesBoundedAndValid(t *testing.T) {
	tests := []struct {
		name       string
		basePrice  float64
		volatility float64
	}{
		{name: "large-cap tech", basePrice: 180, volatility: 0.008},
		{name: "crypto", basePrice: 40000, volatility: 0.018},
		{name: "low-priced semiconductor", basePrice: 40, volatility: 0.008},
		{name: "amplified growth tech", basePrice: 250, volatility: 0.018},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(rand.New(rand.NewSource(42)))
			candles := gen.Generate(tt.basePrice, tt.volatility, 1000, time.Second)

			floor := tt.basePrice * clampFloor
			ceil := tt.basePrice * clampCeil

			for i, c := range candles {
				assertOHLCInvariant(t, c)
				for _, p := range []float64{
					c.Open.InexactFloat64(),
					c.High.InexactFloat64(),
					c.Low.InexactFloat64(),
					c.Close.InexactFloat64(),
				} {
					assert.GreaterOrEqual(t, p, floor-1e-9, "candle %d below walk floor", i)
					assert.LessOrEqual(t, p, ceil+1e-9, "candle %d above walk ceiling", i)
				}
			}
		})
	}
}

func Test_Generate_TwoDecimalRounding(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(7)))
	candles := gen.Generate(40000, 0.018, 200, 250*time.Millisecond)

	for _, c := range candles {
		assert.True(t, c.Open.Equal(c.Open.Round(2)), "open not rounded: %s", c.Open)
		assert.True(t, c.High.Equal(c.High.Round(2)), "high not rounded: %s", c.High)
		assert.True(t, c.Low.Equal(c.Low.Round(2)), "low not rounded: %s", c.Low)
		assert.True(t, c.Close.Equal(c.Close.Round(2)), "close not rounded: %s", c.Close)
	}
}

func Test_Generate_Timestamps(t *testing.T) {
	interval := 500 * time.Millisecond
	before := time.Now().UnixMilli()
	gen := NewGenerator(rand.New(rand.NewSource(3)))
	candles := gen.Generate(450, 0.012, 100, interval)
	after := time.Now().UnixMilli()

	step := interval.Milliseconds()
	for i := 1; i < len(candles); i++ {
		assert.Equal(t, step, candles[i].Time-candles[i-1].Time, "timestamps must step by the interval")
	}

	last := candles[len(candles)-1].Time
	require.GreaterOrEqual(t, last, before, "newest candle must be at generation time")
	require.LessOrEqual(t, last, after, "newest candle must not be in the future")
}

func Test_Generate_WalkContinuity(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(11)))
	candles := gen.Generate(600, 0.0096, 300, time.Second)

	assert.True(t, candles[0].Open.Equal(decimal.NewFromInt(600)), "walk must start at base price")
	for i := 1; i < len(candles); i++ {
		assert.True(t, candles[i].Open.Equal(candles[i-1].Close),
			"candle %d open %s must equal previous close %s", i, candles[i].Open, candles[i-1].Close)
	}
}

func Test_Generate_Deterministic(t *testing.T) {
	a := NewGenerator(rand.New(rand.NewSource(99))).Generate(500, 0.003, 50, 2*time.Second)
	b := NewGenerator(rand.New(rand.NewSource(99))).Generate(500, 0.003, 50, 2*time.Second)
	c := NewGenerator(rand.New(rand.NewSource(100))).Generate(500, 0.003, 50, 2*time.Second)

	require.Len(t, b, len(a))
	for i := range a {
		assert.True(t, a[i].Close.Equal(b[i].Close), "same seed must reproduce the series")
	}

	same := true
	for i := range a {
		if !a[i].Close.Equal(c[i].Close) {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should produce different series")
}

package market

import (
	"math"
	"math/rand"
	"time"

	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
	"github.com/vigorakbar/trading-dashboard-mock/internal/utils"
)

// Random-walk tuning shared by historical and incremental generation.
const (
	// spikeChance is the probability that one step is a volatility burst.
	spikeChance = 0.05

	// spikeFactor amplifies the step magnitude during a burst.
	spikeFactor = 3.0

	// clampFloor and clampCeil bound the walk relative to the base price,
	// preventing unbounded drift regardless of run length.
	clampFloor = 0.85
	clampCeil  = 1.15
)

// Generator produces bounded random-walk OHLC series.
//
// Generation is synchronous, performs no I/O, and touches no shared state;
// the only source of variation is the injected random source, which makes
// series fully reproducible from a seed in tests.
type Generator struct {
	rand *rand.Rand
}

// NewGenerator returns a Generator backed by r. Passing nil seeds a new
// source from the current time.
func NewGenerator(r *rand.Rand) *Generator {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rand: r}
}

// Generate walks backward in time from now in steps of interval, producing
// points+1 candles ordered oldest first with the newest candle at ~now.
//
// Each step opens at the walk's current price and applies a uniform step of
// up to basePrice*volatility, amplified 3x on 5% of steps. The walk, and
// every stored price, is clamped to [clampFloor, clampCeil] of the base
// price, and high/low are widened around the body then re-bounded so that
// low <= min(open,close) <= max(open,close) <= high always holds. All four
// prices are rounded to two decimals.
//
// Non-positive basePrice or points is a contract violation by the caller;
// the catalog guarantees neither occurs at runtime.
func (g *Generator) Generate(basePrice, volatility float64, points int, interval time.Duration) []model.Candle {
	candles := make([]model.Candle, 0, points+1)

	current := basePrice
	now := time.Now().UnixMilli()
	step := interval.Milliseconds()
	floor := basePrice * clampFloor
	ceil := basePrice * clampCeil

	for i := points; i >= 0; i-- {
		ts := now - int64(i)*step
		open := current
		maxChange := basePrice * volatility

		spike := 1.0
		if g.rand.Float64() > 1-spikeChance {
			spike = spikeFactor
		}
		change := (g.rand.Float64()*2 - 1) * maxChange * spike

		current = utils.Clamp(current+change, floor, ceil)
		close := current

		high := open + math.Abs(change)*(1+g.rand.Float64()*0.5)
		low := open - math.Abs(change)*(1+g.rand.Float64()*0.5)
		high = utils.Clamp(math.Max(math.Max(open, close), high), floor, ceil)
		low = utils.Clamp(math.Min(math.Min(open, close), low), floor, ceil)

		candles = append(candles, model.Candle{
			Time:  ts,
			Open:  utils.Dec2(open),
			High:  utils.Dec2(high),
			Low:   utils.Dec2(low),
			Close: utils.Dec2(close),
		})
	}

	return candles
}

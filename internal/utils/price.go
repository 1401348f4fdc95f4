// Package utils provides shared numeric helpers for price computation.
//
// All broadcast and snapshot prices in the system are quoted to two decimal
// places; the helpers here keep that rounding rule in one place for both the
// float64 random-walk internals and the decimal wire values built from them.
package utils

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Dec2 converts v to a decimal rounded to two decimal places, the form every
// price takes on the wire.
func Dec2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Clamp bounds v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// RandomPriceAround returns a two-decimal price jittered around base. The
// jitter width scales with the magnitude of the base price so a $40 stock and
// a $40,000 crypto pair both move visibly but plausibly.
func RandomPriceAround(r *rand.Rand, base float64) float64 {
	var width float64
	switch {
	case base > 1000:
		width = 5
	case base > 100:
		width = 1
	default:
		width = 0.01
	}
	return Round2(base + (r.Float64()-0.5)*width)
}

package market

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
	"github.com/vigorakbar/trading-dashboard-mock/internal/utils"
)

// seriesState is the per-symbol mutable state: the cached historical series
// (fixed once generated) and the running close carried forward as the next
// incremental candle's open, plus the symbol's resolved generation inputs.
type seriesState struct {
	candles      []model.Candle // Historical series, never mutated after creation
	runningClose float64        // Close of the most recent candle, 2-dp
	basePrice    float64
	volatility   float64 // Category volatility x instrument multiplier
	interval     time.Duration
}

// SeriesStore is the single authoritative source of per-instrument price
// history. Both the snapshot path and the broadcast loops read and advance
// the same store, so ticker "last" and candle "close" for one symbol can
// never drift apart beyond the intentional broadcast jitter.
//
// State is created lazily on first access per symbol and lives for the
// process lifetime. A mutex serializes all access; every operation is
// CPU-bound and short, so contention stays negligible at this scale.
type SeriesStore struct {
	mu      sync.Mutex
	catalog *Catalog
	gen     *Generator
	rand    *rand.Rand
	states  map[string]*seriesState
}

// NewSeriesStore builds a store over the given catalog and generator.
// Passing a nil rand seeds a new source from the current time.
func NewSeriesStore(catalog *Catalog, gen *Generator, r *rand.Rand) *SeriesStore {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SeriesStore{
		catalog: catalog,
		gen:     gen,
		rand:    r,
		states:  make(map[string]*seriesState),
	}
}

// Historical returns the cached historical series for symbol, generating it
// on first call. Repeated calls return the same series; the store never
// regenerates. Returns nil for symbols outside the catalog, which callers
// are expected to have filtered out already.
func (s *SeriesStore) Historical(symbol string) []model.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ensure(symbol)
	if st == nil {
		return nil
	}
	return st.candles
}

// NextCandle advances symbol's series by one incremental candle and returns
// it. The candle opens at the previous close, so the visible price path has
// no discontinuities except through the explicit clamp. The reported ok is
// false for symbols outside the catalog.
//
// Unlike the historical generator, high/low here are widened by an
// independent uniform draw and not re-clamped into the walk's price band.
// The chart consumers render this looser shape today, so the two generation
// paths stay deliberately unaligned.
func (s *SeriesStore) NextCandle(symbol string) (model.Candle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ensure(symbol)
	if st == nil {
		return model.Candle{}, false
	}

	open := st.runningClose
	maxChange := st.basePrice * st.volatility

	spike := 1.0
	if s.rand.Float64() > 1-spikeChance {
		spike = spikeFactor
	}
	change := (s.rand.Float64()*2 - 1) * maxChange * spike

	close := utils.Clamp(open+change, st.basePrice*clampFloor, st.basePrice*clampCeil)
	high := math.Max(open, close) + s.rand.Float64()*maxChange
	low := math.Min(open, close) - s.rand.Float64()*maxChange

	st.runningClose = utils.Round2(close)

	return model.Candle{
		Time:  time.Now().Truncate(time.Second).UnixMilli(),
		Open:  utils.Dec2(open),
		High:  utils.Dec2(high),
		Low:   utils.Dec2(low),
		Close: utils.Dec2(close),
	}, true
}

// LastClose returns symbol's running close if its series state exists.
// It never creates state: before any historical or incremental generation
// has happened for the symbol, the second return is false and ticker
// broadcasts fall back to a random quote around the base price.
func (s *SeriesStore) LastClose(symbol string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[symbol]
	if !ok {
		return 0, false
	}
	return st.runningClose, true
}

// ensure returns the series state for symbol, generating the historical
// series on first access. Callers must hold s.mu.
func (s *SeriesStore) ensure(symbol string) *seriesState {
	if st, ok := s.states[symbol]; ok {
		return st
	}

	inst, ok := s.catalog.Lookup(symbol)
	if !ok {
		// Contract violation: every caller filters through the catalog first.
		log.Error().Str("symbol", symbol).Msg("series requested for unknown symbol")
		return nil
	}

	profile := s.catalog.Profile(inst.Category)
	volatility := s.catalog.EffectiveVolatility(inst)

	candles := s.gen.Generate(inst.BasePrice, volatility, HistoricalPoints, profile.Interval)
	last := candles[len(candles)-1]

	st := &seriesState{
		candles:      candles,
		runningClose: last.Close.InexactFloat64(),
		basePrice:    inst.BasePrice,
		volatility:   volatility,
		interval:     profile.Interval,
	}
	s.states[symbol] = st

	log.Debug().
		Str("symbol", symbol).
		Str("category", inst.Category.String()).
		Float64("volatility", volatility).
		Int("candles", len(candles)).
		Msg("historical series generated")

	return st
}

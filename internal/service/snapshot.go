package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/vigorakbar/trading-dashboard-mock/internal/market"
	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
	"github.com/vigorakbar/trading-dashboard-mock/internal/utils"
)

// Snapshots serves the one-shot request/response accessors backing the
// initial-paint HTTP endpoints: full historical series and starter ticker
// quotes. Both apply the same request rule: unknown symbols are filtered
// out, and an empty request means every catalog symbol.
type Snapshots struct {
	catalog *market.Catalog
	store   *market.SeriesStore

	// randMu guards rand: snapshot requests arrive on arbitrary HTTP
	// handler goroutines.
	randMu sync.Mutex
	rand   *rand.Rand
}

// NewSnapshots builds the snapshot accessor. A nil rand seeds a new source
// from the current time.
func NewSnapshots(catalog *market.Catalog, store *market.SeriesStore, r *rand.Rand) *Snapshots {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Snapshots{catalog: catalog, store: store, rand: r}
}

// HistoricalBatch returns the historical series for the requested symbols,
// keyed by symbol. Series are generated lazily and cached by the store, so
// the first request for a symbol pays the generation cost and later requests
// (and the candle broadcast chain) see the exact same series.
func (s *Snapshots) HistoricalBatch(symbols []string) map[string][]model.Candle {
	requested := s.resolve(symbols)

	out := make(map[string][]model.Candle, len(requested))
	for _, symbol := range requested {
		out[symbol] = s.store.Historical(symbol)
	}
	return out
}

// TickerSnapshot returns one-shot starter quotes for the requested symbols.
//
// Quotes here are independently randomized around each base price rather
// than read from the series store: this path serves the dashboard's first
// paint before any stream subscription exists, and deliberately does not
// force series generation for every symbol on the page.
func (s *Snapshots) TickerSnapshot(symbols []string) []model.TickerUpdate {
	requested := s.resolve(symbols)
	now := time.Now().UnixMilli()

	s.randMu.Lock()
	defer s.randMu.Unlock()

	out := make([]model.TickerUpdate, 0, len(requested))
	for _, symbol := range requested {
		inst, ok := s.catalog.Lookup(symbol)
		if !ok {
			continue
		}
		out = append(out, model.TickerUpdate{
			Symbol: symbol,
			Price: model.TickerQuote{
				Last:          utils.Dec2(utils.RandomPriceAround(s.rand, inst.BasePrice)),
				Bid:           utils.Dec2(utils.RandomPriceAround(s.rand, inst.BasePrice-1)),
				Ask:           utils.Dec2(utils.RandomPriceAround(s.rand, inst.BasePrice+1)),
				Change:        utils.Dec2(0),
				PercentChange: utils.Dec2(0),
			},
			Timestamp: now,
		})
	}
	return out
}

// resolve applies the shared request rule: empty means all known symbols,
// otherwise the catalog-known subset in request order.
func (s *Snapshots) resolve(symbols []string) []string {
	if len(symbols) == 0 {
		return s.catalog.Symbols()
	}
	return s.catalog.Filter(symbols)
}

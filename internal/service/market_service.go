package service

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vigorakbar/trading-dashboard-mock/internal/market"
	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
)

// MarketService orchestrates the whole simulation core: catalog, series
// store, connection registry, snapshot accessors and broadcast loops. The
// transport layer depends on this one type.
//
// The service is created stopped and must be started with Start before the
// broadcast loops run; snapshot reads work either way.
type MarketService struct {
	catalog     *market.Catalog
	store       *market.SeriesStore
	registry    *Registry
	snapshots   *Snapshots
	broadcaster *Broadcaster
	started     atomic.Bool
	cancel      context.CancelFunc
}

// NewMarketService wires up a complete simulation core with the given
// broadcast cadences (zero values select production defaults).
func NewMarketService(cfg BroadcasterConfig) *MarketService {
	seed := time.Now().UnixNano()

	catalog := market.NewCatalog()
	gen := market.NewGenerator(rand.New(rand.NewSource(seed)))
	store := market.NewSeriesStore(catalog, gen, rand.New(rand.NewSource(seed+1)))
	registry := NewRegistry(catalog)

	return &MarketService{
		catalog:     catalog,
		store:       store,
		registry:    registry,
		snapshots:   NewSnapshots(catalog, store, rand.New(rand.NewSource(seed+2))),
		broadcaster: NewBroadcaster(cfg, registry, store, catalog, rand.New(rand.NewSource(seed+3))),
	}
}

// Start launches the broadcast loops. It returns an error if the service is
// already running.
func (ms *MarketService) Start(ctx context.Context) error {
	if !ms.started.CompareAndSwap(false, true) {
		return errors.New("market service has already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	ms.cancel = cancel
	ms.broadcaster.Run(ctx)

	log.Info().Int("instruments", len(ms.catalog.Symbols())).Msg("market service started")
	return nil
}

// Stop halts the broadcast loops. Connections and cached series survive a
// Stop/Start cycle; only the periodic pushes pause.
func (ms *MarketService) Stop() error {
	if !ms.started.CompareAndSwap(true, false) {
		return errors.New("market service not started")
	}

	if ms.cancel != nil {
		ms.cancel()
		ms.cancel = nil
	}

	log.Info().Msg("market service stopped")
	return nil
}

// Connect registers a new live connection.
func (ms *MarketService) Connect(conn Sender) {
	ms.registry.Register(conn)
	log.Info().Str("conn", conn.ID()).Int("connections", ms.registry.Len()).Msg("client connected")
}

// Disconnect destroys a connection's subscription state.
func (ms *MarketService) Disconnect(conn Sender) {
	ms.registry.Remove(conn)
	log.Info().Str("conn", conn.ID()).Int("connections", ms.registry.Len()).Msg("client disconnected")
}

// Subscribe replaces conn's subscription set for the requested channel,
// returning the effective symbols after catalog filtering.
func (ms *MarketService) Subscribe(conn Sender, req model.SubscribeRequest) []string {
	valid := ms.registry.SetSubscription(conn, req.Channel, req.Symbols)
	log.Info().
		Str("conn", conn.ID()).
		Str("channel", req.Channel).
		Strs("symbols", valid).
		Msg("subscription updated")
	return valid
}

// HistoricalBatch exposes the snapshot accessor for the HTTP layer.
func (ms *MarketService) HistoricalBatch(symbols []string) map[string][]model.Candle {
	return ms.snapshots.HistoricalBatch(symbols)
}

// TickerSnapshot exposes the snapshot accessor for the HTTP layer.
func (ms *MarketService) TickerSnapshot(symbols []string) []model.TickerUpdate {
	return ms.snapshots.TickerSnapshot(symbols)
}

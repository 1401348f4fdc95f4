package service

import (
	"context"
	"math/rand"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/vigorakbar/trading-dashboard-mock/internal/market"
	"github.com/vigorakbar/trading-dashboard-mock/internal/model"
	"github.com/vigorakbar/trading-dashboard-mock/internal/utils"
)

const (
	// tickerJitter is the +-0.05% variation applied to the running close so
	// the ticker tracks the candle chart without being byte-identical to it.
	tickerJitter = 0.0005

	// spreadFraction derives bid/ask as last -/+ 0.1%.
	spreadFraction = 0.001
)

// BroadcasterConfig holds the cadences of the two broadcast loops.
type BroadcasterConfig struct {
	TickerInterval time.Duration // Ticker channel period
	CandleInterval time.Duration // Candle channel period
}

// defaultBroadcasterConfig provides the production cadences.
var defaultBroadcasterConfig = BroadcasterConfig{
	TickerInterval: time.Second,
	CandleInterval: 100 * time.Millisecond,
}

// Broadcaster runs the two independent periodic broadcast tasks.
//
// On every ticker tick it derives a quote per subscribed symbol from the
// series store's running close; on every candle tick it advances the store
// by one incremental candle per subscribed symbol per connection. Both loops
// read the same SeriesStore, which is what keeps a viewer's ticker and
// candle chart for one symbol in agreement.
//
// The loops are process-lifetime: a failed or slow connection is skipped for
// the current tick and nothing a client does can stop the tasks.
type Broadcaster struct {
	cfg      BroadcasterConfig
	registry *Registry
	store    *market.SeriesStore
	catalog  *market.Catalog
	rand     *rand.Rand

	// prev is the process-wide previous-tick price table, seeded with base
	// prices. It is touched only by the ticker loop goroutine, and updated
	// sequentially as connections are visited within a tick: the second
	// subscriber of a symbol sees the change already consumed by the first.
	// One rule, held consistently.
	prev map[string]float64
}

// NewBroadcaster builds a broadcaster over the given collaborators. Zero
// config fields fall back to the production defaults; a nil rand seeds a new
// source from the current time.
func NewBroadcaster(cfg BroadcasterConfig, registry *Registry, store *market.SeriesStore, catalog *market.Catalog, r *rand.Rand) *Broadcaster {
	if cfg.TickerInterval <= 0 {
		cfg.TickerInterval = defaultBroadcasterConfig.TickerInterval
	}
	if cfg.CandleInterval <= 0 {
		cfg.CandleInterval = defaultBroadcasterConfig.CandleInterval
	}
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	prev := make(map[string]float64)
	for _, symbol := range catalog.Symbols() {
		if inst, ok := catalog.Lookup(symbol); ok {
			prev[symbol] = inst.BasePrice
		}
	}

	return &Broadcaster{
		cfg:      cfg,
		registry: registry,
		store:    store,
		catalog:  catalog,
		rand:     r,
		prev:     prev,
	}
}

// Run starts the ticker and candle loops. It returns immediately; both loops
// stop only when ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	go b.loop(ctx, "ticker", b.cfg.TickerInterval, b.tickerTick)
	go b.loop(ctx, "candle", b.cfg.CandleInterval, b.candleTick)
}

// loop drives one broadcast task at a fixed period until ctx is cancelled.
func (b *Broadcaster) loop(ctx context.Context, name string, period time.Duration, tick func(time.Time)) {
	logger := log.With().Str("loop", name).Dur("period", period).Logger()
	logger.Info().Msg("broadcast loop started")

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("broadcast loop stopped")
			return
		case now := <-ticker.C:
			tick(now)
		}
	}
}

// tickerTick sends one batched ticker message to every connection subscribed
// to the ticker channel.
func (b *Broadcaster) tickerTick(now time.Time) {
	for _, sub := range b.registry.Snapshot(model.ChannelTicker) {
		updates := make([]model.TickerUpdate, 0, len(sub.Symbols))
		for _, symbol := range sub.Symbols {
			updates = append(updates, b.quote(symbol, now))
		}

		payload, err := json.Marshal(model.TickerMessage{Type: model.ChannelTicker, Data: updates})
		if err != nil {
			log.Error().Err(err).Str("conn", sub.Conn.ID()).Msg("failed to marshal ticker batch")
			continue
		}
		if !sub.Conn.Send(payload) {
			log.Debug().Str("conn", sub.Conn.ID()).Msg("ticker batch dropped for slow or closed connection")
		}
	}
}

// quote derives one symbol's ticker quote for the current tick and advances
// the previous-tick price table.
func (b *Broadcaster) quote(symbol string, now time.Time) model.TickerUpdate {
	inst, _ := b.catalog.Lookup(symbol)

	var last float64
	if close, ok := b.store.LastClose(symbol); ok {
		last = utils.Round2(close + close*tickerJitter*(b.rand.Float64()*2-1))
	} else {
		// No series generated yet for this symbol; quote around base price
		// until the first candle materializes.
		last = utils.RandomPriceAround(b.rand, inst.BasePrice)
	}

	prev := b.prev[symbol]
	if prev == 0 {
		prev = inst.BasePrice
	}
	change := utils.Round2(last - prev)
	percent := utils.Round2((last - prev) / prev * 100)
	b.prev[symbol] = last

	spread := last * spreadFraction
	return model.TickerUpdate{
		Symbol: symbol,
		Price: model.TickerQuote{
			Last:          utils.Dec2(last),
			Bid:           utils.Dec2(last - spread),
			Ask:           utils.Dec2(last + spread),
			Change:        utils.Dec2(change),
			PercentChange: utils.Dec2(percent),
		},
		Timestamp: now.UnixMilli(),
	}
}

// candleTick sends one batched incremental-candle message to every
// connection subscribed to the candle channel. Each subscribed connection
// advances the series individually; the open==previous-close chain holds
// across all consumers because the store serializes the walk.
func (b *Broadcaster) candleTick(_ time.Time) {
	for _, sub := range b.registry.Snapshot(model.ChannelCandle) {
		updates := make([]model.CandleUpdate, 0, len(sub.Symbols))
		for _, symbol := range sub.Symbols {
			candle, ok := b.store.NextCandle(symbol)
			if !ok {
				continue
			}
			updates = append(updates, model.CandleUpdate{Symbol: symbol, Candle: candle})
		}
		if len(updates) == 0 {
			continue
		}

		payload, err := json.Marshal(model.CandleMessage{Type: model.ChannelCandle, Data: updates})
		if err != nil {
			log.Error().Err(err).Str("conn", sub.Conn.ID()).Msg("failed to marshal candle batch")
			continue
		}
		if !sub.Conn.Send(payload) {
			log.Debug().Str("conn", sub.Conn.ID()).Msg("candle batch dropped for slow or closed connection")
		}
	}
}

// Package service provides the streaming core of the market data simulator:
// connection subscription tracking, the periodic broadcast scheduler, the
// snapshot accessors, and the orchestrator that ties them to a lifecycle.
package service

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vigorakbar/trading-dashboard-mock/internal/market"
)

// Sender is the registry's view of one live connection. Send must not block:
// it reports false when the payload was dropped because the connection is
// closed or its buffer is full, and the broadcaster simply skips that
// connection for the tick.
type Sender interface {
	ID() string
	Send(payload []byte) bool
}

// Subscription pairs a connection with its subscribed symbols for one channel.
type Subscription struct {
	Conn    Sender
	Symbols []string
}

// Registry tracks each live connection's per-channel subscription set.
//
// Symbol slices stored in the registry are immutable: SetSubscription always
// replaces the slice wholesale, so snapshots handed to the broadcast loops
// stay valid without copying the symbols themselves.
type Registry struct {
	mu      sync.RWMutex
	catalog *market.Catalog
	subs    map[Sender]map[string][]string
}

// NewRegistry builds an empty registry validating against catalog.
func NewRegistry(catalog *market.Catalog) *Registry {
	return &Registry{
		catalog: catalog,
		subs:    make(map[Sender]map[string][]string),
	}
}

// Register creates an empty subscription record for conn. Connections are
// registered on connect and removed exactly once on close.
func (r *Registry) Register(conn Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[conn]; !ok {
		r.subs[conn] = make(map[string][]string)
	}
}

// SetSubscription replaces conn's symbol set for channel with the
// catalog-known subset of symbols, dropping invalid entries silently. The
// returned slice is the effective subscription after filtering.
func (r *Registry) SetSubscription(conn Sender, channel string, symbols []string) []string {
	valid := r.catalog.Filter(symbols)

	r.mu.Lock()
	defer r.mu.Unlock()

	channels, ok := r.subs[conn]
	if !ok {
		// Subscribe raced with connection close; nothing to record.
		log.Debug().Str("conn", conn.ID()).Msg("subscribe after close ignored")
		return valid
	}
	channels[channel] = valid
	return valid
}

// Snapshot returns the connections holding a non-empty subscription for
// channel, taken atomically at tick start. Connections removed before the
// snapshot are never yielded; ones removed after are handled by their
// Send reporting failure.
func (r *Registry) Snapshot(channel string) []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscription, 0, len(r.subs))
	for conn, channels := range r.subs {
		if symbols := channels[channel]; len(symbols) > 0 {
			out = append(out, Subscription{Conn: conn, Symbols: symbols})
		}
	}
	return out
}

// Remove destroys conn's subscription record. Safe to call for connections
// that were never registered.
func (r *Registry) Remove(conn Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, conn)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Package position implements the position service: on
// ProcessAdd(trade), it looks up or creates the product's Position and adds
// the signed quantity to positions[book]; aggregate position is always
// summed on demand, never cached.
package position

import (
	"log/slog"
	"sync"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// Service holds positions keyed by product CUSIP (the source keys its
// position cache by bond id, not trade id — a trade only ever moves one
// product's position).
type Service struct {
	mu    sync.Mutex
	cache *fabric.Cache[string, bond.Position]
	log   *slog.Logger
}

// NewService constructs an empty position service.
func NewService(log *slog.Logger) *Service {
	return &Service{cache: fabric.NewCache[string, bond.Position](), log: log}
}

// GetData returns the cached position for a CUSIP, panicking if unknown.
func (s *Service) GetData(cusip string) bond.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(cusip)
}

// AddListener registers l to be notified of future position events.
func (s *Service) AddListener(l fabric.Listener[bond.Position]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *Service) Listeners() []fabric.Listener[bond.Position] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// OnMessage is unused by the position service — positions are only mutated
// via AddTrade, fed by a trade listener, never ingested directly.
func (s *Service) OnMessage(bond.Position) {}

// AddTrade applies a booked trade's signed quantity to the product's
// per-book position, creating the Position on first sight of the product
// and firing ProcessAdd, or updating it and firing ProcessUpdate.
func (s *Service) AddTrade(t bond.Trade) {
	qty := t.Quantity
	if t.Side == bond.Sell {
		qty = -qty
	}

	s.mu.Lock()
	pos, existed := s.cache.Lookup(t.CUSIP)
	if !existed {
		pos = bond.Position{CUSIP: t.CUSIP, Positions: make(map[string]int64)}
	}
	pos.Positions[t.Book] += qty
	s.cache.Upsert(t.CUSIP, pos)
	s.mu.Unlock()

	if existed {
		s.log.Debug("position updated", "cusip", t.CUSIP, "book", t.Book, "delta", qty)
		s.cache.FanUpdate(pos)
		return
	}
	s.log.Debug("position opened", "cusip", t.CUSIP, "book", t.Book, "delta", qty)
	s.cache.FanAdd(pos)
}

// Package tradebook implements the trade booking service:
// ingests trades keyed by trade id, replacing on collision and reversing a
// trade via ProcessRemove on the position-side listener rather than
// deleting the cache entry.
package tradebook

import (
	"log/slog"
	"sync"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// Service books trades by trade id and fans ProcessAdd (new) or
// ProcessUpdate (replace) to its listeners in registration order.
type Service struct {
	mu    sync.Mutex
	cache *fabric.Cache[string, bond.Trade]
	log   *slog.Logger
}

// NewService constructs an empty trade booking service.
func NewService(log *slog.Logger) *Service {
	return &Service{cache: fabric.NewCache[string, bond.Trade](), log: log}
}

// GetData returns the cached trade for tradeID, panicking if unknown.
func (s *Service) GetData(tradeID string) bond.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(tradeID)
}

// AddListener registers l to be notified of future trade events.
func (s *Service) AddListener(l fabric.Listener[bond.Trade]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *Service) Listeners() []fabric.Listener[bond.Trade] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// OnMessage books the incoming trade.
func (s *Service) OnMessage(t bond.Trade) {
	s.BookTrade(t)
}

// BookTrade inserts or replaces by trade id and fans the appropriate event.
func (s *Service) BookTrade(t bond.Trade) {
	s.mu.Lock()
	existed := s.cache.Upsert(t.TradeID, t)
	s.mu.Unlock()

	if existed {
		s.log.Debug("trade updated", "trade_id", t.TradeID, "cusip", t.CUSIP)
		s.cache.FanUpdate(t)
		return
	}
	s.log.Debug("trade booked", "trade_id", t.TradeID, "cusip", t.CUSIP, "side", t.Side, "qty", t.Quantity)
	s.cache.FanAdd(t)
}

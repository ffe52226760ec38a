// Package pricing implements the pricing → algo-streaming → streaming
// pipeline: a price cache fed by a CSV connector, an
// algo-streaming stage that turns each new price into a two-sided
// PriceStream with randomized visible/hidden quantities, and a streaming
// service that caches and publishes the result.
package pricing

import (
	"log/slog"
	"sync"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// PriceService caches the latest Price per CUSIP. Every ingested message
// fans ProcessAdd, matching the source's BondPriceService, which always
// erases-and-reinserts rather than distinguishing add from update.
type PriceService struct {
	mu    sync.Mutex
	cache *fabric.Cache[string, bond.Price]
	log   *slog.Logger
}

// NewPriceService constructs an empty price service.
func NewPriceService(log *slog.Logger) *PriceService {
	return &PriceService{cache: fabric.NewCache[string, bond.Price](), log: log}
}

// GetData returns the cached price for cusip, panicking if unknown.
func (s *PriceService) GetData(cusip string) bond.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(cusip)
}

// AddListener registers l for price events.
func (s *PriceService) AddListener(l fabric.Listener[bond.Price]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *PriceService) Listeners() []fabric.Listener[bond.Price] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// OnMessage replaces the cached price for its product and always fans
// ProcessAdd.
func (s *PriceService) OnMessage(p bond.Price) {
	s.mu.Lock()
	s.cache.Upsert(p.CUSIP, p)
	s.mu.Unlock()

	s.log.Debug("pricing: price ingested", "cusip", p.CUSIP, "mid", p.Mid, "spread", p.BidOfferSpread)
	s.cache.FanAdd(p)
}

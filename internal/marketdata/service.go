// Package marketdata implements the market-data service: a
// multimap of per-venue order books keyed by CUSIP, aggregated on demand by
// summing quantity at each price level across venues. The source has a bug
// where the aggregation loop writes offers into the bid stack; this
// implementation keeps bids on BID and offers on OFFER.
package marketdata

import (
	"log/slog"
	"sort"
	"sync"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// Service holds raw per-venue order books and an aggregated cache, both
// keyed by product CUSIP.
type Service struct {
	mu         sync.Mutex
	raw        map[string][]bond.OrderBook
	aggregated *fabric.Cache[string, bond.OrderBook]
	log        *slog.Logger
}

// NewService constructs an empty market-data service.
func NewService(log *slog.Logger) *Service {
	return &Service{raw: make(map[string][]bond.OrderBook), aggregated: fabric.NewCache[string, bond.OrderBook](), log: log}
}

// AddListener registers l for aggregated order-book events.
func (s *Service) AddListener(l fabric.Listener[bond.OrderBook]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregated.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *Service) Listeners() []fabric.Listener[bond.OrderBook] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregated.Listeners()
}

// GetData returns the aggregated book for cusip, panicking if unknown.
func (s *Service) GetData(cusip string) bond.OrderBook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregated.Get(cusip)
}

// OnMessage accepts one venue's raw book, re-aggregates the product's
// depth, and fans the resulting book out to listeners.
func (s *Service) OnMessage(book bond.OrderBook) {
	s.mu.Lock()
	s.raw[book.CUSIP] = append(s.raw[book.CUSIP], book)
	result := s.aggregateLocked(book.CUSIP)
	_, existed := s.aggregated.Lookup(book.CUSIP)
	s.aggregated.Upsert(book.CUSIP, result)
	s.mu.Unlock()

	if existed {
		s.aggregated.FanUpdate(result)
	} else {
		s.aggregated.FanAdd(result)
	}
}

// AggregateDepth merges every held venue book for cusip: bids grouped by
// price summing quantity, offers grouped by price summing quantity,
// replacing the stale pre-merge raw entries with the single merged result.
func (s *Service) AggregateDepth(cusip string) bond.OrderBook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregateLocked(cusip)
}

func (s *Service) aggregateLocked(cusip string) bond.OrderBook {
	books := s.raw[cusip]

	bidTotals := make(map[float64]int64)
	offerTotals := make(map[float64]int64)
	for _, b := range books {
		for _, o := range b.BidStack {
			bidTotals[o.Price] += o.Quantity
		}
		for _, o := range b.OfferStack {
			offerTotals[o.Price] += o.Quantity
		}
	}

	result := bond.OrderBook{
		CUSIP:      cusip,
		BidStack:   sortedOrders(bidTotals, bond.Bid),
		OfferStack: sortedOrders(offerTotals, bond.Offer),
	}

	s.raw[cusip] = []bond.OrderBook{result}
	return result
}

func sortedOrders(totals map[float64]int64, side bond.PricingSide) []bond.Order {
	prices := make([]float64, 0, len(totals))
	for p := range totals {
		prices = append(prices, p)
	}
	sort.Float64s(prices)

	orders := make([]bond.Order, 0, len(prices))
	for _, p := range prices {
		orders = append(orders, bond.Order{Price: p, Quantity: totals[p], Side: side})
	}
	return orders
}

// GetBestBidOffer returns the max-priced bid and min-priced offer from the
// aggregated book.
func (s *Service) GetBestBidOffer(cusip string) (bid, offer bond.Order) {
	book := s.AggregateDepth(cusip)
	if len(book.BidStack) == 0 || len(book.OfferStack) == 0 {
		s.log.Warn("marketdata: best bid/offer requested on empty side", "cusip", cusip)
		return bond.Order{}, bond.Order{}
	}

	bid = book.BidStack[0]
	for _, o := range book.BidStack[1:] {
		if o.Price > bid.Price {
			bid = o
		}
	}
	offer = book.OfferStack[0]
	for _, o := range book.OfferStack[1:] {
		if o.Price < offer.Price {
			offer = o
		}
	}
	return bid, offer
}

// Package execution implements algo-execution → execution: a
// per-product bid/offer flip-flop that turns the best level of an
// aggregated order book into a market execution order, and a downstream
// execution service that persists the order and routes it to a venue.
package execution

import (
	"log/slog"
	"strconv"
	"sync"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// AlgoExecutionService tracks a per-product bid/offer flip (initialized to
// true: the first emission always buys against the offer stack) and
// generates a market ExecutionOrder from each new aggregated order book.
type AlgoExecutionService struct {
	mu       sync.Mutex
	cache    *fabric.Cache[string, bond.ExecutionOrder]
	bidOffer map[string]bool
	orderNum int
	log      *slog.Logger
}

// NewAlgoExecutionService constructs an empty algo-execution service.
func NewAlgoExecutionService(log *slog.Logger) *AlgoExecutionService {
	return &AlgoExecutionService{
		cache:    fabric.NewCache[string, bond.ExecutionOrder](),
		bidOffer: make(map[string]bool),
		orderNum: 1,
		log:      log,
	}
}

// GetData returns the cached execution order for cusip, panicking if unknown.
func (s *AlgoExecutionService) GetData(cusip string) bond.ExecutionOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(cusip)
}

// AddListener registers l for algo-execution events.
func (s *AlgoExecutionService) AddListener(l fabric.Listener[bond.ExecutionOrder]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *AlgoExecutionService) Listeners() []fabric.Listener[bond.ExecutionOrder] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// Execute flips the product's bid/offer bit, takes the best level of the
// corresponding side of book, and fans the resulting market order. The
// level is not removed: book, and the market-data service's aggregated
// book it came from, are left unchanged. Every
// call fans ProcessAdd, matching the source's always-ProcessAdd behavior
// whether or not the product already had a cached order.
func (s *AlgoExecutionService) Execute(book bond.OrderBook) bond.ExecutionOrder {
	s.mu.Lock()
	buyNow, seen := s.bidOffer[book.CUSIP]
	if !seen {
		buyNow = true
	} else {
		buyNow = !buyNow
	}
	s.bidOffer[book.CUSIP] = buyNow

	orderID := strconv.Itoa(s.orderNum)
	s.orderNum++

	var order bond.ExecutionOrder
	if buyNow {
		order = bestOfferOrder(book, orderID)
	} else {
		order = bestBidOrder(book, orderID)
	}
	s.cache.Upsert(book.CUSIP, order)
	s.mu.Unlock()

	s.log.Debug("execution: algo order generated", "cusip", book.CUSIP, "side", order.Side, "price", order.Price)
	s.cache.FanAdd(order)
	return order
}

func bestOfferOrder(book bond.OrderBook, orderID string) bond.ExecutionOrder {
	best := book.OfferStack[0]
	for _, o := range book.OfferStack[1:] {
		if o.Price < best.Price {
			best = o
		}
	}
	visible := int64(float64(best.Quantity) * 0.3)
	return bond.ExecutionOrder{
		CUSIP:           book.CUSIP,
		Side:            bond.Bid,
		OrderID:         orderID,
		OrderType:       bond.Market,
		Price:           best.Price,
		VisibleQuantity: visible,
		HiddenQuantity:  best.Quantity - visible,
		ParentOrderID:   orderID,
		IsChildOrder:    false,
	}
}

func bestBidOrder(book bond.OrderBook, orderID string) bond.ExecutionOrder {
	best := book.BidStack[0]
	for _, o := range book.BidStack[1:] {
		if o.Price > best.Price {
			best = o
		}
	}
	visible := int64(float64(best.Quantity) * 0.3)
	return bond.ExecutionOrder{
		CUSIP:           book.CUSIP,
		Side:            bond.Offer,
		OrderID:         orderID,
		OrderType:       bond.Market,
		Price:           best.Price,
		VisibleQuantity: visible,
		HiddenQuantity:  best.Quantity - visible,
		ParentOrderID:   orderID,
		IsChildOrder:    false,
	}
}

// MarketDataListener drives algo-execution from aggregated order-book
// updates, adapted from the source's BondMarketDataListeners.
type MarketDataListener struct {
	algo *AlgoExecutionService
}

// NewMarketDataListener wires a MarketDataListener to the given algo-execution service.
func NewMarketDataListener(algo *AlgoExecutionService) *MarketDataListener {
	return &MarketDataListener{algo: algo}
}

func (l *MarketDataListener) ProcessAdd(bond.OrderBook)    {}
func (l *MarketDataListener) ProcessUpdate(b bond.OrderBook) { l.algo.Execute(b) }
func (l *MarketDataListener) ProcessRemove(bond.OrderBook) {}

package pricing

import (
	"log/slog"
	"math/rand"
	"sync"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// visible quantities are drawn from {10000, 20000, ..., 100000}, hidden from
// {15000, 30000, ..., 300000}.
func randomVisible() int64 { return int64(rand.Intn(10)+1) * 10000 }
func randomHidden() int64  { return int64(rand.Intn(20)+1) * 15000 }

// AlgoStreamingService caches the latest PriceStream per CUSIP. Every call to
// ExecuteAlgoStream replaces the cache entry and always fans ProcessAdd,
// mirroring the source's BondAlgoStreamingService.
type AlgoStreamingService struct {
	mu    sync.Mutex
	cache *fabric.Cache[string, bond.PriceStream]
	log   *slog.Logger
}

// NewAlgoStreamingService constructs an empty algo-streaming service.
func NewAlgoStreamingService(log *slog.Logger) *AlgoStreamingService {
	return &AlgoStreamingService{cache: fabric.NewCache[string, bond.PriceStream](), log: log}
}

// GetData returns the cached stream for cusip, panicking if unknown.
func (s *AlgoStreamingService) GetData(cusip string) bond.PriceStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(cusip)
}

// AddListener registers l for algo-stream events.
func (s *AlgoStreamingService) AddListener(l fabric.Listener[bond.PriceStream]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *AlgoStreamingService) Listeners() []fabric.Listener[bond.PriceStream] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// ExecuteAlgoStream replaces the cached stream for its product and fans
// ProcessAdd.
func (s *AlgoStreamingService) ExecuteAlgoStream(ps bond.PriceStream) {
	s.mu.Lock()
	s.cache.Upsert(ps.CUSIP, ps)
	s.mu.Unlock()

	s.log.Debug("pricing: algo stream executed", "cusip", ps.CUSIP)
	s.cache.FanAdd(ps)
}

// PriceListener turns each new Price into a two-sided PriceStream and feeds
// it to an AlgoStreamingService, adapted from the source's BondPriceListener.
type PriceListener struct {
	algo *AlgoStreamingService
}

// NewPriceListener wires a PriceListener to the given algo-streaming service.
func NewPriceListener(algo *AlgoStreamingService) *PriceListener {
	return &PriceListener{algo: algo}
}

func (l *PriceListener) ProcessAdd(p bond.Price) {
	bidOrder := bond.PriceStreamOrder{
		Price:           p.Bid(),
		VisibleQuantity: randomVisible(),
		HiddenQuantity:  randomHidden(),
		Side:            bond.Bid,
	}
	offerOrder := bond.PriceStreamOrder{
		Price:           p.Offer(),
		VisibleQuantity: randomVisible(),
		HiddenQuantity:  randomHidden(),
		Side:            bond.Offer,
	}
	l.algo.ExecuteAlgoStream(bond.PriceStream{CUSIP: p.CUSIP, BidOrder: bidOrder, OfferOrder: offerOrder})
}

func (l *PriceListener) ProcessUpdate(bond.Price) {}
func (l *PriceListener) ProcessRemove(bond.Price) {}

package pricing

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"treasury-book-engine/internal/codec"
	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// StreamingService caches the latest published PriceStream per CUSIP, fans
// it to listeners, and forwards it to its connector for external
// publication — mirroring BondStreamingService::PublishPrice.
type StreamingService struct {
	mu        sync.Mutex
	cache     *fabric.Cache[string, bond.PriceStream]
	connector *StreamingConnector
	log       *slog.Logger
}

// NewStreamingService constructs a streaming service writing through connector.
func NewStreamingService(connector *StreamingConnector, log *slog.Logger) *StreamingService {
	return &StreamingService{cache: fabric.NewCache[string, bond.PriceStream](), connector: connector, log: log}
}

// GetData returns the cached stream for cusip, panicking if unknown.
func (s *StreamingService) GetData(cusip string) bond.PriceStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(cusip)
}

// AddListener registers l for published-stream events.
func (s *StreamingService) AddListener(l fabric.Listener[bond.PriceStream]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *StreamingService) Listeners() []fabric.Listener[bond.PriceStream] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// OnMessage is unused — the streaming service is only driven by PublishPrice.
func (s *StreamingService) OnMessage(bond.PriceStream) {}

// PublishPrice replaces the cached stream, fans ProcessAdd, and writes the
// record to the connector. A connector I/O error is returned to the caller
// to fail the process.
func (s *StreamingService) PublishPrice(ps bond.PriceStream) error {
	s.mu.Lock()
	s.cache.Upsert(ps.CUSIP, ps)
	s.mu.Unlock()

	s.cache.FanAdd(ps)

	if err := s.connector.Publish(ps); err != nil {
		s.log.Error("pricing: failed to publish price stream", "cusip", ps.CUSIP, "error", err)
		return fmt.Errorf("pricing: publish %s: %w", ps.CUSIP, err)
	}
	return nil
}

// AlgoStreamListener forwards a new algo-generated PriceStream on to the
// streaming service for caching and publication.
type AlgoStreamListener struct {
	streaming *StreamingService
	log       *slog.Logger
	fail      fabric.FailFunc
}

// NewAlgoStreamListener wires an AlgoStreamListener to the streaming
// service. fail is invoked, in addition to logging, on every publish
// failure.
func NewAlgoStreamListener(streaming *StreamingService, log *slog.Logger, fail fabric.FailFunc) *AlgoStreamListener {
	return &AlgoStreamListener{streaming: streaming, log: log, fail: fail}
}

func (l *AlgoStreamListener) ProcessAdd(ps bond.PriceStream) {
	if err := l.streaming.PublishPrice(ps); err != nil {
		l.log.Error("pricing: dropping price stream after publish failure", "error", err)
		if l.fail != nil {
			l.fail(err)
		}
	}
}

func (l *AlgoStreamListener) ProcessUpdate(bond.PriceStream) {}
func (l *AlgoStreamListener) ProcessRemove(bond.PriceStream) {}

// StreamingConnector appends each published PriceStream to an output CSV
// file: CUSIP, bid(32nds), bidVis, bidHid, offer(32nds), offerVis, offerHid.
type StreamingConnector struct {
	path string
}

// NewStreamingConnector targets path for appended output.
func NewStreamingConnector(path string) *StreamingConnector {
	return &StreamingConnector{path: path}
}

// Publish appends one CSV line for ps, opening path in append mode.
func (c *StreamingConnector) Publish(ps bond.PriceStream) error {
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("streaming connector: open %s: %w", c.path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s\n",
		ps.CUSIP,
		codec.Encode(ps.BidOrder.Price), strconv.FormatInt(ps.BidOrder.VisibleQuantity, 10), strconv.FormatInt(ps.BidOrder.HiddenQuantity, 10),
		codec.Encode(ps.OfferOrder.Price), strconv.FormatInt(ps.OfferOrder.VisibleQuantity, 10), strconv.FormatInt(ps.OfferOrder.HiddenQuantity, 10),
	)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("streaming connector: write %s: %w", c.path, err)
	}
	return nil
}

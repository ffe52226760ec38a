package execution

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"sync"

	"treasury-book-engine/internal/codec"
	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// Service caches the latest persisted execution order per product, fans
// ProcessAdd on every order (whether or not the product already had one
// cached, matching the source), and forwards each order plus its routed
// venue to its connector.
type Service struct {
	mu        sync.Mutex
	cache     *fabric.Cache[string, bond.ExecutionOrder]
	connector *Connector
	log       *slog.Logger
}

// NewService constructs an execution service writing through connector.
func NewService(connector *Connector, log *slog.Logger) *Service {
	return &Service{cache: fabric.NewCache[string, bond.ExecutionOrder](), connector: connector, log: log}
}

// GetData returns the cached execution order for cusip, panicking if unknown.
func (s *Service) GetData(cusip string) bond.ExecutionOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(cusip)
}

// AddListener registers l for persisted execution-order events.
func (s *Service) AddListener(l fabric.Listener[bond.ExecutionOrder]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *Service) Listeners() []fabric.Listener[bond.ExecutionOrder] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// OnMessage is unused — the execution service is only driven by ExecuteOrder.
func (s *Service) OnMessage(bond.ExecutionOrder) {}

// ExecuteOrder caches order, fans ProcessAdd, and publishes it to venue. A
// connector I/O error is returned to fail the process.
func (s *Service) ExecuteOrder(order bond.ExecutionOrder, venue bond.Venue) error {
	order.Venue = venue

	s.mu.Lock()
	s.cache.Upsert(order.CUSIP, order)
	s.mu.Unlock()

	s.cache.FanAdd(order)

	if err := s.connector.Publish(order, venue); err != nil {
		s.log.Error("execution: failed to publish order", "order_id", order.OrderID, "error", err)
		return fmt.Errorf("execution: publish order %s: %w", order.OrderID, err)
	}
	return nil
}

// AlgoExecutionListener routes every freshly generated algo execution order
// to a random venue and persists it via the execution service.
type AlgoExecutionListener struct {
	execution *Service
	log       *slog.Logger
	fail      fabric.FailFunc
}

// NewAlgoExecutionListener wires an AlgoExecutionListener to the execution
// service. fail is invoked, in addition to logging, on every publish
// failure.
func NewAlgoExecutionListener(execution *Service, log *slog.Logger, fail fabric.FailFunc) *AlgoExecutionListener {
	return &AlgoExecutionListener{execution: execution, log: log, fail: fail}
}

func (l *AlgoExecutionListener) ProcessAdd(order bond.ExecutionOrder) {
	venue := randomVenue()
	if err := l.execution.ExecuteOrder(order, venue); err != nil {
		l.log.Error("execution: dropping order after publish failure", "error", err)
		if l.fail != nil {
			l.fail(err)
		}
	}
}

func (l *AlgoExecutionListener) ProcessUpdate(bond.ExecutionOrder) {}
func (l *AlgoExecutionListener) ProcessRemove(bond.ExecutionOrder) {}

func randomVenue() bond.Venue {
	switch rand.Intn(3) {
	case 0:
		return bond.Brokertec
	case 1:
		return bond.Espeed
	default:
		return bond.CME
	}
}

// Connector appends each execution order to an output CSV file: orderId,
// CUSIP, side(BID|OFFER), orderType, visible, hidden, venue, price(32nds).
type Connector struct {
	path string
}

// NewConnector targets path for appended output.
func NewConnector(path string) *Connector {
	return &Connector{path: path}
}

// Publish appends one CSV line for order routed to venue.
func (c *Connector) Publish(order bond.ExecutionOrder, venue bond.Venue) error {
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("execution connector: open %s: %w", c.path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s\n",
		order.OrderID,
		order.CUSIP,
		order.Side.String(),
		order.OrderType.String(),
		strconv.FormatInt(order.VisibleQuantity, 10),
		strconv.FormatInt(order.HiddenQuantity, 10),
		venue.String(),
		codec.Encode(order.Price),
	)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("execution connector: write %s: %w", c.path, err)
	}
	return nil
}

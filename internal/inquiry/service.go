// Package inquiry implements the customer-inquiry workflow:
// RECEIVED -> QUOTED -> DONE, with REJECTED and CUSTOMER_REJECTED as terminal
// states the type permits but this system never drives into (matching the
// source, which declares RejectInquiry but leaves it empty).
package inquiry

import (
	"log/slog"
	"sync"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// QuotePrice is the fixed quote this system always responds with.
const QuotePrice = 100.0

// Service caches inquiries by inquiry id (not product id — each inquiry is
// unique) and drives the RECEIVED->QUOTED->DONE transitions.
type Service struct {
	mu      sync.Mutex
	cache   *fabric.Cache[string, bond.Inquiry]
	publish *PublishConnector
	log     *slog.Logger
}

// NewService constructs an inquiry service whose SendQuote transitions route
// through publish.
func NewService(publish *PublishConnector, log *slog.Logger) *Service {
	return &Service{cache: fabric.NewCache[string, bond.Inquiry](), publish: publish, log: log}
}

// GetData returns the cached inquiry for id, panicking if unknown.
func (s *Service) GetData(id string) bond.Inquiry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(id)
}

// AddListener registers l for inquiry events. Registration order matters:
// the historical sink's listener must be added before the quote-reply
// listener so the historical log reflects each transition before the quote
// is sent, matching the source's wiring order.
func (s *Service) AddListener(l fabric.Listener[bond.Inquiry]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered listeners in registration order.
func (s *Service) Listeners() []fabric.Listener[bond.Inquiry] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// OnMessage ingests an inquiry. A RECEIVED inquiry is cached and fans
// ProcessAdd. A QUOTED inquiry fans ProcessUpdate (listeners observe the
// QUOTED-state record — this is where the historical sink logs both the
// QUOTED and DONE transitions), after which the cache is advanced straight
// to DONE.
func (s *Service) OnMessage(inq bond.Inquiry) {
	switch inq.State {
	case bond.Received:
		s.mu.Lock()
		s.cache.Upsert(inq.InquiryID, inq)
		s.mu.Unlock()
		s.log.Debug("inquiry: received", "inquiry_id", inq.InquiryID, "cusip", inq.CUSIP)
		s.cache.FanAdd(inq)

	case bond.Quoted:
		s.cache.FanUpdate(inq)
		done := inq
		done.State = bond.Done
		s.mu.Lock()
		s.cache.Upsert(inq.InquiryID, done)
		s.mu.Unlock()
		s.log.Debug("inquiry: done", "inquiry_id", inq.InquiryID)
	}
}

// SendQuote sets the fixed quote price on a RECEIVED inquiry and routes it
// through the publish connector, which transitions it to QUOTED and
// re-ingests it.
func (s *Service) SendQuote(inquiryID string, price float64) {
	s.mu.Lock()
	inq, ok := s.cache.Lookup(inquiryID)
	s.mu.Unlock()
	if !ok {
		return
	}
	inq.Price = price
	s.publish.SetPublish(inq, s)
}

// RejectInquiry is declared by the workflow's contract but never driven by
// this system — matching the source, which leaves it empty.
func (s *Service) RejectInquiry(string) {}

// PublishConnector models the service<->connector cycle as a one-way
// reference back into the service's ingest operation rather than an
// object-graph cycle.
type PublishConnector struct{}

// NewPublishConnector constructs a PublishConnector.
func NewPublishConnector() *PublishConnector { return &PublishConnector{} }

// Publish transitions inq to QUOTED.
func (c *PublishConnector) Publish(inq bond.Inquiry) bond.Inquiry {
	inq.State = bond.Quoted
	return inq
}

// SetPublish publishes inq (transitioning it to QUOTED) and re-ingests it
// into svc.
func (c *PublishConnector) SetPublish(inq bond.Inquiry, svc *Service) {
	svc.OnMessage(c.Publish(inq))
}

// QuoteListener responds to a newly RECEIVED inquiry by sending the fixed
// quote, adapted from the source's BondInquiryListener.
type QuoteListener struct {
	inquiries *Service
}

// NewQuoteListener wires a QuoteListener to the given inquiry service.
func NewQuoteListener(inquiries *Service) *QuoteListener {
	return &QuoteListener{inquiries: inquiries}
}

func (l *QuoteListener) ProcessAdd(inq bond.Inquiry) {
	l.inquiries.SendQuote(inq.InquiryID, QuotePrice)
}

func (l *QuoteListener) ProcessUpdate(bond.Inquiry) {}
func (l *QuoteListener) ProcessRemove(bond.Inquiry) {}

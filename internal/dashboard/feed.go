package dashboard

import (
	"sync"
	"time"

	"treasury-book-engine/pkg/bond"
)

// executionHistoryLimit bounds how many recent executions Snapshot reports.
const executionHistoryLimit = 200

// Feed is an independent, read-only observer of the core pipeline: it is
// wired as additional listeners on the streaming, execution, and inquiry
// services and maintains its own small cache for the dashboard, rather than
// reaching into those services' own caches directly.
type Feed struct {
	mu         sync.RWMutex
	streams    map[string]bond.PriceStream
	executions []bond.ExecutionOrder
	inquiries  map[string]bond.Inquiry

	hub      *Hub
	throttle *Throttle
}

// NewFeed constructs an empty feed pushing throttled events to hub.
func NewFeed(hub *Hub, throttle *Throttle) *Feed {
	return &Feed{
		streams:   make(map[string]bond.PriceStream),
		inquiries: make(map[string]bond.Inquiry),
		hub:       hub,
		throttle:  throttle,
	}
}

func (f *Feed) recordStream(ps bond.PriceStream) {
	f.mu.Lock()
	f.streams[ps.CUSIP] = ps
	f.mu.Unlock()
	f.push("stream", ps)
}

func (f *Feed) recordExecution(o bond.ExecutionOrder) {
	f.mu.Lock()
	f.executions = append(f.executions, o)
	if len(f.executions) > executionHistoryLimit {
		f.executions = f.executions[len(f.executions)-executionHistoryLimit:]
	}
	f.mu.Unlock()
	f.push("execution", o)
}

func (f *Feed) recordInquiry(inq bond.Inquiry) {
	f.mu.Lock()
	f.inquiries[inq.InquiryID] = inq
	f.mu.Unlock()
	f.push("inquiry", inq)
}

func (f *Feed) push(kind string, data interface{}) {
	if !f.throttle.Allow() {
		return
	}
	f.hub.BroadcastEvent(Event{Type: kind, Timestamp: time.Now(), Data: data})
}

// Snapshot returns the current dashboard state.
func (f *Feed) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	streams := make([]bond.PriceStream, 0, len(f.streams))
	for _, ps := range f.streams {
		streams = append(streams, ps)
	}
	executions := make([]bond.ExecutionOrder, len(f.executions))
	copy(executions, f.executions)
	inquiries := make([]bond.Inquiry, 0, len(f.inquiries))
	for _, inq := range f.inquiries {
		inquiries = append(inquiries, inq)
	}

	return Snapshot{Timestamp: time.Now(), Streams: streams, Executions: executions, Inquiries: inquiries}
}

// StreamListener forwards published price streams into a Feed.
type StreamListener struct{ feed *Feed }

// NewStreamListener wires a StreamListener to feed.
func NewStreamListener(feed *Feed) *StreamListener { return &StreamListener{feed: feed} }

func (l *StreamListener) ProcessAdd(ps bond.PriceStream)    { l.feed.recordStream(ps) }
func (l *StreamListener) ProcessUpdate(bond.PriceStream)    {}
func (l *StreamListener) ProcessRemove(bond.PriceStream)    {}

// ExecutionListener forwards persisted execution orders into a Feed.
type ExecutionListener struct{ feed *Feed }

// NewExecutionListener wires an ExecutionListener to feed.
func NewExecutionListener(feed *Feed) *ExecutionListener { return &ExecutionListener{feed: feed} }

func (l *ExecutionListener) ProcessAdd(o bond.ExecutionOrder) { l.feed.recordExecution(o) }
func (l *ExecutionListener) ProcessUpdate(bond.ExecutionOrder) {}
func (l *ExecutionListener) ProcessRemove(bond.ExecutionOrder) {}

// InquiryListener forwards inquiry transitions into a Feed.
type InquiryListener struct{ feed *Feed }

// NewInquiryListener wires an InquiryListener to feed.
func NewInquiryListener(feed *Feed) *InquiryListener { return &InquiryListener{feed: feed} }

func (l *InquiryListener) ProcessAdd(inq bond.Inquiry)    { l.feed.recordInquiry(inq) }
func (l *InquiryListener) ProcessUpdate(inq bond.Inquiry) { l.feed.recordInquiry(inq) }
func (l *InquiryListener) ProcessRemove(bond.Inquiry)     {}

// Package bond holds the shared value types for the Treasury trading
// pipeline: product identity, prices, orders, trades, positions, risk, and
// the wire-ish types each service stages on its way to a sink or connector.
// Types here are plain, immutable-by-convention structs — no interfaces, no
// methods beyond small accessors — matching the sibling "shared vocabulary"
// package in the system this one was adapted from.
package bond

import "time"

// Side of a booked trade or an inquiry.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// PricingSide of a market-data order or price stream leg.
type PricingSide int

const (
	Bid PricingSide = iota
	Offer
)

func (s PricingSide) String() string {
	if s == Bid {
		return "BID"
	}
	return "OFFER"
}

// Product identifies a US Treasury bond. Identity is CUSIP; all other fields
// are descriptive and immutable once loaded.
type Product struct {
	CUSIP    string
	Ticker   string
	Coupon   float64
	Maturity time.Time
}

// Price is a product's mid and bid/offer spread. Product is referenced by
// CUSIP, not embedded by value or pointer, avoiding the lifetime hazard of
// storing a reference to a product that could be replaced or removed from
// its registry.
type Price struct {
	CUSIP          string
	Mid            float64
	BidOfferSpread float64
}

// Bid returns mid - spread/2.
func (p Price) Bid() float64 { return p.Mid - p.BidOfferSpread/2 }

// Offer returns mid + spread/2.
func (p Price) Offer() float64 { return p.Mid + p.BidOfferSpread/2 }

// Order is a single price level in a market-data order book.
type Order struct {
	Price    float64
	Quantity int64
	Side     PricingSide
}

// OrderBook is one venue's (or, after aggregation, the merged) bid/offer
// stack for a product.
type OrderBook struct {
	CUSIP      string
	BidStack   []Order
	OfferStack []Order
}

// Trade is a booked trade, keyed by TradeID.
type Trade struct {
	CUSIP    string
	TradeID  string
	Price    float64
	Book     string
	Quantity int64
	Side     Side
}

// Position is a product's signed quantity by book. Aggregate is always
// computed on demand, never cached, so per-book mutation cannot
// desynchronize it from the sum.
type Position struct {
	CUSIP     string
	Positions map[string]int64
}

// AggregatePosition sums every book's signed quantity.
func (p Position) AggregatePosition() int64 {
	var total int64
	for _, q := range p.Positions {
		total += q
	}
	return total
}

// PV01 is the price value of one basis point for a product, along with the
// (absolute) quantity it is associated with.
type PV01 struct {
	CUSIP    string
	Value    float64
	Quantity int64
}

// AddQuantity adds q to the PV01's associated quantity.
func (p *PV01) AddQuantity(q int64) { p.Quantity += q }

// Sector names the three fixed bucketed sectors this system reports risk
// over.
type Sector string

const (
	FrontEnd Sector = "front_end"
	Belly    Sector = "belly"
	LongEnd  Sector = "long_end"
)

// BucketedSector is a named group of products risk is aggregated over.
type BucketedSector struct {
	Name     Sector
	Products []string // CUSIPs
}

// SectorsRisk is the three sector PV01 aggregates produced by one risk pass.
type SectorsRisk struct {
	FrontEnd PV01Bucket
	Belly    PV01Bucket
	LongEnd  PV01Bucket
}

// PV01Bucket is the PV01 aggregate for one bucketed sector: the
// quantity-weighted average pv01 across its members, and the summed
// absolute quantity that average was computed over.
type PV01Bucket struct {
	Sector   Sector
	Value    float64
	Quantity int64
}

// PriceStreamOrder is one side of a two-way price stream.
type PriceStreamOrder struct {
	Price           float64
	VisibleQuantity int64
	HiddenQuantity  int64
	Side            PricingSide
}

// PriceStream is a product's two-way market as published by the streaming
// service.
type PriceStream struct {
	CUSIP     string
	BidOrder  PriceStreamOrder
	OfferOrder PriceStreamOrder
}

// OrderType of an execution order.
type OrderType int

const (
	FOK OrderType = iota
	IOC
	Market
	Limit
	Stop
)

func (t OrderType) String() string {
	switch t {
	case FOK:
		return "FOK"
	case IOC:
		return "IOC"
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case Stop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// Venue an execution order was routed to.
type Venue int

const (
	Brokertec Venue = iota
	Espeed
	CME
)

func (v Venue) String() string {
	switch v {
	case Brokertec:
		return "BROKERTEC"
	case Espeed:
		return "ESPEED"
	case CME:
		return "CME"
	default:
		return "UNKNOWN"
	}
}

// ExecutionOrder is generated by the algo-execution service against the
// best level of the aggregated book and routed to a venue by the execution
// service.
type ExecutionOrder struct {
	CUSIP           string
	Side            PricingSide
	OrderID         string
	OrderType       OrderType
	Price           float64
	VisibleQuantity int64
	HiddenQuantity  int64
	ParentOrderID   string
	IsChildOrder    bool
	Venue           Venue
}

// InquiryState of a customer inquiry.
type InquiryState int

const (
	Received InquiryState = iota
	Quoted
	Done
	Rejected
	CustomerRejected
)

func (s InquiryState) String() string {
	switch s {
	case Received:
		return "RECEIVED"
	case Quoted:
		return "QUOTED"
	case Done:
		return "DONE"
	case Rejected:
		return "REJECTED"
	case CustomerRejected:
		return "CUSTOMER_REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Inquiry is a customer request for a price, keyed by InquiryID.
type Inquiry struct {
	InquiryID string
	CUSIP     string
	Side      Side
	Quantity  int64
	Price     float64
	State     InquiryState
}

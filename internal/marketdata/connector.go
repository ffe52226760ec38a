package marketdata

import (
	"log/slog"

	"treasury-book-engine/internal/codec"
	"treasury-book-engine/internal/csvsub"
	"treasury-book-engine/pkg/bond"
)

const (
	depthLevels  = 5
	depthVolume  = 10_000_000
	depthTick256 = 1.0 / 256.0
)

// Connector subscribes to marketdata.txt: CUSIP, bid(32nds), offer(32nds).
// Each record synthesizes 5 levels of depth on each side, ticking 1/256 away
// from the top of book, all at a fixed volume — matching the source's
// BondMarketDataConnector::Subscribe.
type Connector struct {
	reader *csvsub.Reader
	log    *slog.Logger
}

// NewConnector opens a subscribe-style connector over path.
func NewConnector(path string, log *slog.Logger) *Connector {
	return &Connector{reader: csvsub.NewReader(path, log), log: log}
}

// Subscribe pulls the next market-data record, if any, synthesizes a
// 5-level book, and ingests it into svc.
func (c *Connector) Subscribe(svc *Service) {
	fields, ok := c.reader.Next()
	if !ok {
		return
	}
	book, err := parseBook(fields)
	if err != nil {
		c.log.Warn("marketdata: skipping malformed record", "error", err)
		return
	}
	svc.OnMessage(book)
}

func parseBook(fields []string) (bond.OrderBook, error) {
	cusip, err := csvsub.Field(fields, 0)
	if err != nil {
		return bond.OrderBook{}, err
	}
	bidStr, err := csvsub.Field(fields, 1)
	if err != nil {
		return bond.OrderBook{}, err
	}
	offerStr, err := csvsub.Field(fields, 2)
	if err != nil {
		return bond.OrderBook{}, err
	}

	bid1, err := codec.Decode(bidStr)
	if err != nil {
		return bond.OrderBook{}, err
	}
	offer1, err := codec.Decode(offerStr)
	if err != nil {
		return bond.OrderBook{}, err
	}

	bids := make([]bond.Order, depthLevels)
	offers := make([]bond.Order, depthLevels)
	for i := 0; i < depthLevels; i++ {
		bids[i] = bond.Order{Price: bid1 - float64(i)*depthTick256, Quantity: depthVolume, Side: bond.Bid}
		offers[i] = bond.Order{Price: offer1 + float64(i)*depthTick256, Quantity: depthVolume, Side: bond.Offer}
	}

	return bond.OrderBook{CUSIP: cusip, BidStack: bids, OfferStack: offers}, nil
}

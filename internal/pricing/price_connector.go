package pricing

import (
	"log/slog"

	"treasury-book-engine/internal/codec"
	"treasury-book-engine/internal/csvsub"
	"treasury-book-engine/pkg/bond"
)

// PriceConnector subscribes to prices.txt: CUSIP, bid(32nds), offer(32nds),
// spread(256ths). Mid is derived as (bid+offer)/2.
type PriceConnector struct {
	reader *csvsub.Reader
	log    *slog.Logger
}

// NewPriceConnector opens a subscribe-style connector over path.
func NewPriceConnector(path string, log *slog.Logger) *PriceConnector {
	return &PriceConnector{reader: csvsub.NewReader(path, log), log: log}
}

// Subscribe pulls the next price record, if any, and ingests it into svc.
func (c *PriceConnector) Subscribe(svc *PriceService) {
	fields, ok := c.reader.Next()
	if !ok {
		return
	}
	p, err := parsePrice(fields)
	if err != nil {
		c.log.Warn("pricing: skipping malformed record", "error", err)
		return
	}
	svc.OnMessage(p)
}

func parsePrice(fields []string) (bond.Price, error) {
	cusip, err := csvsub.Field(fields, 0)
	if err != nil {
		return bond.Price{}, err
	}
	bidStr, err := csvsub.Field(fields, 1)
	if err != nil {
		return bond.Price{}, err
	}
	offerStr, err := csvsub.Field(fields, 2)
	if err != nil {
		return bond.Price{}, err
	}
	spreadStr, err := csvsub.Field(fields, 3)
	if err != nil {
		return bond.Price{}, err
	}

	bid, err := codec.Decode(bidStr)
	if err != nil {
		return bond.Price{}, err
	}
	offer, err := codec.Decode(offerStr)
	if err != nil {
		return bond.Price{}, err
	}
	spread, err := codec.DecodeSpread256(spreadStr)
	if err != nil {
		return bond.Price{}, err
	}

	return bond.Price{CUSIP: cusip, Mid: (bid + offer) / 2, BidOfferSpread: spread}, nil
}

package inquiry

import (
	"log/slog"
	"strconv"

	"treasury-book-engine/internal/codec"
	"treasury-book-engine/internal/csvsub"
	"treasury-book-engine/pkg/bond"
)

// Connector subscribes to inquiries.txt: inquiryId, CUSIP, side(BUY|SELL),
// quantity, price(32nds). Every ingested record starts in state RECEIVED.
type Connector struct {
	reader *csvsub.Reader
	log    *slog.Logger
}

// NewConnector opens a subscribe-style connector over path.
func NewConnector(path string, log *slog.Logger) *Connector {
	return &Connector{reader: csvsub.NewReader(path, log), log: log}
}

// Subscribe pulls the next inquiry record, if any, and ingests it into svc.
func (c *Connector) Subscribe(svc *Service) {
	fields, ok := c.reader.Next()
	if !ok {
		return
	}
	inq, err := parseInquiry(fields)
	if err != nil {
		c.log.Warn("inquiry: skipping malformed record", "error", err)
		return
	}
	svc.OnMessage(inq)
}

func parseInquiry(fields []string) (bond.Inquiry, error) {
	id, err := csvsub.Field(fields, 0)
	if err != nil {
		return bond.Inquiry{}, err
	}
	cusip, err := csvsub.Field(fields, 1)
	if err != nil {
		return bond.Inquiry{}, err
	}
	sideStr, err := csvsub.Field(fields, 2)
	if err != nil {
		return bond.Inquiry{}, err
	}
	qtyStr, err := csvsub.Field(fields, 3)
	if err != nil {
		return bond.Inquiry{}, err
	}
	qty, err := strconv.ParseInt(qtyStr, 10, 64)
	if err != nil {
		return bond.Inquiry{}, err
	}
	priceStr, err := csvsub.Field(fields, 4)
	if err != nil {
		return bond.Inquiry{}, err
	}
	price, err := codec.Decode(priceStr)
	if err != nil {
		return bond.Inquiry{}, err
	}

	side := bond.Buy
	if sideStr == "SELL" {
		side = bond.Sell
	}

	return bond.Inquiry{InquiryID: id, CUSIP: cusip, Side: side, Quantity: qty, Price: price, State: bond.Received}, nil
}

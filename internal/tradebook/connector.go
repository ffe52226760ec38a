package tradebook

import (
	"log/slog"
	"strconv"

	"treasury-book-engine/internal/csvsub"
	"treasury-book-engine/pkg/bond"
)

// Connector subscribes to trades.txt: tradeId, CUSIP, bookId, quantity,
// side(BUY|SELL), price. Price here is a plain decimal, not 32nds/256ths
// notation — the source's trade booking reads it with stod directly.
type Connector struct {
	reader *csvsub.Reader
	log    *slog.Logger
}

// NewConnector opens a subscribe-style connector over path.
func NewConnector(path string, log *slog.Logger) *Connector {
	return &Connector{reader: csvsub.NewReader(path, log), log: log}
}

// Subscribe pulls the next trade record, if any, and ingests it into svc.
// Format errors are logged and skipped; a clean EOF is silent.
func (c *Connector) Subscribe(svc *Service) {
	fields, ok := c.reader.Next()
	if !ok {
		return
	}
	t, err := parseTrade(fields)
	if err != nil {
		c.log.Warn("tradebook: skipping malformed record", "error", err)
		return
	}
	svc.OnMessage(t)
}

func parseTrade(fields []string) (bond.Trade, error) {
	tradeID, err := csvsub.Field(fields, 0)
	if err != nil {
		return bond.Trade{}, err
	}
	cusip, err := csvsub.Field(fields, 1)
	if err != nil {
		return bond.Trade{}, err
	}
	book, err := csvsub.Field(fields, 2)
	if err != nil {
		return bond.Trade{}, err
	}
	qtyStr, err := csvsub.Field(fields, 3)
	if err != nil {
		return bond.Trade{}, err
	}
	qty, err := strconv.ParseInt(qtyStr, 10, 64)
	if err != nil {
		return bond.Trade{}, err
	}
	sideStr, err := csvsub.Field(fields, 4)
	if err != nil {
		return bond.Trade{}, err
	}
	side := bond.Buy
	if sideStr == "SELL" {
		side = bond.Sell
	}
	priceStr, err := csvsub.Field(fields, 5)
	if err != nil {
		return bond.Trade{}, err
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return bond.Trade{}, err
	}
	return bond.Trade{
		CUSIP:    cusip,
		TradeID:  tradeID,
		Price:    price,
		Book:     book,
		Quantity: qty,
		Side:     side,
	}, nil
}

package position

import "treasury-book-engine/pkg/bond"

// TradeListener feeds booked trades from the trade booking service into a
// position Service. ProcessRemove is the trade-reversal mechanism: it swaps
// BUY/SELL on the same trade and re-books the reversed quantity, rather than
// deleting anything, which is what keeps aggregate position additive.
type TradeListener struct {
	positions *Service
}

// NewTradeListener wires a TradeListener to the given position service.
func NewTradeListener(positions *Service) *TradeListener {
	return &TradeListener{positions: positions}
}

func (l *TradeListener) ProcessAdd(t bond.Trade) {
	l.positions.AddTrade(t)
}

func (l *TradeListener) ProcessRemove(t bond.Trade) {
	reversed := t
	if t.Side == bond.Buy {
		reversed.Side = bond.Sell
	} else {
		reversed.Side = bond.Buy
	}
	l.positions.AddTrade(reversed)
}

func (l *TradeListener) ProcessUpdate(bond.Trade) {}

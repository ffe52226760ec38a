package position

import (
	"io"
	"log/slog"
	"testing"

	"treasury-book-engine/pkg/bond"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddTradeBuyThenAggregate(t *testing.T) {
	svc := NewService(testLogger())
	svc.AddTrade(bond.Trade{CUSIP: "912828M80", TradeID: "T1", Book: "TRSY1", Quantity: 1_000_000, Side: bond.Buy, Price: 99.5})

	pos := svc.GetData("912828M80")
	if pos.Positions["TRSY1"] != 1_000_000 {
		t.Fatalf("TRSY1 position = %d, want 1000000", pos.Positions["TRSY1"])
	}
	if pos.AggregatePosition() != 1_000_000 {
		t.Fatalf("aggregate = %d, want 1000000", pos.AggregatePosition())
	}
}

// TestReverseTradeRestoresAggregate verifies reversing a booked trade via
// the trade listener's ProcessRemove restores the aggregate position to its
// pre-trade value.
func TestReverseTradeRestoresAggregate(t *testing.T) {
	svc := NewService(testLogger())
	listener := NewTradeListener(svc)

	trade := bond.Trade{CUSIP: "912828M80", TradeID: "T1", Book: "TRSY1", Quantity: 1_000_000, Side: bond.Buy, Price: 99.5}
	listener.ProcessAdd(trade)
	if got := svc.GetData("912828M80").AggregatePosition(); got != 1_000_000 {
		t.Fatalf("aggregate after buy = %d, want 1000000", got)
	}

	listener.ProcessRemove(trade)
	if got := svc.GetData("912828M80").AggregatePosition(); got != 0 {
		t.Fatalf("aggregate after reversal = %d, want 0", got)
	}
}

func TestMultiBookAggregate(t *testing.T) {
	svc := NewService(testLogger())
	svc.AddTrade(bond.Trade{CUSIP: "X", TradeID: "T1", Book: "TRSY1", Quantity: 100, Side: bond.Buy})
	svc.AddTrade(bond.Trade{CUSIP: "X", TradeID: "T2", Book: "TRSY2", Quantity: 40, Side: bond.Sell})
	pos := svc.GetData("X")
	if got := pos.AggregatePosition(); got != 60 {
		t.Fatalf("aggregate = %d, want 60", got)
	}
}

package execution

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"treasury-book-engine/pkg/bond"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scenarioBook() bond.OrderBook {
	return bond.OrderBook{
		CUSIP:      "X",
		OfferStack: []bond.Order{{Price: 99.6, Quantity: 1000, Side: bond.Offer}, {Price: 99.7, Quantity: 500, Side: bond.Offer}},
		BidStack:   []bond.Order{{Price: 99.5, Quantity: 800, Side: bond.Bid}, {Price: 99.4, Quantity: 400, Side: bond.Bid}},
	}
}

// TestAlgoExecutionAlternation verifies the bid/offer flip-flop alternates
// sides across successive calls for the same product.
func TestAlgoExecutionAlternation(t *testing.T) {
	algo := NewAlgoExecutionService(testLogger())

	first := algo.Execute(scenarioBook())
	if first.Side != bond.Bid || first.Price != 99.6 || first.VisibleQuantity != 300 || first.HiddenQuantity != 700 {
		t.Fatalf("first execution = %+v, want BID 99.6 300/700", first)
	}

	second := algo.Execute(scenarioBook())
	if second.Side != bond.Offer || second.Price != 99.5 || second.VisibleQuantity != 240 || second.HiddenQuantity != 560 {
		t.Fatalf("second execution = %+v, want OFFER 99.5 240/560", second)
	}
}

func TestExecuteOrderWritesCSVAndFans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ExecutionOrders.txt")
	svc := NewService(NewConnector(path), testLogger())

	var adds int
	svc.AddListener(funcListener{add: func(bond.ExecutionOrder) { adds++ }})

	order := bond.ExecutionOrder{CUSIP: "X", Side: bond.Bid, OrderID: "1", OrderType: bond.Market, Price: 99.6, VisibleQuantity: 300, HiddenQuantity: 700, ParentOrderID: "1"}
	if err := svc.ExecuteOrder(order, bond.Brokertec); err != nil {
		t.Fatalf("ExecuteOrder error: %v", err)
	}
	if adds != 1 {
		t.Fatalf("adds = %d, want 1", adds)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	line := strings.TrimSpace(string(data))
	want := "1,X,BID,MARKET,300,700,BROKERTEC,99-192"
	if line != want {
		t.Fatalf("csv line = %q, want %q", line, want)
	}
}

func TestMarketDataListenerOnlyTriggersOnUpdate(t *testing.T) {
	algo := NewAlgoExecutionService(testLogger())
	listener := NewMarketDataListener(algo)

	listener.ProcessAdd(scenarioBook())
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected GetData to panic: ProcessAdd must not execute")
			}
		}()
		algo.GetData("X")
	}()

	listener.ProcessUpdate(scenarioBook())
	if got := algo.GetData("X"); got.CUSIP != "X" {
		t.Fatalf("expected an execution order after ProcessUpdate")
	}
}

type funcListener struct {
	add func(bond.ExecutionOrder)
}

func (f funcListener) ProcessAdd(o bond.ExecutionOrder)    { f.add(o) }
func (f funcListener) ProcessUpdate(bond.ExecutionOrder) {}
func (f funcListener) ProcessRemove(bond.ExecutionOrder) {}

package historical

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

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// TestPositionListenerCoversFirstTrade verifies a single booked trade's
// historical line ends "...,1000000,1000000,0,0" and that the opening
// ProcessAdd is not dropped.
func TestPositionListenerCoversFirstTrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "position.txt")
	l := NewPositionListener(path, testLogger(), nil)

	l.ProcessAdd(bond.Position{CUSIP: "912828M80", Positions: map[string]int64{"TRSY1": 1000000}})

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	want := "1,912828M80,1000000,1000000,0,0"
	if lines[0] != want {
		t.Fatalf("line = %q, want %q", lines[0], want)
	}
}

func TestPositionListenerKeyIncrements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "position.txt")
	l := NewPositionListener(path, testLogger(), nil)

	l.ProcessAdd(bond.Position{CUSIP: "X", Positions: map[string]int64{"TRSY1": 100}})
	l.ProcessUpdate(bond.Position{CUSIP: "X", Positions: map[string]int64{"TRSY1": 200}})

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "1,") || !strings.HasPrefix(lines[1], "2,") {
		t.Fatalf("lines = %v, want keys 1 then 2", lines)
	}
}

// TestRiskJoinDropsWithoutPendingPV01 covers the documented one-shot-flag
// quirk: a sector-risk update with no PV01 captured since the last
// consumption persists nothing.
func TestRiskJoinDropsWithoutPendingPV01(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.txt")
	pv01 := NewPV01Listener()
	sectors := NewSectorsRiskListener(pv01, path, testLogger(), nil)

	sectors.ProcessUpdate(bond.SectorsRisk{})

	if _, err := os.Stat(path); err == nil {
		data, _ := os.ReadFile(path)
		if len(data) != 0 {
			t.Fatalf("expected no persisted line, got %q", data)
		}
	}
}

// TestRiskJoinPersistsOnceAfterPV01Update covers the intended join: a PV01
// event followed by a sector-risk recompute produces exactly one line, and a
// second sector-risk recompute with no new PV01 produces nothing more.
func TestRiskJoinPersistsOnceAfterPV01Update(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.txt")
	pv01L := NewPV01Listener()
	sectors := NewSectorsRiskListener(pv01L, path, testLogger(), nil)

	pv01L.ProcessUpdate(bond.PV01{CUSIP: "X", Value: 0.05, Quantity: -1000000})
	sectors.ProcessUpdate(bond.SectorsRisk{
		FrontEnd: bond.PV01Bucket{Value: 0.04},
		Belly:    bond.PV01Bucket{Value: 0.06},
		LongEnd:  bond.PV01Bucket{Value: 0.08},
	})
	sectors.ProcessUpdate(bond.SectorsRisk{FrontEnd: bond.PV01Bucket{Value: 0.04}})

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1: %v", len(lines), lines)
	}
	want := "1,X,1000000,0.04,0.06,0.08"
	if lines[0] != want {
		t.Fatalf("line = %q, want %q", lines[0], want)
	}
}

func TestExecutionListenerPersistsWithVenue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "executions.txt")
	l := NewExecutionListener(path, testLogger(), nil)

	l.ProcessAdd(bond.ExecutionOrder{
		OrderID: "1", CUSIP: "X", Side: bond.Bid, OrderType: bond.Market,
		Price: 99.6, VisibleQuantity: 300, HiddenQuantity: 700, Venue: bond.Brokertec,
	})

	lines := readLines(t, path)
	want := "1,1,X,BID,MARKET,300,700,BROKERTEC,99-192"
	if len(lines) != 1 || lines[0] != want {
		t.Fatalf("lines = %v, want [%q]", lines, want)
	}
}

func TestStreamingListenerPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streaming.txt")
	l := NewStreamingListener(path, testLogger(), nil)

	l.ProcessAdd(bond.PriceStream{
		CUSIP:      "X",
		BidOrder:   bond.PriceStreamOrder{Price: 99.5, VisibleQuantity: 10000, HiddenQuantity: 15000, Side: bond.Bid},
		OfferOrder: bond.PriceStreamOrder{Price: 99.75, VisibleQuantity: 10000, HiddenQuantity: 15000, Side: bond.Offer},
	})

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if !strings.HasPrefix(lines[0], "1,X,") {
		t.Fatalf("line = %q, want prefix 1,X,", lines[0])
	}
}

// TestInquiryListenerThreeLineSequence verifies every inquiry appears
// RECEIVED, then QUOTED, then DONE, in that order.
func TestInquiryListenerThreeLineSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allinquiries.txt")
	l := NewInquiryListener(path, testLogger(), nil)

	l.ProcessAdd(bond.Inquiry{InquiryID: "IQ1", CUSIP: "X", Side: bond.Buy, Quantity: 1000000, Price: 99.5, State: bond.Received})
	l.ProcessUpdate(bond.Inquiry{InquiryID: "IQ1", CUSIP: "X", Side: bond.Buy, Quantity: 1000000, Price: 100.0, State: bond.Quoted})

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %v", len(lines), lines)
	}
	if !strings.HasSuffix(lines[0], "RECEIVED") {
		t.Fatalf("line 0 = %q, want suffix RECEIVED", lines[0])
	}
	if !strings.HasSuffix(lines[1], "QUOTED") {
		t.Fatalf("line 1 = %q, want suffix QUOTED", lines[1])
	}
	if !strings.HasSuffix(lines[2], "DONE") {
		t.Fatalf("line 2 = %q, want suffix DONE", lines[2])
	}
}

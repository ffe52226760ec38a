package marketdata

import (
	"io"
	"log/slog"
	"testing"

	"treasury-book-engine/pkg/bond"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestAggregateDepthMergesAcrossVenues verifies two books for CUSIP X with
// bids [(99.5,100),(99.4,50)] and [(99.5,200),(99.3,10)] aggregate to 3 bid
// entries (99.5,300),(99.4,50),(99.3,10), best bid 99.5.
func TestAggregateDepthMergesAcrossVenues(t *testing.T) {
	svc := NewService(testLogger())
	svc.OnMessage(bond.OrderBook{
		CUSIP: "X",
		BidStack: []bond.Order{
			{Price: 99.5, Quantity: 100, Side: bond.Bid},
			{Price: 99.4, Quantity: 50, Side: bond.Bid},
		},
	})
	svc.OnMessage(bond.OrderBook{
		CUSIP: "X",
		BidStack: []bond.Order{
			{Price: 99.5, Quantity: 200, Side: bond.Bid},
			{Price: 99.3, Quantity: 10, Side: bond.Bid},
		},
	})

	book := svc.GetData("X")
	if len(book.BidStack) != 3 {
		t.Fatalf("bid stack len = %d, want 3", len(book.BidStack))
	}

	byPrice := make(map[float64]int64)
	for _, o := range book.BidStack {
		byPrice[o.Price] = o.Quantity
		if o.Side != bond.Bid {
			t.Fatalf("bid entry at %.2f has side %v, want Bid", o.Price, o.Side)
		}
	}
	if byPrice[99.5] != 300 || byPrice[99.4] != 50 || byPrice[99.3] != 10 {
		t.Fatalf("merged bid quantities = %+v", byPrice)
	}

	bid, _ := svc.GetBestBidOffer("X")
	if bid.Price != 99.5 {
		t.Fatalf("best bid = %.2f, want 99.5", bid.Price)
	}
}

func TestAggregateDepthKeepsOffersOnOfferSide(t *testing.T) {
	svc := NewService(testLogger())
	svc.OnMessage(bond.OrderBook{
		CUSIP:      "X",
		BidStack:   []bond.Order{{Price: 99.5, Quantity: 100, Side: bond.Bid}},
		OfferStack: []bond.Order{{Price: 99.6, Quantity: 100, Side: bond.Offer}},
	})

	book := svc.GetData("X")
	if len(book.OfferStack) != 1 || book.OfferStack[0].Side != bond.Offer {
		t.Fatalf("offer stack = %+v, want one OFFER entry", book.OfferStack)
	}
	if len(book.BidStack) != 1 || book.BidStack[0].Side != bond.Bid {
		t.Fatalf("bid stack = %+v, want one BID entry", book.BidStack)
	}
}

func TestGetBestBidOfferMinOffer(t *testing.T) {
	svc := NewService(testLogger())
	svc.OnMessage(bond.OrderBook{
		CUSIP:      "X",
		OfferStack: []bond.Order{{Price: 99.7, Quantity: 10, Side: bond.Offer}, {Price: 99.6, Quantity: 20, Side: bond.Offer}},
		BidStack:   []bond.Order{{Price: 99.5, Quantity: 10, Side: bond.Bid}},
	})
	_, offer := svc.GetBestBidOffer("X")
	if offer.Price != 99.6 {
		t.Fatalf("best offer = %.2f, want 99.6", offer.Price)
	}
}

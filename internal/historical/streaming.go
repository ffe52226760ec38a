package historical

import (
	"log/slog"
	"strconv"

	"treasury-book-engine/internal/codec"
	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// StreamingListener persists every published price stream on ProcessAdd
// (the streaming service always fans ProcessAdd, never ProcessUpdate),
// writing the same fields as Output/PriceStreams.txt prefixed with the
// sink's key.
type StreamingListener struct {
	sink *sink
	log  *slog.Logger
	fail fabric.FailFunc
}

// NewStreamingListener targets path for appended streaming history. fail is
// invoked, in addition to logging, on every write failure.
func NewStreamingListener(path string, log *slog.Logger, fail fabric.FailFunc) *StreamingListener {
	return &StreamingListener{sink: newSink(path), log: log, fail: fail}
}

func (l *StreamingListener) ProcessAdd(ps bond.PriceStream) {
	_, err := l.sink.persist(
		ps.CUSIP,
		codec.Encode(ps.BidOrder.Price), strconv.FormatInt(ps.BidOrder.VisibleQuantity, 10), strconv.FormatInt(ps.BidOrder.HiddenQuantity, 10),
		codec.Encode(ps.OfferOrder.Price), strconv.FormatInt(ps.OfferOrder.VisibleQuantity, 10), strconv.FormatInt(ps.OfferOrder.HiddenQuantity, 10),
	)
	if err != nil {
		l.log.Error("historical: failed to persist price stream", "cusip", ps.CUSIP, "error", err)
		if l.fail != nil {
			l.fail(err)
		}
	}
}

func (l *StreamingListener) ProcessUpdate(bond.PriceStream) {}
func (l *StreamingListener) ProcessRemove(bond.PriceStream) {}

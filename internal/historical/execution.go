package historical

import (
	"log/slog"
	"strconv"

	"treasury-book-engine/internal/codec"
	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// ExecutionListener persists every execution order on ProcessAdd (the
// execution service always fans ProcessAdd, never ProcessUpdate), writing
// the same fields as Output/ExecutionOrders.txt prefixed with the sink's
// key, including the routed venue.
type ExecutionListener struct {
	sink *sink
	log  *slog.Logger
	fail fabric.FailFunc
}

// NewExecutionListener targets path for appended execution history. fail is
// invoked, in addition to logging, on every write failure.
func NewExecutionListener(path string, log *slog.Logger, fail fabric.FailFunc) *ExecutionListener {
	return &ExecutionListener{sink: newSink(path), log: log, fail: fail}
}

func (l *ExecutionListener) ProcessAdd(o bond.ExecutionOrder) {
	_, err := l.sink.persist(
		o.OrderID,
		o.CUSIP,
		o.Side.String(),
		o.OrderType.String(),
		strconv.FormatInt(o.VisibleQuantity, 10),
		strconv.FormatInt(o.HiddenQuantity, 10),
		o.Venue.String(),
		codec.Encode(o.Price),
	)
	if err != nil {
		l.log.Error("historical: failed to persist execution", "order_id", o.OrderID, "error", err)
		if l.fail != nil {
			l.fail(err)
		}
	}
}

func (l *ExecutionListener) ProcessUpdate(bond.ExecutionOrder) {}
func (l *ExecutionListener) ProcessRemove(bond.ExecutionOrder) {}

package historical

import (
	"log/slog"
	"strconv"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// books is the fixed, ordered set of sub-portfolios the position historical
// sink reports in each line.
var books = []string{"TRSY1", "TRSY2", "TRSY3"}

// PositionListener persists every position event: key, CUSIP, aggregate,
// TRSY1, TRSY2, TRSY3. The source's BondPositionHistoricalListener only
// persists on ProcessUpdate, leaving ProcessAdd empty — meaning a product's
// very first trade is never historically logged. This implementation
// persists on both ProcessAdd and ProcessUpdate so the opening trade for a
// product is not silently dropped from the historical record.
type PositionListener struct {
	sink *sink
	log  *slog.Logger
	fail fabric.FailFunc
}

// NewPositionListener targets path for appended position history. fail is
// invoked, in addition to logging, on every write failure.
func NewPositionListener(path string, log *slog.Logger, fail fabric.FailFunc) *PositionListener {
	return &PositionListener{sink: newSink(path), log: log, fail: fail}
}

func (l *PositionListener) persist(p bond.Position) {
	fields := make([]string, 0, 2+len(books))
	fields = append(fields, p.CUSIP, strconv.FormatInt(p.AggregatePosition(), 10))
	for _, book := range books {
		fields = append(fields, strconv.FormatInt(p.Positions[book], 10))
	}
	if _, err := l.sink.persist(fields...); err != nil {
		l.log.Error("historical: failed to persist position", "cusip", p.CUSIP, "error", err)
		if l.fail != nil {
			l.fail(err)
		}
	}
}

func (l *PositionListener) ProcessAdd(p bond.Position)    { l.persist(p) }
func (l *PositionListener) ProcessUpdate(p bond.Position) { l.persist(p) }
func (l *PositionListener) ProcessRemove(bond.Position)   {}

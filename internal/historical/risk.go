package historical

import (
	"log/slog"
	"strconv"
	"sync"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// PV01Listener remembers the most recently seen per-bond PV01 event and a
// one-shot "needs joining" flag, consumed by a SectorsRiskListener. Because
// the risk service pre-seeds every product's PV01 entry up front, a
// product's PV01 almost always arrives as ProcessUpdate rather than
// ProcessAdd, so this listener treats both as "a fresh PV01 is ready to
// join".
//
// Only a single most-recent PV01 is remembered (not one per CUSIP): a burst
// of PV01 updates across several products before the next sector-risk
// recompute will only ever join the last one, silently losing the others.
// This quirk is kept deliberately rather than fixed.
type PV01Listener struct {
	mu        sync.Mutex
	last      bond.PV01
	processed bool
}

// NewPV01Listener constructs an unconsumed PV01 listener.
func NewPV01Listener() *PV01Listener {
	return &PV01Listener{}
}

func (l *PV01Listener) capture(p bond.PV01) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = p
	l.processed = true
}

func (l *PV01Listener) ProcessAdd(p bond.PV01)    { l.capture(p) }
func (l *PV01Listener) ProcessUpdate(p bond.PV01) { l.capture(p) }
func (l *PV01Listener) ProcessRemove(bond.PV01)   {}

// consume returns the last captured PV01 and clears the flag, or ok=false if
// no PV01 has arrived since the last consumption.
func (l *PV01Listener) consume() (bond.PV01, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.processed {
		return bond.PV01{}, false
	}
	l.processed = false
	return l.last, true
}

// SectorsRiskListener persists a joined record of the last unconsumed PV01
// plus the current sector-risk tuple, each time the risk service recomputes
// sector risk. If no PV01 is pending, the sector-risk event is dropped
// without persisting — the one-shot join's intended behavior.
type SectorsRiskListener struct {
	pv01 *PV01Listener
	sink *sink
	log  *slog.Logger
	fail fabric.FailFunc
}

// NewSectorsRiskListener wires a SectorsRiskListener to pv01 (the companion
// per-bond listener registered on the same risk service) and targets path
// for appended risk history. fail is invoked, in addition to logging, on
// every write failure.
func NewSectorsRiskListener(pv01 *PV01Listener, path string, log *slog.Logger, fail fabric.FailFunc) *SectorsRiskListener {
	return &SectorsRiskListener{pv01: pv01, sink: newSink(path), log: log, fail: fail}
}

func (l *SectorsRiskListener) ProcessUpdate(risk bond.SectorsRisk) {
	pv01, ok := l.pv01.consume()
	if !ok {
		return
	}

	qty := pv01.Quantity
	if qty < 0 {
		qty = -qty
	}

	_, err := l.sink.persist(
		pv01.CUSIP,
		strconv.FormatInt(qty, 10),
		strconv.FormatFloat(risk.FrontEnd.Value, 'f', -1, 64),
		strconv.FormatFloat(risk.Belly.Value, 'f', -1, 64),
		strconv.FormatFloat(risk.LongEnd.Value, 'f', -1, 64),
	)
	if err != nil {
		l.log.Error("historical: failed to persist risk", "cusip", pv01.CUSIP, "error", err)
		if l.fail != nil {
			l.fail(err)
		}
	}
}

package historical

import (
	"log/slog"
	"strconv"

	"treasury-book-engine/internal/codec"
	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// InquiryListener persists every inquiry transition: RECEIVED on
// ProcessAdd; on ProcessUpdate it persists the observed record (QUOTED,
// per the inquiry service's wiring) and, if that record is QUOTED, flips its
// own copy to DONE and persists a second record — independent of whatever
// state the inquiry service's own cache settles into. This is what turns the
// three-line RECEIVED/QUOTED/DONE sequence into history, since the inquiry
// service advances its cache to DONE only after the QUOTED fan-out and never
// fans a DONE event of its own.
type InquiryListener struct {
	sink *sink
	log  *slog.Logger
	fail fabric.FailFunc
}

// NewInquiryListener targets path for appended inquiry history. fail is
// invoked, in addition to logging, on every write failure.
func NewInquiryListener(path string, log *slog.Logger, fail fabric.FailFunc) *InquiryListener {
	return &InquiryListener{sink: newSink(path), log: log, fail: fail}
}

func (l *InquiryListener) persist(inq bond.Inquiry) {
	_, err := l.sink.persist(
		inq.InquiryID,
		inq.CUSIP,
		inq.Side.String(),
		strconv.FormatInt(inq.Quantity, 10),
		codec.Encode(inq.Price),
		inq.State.String(),
	)
	if err != nil {
		l.log.Error("historical: failed to persist inquiry", "inquiry_id", inq.InquiryID, "error", err)
		if l.fail != nil {
			l.fail(err)
		}
	}
}

func (l *InquiryListener) ProcessAdd(inq bond.Inquiry) { l.persist(inq) }

func (l *InquiryListener) ProcessUpdate(inq bond.Inquiry) {
	l.persist(inq)
	if inq.State == bond.Quoted {
		done := inq
		done.State = bond.Done
		l.persist(done)
	}
}

func (l *InquiryListener) ProcessRemove(bond.Inquiry) {}

package risk

import "treasury-book-engine/pkg/bond"

// PositionListener feeds position changes into a risk Service's AddPosition,
// adapted from the source's BondPositionServiceListener.
type PositionListener struct {
	risk *Service
}

// NewPositionListener wires a PositionListener to the given risk service.
func NewPositionListener(risk *Service) *PositionListener {
	return &PositionListener{risk: risk}
}

func (l *PositionListener) ProcessAdd(p bond.Position) {
	l.risk.AddPosition(p.CUSIP, p.AggregatePosition())
}

func (l *PositionListener) ProcessUpdate(p bond.Position) {
	l.risk.AddPosition(p.CUSIP, p.AggregatePosition())
}

func (l *PositionListener) ProcessRemove(bond.Position) {}

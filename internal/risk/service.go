// Package risk implements the risk service: a per-product
// PV01 cache seeded from a static table, updated by booked positions, and
// bucketed-sector risk computed as the quantity-weighted average PV01 across
// each sector's member products.
package risk

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/stat"

	"treasury-book-engine/pkg/bond"
	"treasury-book-engine/pkg/fabric"
)

// SectorsRiskListener is notified every time a position change causes the
// risk service to recompute bucketed sector risk. Sector risk has no
// add/remove lifecycle — only ProcessUpdate is ever fired.
type SectorsRiskListener interface {
	ProcessUpdate(bond.SectorsRisk)
}

// Service holds the PV01 cache and sector membership, and emits a per-bond
// PV01 event on every position change, followed by a sector-risk tuple when
// the product belongs to a configured sector.
type Service struct {
	mu       sync.Mutex
	cache    *fabric.Cache[string, bond.PV01]
	sectors  []bond.BucketedSector
	sectorLs []SectorsRiskListener
	log      *slog.Logger
}

// NewService builds a risk service seeded with pv01 (CUSIP -> pv01 value)
// and a fixed sector membership table.
func NewService(pv01Seed map[string]float64, sectors []bond.BucketedSector, log *slog.Logger) *Service {
	cache := fabric.NewCache[string, bond.PV01]()
	for cusip, value := range pv01Seed {
		cache.Upsert(cusip, bond.PV01{CUSIP: cusip, Value: value})
	}
	return &Service{cache: cache, sectors: sectors, log: log}
}

// GetData returns the cached PV01 for a CUSIP, panicking if unseeded.
func (s *Service) GetData(cusip string) bond.PV01 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(cusip)
}

// AddListener registers l for per-bond PV01 events.
func (s *Service) AddListener(l fabric.Listener[bond.PV01]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.AddListener(l)
}

// Listeners returns the registered PV01 listeners in registration order.
func (s *Service) Listeners() []fabric.Listener[bond.PV01] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Listeners()
}

// AddSectorsListener registers l for sector-risk recompute events.
func (s *Service) AddSectorsListener(l SectorsRiskListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sectorLs = append(s.sectorLs, l)
}

// OnMessage is unused — the risk service is only driven by AddPosition and
// UpdateBondPV01, never by direct ingestion of a PV01 record.
func (s *Service) OnMessage(bond.PV01) {}

// AddPosition sets the cached PV01 entry's quantity to the absolute value of
// a product's current aggregate position, fans the per-bond PV01 update, and
// then recomputes and fans bucketed sector risk for every sector the product
// belongs to.
func (s *Service) AddPosition(cusip string, aggregateQuantity int64) {
	qty := aggregateQuantity
	if qty < 0 {
		qty = -qty
	}

	s.mu.Lock()
	pv01, existed := s.cache.Lookup(cusip)
	if !existed {
		pv01 = bond.PV01{CUSIP: cusip}
	}
	pv01.Quantity = qty
	s.cache.Upsert(cusip, pv01)
	s.mu.Unlock()

	if existed {
		s.log.Debug("risk: pv01 quantity updated", "cusip", cusip, "quantity", qty)
		s.cache.FanUpdate(pv01)
	} else {
		s.log.Debug("risk: pv01 entry created", "cusip", cusip, "quantity", qty)
		s.cache.FanAdd(pv01)
	}

	s.recomputeSectors(cusip)
}

// UpdateBondPV01 overwrites a product's cached PV01 value and re-fans
// ProcessUpdate to every registered risk listener.
func (s *Service) UpdateBondPV01(cusip string, value float64) {
	s.mu.Lock()
	pv01, existed := s.cache.Lookup(cusip)
	if !existed {
		pv01 = bond.PV01{CUSIP: cusip}
	}
	pv01.Value = value
	s.cache.Upsert(cusip, pv01)
	s.mu.Unlock()

	s.log.Debug("risk: pv01 value overwritten", "cusip", cusip, "value", value)
	s.cache.FanUpdate(pv01)
	s.recomputeSectors(cusip)
}

// GetBucketedRisk returns the quantity-weighted average PV01 across a
// sector's member products: Σ|q_i|·pv01_i / Σ|q_i|, or 0 if every member has
// zero quantity.
func (s *Service) GetBucketedRisk(sector bond.BucketedSector) bond.PV01Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	var values, weights []float64
	var totalQty int64
	for _, cusip := range sector.Products {
		pv01, ok := s.cache.Lookup(cusip)
		if !ok {
			continue
		}
		w := float64(pv01.Quantity)
		values = append(values, pv01.Value)
		weights = append(weights, w)
		totalQty += pv01.Quantity
	}

	var avg float64
	if totalQty > 0 {
		avg = stat.Mean(values, weights)
	}
	return bond.PV01Bucket{Sector: sector.Name, Value: avg, Quantity: totalQty}
}

// GetSectorsRisk computes GetBucketedRisk for every configured sector.
func (s *Service) GetSectorsRisk() bond.SectorsRisk {
	var risk bond.SectorsRisk
	for _, sec := range s.sectorsCopy() {
		bucket := s.GetBucketedRisk(sec)
		switch sec.Name {
		case bond.FrontEnd:
			risk.FrontEnd = bucket
		case bond.Belly:
			risk.Belly = bucket
		case bond.LongEnd:
			risk.LongEnd = bucket
		}
	}
	return risk
}

func (s *Service) sectorsCopy() []bond.BucketedSector {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bond.BucketedSector, len(s.sectors))
	copy(out, s.sectors)
	return out
}

// recomputeSectors fans a fresh SectorsRisk tuple to every registered sector
// listener whenever cusip's change could affect a sector it belongs to.
func (s *Service) recomputeSectors(cusip string) {
	affected := false
	for _, sec := range s.sectorsCopy() {
		for _, p := range sec.Products {
			if p == cusip {
				affected = true
				break
			}
		}
	}
	if !affected {
		return
	}

	risk := s.GetSectorsRisk()
	s.mu.Lock()
	listeners := make([]SectorsRiskListener, len(s.sectorLs))
	copy(listeners, s.sectorLs)
	s.mu.Unlock()

	for _, l := range listeners {
		l.ProcessUpdate(risk)
	}
}

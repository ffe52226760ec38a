package risk

import (
	"io"
	"log/slog"
	"testing"

	"treasury-book-engine/pkg/bond"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func frontEndSector() bond.BucketedSector {
	return bond.BucketedSector{Name: bond.FrontEnd, Products: []string{"A", "B"}}
}

func TestAddPositionUpdatesQuantityAbsoluteValue(t *testing.T) {
	svc := NewService(map[string]float64{"A": 0.05}, []bond.BucketedSector{frontEndSector()}, testLogger())
	svc.AddPosition("A", -1_000_000)
	if got := svc.GetData("A").Quantity; got != 1_000_000 {
		t.Fatalf("quantity = %d, want 1000000", got)
	}
}

func TestUpdateBondPV01Overwrites(t *testing.T) {
	svc := NewService(map[string]float64{"A": 0.05}, nil, testLogger())
	svc.UpdateBondPV01("A", 0.03)
	if got := svc.GetData("A").Value; got != 0.03 {
		t.Fatalf("value = %v, want 0.03", got)
	}
}

func TestUpdateBondPV01FansProcessUpdate(t *testing.T) {
	svc := NewService(map[string]float64{"A": 0.05}, nil, testLogger())
	var updates []bond.PV01
	svc.AddListener(funcListener{update: func(p bond.PV01) { updates = append(updates, p) }})
	svc.UpdateBondPV01("A", 0.03)
	if len(updates) != 1 || updates[0].Value != 0.03 {
		t.Fatalf("updates = %+v", updates)
	}
}

func TestGetBucketedRiskWeightedAverage(t *testing.T) {
	svc := NewService(map[string]float64{"A": 0.10, "B": 0.20}, []bond.BucketedSector{frontEndSector()}, testLogger())
	svc.AddPosition("A", 100)
	svc.AddPosition("B", 300)

	got := svc.GetBucketedRisk(frontEndSector())
	want := (100*0.10 + 300*0.20) / 400
	if diff := got.Value - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("weighted average = %v, want %v", got.Value, want)
	}
	if got.Quantity != 400 {
		t.Fatalf("quantity = %d, want 400", got.Quantity)
	}
}

func TestGetBucketedRiskZeroQuantityIsZero(t *testing.T) {
	svc := NewService(map[string]float64{"A": 0.10, "B": 0.20}, []bond.BucketedSector{frontEndSector()}, testLogger())
	got := svc.GetBucketedRisk(frontEndSector())
	if got.Value != 0 {
		t.Fatalf("value = %v, want 0", got.Value)
	}
}

func TestSectorsListenerFiredOnAffectedPosition(t *testing.T) {
	svc := NewService(map[string]float64{"A": 0.10, "C": 0.5}, []bond.BucketedSector{frontEndSector()}, testLogger())
	var fired int
	svc.AddSectorsListener(funcSectorsListener{update: func(bond.SectorsRisk) { fired++ }})

	svc.AddPosition("A", 100)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1 for sector member", fired)
	}

	svc.AddPosition("C", 100)
	if fired != 1 {
		t.Fatalf("fired = %d, want unchanged for non-member", fired)
	}
}

func TestPositionListenerForwardsAggregate(t *testing.T) {
	svc := NewService(map[string]float64{"A": 0.10}, nil, testLogger())
	l := NewPositionListener(svc)
	l.ProcessAdd(bond.Position{CUSIP: "A", Positions: map[string]int64{"TRSY1": 50, "TRSY2": -20}})
	if got := svc.GetData("A").Quantity; got != 30 {
		t.Fatalf("quantity = %d, want 30", got)
	}
}

type funcListener struct {
	add    func(bond.PV01)
	update func(bond.PV01)
	remove func(bond.PV01)
}

func (f funcListener) ProcessAdd(p bond.PV01) {
	if f.add != nil {
		f.add(p)
	}
}
func (f funcListener) ProcessUpdate(p bond.PV01) {
	if f.update != nil {
		f.update(p)
	}
}
func (f funcListener) ProcessRemove(p bond.PV01) {
	if f.remove != nil {
		f.remove(p)
	}
}

type funcSectorsListener struct {
	update func(bond.SectorsRisk)
}

func (f funcSectorsListener) ProcessUpdate(r bond.SectorsRisk) {
	if f.update != nil {
		f.update(r)
	}
}

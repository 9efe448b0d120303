package sim

import (
	"bytes"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestSnapshotCarriesFullAttributeSet(t *testing.T) {
	g := newBareGame(1)
	e := addUnit(t, g, "Ice Wizard", 0, 8, 8.5)
	e.LoadTicks = 7
	e.RetargetCD = 3
	ApplyEffect(e, EffectSpec{Kind: EffectSlow, Duration: 90, Factor: 0.65})

	snap := g.Snapshot()
	var es *EntitySnap
	for i := range snap.Entities {
		if snap.Entities[i].ID == uint32(e.ID) {
			es = &snap.Entities[i]
			break
		}
	}
	if es == nil {
		t.Fatal("entity missing from snapshot")
	}

	if es.Mass != e.Mass {
		t.Errorf("mass = %f, want %f", es.Mass, e.Mass)
	}
	if es.Sight != e.Sight {
		t.Errorf("sight = %f, want %f", es.Sight, e.Sight)
	}
	if es.Splash != e.Splash {
		t.Errorf("splash = %f, want %f", es.Splash, e.Splash)
	}
	if es.Filter != uint8(e.Filter) {
		t.Errorf("filter = %d, want %d", es.Filter, e.Filter)
	}
	if es.Load != 7 {
		t.Errorf("load = %d, want 7", es.Load)
	}
	if es.Retarget != 3 {
		t.Errorf("retarget = %d, want 3", es.Retarget)
	}
	if len(es.Effects) != 1 {
		t.Fatalf("got %d effects in snapshot, want 1", len(es.Effects))
	}
	fx := es.Effects[0]
	if fx.Kind != uint8(EffectSlow) || fx.Remaining != 90 || fx.Factor != 0.65 {
		t.Errorf("effect snap = %+v, want slow/90/0.65", fx)
	}
}

func TestSnapshotEncodingReflectsEffectState(t *testing.T) {
	build := func(remaining int) []byte {
		g := newBareGame(5)
		e := addUnit(t, g, "Knight", 0, 8, 8.5)
		ApplyEffect(e, EffectSpec{Kind: EffectSlow, Duration: remaining, Factor: 0.5})
		data, err := msgpack.Marshal(g.Snapshot())
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	if bytes.Equal(build(60), build(59)) {
		t.Error("snapshots differing only in effect duration encoded identically")
	}
}

package systems

import (
	"iter"
	"math"
	"slices"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
)

func ids(d *Directory, seq iter.Seq[ecs.Entity]) []uint32 {
	var out []uint32
	for e := range seq {
		out = append(out, d.Identity(e).ID)
	}
	return out
}

func TestDirectoryDeferredRemoval(t *testing.T) {
	f := newFixture(t, openRoom...)
	a := f.addHostile(components.HostileImp, 2.5, 2.5)
	b := f.addHostile(components.HostileImp, 3.5, 2.5)
	p := f.dir.AddPickup(f.st.AllocID(), components.PickupMedkit, r2.Vec{X: 4.5, Y: 4.5})
	c := f.addHostile(components.HostileDemon, 5.5, 2.5)

	if got := ids(f.dir, f.dir.All()); !slices.Equal(got, []uint32{1, 2, 3, 4}) {
		t.Fatalf("All() = %v, want [1 2 3 4]", got)
	}
	if got := ids(f.dir, f.dir.Hostiles()); !slices.Equal(got, []uint32{1, 2, 4}) {
		t.Fatalf("Hostiles() = %v, want [1 2 4]", got)
	}
	if got := ids(f.dir, f.dir.Pickups()); !slices.Equal(got, []uint32{3}) {
		t.Fatalf("Pickups() = %v, want [3]", got)
	}

	f.dir.Remove(2)
	f.dir.Remove(3)

	// Removed entities vanish from iteration but handles stay readable
	// until compaction.
	if got := ids(f.dir, f.dir.All()); !slices.Equal(got, []uint32{1, 4}) {
		t.Errorf("All() after Remove = %v, want [1 4]", got)
	}
	if f.dir.Identity(b).ID != 2 {
		t.Error("removed handle should stay readable before Compact")
	}
	if _, ok := f.dir.Lookup(2); ok {
		t.Error("Lookup should not return a removed entity")
	}
	if f.dir.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.dir.Len())
	}

	gone := f.dir.Compact()
	if !slices.Equal(gone, []uint32{2, 3}) {
		t.Errorf("Compact() = %v, want [2 3]", gone)
	}
	if f.dir.Valid(b) || f.dir.Valid(p) {
		t.Error("handles should be stale after Compact")
	}
	if !f.dir.Valid(a) || !f.dir.Valid(c) {
		t.Error("surviving handles should stay valid")
	}
	if got, ok := f.dir.Lookup(4); !ok || got != c {
		t.Error("Lookup(4) should still resolve")
	}

	// New entities keep ID order even though slots are recycled.
	f.addHostile(components.HostileImp, 6.5, 6.5)
	if got := ids(f.dir, f.dir.All()); !slices.Equal(got, []uint32{1, 4, 5}) {
		t.Errorf("All() after re-add = %v, want [1 4 5]", got)
	}
}

func TestNearestHostileInCone(t *testing.T) {
	f := newFixture(t, openRoom...)
	origin := r2.Vec{X: 1.5, Y: 5.5}
	east := r2.Vec{X: 1}

	far := f.addHostile(components.HostileImp, 8.5, 5.5)
	near := f.addHostile(components.HostileImp, 4.5, 5.5)
	f.addHostile(components.HostileImp, 1.5, 8.5) // 90 degrees off
	f.dir.AddPickup(f.st.AllocID(), components.PickupAmmo, r2.Vec{X: 2.5, Y: 5.5})

	got, ok := f.dir.NearestHostileInCone(origin, east, 0.2, 20)
	if !ok || got != near {
		t.Fatalf("expected nearest hostile, got %v ok=%v", got, ok)
	}

	if _, ok := f.dir.NearestHostileInCone(origin, east, 0.2, 2); ok {
		t.Error("expected nothing within range 2")
	}

	// Dead hostiles are not targets.
	f.dir.Health(near).Current = 0
	got, ok = f.dir.NearestHostileInCone(origin, east, 0.2, 20)
	if !ok || got != far {
		t.Errorf("expected far hostile once near is dead, got %v ok=%v", got, ok)
	}

	if _, ok := f.dir.NearestHostileInCone(origin, r2.Vec{}, 0.2, 20); ok {
		t.Error("zero direction should find nothing")
	}
}

func TestNearestHostileInConeTieBreak(t *testing.T) {
	f := newFixture(t, openRoom...)
	origin := r2.Vec{X: 5.5, Y: 5.5}

	// Same distance, mirrored about the aim line. The lower ID wins even
	// when added in reverse spatial order.
	first := f.addHostile(components.HostileImp, 8.5, 6.5)
	f.addHostile(components.HostileImp, 8.5, 4.5)

	got, ok := f.dir.NearestHostileInCone(origin, r2.Vec{X: 1}, math.Pi/4, 10)
	if !ok || got != first {
		t.Errorf("expected lowest ID on tie, got ID %d", f.dir.Identity(got).ID)
	}
}

func TestHostilesWithinRadius(t *testing.T) {
	f := newFixture(t, openRoom...)
	center := r2.Vec{X: 5.5, Y: 5.5}
	f.addHostile(components.HostileImp, 6.5, 5.5)
	dead := f.addHostile(components.HostileImp, 5.5, 6.5)
	f.addHostile(components.HostileImp, 9.5, 9.5)
	f.dir.Health(dead).Current = 0

	got := ids(f.dir, f.dir.HostilesWithinRadius(center, 2))
	if !slices.Equal(got, []uint32{1}) {
		t.Errorf("HostilesWithinRadius = %v, want [1]", got)
	}
}


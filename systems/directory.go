package systems

import (
	"iter"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
)

// Directory owns hostiles and pickups. Entities live in an ark world and are
// addressed by generation-checked handles, so a handle held across a removal
// goes stale instead of pointing at a recycled slot. Removal is deferred to
// Compact; until then a removed entity is skipped by every iterator.
type Directory struct {
	world *ecs.World

	hostileMapper *ecs.Map6[
		components.Identity,
		components.Position,
		components.Velocity,
		components.Facing,
		components.Health,
		components.Brain,
	]
	pickupMapper *ecs.Map2[components.Identity, components.Position]

	idMap     *ecs.Map1[components.Identity]
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	faceMap   *ecs.Map1[components.Facing]
	healthMap *ecs.Map1[components.Health]
	brainMap  *ecs.Map1[components.Brain]

	order   []ecs.Entity // sorted by ID
	byID    map[uint32]ecs.Entity
	removed map[uint32]struct{}
}

// NewDirectory creates an empty directory backed by its own world.
func NewDirectory() *Directory {
	world := ecs.NewWorld()
	return &Directory{
		world: world,
		hostileMapper: ecs.NewMap6[
			components.Identity,
			components.Position,
			components.Velocity,
			components.Facing,
			components.Health,
			components.Brain,
		](world),
		pickupMapper: ecs.NewMap2[components.Identity, components.Position](world),
		idMap:        ecs.NewMap1[components.Identity](world),
		posMap:       ecs.NewMap1[components.Position](world),
		velMap:       ecs.NewMap1[components.Velocity](world),
		faceMap:      ecs.NewMap1[components.Facing](world),
		healthMap:    ecs.NewMap1[components.Health](world),
		brainMap:     ecs.NewMap1[components.Brain](world),
		byID:         make(map[uint32]ecs.Entity),
		removed:      make(map[uint32]struct{}),
	}
}

// AddHostile creates a hostile in the idle state.
func (d *Directory) AddHostile(id uint32, kind components.HostileKind, pos, facing r2.Vec, health int) ecs.Entity {
	ident := components.Identity{ID: id, Class: components.ClassHostile, Hostile: kind}
	p := components.Position(pos)
	vel := components.Velocity{}
	face := components.Facing(unit(facing))
	if face == (components.Facing{}) {
		face = components.Facing{X: 1}
	}
	hp := components.Health{Current: health, Max: health}
	brain := components.Brain{State: components.StateIdle, LastSeen: pos}

	e := d.hostileMapper.NewEntity(&ident, &p, &vel, &face, &hp, &brain)
	d.insert(id, e)
	return e
}

// AddPickup creates a pickup.
func (d *Directory) AddPickup(id uint32, kind components.PickupKind, pos r2.Vec) ecs.Entity {
	ident := components.Identity{ID: id, Class: components.ClassPickup, Pickup: kind}
	p := components.Position(pos)
	e := d.pickupMapper.NewEntity(&ident, &p)
	d.insert(id, e)
	return e
}

func (d *Directory) insert(id uint32, e ecs.Entity) {
	d.byID[id] = e
	// IDs are allocated monotonically, so this is almost always an append.
	i := len(d.order)
	for i > 0 && d.idMap.Get(d.order[i-1]).ID > id {
		i--
	}
	d.order = slices.Insert(d.order, i, e)
}

// Remove marks an entity for removal at the next Compact.
func (d *Directory) Remove(id uint32) {
	if _, ok := d.byID[id]; ok {
		d.removed[id] = struct{}{}
	}
}

// Lookup resolves an ID to a live handle.
func (d *Directory) Lookup(id uint32) (ecs.Entity, bool) {
	e, ok := d.byID[id]
	if !ok || !d.world.Alive(e) {
		return ecs.Entity{}, false
	}
	if _, gone := d.removed[id]; gone {
		return ecs.Entity{}, false
	}
	return e, true
}

// Valid reports whether a handle still refers to an entity that has not
// been removed.
func (d *Directory) Valid(e ecs.Entity) bool {
	if !d.world.Alive(e) {
		return false
	}
	_, gone := d.removed[d.idMap.Get(e).ID]
	return !gone
}

// Len returns the number of entities not pending removal.
func (d *Directory) Len() int {
	return len(d.order) - len(d.removed)
}

// All yields every entity in ID order.
func (d *Directory) All() iter.Seq[ecs.Entity] {
	return func(yield func(ecs.Entity) bool) {
		for _, e := range d.order {
			if !d.Valid(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Hostiles yields every hostile in ID order, including dead ones awaiting
// compaction.
func (d *Directory) Hostiles() iter.Seq[ecs.Entity] {
	return d.ofClass(components.ClassHostile)
}

// Pickups yields every pickup in ID order.
func (d *Directory) Pickups() iter.Seq[ecs.Entity] {
	return d.ofClass(components.ClassPickup)
}

func (d *Directory) ofClass(class components.Class) iter.Seq[ecs.Entity] {
	return func(yield func(ecs.Entity) bool) {
		for e := range d.All() {
			if d.idMap.Get(e).Class != class {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Targetable reports whether e is a live hostile that queries may return.
func (d *Directory) Targetable(e ecs.Entity) bool {
	if !d.Valid(e) {
		return false
	}
	if d.idMap.Get(e).Class != components.ClassHostile {
		return false
	}
	return d.healthMap.Get(e).Current > 0
}

// NearestHostileInCone returns the closest live hostile whose direction from
// origin is within halfAngle of dir and whose distance is at most maxRange.
// Equal distances resolve to the lowest ID.
func (d *Directory) NearestHostileInCone(origin, dir r2.Vec, halfAngle, maxRange float64) (ecs.Entity, bool) {
	dir = unit(dir)
	if dir == (r2.Vec{}) || maxRange < 0 {
		return ecs.Entity{}, false
	}
	cosHalf := math.Cos(halfAngle)

	var best ecs.Entity
	bestDist := math.Inf(1)
	found := false
	// order is sorted by ID, so a strict comparison keeps the lowest ID on ties.
	for _, e := range d.order {
		if !d.Targetable(e) {
			continue
		}
		delta := r2.Sub(r2.Vec(*d.posMap.Get(e)), origin)
		dist := r2.Norm(delta)
		if dist > maxRange {
			continue
		}
		if dist > 0 && r2.Dot(delta, dir)/dist < cosHalf {
			continue
		}
		if dist < bestDist {
			best, bestDist, found = e, dist, true
		}
	}
	return best, found
}

// HostilesWithinRadius yields live hostiles no farther than radius from
// center, in ID order.
func (d *Directory) HostilesWithinRadius(center r2.Vec, radius float64) iter.Seq[ecs.Entity] {
	return func(yield func(ecs.Entity) bool) {
		for _, e := range d.order {
			if !d.Targetable(e) {
				continue
			}
			if distance(r2.Vec(*d.posMap.Get(e)), center) > radius {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Compact removes entities marked by Remove and returns their IDs.
func (d *Directory) Compact() []uint32 {
	if len(d.removed) == 0 {
		return nil
	}
	var gone []uint32
	kept := d.order[:0]
	for _, e := range d.order {
		id := d.idMap.Get(e).ID
		if _, ok := d.removed[id]; ok {
			gone = append(gone, id)
			delete(d.byID, id)
			d.world.RemoveEntity(e)
			continue
		}
		kept = append(kept, e)
	}
	clear(d.order[len(kept):])
	d.order = kept
	clear(d.removed)
	return gone
}

// Component accessors. Pointers are valid until the next Compact or Add.

func (d *Directory) Identity(e ecs.Entity) *components.Identity { return d.idMap.Get(e) }
func (d *Directory) Position(e ecs.Entity) *components.Position { return d.posMap.Get(e) }
func (d *Directory) Velocity(e ecs.Entity) *components.Velocity { return d.velMap.Get(e) }
func (d *Directory) Facing(e ecs.Entity) *components.Facing     { return d.faceMap.Get(e) }
func (d *Directory) Health(e ecs.Entity) *components.Health     { return d.healthMap.Get(e) }
func (d *Directory) Brain(e ecs.Entity) *components.Brain       { return d.brainMap.Get(e) }

// Pos returns an entity's position as a vector.
func (d *Directory) Pos(e ecs.Entity) r2.Vec { return r2.Vec(*d.posMap.Get(e)) }

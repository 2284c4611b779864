package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/systems"
)

// EntitySnapshot is a read-only copy of one directory entity.
type EntitySnapshot struct {
	ID        uint32
	Class     components.Class
	Hostile   components.HostileKind // valid when Class is ClassHostile
	Pickup    components.PickupKind  // valid when Class is ClassPickup
	Pos       r2.Vec
	Facing    r2.Vec
	State     components.AIState
	Health    int
	MaxHealth int
}

// Corpse is a decorative marker left where a hostile died.
type Corpse struct {
	ID     uint32
	Kind   components.HostileKind
	Pos    r2.Vec
	Facing r2.Vec
	Tick   int64
}

// PlayerSnapshot is a read-only copy of the player aggregate.
type PlayerSnapshot struct {
	Pos       r2.Vec
	Dir       r2.Vec
	Plane     r2.Vec
	Health    int
	MaxHealth int
	Armor     int
	MaxArmor  int
	Dead      bool
}

// Snapshot copies every live entity in ID order.
func (g *Game) Snapshot() []EntitySnapshot {
	out := make([]EntitySnapshot, 0, g.dir.Len())
	for e := range g.dir.All() {
		id := g.dir.Identity(e)
		s := EntitySnapshot{
			ID:      id.ID,
			Class:   id.Class,
			Hostile: id.Hostile,
			Pickup:  id.Pickup,
			Pos:     g.dir.Pos(e),
		}
		if id.Class == components.ClassHostile {
			hp := g.dir.Health(e)
			s.Facing = r2.Vec(*g.dir.Facing(e))
			s.State = g.dir.Brain(e).State
			s.Health = hp.Current
			s.MaxHealth = hp.Max
		}
		out = append(out, s)
	}
	return out
}

// Corpses returns the corpse markers, oldest first.
func (g *Game) Corpses() []Corpse {
	out := make([]Corpse, len(g.corpses))
	copy(out, g.corpses)
	return out
}

// Projectiles returns the projectiles in flight.
func (g *Game) Projectiles() []systems.Projectile {
	return g.projectiles.Projectiles()
}

// PlayerSnapshot copies the player state.
func (g *Game) PlayerSnapshot() PlayerSnapshot {
	p := g.player
	return PlayerSnapshot{
		Pos:       p.View.Pos,
		Dir:       p.View.Dir,
		Plane:     p.View.Plane,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Armor:     p.Armor,
		MaxArmor:  p.MaxArmor,
		Dead:      p.Dead,
	}
}

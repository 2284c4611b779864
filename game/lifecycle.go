package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/systems"
	"github.com/pthm-cable/gridfire/telemetry"
)

// spawnLevel adds the level's hostiles and pickups in file order, so IDs
// follow the file.
func (g *Game) spawnLevel() {
	for _, s := range g.lvl.HostileSpawns() {
		stats := g.cfg.Derived.Hostiles[s.Kind]
		g.dir.AddHostile(g.st.AllocID(), s.Kind, s.Pos, s.Facing, stats.Health)
	}
	for _, s := range g.lvl.PickupSpawns() {
		g.dir.AddPickup(g.st.AllocID(), s.Kind, s.Pos)
	}
}

// collectPickups consumes every pickup within reach of the player that
// would do something. Full health or armor leaves the item in place.
func (g *Game) collectPickups() {
	if g.player.Dead {
		return
	}
	p := g.player
	reach := g.cfg.Player.PickupRadius
	for e := range g.dir.Pickups() {
		pos := g.dir.Pos(e)
		if r2.Norm(r2.Sub(pos, p.Pos())) > reach {
			continue
		}
		id := g.dir.Identity(e)
		amount := g.cfg.Derived.Pickups[id.Pickup]

		switch id.Pickup {
		case components.PickupMedkit:
			if p.Health >= p.MaxHealth {
				continue
			}
			gained := min(p.MaxHealth, p.Health+amount) - p.Health
			p.Health += gained
			amount = gained
		case components.PickupArmor:
			if p.Armor >= p.MaxArmor {
				continue
			}
			gained := min(p.MaxArmor, p.Armor+amount) - p.Armor
			p.Armor += gained
			amount = gained
		case components.PickupAmmo:
			// Reported only; ammo belongs to the external weapon layer.
		}

		g.dir.Remove(id.ID)
		g.record(telemetry.NewPickupEvent(id.ID, id.Pickup, amount, pos))
	}
}

// compact turns dead hostiles into corpse markers, removes them from the
// directory and materializes queued summons.
func (g *Game) compact() {
	for e := range g.dir.Hostiles() {
		if !g.dir.Health(e).Dead() {
			continue
		}
		id := g.dir.Identity(e)
		g.corpses = append(g.corpses, Corpse{
			ID:     id.ID,
			Kind:   id.Hostile,
			Pos:    g.dir.Pos(e),
			Facing: r2.Vec(*g.dir.Facing(e)),
			Tick:   g.st.Tick,
		})
		g.dir.Remove(id.ID)
	}
	if limit := g.cfg.Sim.CorpseLimit; limit >= 0 && len(g.corpses) > limit {
		g.corpses = append(g.corpses[:0], g.corpses[len(g.corpses)-limit:]...)
	}

	g.dir.Compact()

	for _, req := range g.ai.DrainSpawns() {
		if _, ok := g.dir.Lookup(req.SourceID); !ok {
			continue
		}
		g.spawnSummon(req)
	}
}

// spawnSummon adds one summoned hostile.
func (g *Game) spawnSummon(req systems.SpawnRequest) {
	stats := g.cfg.Derived.Hostiles[req.Kind]
	id := g.st.AllocID()
	e := g.dir.AddHostile(id, req.Kind, req.Pos, req.Facing, stats.Health)
	// Summons arrive already hunting.
	g.dir.Brain(e).State = components.StateChase
	g.dir.Brain(e).LastSeen = g.player.Pos()
	g.record(telemetry.NewSummonEvent(req.SourceID, id, req.Kind, req.Pos))
}

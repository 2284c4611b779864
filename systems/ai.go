package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
)

// meleeReach is the distance within which an attacking hostile always
// strikes in melee, whatever its ranged capability.
const meleeReach = 2.0

// arriveDistance stops a chase toward a last-seen position.
const arriveDistance = 0.05

// AttackIntent is an attack a hostile decided to make this tick.
type AttackIntent struct {
	Attacker ecs.Entity
	SourceID uint32
	Kind     components.HostileKind
	Shape    components.AttackShape // melee, hitscan or projectile
	Damage   int
	Origin   r2.Vec
	Dir      r2.Vec // unit vector toward the player

	// Projectile parameters, used when Shape is ShapeProjectile.
	Speed    float64
	Splash   float64
	Lifetime float64
}

// SpawnRequest asks compaction to add a hostile once the tick is over.
type SpawnRequest struct {
	Kind     components.HostileKind
	Pos      r2.Vec
	Facing   r2.Vec
	SourceID uint32
}

// AISystem runs the hostile state machine.
type AISystem struct {
	grid  *Grid
	dir   *Directory
	stats *[components.NumHostileKinds]config.HostileStats
	sim   config.SimConfig

	spawns []SpawnRequest
}

// NewAISystem creates the AI system over a grid and directory.
func NewAISystem(g *Grid, d *Directory, cfg *config.Config) *AISystem {
	return &AISystem{
		grid:  g,
		dir:   d,
		stats: &cfg.Derived.Hostiles,
		sim:   cfg.Sim,
	}
}

// Update advances every live hostile by dt in ID order and returns the
// attack intents they produced. Dead hostiles are skipped entirely.
func (s *AISystem) Update(st *SimState, player *components.Player, dt float64) []AttackIntent {
	st.SummonTimer = decay(st.SummonTimer, dt)

	var intents []AttackIntent
	for e := range s.dir.Hostiles() {
		if !s.dir.Targetable(e) {
			continue
		}
		if intent, ok := s.updateHostile(st, e, player, dt); ok {
			intents = append(intents, intent)
		}
	}

	Separate(s.grid, s.dir, s.stats, s.sim)
	return intents
}

// DrainSpawns returns and clears the queued summons.
func (s *AISystem) DrainSpawns() []SpawnRequest {
	out := s.spawns
	s.spawns = nil
	return out
}

func (s *AISystem) updateHostile(st *SimState, e ecs.Entity, player *components.Player, dt float64) (AttackIntent, bool) {
	id := s.dir.Identity(e)
	brain := s.dir.Brain(e)
	stats := &s.stats[id.Hostile]
	pos := r2.Vec(*s.dir.Position(e))

	brain.Cooldown = decay(brain.Cooldown, dt)
	brain.StateTimer = decay(brain.StateTimer, dt)
	brain.SinceSeen += dt

	toPlayer := r2.Sub(player.Pos(), pos)
	dist := r2.Norm(toPlayer)
	visible := !player.Dead && HasLineOfSight(s.grid, pos, player.Pos(), s.sim.LOSSamplesPerUnit)
	if visible && brain.State != components.StateIdle {
		brain.LastSeen = player.Pos()
		brain.SinceSeen = 0
	}

	*s.dir.Velocity(e) = components.Velocity{}

	switch brain.State {
	case components.StateIdle:
		if visible && dist <= stats.Awareness {
			brain.State = components.StateChase
			brain.LastSeen = player.Pos()
			brain.SinceSeen = 0
			return AttackIntent{}, false
		}
		s.wander(st, e, stats, dt)

	case components.StateChase:
		if !visible && brain.SinceSeen > s.sim.ForgetTimeout {
			brain.State = components.StateIdle
			return AttackIntent{}, false
		}
		if !player.Dead && dist <= stats.AttackRange {
			brain.State = components.StateAttack
			s.face(e, toPlayer)
			return AttackIntent{}, false
		}
		target := brain.LastSeen
		if visible {
			target = player.Pos()
		}
		s.moveToward(e, stats, target, dt)
		s.trySummon(st, e, stats)

	case components.StateAttack:
		if player.Dead || dist > 1.5*stats.AttackRange {
			brain.State = components.StateChase
			return AttackIntent{}, false
		}
		if !visible {
			// Out of sight: close on the last-seen spot, give up after the
			// forget timeout.
			if brain.SinceSeen > s.sim.ForgetTimeout {
				brain.State = components.StateChase
				return AttackIntent{}, false
			}
			s.moveToward(e, stats, brain.LastSeen, dt)
			return AttackIntent{}, false
		}
		s.face(e, toPlayer)
		s.trySummon(st, e, stats)
		if brain.Cooldown > 0 {
			return AttackIntent{}, false
		}
		return s.attack(e, id, stats, pos, toPlayer, dist)

	case components.StatePain:
		if brain.StateTimer <= 0 {
			brain.State = components.StateChase
		}
	}
	return AttackIntent{}, false
}

// attack builds an intent once the cooldown has expired. The caller only
// gets here with line of sight; without it the cooldown stays at zero so
// the first tick that sees the player strikes.
func (s *AISystem) attack(e ecs.Entity, id *components.Identity, stats *config.HostileStats, pos, toPlayer r2.Vec, dist float64) (AttackIntent, bool) {
	intent := AttackIntent{
		Attacker: e,
		SourceID: id.ID,
		Kind:     id.Hostile,
		Origin:   pos,
		Dir:      unit(toPlayer),
	}
	if dist <= meleeReach || !stats.HasRanged {
		intent.Shape = components.ShapeMelee
		intent.Damage = stats.MeleeDamage
	} else {
		intent.Shape = stats.RangedShape
		intent.Damage = stats.RangedDamage
		intent.Speed = stats.ProjectileSpeed
		intent.Splash = stats.ProjectileSplash
		intent.Lifetime = stats.ProjectileLifetime
	}
	s.dir.Brain(e).Cooldown = stats.Cooldown
	return intent, true
}

func (s *AISystem) moveToward(e ecs.Entity, stats *config.HostileStats, target r2.Vec, dt float64) {
	pos := s.dir.Position(e)
	delta := r2.Sub(target, r2.Vec(*pos))
	dist := r2.Norm(delta)
	if dist < arriveDistance {
		return
	}
	step := stats.Speed * dt
	if step > dist {
		step = dist
	}
	s.step(e, r2.Scale(step/dist, delta), dt)
}

// wander occasionally picks a random heading and drifts along it at
// reduced speed.
func (s *AISystem) wander(st *SimState, e ecs.Entity, stats *config.HostileStats, dt float64) {
	facing := s.dir.Facing(e)
	if st.RNG.Float64() < s.sim.WanderChance {
		a := st.RNG.Float64() * 2 * math.Pi
		*facing = components.Facing{X: math.Cos(a), Y: math.Sin(a)}
	}
	speed := stats.Speed * s.sim.WanderSpeed
	if speed <= 0 {
		return
	}
	s.step(e, r2.Scale(speed*dt, r2.Vec(*facing)), dt)
}

// step commits a displacement through wall collision and records velocity.
func (s *AISystem) step(e ecs.Entity, delta r2.Vec, dt float64) {
	pos := s.dir.Position(e)
	from := r2.Vec(*pos)
	to := MoveWithCollision(s.grid, from, delta, s.sim.CollisionMargin)
	*pos = components.Position(to)
	if moved := r2.Sub(to, from); moved != (r2.Vec{}) {
		if dt > 0 {
			*s.dir.Velocity(e) = components.Velocity(r2.Scale(1/dt, moved))
		}
		s.face(e, moved)
	}
}

func (s *AISystem) face(e ecs.Entity, dir r2.Vec) {
	if u := unit(dir); u != (r2.Vec{}) {
		*s.dir.Facing(e) = components.Facing(u)
	}
}

// trySummon fires a summoner's ability. The timer is shared: the first
// summoner that finds it expired resets it for everyone.
func (s *AISystem) trySummon(st *SimState, e ecs.Entity, stats *config.HostileStats) {
	if !stats.Summons || st.SummonTimer > 0 {
		return
	}
	st.SummonTimer = stats.SummonInterval

	origin := s.dir.Pos(e)
	id := s.dir.Identity(e).ID
	for i := 0; i < stats.SummonCount; i++ {
		// A few attempts per summon; blocked spots are skipped.
		for attempt := 0; attempt < 4; attempt++ {
			a := st.RNG.Float64() * 2 * math.Pi
			offset := r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
			p := r2.Add(origin, r2.Scale(s.sim.SummonOffset, offset))
			if s.grid.IsSolid(p.X, p.Y) || !HasLineOfSight(s.grid, origin, p, s.sim.LOSSamplesPerUnit) {
				continue
			}
			s.spawns = append(s.spawns, SpawnRequest{
				Kind:     stats.SummonKind,
				Pos:      p,
				Facing:   offset,
				SourceID: id,
			})
			break
		}
	}
}

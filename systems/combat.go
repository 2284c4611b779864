package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/telemetry"
)

// Source identifies who dealt damage.
type Source struct {
	Player bool
	ID     uint32 // telemetry.PlayerID when Player is set
	Kind   components.HostileKind
	Pos    r2.Vec
}

// PlayerSource returns a Source for the player at its current position.
func PlayerSource(p *components.Player) Source {
	return Source{Player: true, ID: telemetry.PlayerID, Pos: p.Pos()}
}

// DamageResult reports the outcome of one ApplyDamage call.
type DamageResult struct {
	Dealt    int
	Killed   bool
	Overkill bool // amount exceeded twice the pre-hit health
}

// AttackParams are the shape parameters of a player attack.
type AttackParams struct {
	Damage          int
	Range           float64 // <= 0 means unlimited
	HalfAngle       float64
	Pellets         int
	Spread          float64 // max angular offset per pellet, radians
	SplashRadius    float64
	ProjectileSpeed float64 // splash only; 0 detonates at the aim point
	Lifetime        float64
}

// AttackParamsFor converts resolved weapon stats.
func AttackParamsFor(w config.WeaponStats) AttackParams {
	return AttackParams{
		Damage:          w.Damage,
		Range:           w.Range,
		HalfAngle:       w.HalfAngle,
		Pellets:         w.Pellets,
		Spread:          w.Spread,
		SplashRadius:    w.SplashRadius,
		ProjectileSpeed: w.ProjectileSpeed,
		Lifetime:        w.Lifetime,
	}
}

// AttackReport summarises a player attack.
type AttackReport struct {
	Hits    int
	Kills   int
	Dealt   int
	Fired   bool // a projectile was launched instead of resolving now
	Targets []uint32
}

// EventSink receives combat events as they happen.
type EventSink func(telemetry.Event)

// CombatResolver is the single place where health changes. Every attacker,
// player or hostile, direct or splash, goes through ApplyDamage or
// DamagePlayer.
type CombatResolver struct {
	st     *SimState
	grid   *Grid
	dir    *Directory
	sim    config.SimConfig
	player config.PlayerConfig
	emit   EventSink

	Kills       int
	KillsByKind [components.NumHostileKinds]int
}

// NewCombatResolver creates a resolver. emit may be nil.
func NewCombatResolver(st *SimState, g *Grid, d *Directory, cfg *config.Config, emit EventSink) *CombatResolver {
	if emit == nil {
		emit = func(telemetry.Event) {}
	}
	return &CombatResolver{
		st:     st,
		grid:   g,
		dir:    d,
		sim:    cfg.Sim,
		player: cfg.Player,
		emit:   emit,
	}
}

// ApplyDamage removes amount from a hostile's health, clamping at zero.
// Reaching zero kills the hostile; any other hit stuns it.
func (c *CombatResolver) ApplyDamage(e ecs.Entity, amount int, src Source) DamageResult {
	if amount <= 0 || !c.dir.Targetable(e) {
		return DamageResult{}
	}
	id := c.dir.Identity(e)
	hp := c.dir.Health(e)
	brain := c.dir.Brain(e)

	pre := hp.Current
	hp.Current = max(0, pre-amount)
	res := DamageResult{Dealt: pre - hp.Current}
	c.emit(telemetry.NewHitEvent(src.ID, id.ID, id.Hostile, res.Dealt, hp.Current == 0))

	if hp.Current == 0 {
		res.Killed = true
		res.Overkill = amount > 2*pre
		brain.State = components.StateDead
		brain.Cooldown = 0
		brain.StateTimer = 0
		*c.dir.Velocity(e) = components.Velocity{}
		c.Kills++
		c.KillsByKind[id.Hostile]++
		c.emit(telemetry.NewKillEvent(src.ID, id.ID, id.Hostile, c.dir.Pos(e), res.Overkill))
		return res
	}

	brain.State = components.StatePain
	brain.StateTimer = c.sim.PainDuration
	if src.Player {
		// Getting shot reveals where the shooter stands.
		brain.LastSeen = src.Pos
		brain.SinceSeen = 0
	}
	return res
}

// ApplySplash damages every live hostile strictly between 0 and radius from
// center with floor(base*(1-d/radius)) and returns the ones it killed.
func (c *CombatResolver) ApplySplash(center r2.Vec, radius float64, base int, src Source) []ecs.Entity {
	return c.splash(center, radius, base, src, nil)
}

func (c *CombatResolver) splash(center r2.Vec, radius float64, base int, src Source, report *AttackReport) []ecs.Entity {
	if radius <= 0 || base <= 0 {
		return nil
	}
	// Collect first so the query does not observe the damage that follows.
	var victims []ecs.Entity
	for e := range c.dir.HostilesWithinRadius(center, radius) {
		victims = append(victims, e)
	}

	var killed []ecs.Entity
	for _, e := range victims {
		dmg := splashDamage(base, distance(c.dir.Pos(e), center), radius)
		if dmg <= 0 {
			continue
		}
		id := c.dir.Identity(e).ID
		res := c.ApplyDamage(e, dmg, src)
		if report != nil {
			report.Hits++
			report.Dealt += res.Dealt
			report.Targets = append(report.Targets, id)
		}
		if res.Killed {
			killed = append(killed, e)
		}
	}
	if report != nil {
		report.Kills += len(killed)
	}
	return killed
}

func splashDamage(base int, d, radius float64) int {
	if d <= 0 || d >= radius {
		return 0
	}
	return int(math.Floor(float64(base) * (1 - d/radius)))
}

// DamagePlayer applies damage to the player aggregate. Armor absorbs its
// configured share first. Returns the health actually lost.
func (c *CombatResolver) DamagePlayer(p *components.Player, amount int, src Source) int {
	if p.Dead || amount <= 0 {
		return 0
	}
	if p.Armor > 0 && c.player.ArmorAbsorb > 0 {
		absorbed := min(p.Armor, int(float64(amount)*c.player.ArmorAbsorb))
		p.Armor -= absorbed
		amount -= absorbed
	}

	pre := p.Health
	p.Health = max(0, pre-amount)
	dealt := pre - p.Health
	lethal := p.Health == 0
	c.emit(telemetry.NewPlayerDamageEvent(src.ID, src.Kind, dealt, unit(r2.Sub(src.Pos, p.Pos())), lethal))
	if lethal {
		p.Dead = true
		c.emit(telemetry.NewPlayerDeathEvent(src.ID, src.Kind, p.Pos()))
	}
	return dealt
}

// SplashPlayer applies hostile splash to the player with the same falloff
// as ApplySplash.
func (c *CombatResolver) SplashPlayer(p *components.Player, center r2.Vec, radius float64, base int, src Source) int {
	dmg := splashDamage(base, distance(p.Pos(), center), radius)
	if dmg <= 0 {
		return 0
	}
	return c.DamagePlayer(p, dmg, src)
}

// ResolveIntent applies a hostile's attack intent. Melee and hit-scan land
// immediately; thrown attacks become projectiles.
func (c *CombatResolver) ResolveIntent(p *components.Player, intent AttackIntent, projectiles *ProjectileSystem) {
	if !c.dir.Targetable(intent.Attacker) {
		return
	}
	src := Source{ID: intent.SourceID, Kind: intent.Kind, Pos: intent.Origin}
	switch intent.Shape {
	case components.ShapeMelee, components.ShapeHitscan:
		c.DamagePlayer(p, intent.Damage, src)
	case components.ShapeProjectile:
		if projectiles != nil {
			projectiles.Fire(intent.Origin, intent.Dir, intent.Damage, intent.Splash,
				Owner{ID: intent.SourceID, Kind: intent.Kind}, intent.Speed, intent.Lifetime)
		}
	}
}

// PlayerAttack resolves an attack of the given shape fired along the
// player's view direction. Ammo and cooldowns are the caller's concern.
func (c *CombatResolver) PlayerAttack(p *components.Player, shape components.AttackShape, params AttackParams, projectiles *ProjectileSystem) AttackReport {
	var report AttackReport
	if p.Dead {
		return report
	}
	src := PlayerSource(p)
	origin, aim := p.Pos(), p.Dir()

	switch shape {
	case components.ShapeMelee, components.ShapeHitscan:
		c.strike(origin, aim, params, src, &report)

	case components.ShapeSpread:
		for i := 0; i < max(1, params.Pellets); i++ {
			offset := (c.st.RNG.Float64()*2 - 1) * params.Spread
			c.strike(origin, r2.Rotate(aim, offset, r2.Vec{}), params, src, &report)
		}

	case components.ShapeSplash:
		if params.ProjectileSpeed > 0 && projectiles != nil {
			muzzle := r2.Add(origin, r2.Scale(p.Radius, aim))
			if c.grid.IsSolid(muzzle.X, muzzle.Y) {
				muzzle = origin
			}
			report.Fired = projectiles.Fire(muzzle, aim, params.Damage, params.SplashRadius,
				Owner{Player: true}, params.ProjectileSpeed, params.Lifetime)
			return report
		}
		impact := c.aimPoint(origin, aim, params)
		c.splash(impact, params.SplashRadius, params.Damage, src, &report)
	}
	return report
}

// strike damages the nearest visible hostile inside the attack cone. Walls
// cap the cone's reach along the aim line; line of sight rejects targets
// tucked behind corners.
func (c *CombatResolver) strike(origin, aim r2.Vec, params AttackParams, src Source, report *AttackReport) {
	reach := c.reach(origin, aim, params.Range)
	target, ok := c.dir.NearestHostileInCone(origin, aim, params.HalfAngle, reach)
	if !ok {
		return
	}
	if !HasLineOfSight(c.grid, origin, c.dir.Pos(target), c.sim.LOSSamplesPerUnit) {
		return
	}
	id := c.dir.Identity(target).ID
	res := c.ApplyDamage(target, params.Damage, src)
	report.Hits++
	report.Dealt += res.Dealt
	report.Targets = append(report.Targets, id)
	if res.Killed {
		report.Kills++
	}
}

func (c *CombatResolver) reach(origin, aim r2.Vec, maxRange float64) float64 {
	wall := CastRay(c.grid, origin, unit(aim)).Distance
	if maxRange <= 0 || maxRange > wall {
		return wall
	}
	return maxRange
}

// aimPoint is where an instant splash detonates: just in front of the
// targeted hostile, or just short of the wall along the aim line.
func (c *CombatResolver) aimPoint(origin, aim r2.Vec, params AttackParams) r2.Vec {
	aim = unit(aim)
	reach := c.reach(origin, aim, params.Range)
	if target, ok := c.dir.NearestHostileInCone(origin, aim, params.HalfAngle, reach); ok {
		tp := c.dir.Pos(target)
		if HasLineOfSight(c.grid, origin, tp, c.sim.LOSSamplesPerUnit) {
			back := math.Min(0.25, distance(tp, origin)/2)
			return r2.Sub(tp, r2.Scale(back, unit(r2.Sub(tp, origin))))
		}
	}
	return r2.Add(origin, r2.Scale(math.Max(0, reach-0.05), aim))
}

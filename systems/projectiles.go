package systems

import (
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
)

// lifetimeEpsilon absorbs float drift when lifetimes are counted down in
// steps that do not divide them exactly.
const lifetimeEpsilon = 1e-9

// Owner is the side a projectile was fired by. Projectiles only collide
// with the opposing side.
type Owner struct {
	Player bool
	ID     uint32
	Kind   components.HostileKind
}

// Projectile is a traveling attack.
type Projectile struct {
	Pos          r2.Vec
	Vel          r2.Vec
	Damage       int
	SplashRadius float64 // 0 = direct damage only
	Owner        Owner
	Lifetime     float64 // seconds remaining
}

// ProjectileSystem moves projectiles and resolves their impacts through
// the combat resolver.
type ProjectileSystem struct {
	grid      *Grid
	dir       *Directory
	combat    *CombatResolver
	hitRadius float64
	step      float64

	projectiles []Projectile
	fired       int
}

// NewProjectileSystem creates an empty projectile system.
func NewProjectileSystem(g *Grid, d *Directory, combat *CombatResolver, cfg *config.Config) *ProjectileSystem {
	return &ProjectileSystem{
		grid:      g,
		dir:       d,
		combat:    combat,
		hitRadius: cfg.Sim.ProjectileHitRadius,
		step:      cfg.Sim.ProjectileStep,
	}
}

// Fire launches a projectile along direction at speed. A zero direction or
// a non-positive lifetime launches nothing.
func (ps *ProjectileSystem) Fire(origin, direction r2.Vec, damage int, splashRadius float64, owner Owner, speed, lifetime float64) bool {
	dir := unit(direction)
	if dir == (r2.Vec{}) || lifetime <= 0 {
		return false
	}
	ps.projectiles = append(ps.projectiles, Projectile{
		Pos:          origin,
		Vel:          r2.Scale(speed, dir),
		Damage:       damage,
		SplashRadius: splashRadius,
		Owner:        owner,
		Lifetime:     lifetime,
	})
	ps.fired++
	return true
}

// Tick advances every projectile by dt. Movement is split into sub-steps no
// longer than the configured step so fast projectiles cannot tunnel through
// thin walls or targets. Each projectile resolves at most once.
func (ps *ProjectileSystem) Tick(dt float64, player *components.Player) {
	kept := ps.projectiles[:0]
	for _, p := range ps.projectiles {
		if ps.advance(&p, dt, player) {
			continue
		}
		p.Lifetime = decay(p.Lifetime, dt)
		if p.Lifetime <= lifetimeEpsilon {
			continue
		}
		kept = append(kept, p)
	}
	clear(ps.projectiles[len(kept):])
	ps.projectiles = kept
}

// advance moves p and reports whether it resolved against a wall or target.
func (ps *ProjectileSystem) advance(p *Projectile, dt float64, player *components.Player) bool {
	travel := r2.Scale(dt, p.Vel)
	n := 1
	if length := r2.Norm(travel); ps.step > 0 && length > ps.step {
		n = int(math.Ceil(length / ps.step))
	}
	sub := r2.Scale(1/float64(n), travel)

	for i := 0; i < n; i++ {
		prev := p.Pos
		p.Pos = r2.Add(p.Pos, sub)
		if ps.grid.IsSolid(p.Pos.X, p.Pos.Y) {
			ps.resolve(p, prev, ecs.Entity{}, false, player)
			return true
		}
		if p.Owner.Player {
			for e := range ps.dir.HostilesWithinRadius(p.Pos, ps.hitRadius) {
				ps.resolve(p, p.Pos, e, true, player)
				return true
			}
		} else if !player.Dead && distance(p.Pos, player.Pos()) <= ps.hitRadius {
			ps.resolve(p, p.Pos, ecs.Entity{}, false, player)
			return true
		}
	}
	return false
}

// resolve applies a projectile's effect at impact. Splash projectiles always
// detonate; direct projectiles only hurt what they touched.
func (ps *ProjectileSystem) resolve(p *Projectile, impact r2.Vec, target ecs.Entity, hitHostile bool, player *components.Player) {
	src := Source{Player: p.Owner.Player, ID: p.Owner.ID, Kind: p.Owner.Kind, Pos: impact}
	if p.Owner.Player {
		src.Pos = player.Pos()
	}

	if p.SplashRadius > 0 {
		ps.combat.ApplySplash(impact, p.SplashRadius, p.Damage, src)
		if !p.Owner.Player {
			ps.combat.SplashPlayer(player, impact, p.SplashRadius, p.Damage, src)
		}
		return
	}
	switch {
	case hitHostile:
		ps.combat.ApplyDamage(target, p.Damage, src)
	case !p.Owner.Player && distance(impact, player.Pos()) <= ps.hitRadius:
		ps.combat.DamagePlayer(player, p.Damage, src)
	}
}

// Projectiles returns a copy of the live projectiles.
func (ps *ProjectileSystem) Projectiles() []Projectile {
	return slices.Clone(ps.projectiles)
}

// Len returns the number of live projectiles.
func (ps *ProjectileSystem) Len() int { return len(ps.projectiles) }

// Fired returns the number of projectiles launched so far.
func (ps *ProjectileSystem) Fired() int { return ps.fired }

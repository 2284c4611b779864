// Package agent drives the player without a human: a small utility-scored
// autopilot used by headless runs and the stat optimizer.
package agent

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/game"
	"github.com/pthm-cable/gridfire/systems"
)

const (
	aimTolerance   = 0.04 // radians off target that still fires
	turnGain       = 4.0  // turn input per radian of aim error
	wallClearance  = 1.0  // explore turns away from walls nearer than this
	healThreshold  = 0.4  // health fraction below which medkits are wanted
	closeRange     = 3.0
	preferredRange = 5.0
	bodyRadius     = 0.3 // corridor clearance used when routing
	arrivalDist    = 0.35
	replanTicks    = 30
)

// View is the read side of a game the bot needs.
type View interface {
	PlayerSnapshot() game.PlayerSnapshot
	Snapshot() []game.EntitySnapshot
	CanSee(p r2.Vec) bool
	Grid() *systems.Grid
}

// Goal is what the bot is trying to do this tick.
type Goal uint8

const (
	GoalExplore Goal = iota
	GoalHunt
	GoalEngage
	GoalHeal
)

func (g Goal) String() string {
	switch g {
	case GoalHunt:
		return "hunt"
	case GoalEngage:
		return "engage"
	case GoalHeal:
		return "heal"
	}
	return "explore"
}

// Bot turns snapshots into inputs. Near is fired inside closeRange and
// Far beyond it.
type Bot struct {
	Near         components.WeaponKind
	Far          components.WeaponKind
	FireInterval float64 // seconds between shots

	rng       *rand.Rand
	cooldown  float64
	wanderDir float64
	goal      Goal

	ticks   int64
	planner *systems.AStarPlanner
	path    *systems.PathCache
}

// NewBot creates a bot with the shotgun up close and the chaingun at range.
func NewBot(seed int64) *Bot {
	return &Bot{
		Near:         components.WeaponShotgun,
		Far:          components.WeaponChaingun,
		FireInterval: 0.25,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Goal returns the goal chosen on the last Decide.
func (b *Bot) Goal() Goal { return b.goal }

// Decide picks this tick's input.
func (b *Bot) Decide(v View, dt float64) game.Input {
	b.ticks++
	b.cooldown = max(0, b.cooldown-dt)

	p := v.PlayerSnapshot()
	if p.Dead {
		return game.Input{}
	}

	isHostile := func(s game.EntitySnapshot) bool {
		return s.Class == components.ClassHostile && s.Health > 0
	}
	target, targetDist, hasTarget := nearest(v, p.Pos, true, isHostile)
	quarry, _, hasQuarry := nearest(v, p.Pos, false, isHostile)
	medkit, medkitDist, hasMedkit := nearest(v, p.Pos, false, func(s game.EntitySnapshot) bool {
		return s.Class == components.ClassPickup && s.Pickup == components.PickupMedkit
	})

	b.goal = selectGoal(p, hasTarget, targetDist, hasMedkit, medkitDist, hasQuarry)
	switch b.goal {
	case GoalEngage:
		return b.engage(p, target, targetDist)
	case GoalHeal:
		return b.travel(v, p, medkit)
	case GoalHunt:
		return b.travel(v, p, quarry)
	}
	return b.explore(v, p)
}

// selectGoal scores the competing goals and returns the best one.
func selectGoal(p game.PlayerSnapshot, hasTarget bool, targetDist float64, hasMedkit bool, medkitDist float64, hasQuarry bool) Goal {
	health := 1.0
	if p.MaxHealth > 0 {
		health = float64(p.Health) / float64(p.MaxHealth)
	}

	exploreUtil := 0.2

	huntUtil := 0.0
	if hasQuarry && !hasTarget {
		huntUtil = 0.3
	}

	engageUtil := 0.0
	if hasTarget {
		engageUtil = 0.7
		// Closer threats are more urgent.
		engageUtil += 0.2 * (1 - min(targetDist, 10)/10)
	}

	healUtil := 0.0
	if hasMedkit && health < healThreshold {
		healUtil = 0.6 + (healThreshold-health)*1.5
		healUtil -= 0.02 * medkitDist
	}

	best, bestUtil := GoalExplore, exploreUtil
	if huntUtil > bestUtil {
		best, bestUtil = GoalHunt, huntUtil
	}
	if engageUtil > bestUtil {
		best, bestUtil = GoalEngage, engageUtil
	}
	if healUtil > bestUtil {
		best = GoalHeal
	}
	return best
}

func (b *Bot) engage(p game.PlayerSnapshot, target r2.Vec, dist float64) game.Input {
	errAngle := bearing(p.Dir, r2.Sub(target, p.Pos))
	in := game.Input{Turn: clampUnit(errAngle * turnGain)}

	switch {
	case dist > preferredRange:
		in.Move.X = 0.6
	case dist < closeRange/2:
		in.Move.X = -0.6
	}

	if math.Abs(errAngle) <= aimTolerance && b.cooldown == 0 {
		weapon := b.Far
		if dist <= closeRange {
			weapon = b.Near
		}
		in.Attack = &weapon
		b.cooldown = b.FireInterval
	}
	return in
}

func (b *Bot) approach(p game.PlayerSnapshot, target r2.Vec) game.Input {
	errAngle := bearing(p.Dir, r2.Sub(target, p.Pos))
	in := game.Input{Turn: clampUnit(errAngle * turnGain)}
	if math.Abs(errAngle) < math.Pi/4 {
		in.Move.X = 1
	}
	return in
}

// travel heads for goal, walking straight when the corridor is clear and
// following an A* route otherwise.
func (b *Bot) travel(v View, p game.PlayerSnapshot, goal r2.Vec) game.Input {
	grid := v.Grid()
	if systems.ClearCorridor(grid, p.Pos, goal, bodyRadius) {
		b.path = nil
		return b.approach(p, goal)
	}

	if b.planner == nil || b.planner.Grid() != grid {
		b.planner = systems.NewAStarPlanner(grid)
		b.path = nil
	}
	if !systems.IsPathValid(b.path, goal, b.ticks, replanTicks) {
		wps := b.planner.FindPath(p.Pos, goal, bodyRadius)
		if wps == nil {
			b.path = nil
			return b.explore(v, p)
		}
		b.path = &systems.PathCache{Waypoints: wps, Goal: goal, ValidTick: b.ticks}
	}

	wp, _ := systems.NextWaypoint(b.path, p.Pos, arrivalDist)
	return b.approach(p, wp)
}

// explore walks forward, turning away from walls and drifting randomly.
func (b *Bot) explore(v View, p game.PlayerSnapshot) game.Input {
	ahead := systems.CastRay(v.Grid(), p.Pos, p.Dir).Distance
	if ahead < wallClearance {
		// Turn toward the more open side.
		right := r2.Unit(p.Plane)
		leftDist := systems.CastRay(v.Grid(), p.Pos, r2.Scale(-1, right)).Distance
		rightDist := systems.CastRay(v.Grid(), p.Pos, right).Distance
		turn := 1.0
		if leftDist > rightDist {
			turn = -1
		}
		return game.Input{Turn: turn}
	}
	if b.rng.Float64() < 0.05 {
		b.wanderDir = b.rng.Float64()*2 - 1
	}
	return game.Input{Move: r2.Vec{X: 1}, Turn: b.wanderDir * 0.3}
}

// nearest returns the closest snapshot matching keep, optionally only
// among those the player can see.
func nearest(v View, from r2.Vec, visible bool, keep func(game.EntitySnapshot) bool) (r2.Vec, float64, bool) {
	var best r2.Vec
	bestDist := math.Inf(1)
	for _, s := range v.Snapshot() {
		if !keep(s) {
			continue
		}
		d := r2.Norm(r2.Sub(s.Pos, from))
		if d >= bestDist || (visible && !v.CanSee(s.Pos)) {
			continue
		}
		best, bestDist = s.Pos, d
	}
	return best, bestDist, !math.IsInf(bestDist, 1)
}

// bearing returns the signed angle from dir to to, positive to the right.
func bearing(dir, to r2.Vec) float64 {
	a := math.Atan2(to.Y, to.X) - math.Atan2(dir.Y, dir.X)
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clampUnit(v float64) float64 {
	return min(max(v, -1), 1)
}

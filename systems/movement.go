package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
)

// maxMoveStep bounds a single collision sub-step so that step plus margin
// can never jump a whole cell.
const maxMoveStep = 0.25

// MoveWithCollision applies delta to pos one axis at a time. Each axis is
// rejected if the destination, or the point margin beyond it in the
// direction of travel, is inside a wall; the other axis still applies, which
// lets movers slide along walls. Large deltas are split into sub-steps.
func MoveWithCollision(g *Grid, pos, delta r2.Vec, margin float64) r2.Vec {
	length := math.Max(math.Abs(delta.X), math.Abs(delta.Y))
	if length == 0 {
		return pos
	}
	steps := int(math.Ceil(length / maxMoveStep))
	step := r2.Scale(1/float64(steps), delta)

	for i := 0; i < steps; i++ {
		if step.X != 0 {
			nx := pos.X + step.X
			if !g.IsSolid(nx, pos.Y) && !g.IsSolid(nx+sign(step.X)*margin, pos.Y) {
				pos.X = nx
			}
		}
		if step.Y != 0 {
			ny := pos.Y + step.Y
			if !g.IsSolid(pos.X, ny) && !g.IsSolid(pos.X, ny+sign(step.Y)*margin) {
				pos.Y = ny
			}
		}
	}
	return pos
}

// Separate nudges overlapping live hostiles apart. Floating kinds are
// exempt. Nudges are accumulated first and then applied through
// MoveWithCollision, so the result does not depend on iteration order.
func Separate(g *Grid, d *Directory, stats *[components.NumHostileKinds]config.HostileStats, sim config.SimConfig) {
	radius := sim.SeparationRadius
	if radius <= 0 || sim.SeparationStrength <= 0 {
		return
	}

	var movers []ecs.Entity
	for e := range d.Hostiles() {
		if !d.Targetable(e) || stats[d.Identity(e).Hostile].Floats {
			continue
		}
		movers = append(movers, e)
	}
	if len(movers) < 2 {
		return
	}

	pushes := make([]r2.Vec, len(movers))
	for i := 0; i < len(movers); i++ {
		pi := d.Pos(movers[i])
		for j := i + 1; j < len(movers); j++ {
			delta := r2.Sub(d.Pos(movers[j]), pi)
			dist := r2.Norm(delta)
			if dist >= radius {
				continue
			}
			var dir r2.Vec
			if dist == 0 {
				// Stacked exactly: split along an axis derived from the ID.
				a := float64(d.Identity(movers[i]).ID) * 2.399963
				dir = r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
			} else {
				dir = r2.Scale(1/dist, delta)
			}
			push := r2.Scale((radius-dist)*sim.SeparationStrength*0.5, dir)
			pushes[i] = r2.Sub(pushes[i], push)
			pushes[j] = r2.Add(pushes[j], push)
		}
	}

	for i, e := range movers {
		if pushes[i] == (r2.Vec{}) {
			continue
		}
		pos := d.Position(e)
		*pos = components.Position(MoveWithCollision(g, r2.Vec(*pos), pushes[i], sim.CollisionMargin))
	}
}

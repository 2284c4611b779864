package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/systems"
)

// Input is one tick of player intent. Move.X walks forward and Move.Y
// strafes right, both as fractions of player.move_speed; the vector is
// clamped to unit length. Turn is a fraction of player.turn_speed,
// positive turning right. Attack fires the weapon if set.
type Input struct {
	Move   r2.Vec
	Turn   float64
	Attack *components.WeaponKind
}

// Fire returns an input that only attacks with weapon.
func Fire(weapon components.WeaponKind) Input {
	return Input{Attack: &weapon}
}

// applyInput turns and moves the player with wall collision.
func (g *Game) applyInput(in Input, dt float64) {
	if g.player.Dead || dt <= 0 {
		return
	}
	pc := g.cfg.Player
	view := g.player.View

	if turn := clampUnit(in.Turn); turn != 0 {
		view.Rotate(turn * pc.TurnSpeed * dt)
	}

	move := in.Move
	if n := r2.Norm(move); n > 1 {
		move = r2.Scale(1/n, move)
	}
	if move == (r2.Vec{}) {
		return
	}
	right := r2.Unit(view.Plane)
	delta := r2.Add(r2.Scale(move.X, view.Dir), r2.Scale(move.Y, right))
	delta = r2.Scale(pc.MoveSpeed*dt, delta)
	view.Pos = systems.MoveWithCollision(g.grid, view.Pos, delta, g.player.Radius)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, -1), 1)
}

package components

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/camera"
)

// Player is the player aggregate. It lives outside the entity directory;
// its viewpoint doubles as its position and facing.
type Player struct {
	View      *camera.Camera
	Health    int
	MaxHealth int
	Armor     int
	MaxArmor  int
	Radius    float64
	Dead      bool
}

// Pos returns the player's position.
func (p *Player) Pos() r2.Vec { return p.View.Pos }

// Dir returns the player's unit view direction.
func (p *Player) Dir() r2.Vec { return p.View.Dir }

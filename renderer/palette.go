// Package renderer draws a game with raylib: a column-cast first-person
// view, billboard sprites, a minimap and a text HUD.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/systems"
)

var (
	ceilingColor = rl.Color{R: 38, G: 38, B: 46, A: 255}
	floorColor   = rl.Color{R: 70, G: 62, B: 54, A: 255}
	corpseColor  = rl.Color{R: 90, G: 20, B: 20, A: 255}
	hudColor     = rl.Color{R: 230, G: 220, B: 200, A: 255}
)

// wallColors is indexed by wall type; unknown types wrap around.
var wallColors = []rl.Color{
	{R: 120, G: 120, B: 120, A: 255}, // unused, 0 is empty
	{R: 140, G: 110, B: 90, A: 255},
	{R: 90, G: 110, B: 140, A: 255},
	{R: 110, G: 140, B: 90, A: 255},
	{R: 150, G: 80, B: 80, A: 255},
	{R: 150, G: 140, B: 80, A: 255},
}

func wallColor(wallType int) rl.Color {
	if wallType <= 0 {
		return wallColors[0]
	}
	return wallColors[1+(wallType-1)%(len(wallColors)-1)]
}

var hostileColors = [components.NumHostileKinds]rl.Color{
	components.HostileImp:       {R: 170, G: 110, B: 60, A: 255},
	components.HostileTrooper:   {R: 80, G: 140, B: 80, A: 255},
	components.HostileDemon:     {R: 210, G: 100, B: 140, A: 255},
	components.HostileCacodemon: {R: 200, G: 40, B: 40, A: 255},
	components.HostileOverlord:  {R: 120, G: 60, B: 160, A: 255},
}

var pickupColors = [components.NumPickupKinds]rl.Color{
	components.PickupMedkit: {R: 240, G: 240, B: 240, A: 255},
	components.PickupArmor:  {R: 60, G: 200, B: 60, A: 255},
	components.PickupAmmo:   {R: 220, G: 190, B: 60, A: 255},
}

// shade scales a color's RGB by f in [0, 1].
var effectColors = [...]rl.Color{
	systems.ParticleBlood:   {R: 170, G: 10, B: 10, A: 255},
	systems.ParticleGib:     {R: 120, G: 20, B: 15, A: 255},
	systems.ParticleSummon:  {R: 180, G: 90, B: 220, A: 255},
	systems.ParticleSparkle: {R: 255, G: 250, B: 200, A: 255},
}

func shade(c rl.Color, f float64) rl.Color {
	f = min(max(f, 0), 1)
	return rl.Color{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

// lighten adds d to each RGB channel, saturating at 255.
func lighten(c rl.Color, d uint8) rl.Color {
	add := func(v uint8) uint8 {
		if int(v)+int(d) > 255 {
			return 255
		}
		return v + d
	}
	return rl.Color{R: add(c.R), G: add(c.G), B: add(c.B), A: c.A}
}

package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/game"
)

// weaponKeys maps number keys to weapons in order.
var weaponKeys = [components.NumWeaponKinds]int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive}

// Controls turns keyboard state into game input. It owns the weapon
// selection and refire timing, which the simulation leaves to its caller.
type Controls struct {
	Weapon   components.WeaponKind
	Refire   [components.NumWeaponKinds]float64 // seconds between shots
	cooldown float64
}

// NewControls starts with the pistol selected.
func NewControls() *Controls {
	return &Controls{
		Weapon: components.WeaponPistol,
		Refire: [components.NumWeaponKinds]float64{
			components.WeaponFist:     0.4,
			components.WeaponPistol:   0.35,
			components.WeaponShotgun:  0.9,
			components.WeaponChaingun: 0.1,
			components.WeaponRocket:   0.8,
		},
	}
}

// Poll reads the keyboard. W/S walk, A/D strafe, arrows turn, 1-5 pick a
// weapon and space or left ctrl fires.
func (c *Controls) Poll(dt float64) game.Input {
	var in game.Input
	if rl.IsKeyDown(rl.KeyW) {
		in.Move.X++
	}
	if rl.IsKeyDown(rl.KeyS) {
		in.Move.X--
	}
	if rl.IsKeyDown(rl.KeyD) {
		in.Move.Y++
	}
	if rl.IsKeyDown(rl.KeyA) {
		in.Move.Y--
	}
	if rl.IsKeyDown(rl.KeyRight) {
		in.Turn++
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		in.Turn--
	}

	for i, key := range weaponKeys {
		if rl.IsKeyPressed(key) {
			c.Weapon = components.WeaponKind(i)
		}
	}

	c.cooldown = max(0, c.cooldown-dt)
	if c.cooldown == 0 && (rl.IsKeyDown(rl.KeySpace) || rl.IsKeyDown(rl.KeyLeftControl)) {
		w := c.Weapon
		in.Attack = &w
		c.cooldown = c.Refire[w]
	}
	return in
}

// Restart reports whether the restart key was pressed.
func Restart() bool {
	return rl.IsKeyPressed(rl.KeyR)
}

package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/game"
)

// flashDuration is how long a damage flash stays on screen, in seconds.
const flashDuration = 0.25

// HUD draws the crosshair, player vitals, weapon and kill counts, and a
// red flash on the side damage came from.
type HUD struct {
	width, height int32
	flash         float64
	flashLeft     bool
}

// NewHUD creates a HUD for a screen of the given size.
func NewHUD(width, height int32) *HUD {
	return &HUD{width: width, height: height}
}

// Hurt starts a damage flash. dirRight is the bearing of the source
// relative to the view, positive to the right.
func (h *HUD) Hurt(dirRight float64) {
	h.flash = flashDuration
	h.flashLeft = dirRight < 0
}

// Draw renders the HUD and decays the flash by dt.
func (h *HUD) Draw(g *game.Game, weapon components.WeaponKind, dt float64) {
	cx, cy := h.width/2, h.height/2
	rl.DrawLine(cx-6, cy, cx+6, cy, hudColor)
	rl.DrawLine(cx, cy-6, cx, cy+6, hudColor)

	if h.flash > 0 {
		a := uint8(120 * h.flash / flashDuration)
		x := h.width - h.width/6
		if h.flashLeft {
			x = 0
		}
		rl.DrawRectangle(x, 0, h.width/6, h.height, rl.Color{R: 200, A: a})
		h.flash = max(0, h.flash-dt)
	}

	p := g.PlayerSnapshot()
	y := h.height - 30
	rl.DrawText(fmt.Sprintf("HEALTH %3d", p.Health), 10, y, 20, hudColor)
	rl.DrawText(fmt.Sprintf("ARMOR %3d", p.Armor), 170, y, 20, hudColor)
	rl.DrawText(fmt.Sprintf("WEAPON %s", weapon), 320, y, 20, hudColor)
	rl.DrawText(fmt.Sprintf("KILLS %d  LEFT %d", g.Kills(), g.HostilesAlive()), h.width-220, y, 20, hudColor)

	switch {
	case p.Dead:
		rl.DrawText("YOU DIED - press R", cx-110, cy-40, 24, rl.Red)
	case g.HostilesAlive() == 0:
		rl.DrawText("ARENA CLEAR - press R", cx-130, cy-40, 24, hudColor)
	}
	rl.DrawFPS(h.width-90, 10)
}

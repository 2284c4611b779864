package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/game"
	"github.com/pthm-cable/gridfire/systems"
	"github.com/pthm-cable/gridfire/telemetry"
	"github.com/pthm-cable/gridfire/ui"
)

// minimapCell is the minimap's pixel size per grid cell.
const minimapCell = 6

// Screen composes the view, minimap, HUD and target inspector for one window.
type Screen struct {
	view      *ViewRenderer
	minimap   *MinimapRenderer
	hud       *HUD
	inspector *ui.Inspector
	effects   *systems.ParticleSystem
	grid      *systems.Grid
}

// NewScreen builds a screen from the display config. The raylib window
// must already be open.
func NewScreen(sc config.ScreenConfig) *Screen {
	w, h := int32(sc.Width), int32(sc.Height)
	return &Screen{
		view:      NewViewRenderer(w, h, sc.Columns),
		minimap:   NewMinimapRenderer(10, 10, minimapCell),
		hud:       NewHUD(w, h),
		inspector: ui.NewInspector(w-230, 10),
		effects:   systems.NewParticleSystem(nil, 1),
	}
}

// Observe reacts to the events of the last step.
func (s *Screen) Observe(g *game.Game, events []telemetry.Event) {
	if s.grid != g.Grid() {
		s.grid = g.Grid()
		s.effects.SetGrid(s.grid)
	}

	var positions map[uint32]r2.Vec
	for _, ev := range events {
		pos := r2.Vec{X: ev.X, Y: ev.Y}
		switch ev.Type {
		case telemetry.EventPlayerDamage:
			if ev.Amount > 0 {
				p := g.PlayerSnapshot()
				s.hud.Hurt(r2.Dot(r2.Vec{X: ev.DirX, Y: ev.DirY}, p.Plane))
			}
		case telemetry.EventHit:
			if ev.Lethal {
				continue // the kill event bursts
			}
			if positions == nil {
				positions = entityPositions(g)
			}
			if at, ok := positions[ev.TargetID]; ok {
				s.effects.EmitBlood(at, ev.Amount)
			}
		case telemetry.EventKill:
			s.effects.EmitGib(pos)
		case telemetry.EventSummon:
			s.effects.EmitSummon(pos)
		case telemetry.EventPickup:
			s.effects.EmitSparkle(pos)
		}
	}
}

func entityPositions(g *game.Game) map[uint32]r2.Vec {
	snap := g.Snapshot()
	out := make(map[uint32]r2.Vec, len(snap))
	for _, e := range snap {
		out[e.ID] = e.Pos
	}
	return out
}

// Draw renders one frame. Tab toggles the target inspector.
func (s *Screen) Draw(g *game.Game, weapon components.WeaponKind, dt float64) {
	if rl.IsKeyPressed(rl.KeyTab) {
		s.inspector.Toggle()
	}

	s.effects.Update(dt)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	s.view.Draw(g, s.effects.Particles)
	s.minimap.Draw(g)
	s.hud.Draw(g, weapon, dt)
	s.inspector.Draw(g)
	rl.EndDrawing()
}

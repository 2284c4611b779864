package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/game"
	"github.com/pthm-cable/gridfire/systems"
)

// MinimapRenderer draws the grid top-down in a screen corner with the
// player, hostiles and pickups on it.
type MinimapRenderer struct {
	x, y     int32
	cellSize float32
}

// NewMinimapRenderer places a minimap at (x, y) with cellSize pixels per cell.
func NewMinimapRenderer(x, y int32, cellSize float32) *MinimapRenderer {
	return &MinimapRenderer{x: x, y: y, cellSize: cellSize}
}

// Draw renders the minimap.
func (r *MinimapRenderer) Draw(g *game.Game) {
	grid := g.Grid()
	cs := r.cellSize

	rl.DrawRectangle(r.x, r.y, int32(float32(grid.Width())*cs), int32(float32(grid.Height())*cs), rl.Color{A: 160})

	for gy := 0; gy < grid.Height(); gy++ {
		for gx := 0; gx < grid.Width(); gx++ {
			if !grid.CellSolid(gx, gy) {
				continue
			}
			baseX := float32(r.x) + float32(gx)*cs
			baseY := float32(r.y) + float32(gy)*cs
			c := wallColor(grid.CellType(gx, gy))
			rl.DrawRectangle(int32(baseX), int32(baseY), int32(cs), int32(cs), c)
			r.drawCellEdges(grid, gx, gy, baseX, baseY, c)
		}
	}

	for _, s := range g.Snapshot() {
		c := pickupColors[s.Pickup]
		radius := cs * 0.2
		if s.Class == components.ClassHostile {
			c = hostileColors[s.Hostile]
			radius = cs * 0.3
		}
		px, py := r.toScreen(s.Pos)
		rl.DrawCircle(px, py, radius, c)
	}

	p := g.PlayerSnapshot()
	px, py := r.toScreen(p.Pos)
	tx, ty := r.toScreen(r2.Add(p.Pos, p.Dir))
	rl.DrawCircle(px, py, cs*0.3, hudColor)
	rl.DrawLine(px, py, tx, ty, hudColor)
}

func (r *MinimapRenderer) toScreen(p r2.Vec) (int32, int32) {
	return r.x + int32(float32(p.X)*r.cellSize), r.y + int32(float32(p.Y)*r.cellSize)
}

// drawCellEdges highlights wall faces that border open cells.
func (r *MinimapRenderer) drawCellEdges(grid *systems.Grid, gx, gy int, baseX, baseY float32, base rl.Color) {
	cs := r.cellSize
	edge := max(1, cs*0.15)

	if !grid.CellSolid(gx, gy-1) {
		rl.DrawRectangle(int32(baseX), int32(baseY), int32(cs), int32(edge), lighten(base, 40))
	}
	if !grid.CellSolid(gx, gy+1) {
		rl.DrawRectangle(int32(baseX), int32(baseY+cs-edge), int32(cs), int32(edge), shade(base, 0.6))
	}
	if !grid.CellSolid(gx-1, gy) {
		rl.DrawRectangle(int32(baseX), int32(baseY), int32(edge), int32(cs), lighten(base, 20))
	}
	if !grid.CellSolid(gx+1, gy) {
		rl.DrawRectangle(int32(baseX+cs-edge), int32(baseY), int32(edge), int32(cs), shade(base, 0.7))
	}
}

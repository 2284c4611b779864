package renderer

import (
	"math"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/camera"
	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/game"
	"github.com/pthm-cable/gridfire/systems"
)

// fogDistance is where walls and sprites fade to their darkest.
const fogDistance = 16.0

// sprite is one billboard queued for the depth-sorted pass.
type sprite struct {
	pos    r2.Vec
	size   float64 // world height relative to a wall
	lift   float64 // vertical offset in wall heights, positive up
	color  rl.Color
	health float64 // health fraction for the bar, <0 hides it
}

// ViewRenderer draws the first-person view: one wall strip per column,
// then sprites clipped against the wall depth buffer.
type ViewRenderer struct {
	width   int32
	height  int32
	columns int

	hits    []systems.RayHit
	sprites []sprite
}

// NewViewRenderer creates a view renderer casting columns rays per frame.
func NewViewRenderer(width, height int32, columns int) *ViewRenderer {
	if columns < 1 || columns > int(width) {
		columns = int(width)
	}
	return &ViewRenderer{width: width, height: height, columns: columns}
}

// Draw renders the scene from the player's camera, with effects
// billboarded among the sprites.
func (r *ViewRenderer) Draw(g *game.Game, effects []systems.EffectParticle) {
	half := r.height / 2
	rl.DrawRectangle(0, 0, r.width, half, ceilingColor)
	rl.DrawRectangle(0, half, r.width, r.height-half, floorColor)

	r.hits = g.CastFan(r.columns)
	r.drawWalls()
	r.collectSprites(g)
	r.collectEffects(effects)
	r.drawSprites(g.Camera())
}

func (r *ViewRenderer) columnWidth() float64 {
	return float64(r.width) / float64(r.columns)
}

func (r *ViewRenderer) drawWalls() {
	colW := r.columnWidth()
	for i, hit := range r.hits {
		lineH := float64(r.height) / hit.Distance
		top := (float64(r.height) - lineH) / 2

		c := wallColor(hit.WallType)
		if hit.Side == systems.SideHorizontal {
			c = shade(c, 0.7)
		}
		// A darker seam near each cell edge stands in for texture.
		if hit.WallFraction < 0.04 || hit.WallFraction > 0.96 {
			c = shade(c, 0.8)
		}
		c = shade(c, 1-0.7*math.Min(hit.Distance/fogDistance, 1))

		x0 := int32(float64(i) * colW)
		x1 := int32(float64(i+1) * colW)
		rl.DrawRectangle(x0, int32(top), max(1, x1-x0), int32(math.Ceil(lineH)), c)
	}
}

func (r *ViewRenderer) collectSprites(g *game.Game) {
	r.sprites = r.sprites[:0]
	for _, c := range g.Corpses() {
		r.sprites = append(r.sprites, sprite{pos: c.Pos, size: 0.25, lift: -0.375, color: corpseColor, health: -1})
	}
	for _, s := range g.Snapshot() {
		switch s.Class {
		case components.ClassHostile:
			sp := sprite{pos: s.Pos, size: 0.7, lift: -0.15, color: hostileColors[s.Hostile], health: -1}
			if s.State == components.StatePain {
				sp.color = lighten(sp.color, 80)
			}
			if s.MaxHealth > 0 {
				sp.health = float64(s.Health) / float64(s.MaxHealth)
			}
			if s.Hostile == components.HostileCacodemon {
				sp.lift = 0.1
			}
			r.sprites = append(r.sprites, sp)
		case components.ClassPickup:
			r.sprites = append(r.sprites, sprite{pos: s.Pos, size: 0.25, lift: -0.375, color: pickupColors[s.Pickup], health: -1})
		}
	}
	for _, p := range g.Projectiles() {
		c := rl.Color{R: 255, G: 160, B: 40, A: 255}
		if p.Owner.Player {
			c = rl.Color{R: 255, G: 230, B: 120, A: 255}
		}
		r.sprites = append(r.sprites, sprite{pos: p.Pos, size: 0.15, color: c, health: -1})
	}
}

func (r *ViewRenderer) collectEffects(effects []systems.EffectParticle) {
	for _, p := range effects {
		c := effectColors[p.Type]
		c.A = uint8(255 * min(1, 2*p.Life/p.MaxLife))
		r.sprites = append(r.sprites, sprite{pos: p.Pos, size: p.Size, lift: p.Z - 0.5, color: c, health: -1})
	}
}

// drawSprites paints sprites far to near, one column strip at a time, so
// walls closer than the sprite hide it.
func (r *ViewRenderer) drawSprites(cam *camera.Camera) {
	type placed struct {
		sprite
		sx, depth float64
	}
	var visible []placed
	for _, s := range r.sprites {
		sx, depth, ok := cam.WorldToScreen(s.pos, float64(r.width))
		if !ok {
			continue
		}
		visible = append(visible, placed{s, sx, depth})
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].depth > visible[j].depth })

	colW := r.columnWidth()
	for _, p := range visible {
		h := float64(r.height) / p.depth * p.size
		w := h
		cy := float64(r.height)/2 - p.lift*float64(r.height)/p.depth
		x0, x1 := p.sx-w/2, p.sx+w/2
		c := shade(p.color, 1-0.7*math.Min(p.depth/fogDistance, 1))

		first := max(0, int(x0/colW))
		last := min(len(r.hits)-1, int(x1/colW))
		for col := first; col <= last; col++ {
			if r.hits[col].Distance < p.depth {
				continue
			}
			cx0 := math.Max(x0, float64(col)*colW)
			cx1 := math.Min(x1, float64(col+1)*colW)
			if cx1 <= cx0 {
				continue
			}
			rl.DrawRectangle(int32(cx0), int32(cy-h/2), max(1, int32(cx1-cx0)), int32(h), c)
		}

		if p.health >= 0 && p.health < 1 {
			barW := int32(w * p.health)
			rl.DrawRectangle(int32(x0), int32(cy-h/2)-6, barW, 3, rl.Red)
		}
	}
}

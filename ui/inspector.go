package ui

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/game"
)

// maxAimOffset is how far off the view direction (radians) a hostile may
// sit and still count as under the crosshair.
const maxAimOffset = 0.25

// Target is what the inspector shows: one hostile and how the player sees it.
type Target struct {
	Entity   game.EntitySnapshot
	Distance float64
	Offset   float64 // signed bearing from the view direction, positive is right
	Visible  bool
}

// World is the slice of the game the inspector reads.
type World interface {
	PlayerSnapshot() game.PlayerSnapshot
	Snapshot() []game.EntitySnapshot
	CanSee(p r2.Vec) bool
}

// PickTarget returns the live hostile closest to the crosshair among those
// in line of sight, preferring nearer hostiles at equal offset.
func PickTarget(w World) (Target, bool) {
	p := w.PlayerSnapshot()
	var best Target
	found := false
	for _, e := range w.Snapshot() {
		if e.Class != components.ClassHostile || e.Health <= 0 {
			continue
		}
		to := r2.Sub(e.Pos, p.Pos)
		dist := r2.Norm(to)
		if dist == 0 {
			continue
		}
		off := signedAngle(p.Dir, to)
		if math.Abs(off) > maxAimOffset || !w.CanSee(e.Pos) {
			continue
		}
		if found && !closerToAim(off, dist, best) {
			continue
		}
		best = Target{Entity: e, Distance: dist, Offset: off, Visible: true}
		found = true
	}
	return best, found
}

func closerToAim(off, dist float64, cur Target) bool {
	a, b := math.Abs(off), math.Abs(cur.Offset)
	if a != b {
		return a < b
	}
	return dist < cur.Distance
}

// signedAngle is the angle from a to b, positive clockwise on the y-down grid.
func signedAngle(a, b r2.Vec) float64 {
	return math.Atan2(a.X*b.Y-a.Y*b.X, r2.Dot(a, b))
}

// targetPanel describes the inspector layout for a Target.
var targetPanel = PanelDescriptor{
	ID:    "target",
	Title: "Target",
	Width: 220,
	Sections: []SectionDescriptor{
		{
			ID: "identity",
			Fields: []FieldDescriptor{
				{ID: "kind", Label: "Kind", Widget: WidgetText, TextGetter: func(d any) string {
					return d.(Target).Entity.Hostile.String()
				}},
				{ID: "id", Label: "ID", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("#%d", d.(Target).Entity.ID)
				}},
				{ID: "state", Label: "State", Widget: WidgetText, TextGetter: func(d any) string {
					return d.(Target).Entity.State.String()
				}},
			},
		},
		{
			ID:    "vitals",
			Title: "Vitals",
			Fields: []FieldDescriptor{
				{ID: "health", Label: "Health", Widget: WidgetHealthBar,
					Getter:    func(d any) float32 { return float32(d.(Target).Entity.Health) },
					MaxGetter: func(d any) float32 { return float32(d.(Target).Entity.MaxHealth) },
				},
			},
		},
		{
			ID:    "position",
			Title: "Position",
			Fields: []FieldDescriptor{
				{ID: "distance", Label: "Distance", Widget: WidgetText, Format: "%.1f",
					Getter: func(d any) float32 { return float32(d.(Target).Distance) }},
				{ID: "offset", Label: "Aim", Widget: WidgetBar, Range: FieldRange{Min: -maxAimOffset, Max: maxAimOffset},
					Getter: func(d any) float32 { return float32(d.(Target).Offset) }},
				{ID: "facing", Label: "Facing", Widget: WidgetText, TextGetter: func(d any) string {
					f := d.(Target).Entity.Facing
					return fmt.Sprintf("%.0f deg", math.Atan2(f.Y, f.X)*180/math.Pi)
				}},
			},
		},
	},
}

// Inspector renders the target inspection panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	visible  bool
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Toggle switches panel visibility.
func (ins *Inspector) Toggle() bool {
	ins.visible = !ins.visible
	return ins.visible
}

// IsVisible returns whether the panel is shown.
func (ins *Inspector) IsVisible() bool {
	return ins.visible
}

// Draw renders the panel for whatever is under the crosshair.
func (ins *Inspector) Draw(w World) {
	if !ins.visible {
		return
	}
	t, ok := PickTarget(w)
	if !ok {
		empty := PanelDescriptor{ID: "none", Title: "No target", Width: targetPanel.Width}
		ins.renderer.DrawPanelDescriptor(ins.x, ins.y, empty, nil)
		return
	}
	ins.renderer.DrawPanelDescriptor(ins.x, ins.y, targetPanel, t)
}

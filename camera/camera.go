// Package camera provides the first-person viewpoint used for raycasting.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultFOV is the horizontal field of view in radians (about 66 degrees).
const DefaultFOV = 1.15

// Camera is a viewpoint on the grid: a position, a unit view direction and
// a camera plane perpendicular to it. The plane length is tan(FOV/2), so
// plane coordinates -1 and +1 map to the left and right screen edges.
type Camera struct {
	Pos   r2.Vec
	Dir   r2.Vec
	Plane r2.Vec
	FOV   float64
}

// New creates a camera at pos looking along dir. A zero dir faces +X.
func New(pos, dir r2.Vec, fov float64) *Camera {
	if fov <= 0 || fov >= math.Pi {
		fov = DefaultFOV
	}
	c := &Camera{Pos: pos, FOV: fov}
	c.SetDirection(dir)
	return c
}

// SetDirection points the camera along dir and rebuilds the plane.
func (c *Camera) SetDirection(dir r2.Vec) {
	n := r2.Norm(dir)
	if n == 0 {
		dir, n = r2.Vec{X: 1}, 1
	}
	c.Dir = r2.Scale(1/n, dir)
	// Grid rows grow downward, so +90 degrees is the viewer's right.
	right := r2.Rotate(c.Dir, math.Pi/2, r2.Vec{})
	c.Plane = r2.Scale(math.Tan(c.FOV/2), right)
}

// Rotate turns the camera by angle radians. Positive turns right.
func (c *Camera) Rotate(angle float64) {
	if angle == 0 {
		return
	}
	c.SetDirection(r2.Rotate(c.Dir, angle, r2.Vec{}))
}

// Angle returns the heading of Dir in radians.
func (c *Camera) Angle() float64 {
	return math.Atan2(c.Dir.Y, c.Dir.X)
}

// ColumnX maps a screen column to its camera-plane coordinate in [-1, 1].
// A single column looks straight ahead.
func ColumnX(col, columns int) float64 {
	if columns <= 1 {
		return 0
	}
	return 2*float64(col)/float64(columns-1) - 1
}

// RayDir returns the (non-normalized) ray direction for a plane coordinate.
func (c *Camera) RayDir(planeX float64) r2.Vec {
	return r2.Add(c.Dir, r2.Scale(planeX, c.Plane))
}

// WorldToScreen projects a world point into screen space. It returns the
// horizontal screen coordinate, the depth along the view direction, and
// whether the point lies in front of the camera.
func (c *Camera) WorldToScreen(p r2.Vec, screenW float64) (sx, depth float64, visible bool) {
	rel := r2.Sub(p, c.Pos)
	det := c.Plane.X*c.Dir.Y - c.Dir.X*c.Plane.Y
	if det == 0 {
		return 0, 0, false
	}
	inv := 1 / det
	tx := inv * (c.Dir.Y*rel.X - c.Dir.X*rel.Y)
	depth = inv * (-c.Plane.Y*rel.X + c.Plane.X*rel.Y)
	if depth <= 0 {
		return 0, depth, false
	}
	sx = screenW / 2 * (1 + tx/depth)
	return sx, depth, true
}

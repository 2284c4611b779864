package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Line of sight is sampled at a fixed spatial resolution. Higher values
// catch more wall corners at a higher cost per query.
const (
	DefaultLOSSamplesPerUnit = 8
	MinLOSSamplesPerUnit     = 4
)

// HasLineOfSight returns true if no sampled point strictly between from and
// to lies inside a wall. Endpoints are not tested.
func HasLineOfSight(g *Grid, from, to r2.Vec, samplesPerUnit int) bool {
	if samplesPerUnit < MinLOSSamplesPerUnit {
		samplesPerUnit = MinLOSSamplesPerUnit
	}
	d := r2.Sub(to, from)
	dist := r2.Norm(d)
	if dist < 1e-9 {
		return true // Same point
	}

	n := int(math.Ceil(dist * float64(samplesPerUnit)))
	for i := 1; i < n; i++ {
		p := r2.Add(from, r2.Scale(float64(i)/float64(n), d))
		if g.IsSolid(p.X, p.Y) {
			return false
		}
	}
	return true
}

package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/camera"
)

// MinRayDistance is the floor applied to every returned distance so that
// projections can divide by it.
const MinRayDistance = 1e-4

// Wall face crossed by a ray.
const (
	SideVertical   = 0 // an x boundary was crossed
	SideHorizontal = 1 // a y boundary was crossed
)

// RayHit describes where a ray met a wall.
type RayHit struct {
	Distance     float64 // perpendicular distance along the ray direction
	Side         int
	WallType     int
	WallFraction float64 // hit position along the struck face, in [0, 1)
	CellX, CellY int
}

// CastRay steps a ray from origin along dir through the grid one cell
// boundary at a time. Distances are measured perpendicular to the camera
// plane, i.e. in multiples of dir, so a unit dir yields Euclidean distance.
//
// A zero direction returns a hit just beyond the grid diagonal with wall
// type 0. An origin inside a wall returns MinRayDistance.
func CastRay(g *Grid, origin, dir r2.Vec) RayHit {
	if dir.X == 0 && dir.Y == 0 {
		return RayHit{Distance: g.Diagonal() + 1, CellX: -1, CellY: -1}
	}

	mapX, mapY := cellIndex(origin.X), cellIndex(origin.Y)
	if g.CellSolid(mapX, mapY) {
		return RayHit{
			Distance:     MinRayDistance,
			WallType:     g.CellType(mapX, mapY),
			WallFraction: origin.Y - math.Floor(origin.Y),
			CellX:        mapX,
			CellY:        mapY,
		}
	}

	deltaX, deltaY := 1e30, 1e30
	if dir.X != 0 {
		deltaX = math.Abs(1 / dir.X)
	}
	if dir.Y != 0 {
		deltaY = math.Abs(1 / dir.Y)
	}

	var stepX, stepY int
	var sideX, sideY float64
	if dir.X < 0 {
		stepX = -1
		sideX = (origin.X - float64(mapX)) * deltaX
	} else {
		stepX = 1
		sideX = (float64(mapX) + 1 - origin.X) * deltaX
	}
	if dir.Y < 0 {
		stepY = -1
		sideY = (origin.Y - float64(mapY)) * deltaY
	} else {
		stepY = 1
		sideY = (float64(mapY) + 1 - origin.Y) * deltaY
	}

	// Every step crosses one boundary; leaving the grid always hits.
	side := SideVertical
	hit := false
	for i := 0; i < g.width+g.height+2; i++ {
		if sideX < sideY {
			sideX += deltaX
			mapX += stepX
			side = SideVertical
		} else {
			sideY += deltaY
			mapY += stepY
			side = SideHorizontal
		}
		if g.CellSolid(mapX, mapY) {
			hit = true
			break
		}
	}
	if !hit {
		return RayHit{Distance: g.Diagonal() + 1, CellX: -1, CellY: -1}
	}

	var perp, wallX float64
	if side == SideVertical {
		perp = sideX - deltaX
		wallX = origin.Y + perp*dir.Y
	} else {
		perp = sideY - deltaY
		wallX = origin.X + perp*dir.X
	}

	return RayHit{
		Distance:     math.Max(perp, MinRayDistance),
		Side:         side,
		WallType:     g.CellType(mapX, mapY),
		WallFraction: wallX - math.Floor(wallX),
		CellX:        mapX,
		CellY:        mapY,
	}
}

// CastFan casts one ray per screen column across the camera plane, left to
// right. The returned slice is owned by the caller.
func CastFan(g *Grid, cam *camera.Camera, columns int) []RayHit {
	if columns <= 0 {
		return nil
	}
	hits := make([]RayHit, columns)
	for i := range hits {
		hits[i] = CastRay(g, cam.Pos, cam.RayDir(camera.ColumnX(i, columns)))
	}
	return hits
}

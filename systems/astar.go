package systems

import (
	"container/heap"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// AStarPlanner finds routes between grid cells, treating solid cells as
// blocked. It reuses its search buffers and is not safe for concurrent use.
type AStarPlanner struct {
	grid *Grid

	// Reusable data structures (cleared between searches)
	openHeap  *nodeHeap
	closedSet map[int]struct{}
	cameFrom  map[int]int
	gScore    map[int]float64
}

// PathCache stores a computed path and validation info.
type PathCache struct {
	Waypoints []r2.Vec // cell centers, start excluded
	Index     int      // current waypoint
	Goal      r2.Vec   // goal when the path was computed
	ValidTick int64    // tick when the path was computed
}

// astarNode is a node in the A* search.
type astarNode struct {
	gx, gy int     // Grid coordinates
	f      float64 // f = g + h (priority)
	index  int     // Heap index
}

// nodeHeap implements heap.Interface for A* open set.
type nodeHeap []*astarNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// NewAStarPlanner creates a planner over grid.
func NewAStarPlanner(grid *Grid) *AStarPlanner {
	return &AStarPlanner{
		grid:      grid,
		openHeap:  &nodeHeap{},
		closedSet: make(map[int]struct{}, 256),
		cameFrom:  make(map[int]int, 256),
		gScore:    make(map[int]float64, 256),
	}
}

// Grid returns the grid the planner routes over.
func (a *AStarPlanner) Grid() *Grid { return a.grid }

// FindPath computes a route from start to goal. Waypoints are cell centers
// after the start cell, simplified so consecutive waypoints have a clear
// corridor of the given clearance between them. Returns nil if no route exists.
func (a *AStarPlanner) FindPath(start, goal r2.Vec, clearance float64) []r2.Vec {
	g := a.grid
	startGX, startGY := cellIndex(start.X), cellIndex(start.Y)
	goalGX, goalGY := cellIndex(goal.X), cellIndex(goal.Y)

	if g.CellSolid(startGX, startGY) {
		if startGX, startGY = a.findNearestOpen(startGX, startGY); startGX < 0 {
			return nil
		}
	}
	if g.CellSolid(goalGX, goalGY) {
		if goalGX, goalGY = a.findNearestOpen(goalGX, goalGY); goalGX < 0 {
			return nil
		}
	}

	if startGX == goalGX && startGY == goalGY {
		return []r2.Vec{cellCenter(goalGX, goalGY)}
	}

	*a.openHeap = (*a.openHeap)[:0]
	clear(a.closedSet)
	clear(a.cameFrom)
	clear(a.gScore)

	startID := startGY*g.width + startGX
	goalID := goalGY*g.width + goalGX

	a.gScore[startID] = 0
	heap.Push(a.openHeap, &astarNode{gx: startGX, gy: startGY, f: heuristic(startGX, startGY, goalGX, goalGY)})

	maxIterations := g.width * g.height * 8
	for iterations := 0; a.openHeap.Len() > 0 && iterations < maxIterations; iterations++ {
		current := heap.Pop(a.openHeap).(*astarNode)
		currentID := current.gy*g.width + current.gx

		if currentID == goalID {
			return a.reconstructPath(startID, goalID, clearance)
		}
		if _, done := a.closedSet[currentID]; done {
			continue
		}
		a.closedSet[currentID] = struct{}{}

		neighbors := [8][2]int{
			{current.gx - 1, current.gy},     // W
			{current.gx + 1, current.gy},     // E
			{current.gx, current.gy - 1},     // N
			{current.gx, current.gy + 1},     // S
			{current.gx - 1, current.gy - 1}, // NW
			{current.gx + 1, current.gy - 1}, // NE
			{current.gx - 1, current.gy + 1}, // SW
			{current.gx + 1, current.gy + 1}, // SE
		}

		for i, n := range neighbors {
			ngx, ngy := n[0], n[1]
			if g.CellSolid(ngx, ngy) {
				continue
			}

			// Diagonals may not cut a wall corner.
			if i >= 4 {
				dx := ngx - current.gx
				dy := ngy - current.gy
				if g.CellSolid(current.gx+dx, current.gy) || g.CellSolid(current.gx, current.gy+dy) {
					continue
				}
			}

			neighborID := ngy*g.width + ngx
			if _, ok := a.closedSet[neighborID]; ok {
				continue
			}

			moveCost := 1.0
			if i >= 4 {
				moveCost = math.Sqrt2
			}
			tentativeG := a.gScore[currentID] + moveCost

			if existingG, exists := a.gScore[neighborID]; exists && tentativeG >= existingG {
				continue
			}

			a.cameFrom[neighborID] = currentID
			a.gScore[neighborID] = tentativeG
			heap.Push(a.openHeap, &astarNode{
				gx: ngx,
				gy: ngy,
				f:  tentativeG + heuristic(ngx, ngy, goalGX, goalGY),
			})
		}
	}

	return nil
}

// heuristic computes the Euclidean distance heuristic for A*.
func heuristic(gx1, gy1, gx2, gy2 int) float64 {
	return math.Hypot(float64(gx2-gx1), float64(gy2-gy1))
}

func cellCenter(gx, gy int) r2.Vec {
	return r2.Vec{X: float64(gx) + 0.5, Y: float64(gy) + 0.5}
}

// reconstructPath builds the path from the cameFrom map.
func (a *AStarPlanner) reconstructPath(startID, goalID int, clearance float64) []r2.Vec {
	var pathIDs []int
	for current := goalID; current != startID; {
		pathIDs = append(pathIDs, current)
		prev, ok := a.cameFrom[current]
		if !ok {
			break
		}
		current = prev
	}
	pathIDs = append(pathIDs, startID)

	w := a.grid.width
	path := make([]r2.Vec, len(pathIDs))
	for i := range pathIDs {
		id := pathIDs[len(pathIDs)-1-i]
		path[i] = cellCenter(id%w, id/w)
	}

	return a.simplifyPath(path, clearance)[1:]
}

// simplifyPath drops waypoints that can be skipped along a clear corridor.
func (a *AStarPlanner) simplifyPath(path []r2.Vec, clearance float64) []r2.Vec {
	if len(path) <= 2 {
		return path
	}

	simplified := make([]r2.Vec, 0, len(path))
	simplified = append(simplified, path[0])
	anchor := path[0]

	for i := 1; i < len(path)-1; i++ {
		if !ClearCorridor(a.grid, anchor, path[i+1], clearance) {
			simplified = append(simplified, path[i])
			anchor = path[i]
		}
	}

	simplified = append(simplified, path[len(path)-1])
	return simplified
}

// ClearCorridor reports whether a body of the given radius can travel in a
// straight line from a to b without touching a solid cell.
func ClearCorridor(grid *Grid, a, b r2.Vec, radius float64) bool {
	d := r2.Sub(b, a)
	dist := r2.Norm(d)
	if dist < 1e-6 {
		return !grid.IsSolid(a.X, a.Y)
	}
	dir := r2.Scale(1/dist, d)
	side := r2.Scale(radius, r2.Vec{X: -dir.Y, Y: dir.X})

	const stepSize = 0.25
	steps := int(dist/stepSize) + 1
	for i := 0; i <= steps; i++ {
		p := r2.Add(a, r2.Scale(min(float64(i)*stepSize, dist), dir))
		if grid.IsSolid(p.X, p.Y) {
			return false
		}
		if radius > 0 {
			l, r := r2.Add(p, side), r2.Sub(p, side)
			if grid.IsSolid(l.X, l.Y) || grid.IsSolid(r.X, r.Y) {
				return false
			}
		}
	}
	return true
}

// findNearestOpen finds the nearest open cell to (gx, gy).
// Returns (-1, -1) if no open cell is found within the search radius.
func (a *AStarPlanner) findNearestOpen(gx, gy int) (int, int) {
	for radius := 1; radius < 10; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx) != radius && abs(dy) != radius {
					continue
				}
				if !a.grid.CellSolid(gx+dx, gy+dy) {
					return gx + dx, gy + dy
				}
			}
		}
	}
	return -1, -1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// IsPathValid checks if a cached path is still usable: the goal moved less
// than one cell and the path is younger than maxAge ticks.
func IsPathValid(cache *PathCache, goal r2.Vec, tick, maxAge int64) bool {
	if cache == nil || cache.Index >= len(cache.Waypoints) {
		return false
	}
	if tick-cache.ValidTick > maxAge {
		return false
	}
	return r2.Norm(r2.Sub(goal, cache.Goal)) <= 1
}

// NextWaypoint returns the waypoint to steer toward from pos, advancing
// the cache once pos is within arrivalDist of the current one.
func NextWaypoint(cache *PathCache, pos r2.Vec, arrivalDist float64) (r2.Vec, bool) {
	if cache == nil || cache.Index >= len(cache.Waypoints) {
		return pos, false
	}
	wp := cache.Waypoints[cache.Index]
	if r2.Norm(r2.Sub(wp, pos)) < arrivalDist {
		cache.Index++
		if cache.Index >= len(cache.Waypoints) {
			return wp, false
		}
		wp = cache.Waypoints[cache.Index]
	}
	return wp, true
}

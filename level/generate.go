package level

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
)

const (
	minArenaSize  = 5
	spawnAttempts = 64
)

// Generate builds a walled arena of the configured size. Interior cells
// whose noise value exceeds the pillar threshold become walls, except
// inside the clear radius around the player start, which is the arena
// center. Hostiles and pickups are scattered over cells reachable from the
// start. The same seed always yields the same level.
func Generate(arena config.ArenaConfig, seed int64) (*Level, error) {
	if err := checkKinds(arena); err != nil {
		return nil, err
	}
	w, h := max(arena.Width, minArenaSize), max(arena.Height, minArenaSize)
	noise := opensimplex.New(seed)
	detail := opensimplex.New(seed + 1)

	start := Placement{X: float64(w/2) + 0.5, Y: float64(h/2) + 0.5, Angle: -math.Pi / 2}

	cells := make([][]byte, h)
	for y := range cells {
		cells[y] = make([]byte, w)
		for x := range cells[y] {
			cells[y][x] = '.'
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				cells[y][x] = '#'
				continue
			}
			cx, cy := float64(x)+0.5, float64(y)+0.5
			if math.Hypot(cx-start.X, cy-start.Y) <= arena.ClearRadius {
				continue
			}
			v := noise.Eval2(float64(x)*arena.NoiseScale, float64(y)*arena.NoiseScale)
			if v > arena.PillarThreshold {
				// Second octave picks the wall texture.
				if detail.Eval2(float64(x)*0.5, float64(y)*0.5) > 0 {
					cells[y][x] = '2'
				} else {
					cells[y][x] = '3'
				}
			}
		}
	}

	reach := reachable(cells, int(start.X), int(start.Y))
	rng := rand.New(rand.NewSource(seed))
	used := map[[2]int]bool{{int(start.X), int(start.Y)}: true}

	pick := func(minDist float64) (Placement, bool) {
		for range spawnAttempts {
			c := reach[rng.Intn(len(reach))]
			if used[c] {
				continue
			}
			p := Placement{X: float64(c[0]) + 0.5, Y: float64(c[1]) + 0.5}
			if math.Hypot(p.X-start.X, p.Y-start.Y) < minDist {
				continue
			}
			used[c] = true
			return p, true
		}
		return Placement{}, false
	}

	lvl := &Level{Name: fmt.Sprintf("arena-%d", seed), Player: start}

	// Iterate kinds in enum order so the RNG sequence is stable.
	for _, name := range components.HostileKindNames() {
		for range arena.Hostiles[name] {
			p, ok := pick(arena.ClearRadius)
			if !ok {
				return nil, fmt.Errorf("placing %s: %w", name, ErrNoSpace)
			}
			p.Kind = name
			p.Angle = math.Atan2(start.Y-p.Y, start.X-p.X)
			lvl.Hostiles = append(lvl.Hostiles, p)
		}
	}
	for _, name := range components.PickupKindNames() {
		for range arena.Pickups[name] {
			p, ok := pick(0)
			if !ok {
				return nil, fmt.Errorf("placing %s: %w", name, ErrNoSpace)
			}
			p.Kind = name
			lvl.Pickups = append(lvl.Pickups, p)
		}
	}

	lvl.Rows = make([]string, h)
	for y, row := range cells {
		lvl.Rows[y] = string(row)
	}
	if err := lvl.Resolve(); err != nil {
		return nil, err
	}
	return lvl, nil
}

// checkKinds rejects arena counts for names that are not hostile or pickup
// kinds.
func checkKinds(arena config.ArenaConfig) error {
	for name := range arena.Hostiles {
		if _, ok := components.ParseHostileKind(name); !ok {
			return fmt.Errorf("arena hostile %q: %w", name, ErrUnknownKind)
		}
	}
	for name := range arena.Pickups {
		if _, ok := components.ParsePickupKind(name); !ok {
			return fmt.Errorf("arena pickup %q: %w", name, ErrUnknownKind)
		}
	}
	return nil
}

// reachable flood-fills the open cells connected to (sx, sy), in BFS order.
func reachable(cells [][]byte, sx, sy int) [][2]int {
	seen := make([][]bool, len(cells))
	for y := range seen {
		seen[y] = make([]bool, len(cells[y]))
	}
	queue := [][2]int{{sx, sy}}
	seen[sy][sx] = true
	for i := 0; i < len(queue); i++ {
		c := queue[i]
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			x, y := c[0]+d[0], c[1]+d[1]
			if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
				continue
			}
			if seen[y][x] || cells[y][x] != '.' {
				continue
			}
			seen[y][x] = true
			queue = append(queue, [2]int{x, y})
		}
	}
	return queue
}

// String renders the grid rows, one per line.
func (l *Level) String() string {
	return strings.Join(l.Rows, "\n")
}

package systems

import (
	"errors"
	"fmt"
	"math"
)

// BoundaryWallType is reported for any cell outside the grid.
const BoundaryWallType = 1

var (
	ErrEmptyGrid    = errors.New("grid has no cells")
	ErrRaggedGrid   = errors.New("grid rows differ in length")
	ErrNegativeCell = errors.New("grid cell is negative")
	ErrBadCell      = errors.New("grid cell symbol not recognized")
)

// Grid is the immutable wall map. Cell (x, y) covers [x, x+1) × [y, y+1);
// 0 is empty and any positive value is a wall type. Everything outside the
// grid behaves as a wall of BoundaryWallType.
type Grid struct {
	cells  []int
	width  int
	height int
}

// NewGrid copies rows (indexed [y][x]) into a grid.
func NewGrid(rows [][]int) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	w, h := len(rows[0]), len(rows)
	g := &Grid{cells: make([]int, w*h), width: w, height: h}
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), w, ErrRaggedGrid)
		}
		for x, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("cell (%d,%d) = %d: %w", x, y, v, ErrNegativeCell)
			}
			g.cells[y*w+x] = v
		}
	}
	return g, nil
}

// ParseGrid builds a grid from text rows: '.' or ' ' is empty, '#' is wall
// type 1 and the digits 1-9 select a wall type.
func ParseGrid(rows []string) (*Grid, error) {
	cells := make([][]int, len(rows))
	for y, row := range rows {
		cells[y] = make([]int, 0, len(row))
		for x, r := range row {
			switch {
			case r == '.' || r == ' ':
				cells[y] = append(cells[y], 0)
			case r == '#':
				cells[y] = append(cells[y], 1)
			case r >= '1' && r <= '9':
				cells[y] = append(cells[y], int(r-'0'))
			default:
				return nil, fmt.Errorf("cell (%d,%d) %q: %w", x, y, r, ErrBadCell)
			}
		}
	}
	return NewGrid(cells)
}

// MustParseGrid is ParseGrid for fixtures known to be valid.
func MustParseGrid(rows ...string) *Grid {
	g, err := ParseGrid(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Diagonal returns the length of the grid's diagonal in map units.
func (g *Grid) Diagonal() float64 {
	return math.Hypot(float64(g.width), float64(g.height))
}

// CellType returns the wall type of cell (ix, iy).
func (g *Grid) CellType(ix, iy int) int {
	if ix < 0 || ix >= g.width || iy < 0 || iy >= g.height {
		return BoundaryWallType
	}
	return g.cells[iy*g.width+ix]
}

// CellSolid reports whether cell (ix, iy) blocks movement and sight.
func (g *Grid) CellSolid(ix, iy int) bool {
	return g.CellType(ix, iy) != 0
}

// WallType returns the wall type at a world position.
func (g *Grid) WallType(x, y float64) int {
	return g.CellType(cellIndex(x), cellIndex(y))
}

// IsSolid reports whether a world position is inside a wall.
func (g *Grid) IsSolid(x, y float64) bool {
	return g.CellType(cellIndex(x), cellIndex(y)) != 0
}

// Row returns a copy of row y, used by viewers and level writers.
func (g *Grid) Row(y int) []int {
	if y < 0 || y >= g.height {
		return nil
	}
	return append([]int(nil), g.cells[y*g.width:(y+1)*g.width]...)
}

// cellIndex floors a coordinate; int() alone truncates toward zero and
// would map -0.5 into cell 0.
func cellIndex(v float64) int {
	if !(v > -1 && v < math.MaxInt32) {
		return -1
	}
	return int(math.Floor(v))
}

// Package level loads arena layouts from YAML and generates them from noise.
package level

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/systems"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrUnknownKind = errors.New("unknown kind")
	ErrSpawnInWall = errors.New("spawn inside a wall")
	ErrNoSpace     = errors.New("no free cell for spawn")
)

// Placement is a position and heading in grid units. Angle is in radians,
// 0 facing +X.
type Placement struct {
	Kind  string  `yaml:"kind,omitempty"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Angle float64 `yaml:"angle,omitempty"`
}

// Pos returns the placement position.
func (p Placement) Pos() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Facing returns the unit heading for Angle.
func (p Placement) Facing() r2.Vec {
	return r2.Vec{X: math.Cos(p.Angle), Y: math.Sin(p.Angle)}
}

// HostileSpawn is a resolved hostile placement.
type HostileSpawn struct {
	Kind   components.HostileKind
	Pos    r2.Vec
	Facing r2.Vec
}

// PickupSpawn is a resolved pickup placement.
type PickupSpawn struct {
	Kind components.PickupKind
	Pos  r2.Vec
}

// Level is an arena layout: the wall grid, the player start and the initial
// hostiles and pickups.
type Level struct {
	Name     string      `yaml:"name"`
	Rows     []string    `yaml:"grid"`
	Player   Placement   `yaml:"player"`
	Hostiles []Placement `yaml:"hostiles"`
	Pickups  []Placement `yaml:"pickups"`

	grid     *systems.Grid
	hostiles []HostileSpawn
	pickups  []PickupSpawn
}

// Default returns the embedded level.
func Default() (*Level, error) {
	return Parse(defaultYAML)
}

// Load reads a level file.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lvl, nil
}

// Parse decodes and validates a level document.
func Parse(data []byte) (*Level, error) {
	lvl := &Level{}
	if err := yaml.Unmarshal(data, lvl); err != nil {
		return nil, fmt.Errorf("parsing level: %w", err)
	}
	if err := lvl.Resolve(); err != nil {
		return nil, err
	}
	return lvl, nil
}

// Resolve builds the grid and checks every placement. It must be called
// again after the exported fields are edited.
func (l *Level) Resolve() error {
	g, err := systems.ParseGrid(l.Rows)
	if err != nil {
		return fmt.Errorf("level %q grid: %w", l.Name, err)
	}
	if g.IsSolid(l.Player.X, l.Player.Y) {
		return fmt.Errorf("player start (%g,%g): %w", l.Player.X, l.Player.Y, ErrSpawnInWall)
	}

	hostiles := make([]HostileSpawn, 0, len(l.Hostiles))
	for i, p := range l.Hostiles {
		kind, ok := components.ParseHostileKind(p.Kind)
		if !ok {
			return fmt.Errorf("hostile %d %q: %w", i, p.Kind, ErrUnknownKind)
		}
		if g.IsSolid(p.X, p.Y) {
			return fmt.Errorf("hostile %d %s at (%g,%g): %w", i, p.Kind, p.X, p.Y, ErrSpawnInWall)
		}
		hostiles = append(hostiles, HostileSpawn{Kind: kind, Pos: p.Pos(), Facing: p.Facing()})
	}

	pickups := make([]PickupSpawn, 0, len(l.Pickups))
	for i, p := range l.Pickups {
		kind, ok := components.ParsePickupKind(p.Kind)
		if !ok {
			return fmt.Errorf("pickup %d %q: %w", i, p.Kind, ErrUnknownKind)
		}
		if g.IsSolid(p.X, p.Y) {
			return fmt.Errorf("pickup %d %s at (%g,%g): %w", i, p.Kind, p.X, p.Y, ErrSpawnInWall)
		}
		pickups = append(pickups, PickupSpawn{Kind: kind, Pos: p.Pos()})
	}

	l.grid = g
	l.hostiles = hostiles
	l.pickups = pickups
	return nil
}

// Grid returns the resolved wall grid.
func (l *Level) Grid() *systems.Grid { return l.grid }

// HostileSpawns returns the resolved hostile placements in file order.
func (l *Level) HostileSpawns() []HostileSpawn { return l.hostiles }

// PickupSpawns returns the resolved pickup placements in file order.
func (l *Level) PickupSpawns() []PickupSpawn { return l.pickups }

// WriteYAML saves the level document.
func (l *Level) WriteYAML(path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling level: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents an entity's world position in map units.
type Position r2.Vec

// Velocity is the displacement per second applied on the last tick.
type Velocity r2.Vec

// Facing is the unit direction an entity looks toward.
type Facing r2.Vec

package components

import "gonum.org/v1/gonum/spatial/r2"

// Identity ties an ECS entity to its stable simulation ID and kind.
// IDs are assigned monotonically and never reused within one simulation.
type Identity struct {
	ID      uint32
	Class   Class
	Hostile HostileKind
	Pickup  PickupKind
}

// Health is a non-negative hit point pool. Zero means dead.
type Health struct {
	Current int
	Max     int
}

// Dead reports whether the pool is exhausted.
func (h Health) Dead() bool { return h.Current <= 0 }

// Brain holds a hostile's state machine and its timers.
type Brain struct {
	State      AIState
	StateTimer float64 // pain stun remaining
	Cooldown   float64 // seconds until the next attack may fire

	LastSeen  r2.Vec  // last known player position
	SinceSeen float64 // seconds since the player was last seen
}

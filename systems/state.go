package systems

import "math/rand"

// SimState is the simulation root: every counter that outlives a single
// system call. Each Game owns one, so independent simulations never share
// IDs, timers or random streams.
type SimState struct {
	NextID      uint32
	SummonTimer float64 // shared by every summoner; 0 means ready
	RNG         *rand.Rand
	Tick        int64
	Time        float64
}

// NewSimState creates a root state with a seeded random stream.
func NewSimState(seed int64) *SimState {
	return &SimState{RNG: rand.New(rand.NewSource(seed))}
}

// AllocID returns the next entity ID. IDs start at 1; 0 names the player.
func (s *SimState) AllocID() uint32 {
	s.NextID++
	return s.NextID
}

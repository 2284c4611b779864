package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// ParticleType identifies the type of effect particle.
type ParticleType uint8

const (
	ParticleBlood   ParticleType = iota // hostile took damage
	ParticleGib                         // hostile died
	ParticleSummon                      // summoned hostile arrived
	ParticleSparkle                     // pickup collected
)

// EffectParticle is a visual feedback particle in grid units. Z is the
// height above the floor, 1 being the top of a wall.
type EffectParticle struct {
	Pos     r2.Vec
	Vel     r2.Vec
	Z, VelZ float64
	Life    float64 // seconds left
	MaxLife float64
	Type    ParticleType
	Size    float64
}

// ParticleSystem manages effect particles. It never touches simulation
// state, so it is safe to drive from the render loop.
type ParticleSystem struct {
	Particles    []EffectParticle
	maxParticles int
	rng          *rand.Rand
	grid         *Grid
}

// NewParticleSystem creates a particle system that bounces particles off
// grid walls. grid may be nil.
func NewParticleSystem(grid *Grid, seed int64) *ParticleSystem {
	return &ParticleSystem{
		Particles:    make([]EffectParticle, 0, 500),
		maxParticles: 500,
		rng:          rand.New(rand.NewSource(seed)),
		grid:         grid,
	}
}

// SetGrid swaps the wall grid, e.g. after a level restart.
func (s *ParticleSystem) SetGrid(grid *Grid) {
	s.grid = grid
	s.Particles = s.Particles[:0]
}

const particleGravity = 3.0

// Update advances all particles by dt seconds.
func (s *ParticleSystem) Update(dt float64) {
	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		p.Life -= dt
		if p.Life <= 0 {
			continue
		}

		switch p.Type {
		case ParticleSummon, ParticleSparkle:
			// Float upward
			p.VelZ += 0.5 * dt
		default:
			p.VelZ -= particleGravity * dt
		}

		drag := math.Pow(0.05, dt)
		p.Vel = r2.Scale(drag, p.Vel)

		next := r2.Add(p.Pos, r2.Scale(dt, p.Vel))
		if s.grid != nil && s.grid.IsSolid(next.X, next.Y) {
			p.Vel = r2.Vec{}
		} else {
			p.Pos = next
		}

		p.Z += p.VelZ * dt
		if p.Z < 0 {
			p.Z, p.VelZ = 0, 0
			p.Vel = r2.Scale(0.5, p.Vel)
		}

		s.Particles[alive] = *p
		alive++
	}
	s.Particles = s.Particles[:alive]
}

// EmitBlood emits a small spray at a damaged hostile.
func (s *ParticleSystem) EmitBlood(pos r2.Vec, amount int) {
	count := min(2+amount/5, 10)
	for i := 0; i < count; i++ {
		s.emit(pos, ParticleBlood)
	}
}

// EmitGib emits a radial burst where a hostile died.
func (s *ParticleSystem) EmitGib(pos r2.Vec) {
	count := 8 + s.rng.Intn(7) // 8-14 particles
	for i := 0; i < count; i++ {
		s.emit(pos, ParticleGib)
	}
}

// EmitSummon emits a rising plume at a summoned hostile.
func (s *ParticleSystem) EmitSummon(pos r2.Vec) {
	for i := 0; i < 6; i++ {
		s.emit(pos, ParticleSummon)
	}
}

// EmitSparkle emits a short twinkle at a collected pickup.
func (s *ParticleSystem) EmitSparkle(pos r2.Vec) {
	for i := 0; i < 4; i++ {
		s.emit(pos, ParticleSparkle)
	}
}

func (s *ParticleSystem) emit(pos r2.Vec, ptype ParticleType) {
	if len(s.Particles) >= s.maxParticles {
		return
	}

	angle := s.rng.Float64() * 2 * math.Pi
	dir := r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}

	p := EffectParticle{Pos: pos, Type: ptype}
	switch ptype {
	case ParticleBlood:
		p.Vel = r2.Scale(0.5+s.rng.Float64(), dir)
		p.Z = 0.4 + 0.2*s.rng.Float64()
		p.VelZ = 0.5 + s.rng.Float64()
		p.Life = 0.4 + 0.3*s.rng.Float64()
		p.Size = 0.04
	case ParticleGib:
		p.Vel = r2.Scale(1+1.5*s.rng.Float64(), dir)
		p.Z = 0.3
		p.VelZ = 1 + 1.5*s.rng.Float64()
		p.Life = 0.8 + 0.6*s.rng.Float64()
		p.Size = 0.06 + 0.04*s.rng.Float64()
	case ParticleSummon:
		p.Pos = r2.Add(pos, r2.Scale(0.3*s.rng.Float64(), dir))
		p.VelZ = 0.3 + 0.3*s.rng.Float64()
		p.Life = 0.8 + 0.4*s.rng.Float64()
		p.Size = 0.08
	default:
		p.Pos = r2.Add(pos, r2.Scale(0.2*s.rng.Float64(), dir))
		p.Z = 0.1
		p.VelZ = 0.4
		p.Life = 0.5
		p.Size = 0.05
	}
	p.MaxLife = p.Life
	s.Particles = append(s.Particles, p)
}

// Count returns the current number of active particles.
func (s *ParticleSystem) Count() int {
	return len(s.Particles)
}

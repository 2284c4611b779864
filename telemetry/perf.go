package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of the simulation tick.
type Phase uint8

const (
	PhasePlayer Phase = iota
	PhaseAI
	PhaseCombat
	PhaseProjectiles
	PhaseCleanup
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{"player", "ai", "combat", "projectiles", "cleanup", "telemetry"}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// PhaseTimes holds one duration per tick phase.
type PhaseTimes [NumPhases]time.Duration

// Total sums all phases.
func (pt PhaseTimes) Total() time.Duration {
	var sum time.Duration
	for _, d := range pt {
		sum += d
	}
	return sum
}

// tickSample is one recorded tick in the ring.
type tickSample struct {
	total  time.Duration
	phases PhaseTimes
}

// PerfCollector times the phases of each tick into a fixed ring of the last
// windowSize ticks. No allocation happens per tick.
type PerfCollector struct {
	now func() time.Time

	ring  []tickSample
	next  int
	count int

	cur        PhaseTimes
	tickStart  time.Time
	phaseStart time.Time
	active     Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector keeps windowSize ticks; anything below 1 becomes 60.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:  time.Now,
		ring: make([]tickSample, windowSize),
	}
}

// StartTick opens a new tick. Time before the first StartPhase counts
// toward the tick total only.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = PhaseTimes{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	t := p.now()
	p.closePhase(t)
	if phase >= NumPhases {
		return
	}
	p.active = phase
	p.phaseStart = t
	p.inPhase = true
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.inPhase {
		p.cur[p.active] += t.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndTick closes the running phase and stores the tick in the ring.
func (p *PerfCollector) EndTick() {
	t := p.now()
	p.closePhase(t)
	p.ring[p.next] = tickSample{total: t.Sub(p.tickStart), phases: p.cur}
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame measures the interval since the previous call.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// PerfStats summarizes the ticks currently in the ring.
type PerfStats struct {
	Samples int

	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg PhaseTimes
	PhasePct [NumPhases]float64 // share of the average tick, 0-100

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the ring. Frame timing is reported even with no ticks.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Samples: p.count, FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	var phaseSum PhaseTimes
	for i, smp := range p.ring[:p.count] {
		total += smp.total
		if i == 0 || smp.total < s.MinTickDuration {
			s.MinTickDuration = smp.total
		}
		s.MaxTickDuration = max(s.MaxTickDuration, smp.total)
		for ph, d := range smp.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if total > 0 {
			s.PhasePct[ph] = float64(phaseSum[ph]) / float64(total) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// Slowest returns the phase with the largest average share.
func (s PerfStats) Slowest() Phase {
	slowest := PhasePlayer
	for ph := PhasePlayer; ph < NumPhases; ph++ {
		if s.PhaseAvg[ph] > s.PhaseAvg[slowest] {
			slowest = ph
		}
	}
	return slowest
}

// LogStats logs the window; phases under 0.1% are left out.
func (s PerfStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"slowest", s.Slowest().String(),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", float64(int(pct*10))/10)
		}
	}
	logger.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 5+int(NumPhases))
	attrs = append(attrs,
		slog.Int("samples", s.Samples),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	)
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd      int64   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FPS            float64 `csv:"fps"`
	PlayerPct      float64 `csv:"player_pct"`
	AIPct          float64 `csv:"ai_pct"`
	CombatPct      float64 `csv:"combat_pct"`
	ProjectilesPct float64 `csv:"projectiles_pct"`
	CleanupPct     float64 `csv:"cleanup_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for perf.csv.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FPS:            s.FPS,
		PlayerPct:      s.PhasePct[PhasePlayer],
		AIPct:          s.PhasePct[PhaseAI],
		CombatPct:      s.PhasePct[PhaseCombat],
		ProjectilesPct: s.PhasePct[PhaseProjectiles],
		CleanupPct:     s.PhasePct[PhaseCleanup],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}

package main

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gridfire/agent"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/game"
	"github.com/pthm-cable/gridfire/level"
	"github.com/pthm-cable/gridfire/telemetry"
)

// Targets an encounter is tuned toward.
type Targets struct {
	Duration float64 // sim-seconds to clear the arena
	Health   float64 // player health fraction left at the end
}

// RunRecord is one seed's outcome, written to best_runs.csv.
type RunRecord struct {
	Seed         int64   `csv:"seed"`
	Ticks        int64   `csv:"ticks"`
	Seconds      float64 `csv:"seconds"`
	Kills        int     `csv:"kills"`
	HostilesLeft int     `csv:"hostiles_left"`
	PlayerHealth int     `csv:"player_health"`
	PlayerDead   bool    `csv:"player_dead"`
	Accuracy     float64 `csv:"accuracy"`
	Fitness      float64 `csv:"fitness"`
}

// FitnessEvaluator runs autopiloted encounters and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	baseConfig  *config.Config
	targets     Targets
	statsWindow float64
	generate    bool

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestRuns    []RunRecord
	lastClear   float64 // fraction of seeds cleared in the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. With generate set every
// seed plays its own generated arena instead of the built-in level.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config, targets Targets, generate bool) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		targets:     targets,
		statsWindow: 5.0,
		generate:    generate,
		bestFitness: math.Inf(1),
	}
}

// BestRuns returns the per-seed records of the best evaluation.
func (fe *FitnessEvaluator) BestRuns() []RunRecord {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRuns
}

// LastClearRate returns the cleared fraction from the most recent evaluation.
func (fe *FitnessEvaluator) LastClearRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastClear
}

var quiet = slog.New(slog.DiscardHandler)

// Penalties for outcomes the targets cannot express.
const (
	deathPenalty     = 2.0
	stalematePenalty = 1.0
	healthScale      = 0.25
	pacingWeight     = 0.2
)

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := cloneConfig(fe.baseConfig)
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}

	// Each seed gets its own Game, so seeds run in parallel.
	runs := make([]RunRecord, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			runs[idx] = fe.runEncounter(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	cleared := 0
	for _, r := range runs {
		total += r.Fitness
		if r.HostilesLeft == 0 && !r.PlayerDead {
			cleared++
		}
	}
	n := float64(len(fe.seeds))
	avg := total / n

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
		fe.bestRuns = runs
	}
	fe.lastClear = float64(cleared) / n
	fe.mu.Unlock()

	return avg
}

// runEncounter plays one seed to completion or maxTicks.
func (fe *FitnessEvaluator) runEncounter(cfg *config.Config, seed int64) RunRecord {
	rec := RunRecord{Seed: seed, Fitness: math.Inf(1)}

	lvl, err := fe.levelFor(cfg, seed)
	if err != nil {
		return rec
	}

	evalCfg := *cfg
	evalCfg.Telemetry.StatsWindow = fe.statsWindow

	var windows []telemetry.WindowStats
	g, err := game.New(game.Options{
		Config: &evalCfg,
		Level:  lvl,
		Seed:   seed,
		Logger: quiet,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})
	if err != nil {
		return rec
	}
	defer g.Close()

	res := agent.Play(g, agent.NewBot(seed), fe.maxTicks)

	rec.Ticks = res.Ticks
	rec.Seconds = res.Time
	rec.Kills = res.Kills
	rec.HostilesLeft = res.HostilesLeft
	rec.PlayerHealth = res.PlayerHealth
	rec.PlayerDead = res.PlayerDead
	rec.Accuracy = accuracy(windows)
	rec.Fitness = fe.computeFitness(res, cfg.Player.MaxHealth, windows)
	return rec
}

func (fe *FitnessEvaluator) levelFor(cfg *config.Config, seed int64) (*level.Level, error) {
	if fe.generate {
		return level.Generate(cfg.Arena, seed)
	}
	return level.Default()
}

// computeFitness scores an encounter against the targets:
// squared log error of duration plus squared health error, plus a pacing
// term that prefers damage spread evenly across stats windows.
func (fe *FitnessEvaluator) computeFitness(res agent.Result, maxHealth int, windows []telemetry.WindowStats) float64 {
	dur := math.Max(res.Time, 1e-3)
	logErr := math.Log(dur / fe.targets.Duration)
	f := logErr * logErr

	health := 0.0
	if maxHealth > 0 {
		health = float64(res.PlayerHealth) / float64(maxHealth)
	}
	hErr := (health - fe.targets.Health) / healthScale
	f += hErr * hErr

	switch {
	case res.PlayerDead:
		f += deathPenalty
	case !res.Cleared:
		f += stalematePenalty
	}

	taken := make([]float64, 0, len(windows))
	for _, w := range windows {
		taken = append(taken, float64(w.DamageTaken))
	}
	return f + pacingWeight*cv(taken)
}

// accuracy pools attack hits over all windows.
func accuracy(windows []telemetry.WindowStats) float64 {
	var attacks, hits float64
	for _, w := range windows {
		attacks += float64(w.Attacks)
		hits += w.Accuracy * float64(w.Attacks)
	}
	if attacks == 0 {
		return 0
	}
	return hits / attacks
}

// cv is the coefficient of variation (sample std / mean). Fewer than two
// values or a zero mean give 0.
func cv(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

func (r RunRecord) String() string {
	return fmt.Sprintf("seed=%d t=%.1fs kills=%d left=%d hp=%d dead=%v",
		r.Seed, r.Seconds, r.Kills, r.HostilesLeft, r.PlayerHealth, r.PlayerDead)
}

// Package game owns one simulation instance: the grid, the entity
// directory, the player and every system, stepped in a fixed order.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/camera"
	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/level"
	"github.com/pthm-cable/gridfire/systems"
	"github.com/pthm-cable/gridfire/telemetry"
)

// ErrNoStats is returned when a level or weapon names a kind the config
// has no stats for.
var ErrNoStats = errors.New("no stats for kind")

// maxPendingEvents bounds the DrainEvents buffer when nobody drains it.
const maxPendingEvents = 4096

// Options configures a new game.
type Options struct {
	Config         *config.Config // nil uses the embedded defaults
	Level          *level.Level   // nil uses level.Default
	Seed           int64
	Logger         *slog.Logger // nil uses slog.Default
	EventHandler   func(telemetry.Event)
	StatsCallback  func(telemetry.WindowStats)
	LogStats       bool
	OutputDir      string
	StepsPerUpdate int // fixed steps per Advance call
}

// Game is the simulation root. It is single-threaded; run independent
// Games on separate goroutines for parallelism.
type Game struct {
	cfg    *config.Config
	lvl    *level.Level
	logger *slog.Logger

	st          *systems.SimState
	grid        *systems.Grid
	dir         *systems.Directory
	ai          *systems.AISystem
	combat      *systems.CombatResolver
	projectiles *systems.ProjectileSystem
	player      *components.Player

	corpses []Corpse

	handler    func(telemetry.Event)
	pending    []telemetry.Event // undrained, for DrainEvents
	tickEvents []telemetry.Event // not yet written to events.csv

	collector      *telemetry.Collector
	perfCollector  *telemetry.PerfCollector
	outputManager  *telemetry.OutputManager
	statsCallback  func(telemetry.WindowStats)
	logStats       bool
	stepsPerUpdate int
}

// New builds a game from options. It fails if the level spawns a kind the
// config has no stats for or the output directory cannot be created.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, err
		}
	}
	lvl := opts.Level
	if lvl == nil {
		var err error
		if lvl, err = level.Default(); err != nil {
			return nil, err
		}
	}
	for i, s := range lvl.HostileSpawns() {
		if !cfg.Derived.HasHostile[s.Kind] {
			return nil, fmt.Errorf("hostile spawn %d %s: %w", i, s.Kind, ErrNoStats)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Game{
		cfg:            cfg,
		lvl:            lvl,
		logger:         logger,
		st:             systems.NewSimState(opts.Seed),
		grid:           lvl.Grid(),
		dir:            systems.NewDirectory(),
		handler:        opts.EventHandler,
		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Sim.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		statsCallback:  opts.StatsCallback,
		logStats:       opts.LogStats,
		stepsPerUpdate: max(1, opts.StepsPerUpdate),
	}
	g.ai = systems.NewAISystem(g.grid, g.dir, cfg)
	g.combat = systems.NewCombatResolver(g.st, g.grid, g.dir, cfg, g.record)
	g.projectiles = systems.NewProjectileSystem(g.grid, g.dir, g.combat, cfg)

	start := lvl.Player
	g.player = &components.Player{
		View:      camera.New(start.Pos(), start.Facing(), cfg.Player.FOV),
		Health:    cfg.Player.Health,
		MaxHealth: cfg.Player.MaxHealth,
		MaxArmor:  cfg.Player.MaxArmor,
		Radius:    cfg.Player.Radius,
	}
	g.spawnLevel()

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}
	g.outputManager = om

	g.logger.Info("game created",
		"level", lvl.Name,
		"seed", opts.Seed,
		"hostiles", len(lvl.HostileSpawns()),
		"pickups", len(lvl.PickupSpawns()),
	)
	return g, nil
}

// Close flushes and closes any output files.
func (g *Game) Close() error {
	if len(g.tickEvents) > 0 {
		g.writeEvents()
	}
	return g.outputManager.Close()
}

// Config returns the resolved configuration.
func (g *Game) Config() *config.Config { return g.cfg }

// Level returns the level the game was built from.
func (g *Game) Level() *level.Level { return g.lvl }

// Grid returns the wall grid.
func (g *Game) Grid() *systems.Grid { return g.grid }

// Tick returns the number of completed steps.
func (g *Game) Tick() int64 { return g.st.Tick }

// Time returns the simulated seconds elapsed.
func (g *Game) Time() float64 { return g.st.Time }

// Camera returns the player's view. Callers must not mutate it.
func (g *Game) Camera() *camera.Camera { return g.player.View }

// CastFan casts one ray per screen column from the player's view.
func (g *Game) CastFan(columns int) []systems.RayHit {
	return systems.CastFan(g.grid, g.player.View, columns)
}

// CanSee reports whether the player has line of sight to p.
func (g *Game) CanSee(p r2.Vec) bool {
	return systems.HasLineOfSight(g.grid, g.player.Pos(), p, g.cfg.Sim.LOSSamplesPerUnit)
}

// Kills returns the total hostiles killed.
func (g *Game) Kills() int { return g.combat.Kills }

// KillsByKind returns the kill tally per hostile kind.
func (g *Game) KillsByKind() [components.NumHostileKinds]int { return g.combat.KillsByKind }

// HostilesAlive counts hostiles that are not dead.
func (g *Game) HostilesAlive() int {
	n := 0
	for e := range g.dir.Hostiles() {
		if g.dir.Targetable(e) {
			n++
		}
	}
	return n
}

// Done reports whether the encounter is over: the player died or no
// hostile is left alive.
func (g *Game) Done() bool {
	return g.player.Dead || g.HostilesAlive() == 0
}

// DrainEvents returns the events recorded since the last call.
func (g *Game) DrainEvents() []telemetry.Event {
	out := g.pending
	g.pending = nil
	return out
}

// record stamps an event with the current tick and fans it out.
func (g *Game) record(ev telemetry.Event) {
	ev.Tick = g.st.Tick
	g.collector.Record(ev)

	if len(g.pending) >= maxPendingEvents {
		g.pending = append(g.pending[:0], g.pending[len(g.pending)/2:]...)
	}
	g.pending = append(g.pending, ev)
	if g.outputManager != nil {
		g.tickEvents = append(g.tickEvents, ev)
	}
	if g.handler != nil {
		g.handler(ev)
	}
	g.logEvent(ev)
}

package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/camera"
	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/telemetry"
)

// fixture wires the systems together the way game.Game does, without the
// level loader.
type fixture struct {
	t      *testing.T
	cfg    *config.Config
	st     *SimState
	grid   *Grid
	dir    *Directory
	ai     *AISystem
	combat *CombatResolver
	proj   *ProjectileSystem
	player *components.Player
	events []telemetry.Event
}

func newFixture(t *testing.T, rows ...string) *fixture {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	// Deterministic idle behavior unless a test opts in.
	cfg.Sim.WanderChance = 0
	cfg.Sim.WanderSpeed = 0
	return newFixtureWithConfig(t, cfg, rows...)
}

func newFixtureWithConfig(t *testing.T, cfg *config.Config, rows ...string) *fixture {
	t.Helper()
	g, err := ParseGrid(rows)
	if err != nil {
		t.Fatalf("parsing grid: %v", err)
	}
	f := &fixture{t: t, cfg: cfg, st: NewSimState(1), grid: g, dir: NewDirectory()}
	f.ai = NewAISystem(g, f.dir, cfg)
	f.combat = NewCombatResolver(f.st, g, f.dir, cfg, func(ev telemetry.Event) {
		f.events = append(f.events, ev)
	})
	f.proj = NewProjectileSystem(g, f.dir, f.combat, cfg)
	f.player = &components.Player{
		View:      camera.New(r2.Vec{X: 1.5, Y: 1.5}, r2.Vec{X: 1}, cfg.Player.FOV),
		Health:    cfg.Player.Health,
		MaxHealth: cfg.Player.MaxHealth,
		MaxArmor:  cfg.Player.MaxArmor,
		Radius:    cfg.Player.Radius,
	}
	return f
}

func (f *fixture) placePlayer(x, y float64, dir r2.Vec) {
	f.player.View.Pos = r2.Vec{X: x, Y: y}
	f.player.View.SetDirection(dir)
}

func (f *fixture) addHostile(kind components.HostileKind, x, y float64) ecs.Entity {
	stats := f.cfg.Derived.Hostiles[kind]
	return f.dir.AddHostile(f.st.AllocID(), kind, r2.Vec{X: x, Y: y}, r2.Vec{X: 1}, stats.Health)
}

// addTank adds a hostile with a large health pool so damage is observable
// without killing it.
func (f *fixture) addTank(x, y float64, health int) ecs.Entity {
	return f.dir.AddHostile(f.st.AllocID(), components.HostileOverlord, r2.Vec{X: x, Y: y}, r2.Vec{X: 1}, health)
}

// tick runs one AI + combat + projectile pass.
func (f *fixture) tick(dt float64) {
	intents := f.ai.Update(f.st, f.player, dt)
	for _, in := range intents {
		f.combat.ResolveIntent(f.player, in, f.proj)
	}
	f.proj.Tick(dt, f.player)
}

func (f *fixture) countEvents(typ telemetry.EventType) int {
	n := 0
	for _, ev := range f.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// openRoom is a 12x12 walled room with no interior walls.
var openRoom = []string{
	"############",
	"#..........#",
	"#..........#",
	"#..........#",
	"#..........#",
	"#..........#",
	"#..........#",
	"#..........#",
	"#..........#",
	"#..........#",
	"#..........#",
	"############",
}

package game

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/level"
	"github.com/pthm-cable/gridfire/telemetry"
)

const tickDT = 1.0 / 60.0

func mustLevel(t *testing.T, doc string) *level.Level {
	t.Helper()
	lvl, err := level.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parsing level: %v", err)
	}
	return lvl
}

func quietConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sim.WanderChance = 0
	return cfg
}

func newGame(t *testing.T, doc string) *Game {
	t.Helper()
	g, err := New(Options{Config: quietConfig(t), Level: mustLevel(t, doc), Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

const corridor = `
grid:
  - "########"
  - "#......#"
  - "########"
player: {x: 1.5, y: 1.5}
hostiles:
  - {kind: imp, x: 5.5, y: 1.5, angle: 3.1415927}
`

func TestNewDefaults(t *testing.T) {
	g, err := New(Options{})
	if err != nil {
		t.Fatalf("New(Options{}) error: %v", err)
	}
	defer g.Close()

	if got, want := g.HostilesAlive(), len(g.Level().HostileSpawns()); got != want {
		t.Errorf("HostilesAlive() = %d, want %d", got, want)
	}
	snap := g.Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i].ID <= snap[i-1].ID {
			t.Fatalf("snapshot not in ID order: %d after %d", snap[i].ID, snap[i-1].ID)
		}
	}
	if p := g.PlayerSnapshot(); p.Health != g.Config().Player.Health || p.Dead {
		t.Errorf("player snapshot = %+v", p)
	}
}

func TestNewRejectsKindWithoutStats(t *testing.T) {
	cfg := quietConfig(t)
	delete(cfg.Hostiles, "trooper")
	if err := cfg.Recompute(); err != nil {
		t.Fatal(err)
	}
	lvl := mustLevel(t, strings.Replace(corridor, "kind: imp", "kind: trooper", 1))

	_, err := New(Options{Config: cfg, Level: lvl})
	if !errors.Is(err, ErrNoStats) {
		t.Errorf("New() error = %v, want ErrNoStats", err)
	}
}

func TestStepClampsDT(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
		want float64
	}{
		{"normal", tickDT, tickDT},
		{"stall", 5, 0.1},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame(t, corridor)
			g.Step(tt.dt, Input{})
			if math.Abs(g.Time()-tt.want) > 1e-12 {
				t.Errorf("Time() = %v, want %v", g.Time(), tt.want)
			}
			if g.Tick() != 1 {
				t.Errorf("Tick() = %d, want 1", g.Tick())
			}
		})
	}
}

func TestAdvanceRunsFixedSteps(t *testing.T) {
	cfg := quietConfig(t)
	g, err := New(Options{Config: cfg, Level: mustLevel(t, corridor), Seed: 1, StepsPerUpdate: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	g.Advance(Input{})
	if g.Tick() != 4 {
		t.Errorf("Tick() = %d, want 4", g.Tick())
	}
	if want := 4 * cfg.Sim.DT; math.Abs(g.Time()-want) > 1e-9 {
		t.Errorf("Time() = %v, want %v", g.Time(), want)
	}
}

func TestStepPerfBreakdown(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Telemetry.PerfWindow = 16
	g, err := New(Options{Config: cfg, Level: mustLevel(t, corridor), Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	if s := g.PerfStats(); s.Samples != 0 {
		t.Fatalf("Samples before any step = %d", s.Samples)
	}
	for range 40 {
		g.Step(tickDT, Input{Move: r2.Vec{X: 1}})
	}

	s := g.PerfStats()
	if s.Samples != 16 {
		t.Errorf("Samples = %d, want the 16-tick window", s.Samples)
	}
	if s.AvgTickDuration <= 0 {
		t.Fatalf("AvgTickDuration = %v, want > 0", s.AvgTickDuration)
	}
	if total := s.PhaseAvg.Total(); total > s.AvgTickDuration {
		t.Errorf("phases sum to %v, more than the %v tick", total, s.AvgTickDuration)
	}
	var pct float64
	for ph := telemetry.PhasePlayer; ph < telemetry.NumPhases; ph++ {
		if s.PhasePct[ph] < 0 || s.PhasePct[ph] > 100 {
			t.Errorf("%v pct = %v, out of range", ph, s.PhasePct[ph])
		}
		pct += s.PhasePct[ph]
	}
	if pct <= 0 || pct > 100+1e-9 {
		t.Errorf("phase pct sum = %v, want (0, 100]", pct)
	}
}

func TestPlayerMovementStaysOutOfWalls(t *testing.T) {
	g := newGame(t, corridor)
	// Walk diagonally into the corridor wall for two seconds.
	for range 120 {
		g.Step(tickDT, Input{Move: r2.Vec{X: 1, Y: 1}})
		p := g.PlayerSnapshot().Pos
		if g.Grid().IsSolid(p.X, p.Y) {
			t.Fatalf("player inside wall at %v", p)
		}
	}
	p := g.PlayerSnapshot().Pos
	if p.X <= 1.5 {
		t.Errorf("player did not slide along the wall: %v", p)
	}
	if p.Y+g.Config().Player.Radius > 2+1e-9 {
		t.Errorf("player %v closer to the wall than its radius", p)
	}
}

func TestTurnRight(t *testing.T) {
	g := newGame(t, corridor)
	g.Step(0.1, Input{Turn: 1})
	want := g.Config().Player.TurnSpeed * 0.1
	dir := g.PlayerSnapshot().Dir
	if got := math.Atan2(dir.Y, dir.X); math.Abs(got-want) > 1e-9 {
		t.Errorf("heading = %v, want %v", got, want)
	}
}

func TestKillLeavesCorpse(t *testing.T) {
	var handled []telemetry.Event
	g, err := New(Options{
		Config:       quietConfig(t),
		Level:        mustLevel(t, corridor),
		EventHandler: func(ev telemetry.Event) { handled = append(handled, ev) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	g.Step(tickDT, Fire(components.WeaponPistol))
	if len(g.Corpses()) != 0 {
		t.Fatal("imp died from one pistol shot")
	}
	if s := g.Snapshot()[0]; s.State != components.StatePain || s.Health != 5 {
		t.Fatalf("after one shot: %+v", s)
	}

	g.Step(tickDT, Fire(components.WeaponPistol))

	corpses := g.Corpses()
	if len(corpses) != 1 || corpses[0].Kind != components.HostileImp || corpses[0].Tick != 2 {
		t.Fatalf("corpses = %+v", corpses)
	}
	if len(g.Snapshot()) != 0 {
		t.Errorf("dead imp still in snapshot: %+v", g.Snapshot())
	}
	if g.Kills() != 1 || g.KillsByKind()[components.HostileImp] != 1 {
		t.Errorf("Kills() = %d, by kind %v", g.Kills(), g.KillsByKind())
	}
	if !g.Done() {
		t.Error("Done() = false with no hostiles left")
	}

	events := g.DrainEvents()
	if !reflect.DeepEqual(events, handled) {
		t.Errorf("DrainEvents and EventHandler disagree:\n%v\n%v", events, handled)
	}
	var kill *telemetry.Event
	for i := range events {
		if events[i].Type == telemetry.EventKill {
			kill = &events[i]
		}
	}
	if kill == nil || kill.Tick != 2 || kill.SourceID != telemetry.PlayerID {
		t.Errorf("kill event = %+v", kill)
	}
	if len(g.DrainEvents()) != 0 {
		t.Error("DrainEvents did not clear the buffer")
	}
}

func TestCorpseLimit(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Sim.CorpseLimit = 1
	lvl := mustLevel(t, `
grid:
  - "########"
  - "#......#"
  - "########"
player: {x: 1.5, y: 1.5}
hostiles:
  - {kind: imp, x: 4.5, y: 1.5}
  - {kind: imp, x: 5.5, y: 1.5}
`)
	g, err := New(Options{Config: cfg, Level: lvl})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	rocket := components.WeaponRocket
	// Two hostiles, two corpses, one kept.
	for range 20 {
		if g.HostilesAlive() == 0 {
			break
		}
		g.Step(tickDT, Input{Attack: &rocket})
	}
	if g.Kills() != 2 {
		t.Fatalf("Kills() = %d, want 2", g.Kills())
	}
	corpses := g.Corpses()
	if len(corpses) != 1 || corpses[0].ID != 2 {
		t.Errorf("corpses = %+v, want only the newest (id 2)", corpses)
	}
}

func TestPickups(t *testing.T) {
	doc := `
grid:
  - "######"
  - "#....#"
  - "######"
player: {x: 1.5, y: 1.5}
pickups:
  - {kind: medkit, x: 1.9, y: 1.5}
  - {kind: armor, x: 1.5, y: 1.6}
  - {kind: ammo, x: 4.5, y: 1.5}
`
	g := newGame(t, doc)
	g.Step(tickDT, Input{})

	// Full health leaves the medkit; armor is taken.
	var kinds []components.PickupKind
	for _, s := range g.Snapshot() {
		kinds = append(kinds, s.Pickup)
	}
	if !reflect.DeepEqual(kinds, []components.PickupKind{components.PickupMedkit, components.PickupAmmo}) {
		t.Fatalf("remaining pickups = %v", kinds)
	}
	if got := g.PlayerSnapshot().Armor; got != g.Config().Derived.Pickups[components.PickupArmor] {
		t.Errorf("armor = %d", got)
	}

	g.player.Health = 90
	g.Step(tickDT, Input{})
	if got := g.PlayerSnapshot().Health; got != 100 {
		t.Errorf("health after medkit = %d, want 100 (capped)", got)
	}

	var healed int
	for _, ev := range g.DrainEvents() {
		if ev.Type == telemetry.EventPickup && ev.Kind == "medkit" {
			healed = ev.Amount
		}
	}
	if healed != 10 {
		t.Errorf("medkit event amount = %d, want 10", healed)
	}
}

func TestSummonMaterializesAfterStep(t *testing.T) {
	doc := `
grid:
  - "############"
  - "#..........#"
  - "#..........#"
  - "#..........#"
  - "#..........#"
  - "#..........#"
  - "#..........#"
  - "#..........#"
  - "#..........#"
  - "#..........#"
  - "#..........#"
  - "############"
player: {x: 2.5, y: 6.5}
hostiles:
  - {kind: overlord, x: 9.5, y: 6.5, angle: 3.1415927}
`
	g := newGame(t, doc)

	var summons []telemetry.Event
	for range 10 {
		g.Step(tickDT, Input{})
		for _, ev := range g.DrainEvents() {
			if ev.Type == telemetry.EventSummon {
				summons = append(summons, ev)
			}
		}
	}
	if len(summons) == 0 {
		t.Fatal("overlord never summoned")
	}
	if summons[0].SourceID != 1 {
		t.Errorf("summon source = %d, want 1", summons[0].SourceID)
	}

	imps := 0
	for _, s := range g.Snapshot() {
		if s.Class == components.ClassHostile && s.Hostile == components.HostileImp {
			imps++
			if s.ID <= 1 {
				t.Errorf("summoned imp reused id %d", s.ID)
			}
			if g.Grid().IsSolid(s.Pos.X, s.Pos.Y) {
				t.Errorf("summoned imp inside a wall at %v", s.Pos)
			}
		}
	}
	if imps != len(summons) {
		t.Errorf("%d imps in snapshot, %d summon events", imps, len(summons))
	}
}

func TestImpMeleeThroughStep(t *testing.T) {
	doc := `
grid:
  - "#####"
  - "#...#"
  - "#...#"
  - "#...#"
  - "#####"
player: {x: 2.5, y: 3.5, angle: -1.5707963}
hostiles:
  - {kind: imp, x: 2.5, y: 1.5, angle: 1.5707963}
`
	g := newGame(t, doc)
	start := g.PlayerSnapshot().Health

	for range 600 {
		g.Step(tickDT, Input{})
		if g.PlayerSnapshot().Health < start {
			break
		}
	}
	if got := start - g.PlayerSnapshot().Health; got != 5 {
		t.Fatalf("first damage = %d, want 5", got)
	}

	var dmg []telemetry.Event
	for _, ev := range g.DrainEvents() {
		if ev.Type == telemetry.EventPlayerDamage {
			dmg = append(dmg, ev)
		}
	}
	if len(dmg) != 1 || dmg[0].Amount != 5 || dmg[0].Kind != "imp" {
		t.Fatalf("player damage events = %+v", dmg)
	}
	// The imp is north of the player.
	if dmg[0].DirY >= 0 {
		t.Errorf("damage direction = (%v,%v), want pointing north", dmg[0].DirX, dmg[0].DirY)
	}
}

func TestSameSeedSameRun(t *testing.T) {
	run := func() ([]EntitySnapshot, PlayerSnapshot) {
		g, err := New(Options{Seed: 7})
		if err != nil {
			t.Fatal(err)
		}
		defer g.Close()
		for i := range 600 {
			in := Input{Move: r2.Vec{X: 0.5}, Turn: 0.3}
			if i%30 == 0 {
				in.Attack = new(components.WeaponKind)
				*in.Attack = components.WeaponShotgun
			}
			g.Step(tickDT, in)
		}
		return g.Snapshot(), g.PlayerSnapshot()
	}

	a, pa := run()
	b, pb := run()
	if !reflect.DeepEqual(a, b) || pa != pb {
		t.Error("two runs with the same seed diverged")
	}
}

func TestOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var windows []telemetry.WindowStats
	lvl := mustLevel(t, `
grid:
  - "#####"
  - "#...#"
  - "#####"
player: {x: 2.5, y: 1.5}
`)
	g, err := New(Options{
		Seed:          3,
		Level:         lvl,
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range 700 {
		in := Input{Turn: 0.5}
		if i%20 == 0 {
			in.Attack = new(components.WeaponKind)
			*in.Attack = components.WeaponPistol
		}
		g.Step(tickDT, in)
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}

	if len(windows) != 1 {
		t.Fatalf("got %d stats windows, want 1", len(windows))
	}
	if windows[0].Attacks != 30 {
		t.Errorf("window attacks = %d, want 30", windows[0].Attacks)
	}

	for _, name := range []string{"config.yaml", "events.csv", "telemetry.csv", "perf.csv"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	f, err := os.Open(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := telemetry.ReadEvents(f)
	if err != nil {
		t.Fatal(err)
	}
	attacks := 0
	for _, r := range records {
		if r.Type == "attack" {
			attacks++
		}
	}
	if attacks != 35 {
		t.Errorf("events.csv has %d attack rows, want 35", attacks)
	}
}

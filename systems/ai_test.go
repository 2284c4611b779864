package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
)

const tickDT = 1.0 / 60

// sealedRooms has two chambers with no line of sight between them.
var sealedRooms = []string{
	"###########",
	"#....#....#",
	"#....#....#",
	"#....#....#",
	"#....#....#",
	"###########",
}

// pillarRow blocks the straight line along row 5 at x=5.
var pillarRow = []string{
	"############",
	"#..........#",
	"#..........#",
	"#..........#",
	"#..........#",
	"#....#.....#",
	"#..........#",
	"#..........#",
	"############",
}

func TestIdleNoticesVisiblePlayer(t *testing.T) {
	f := newFixture(t, openRoom...)
	imp := f.addHostile(components.HostileImp, 2.5, 5.5)
	f.placePlayer(7.5, 5.5, r2.Vec{X: -1})

	f.tick(tickDT)

	if got := f.dir.Brain(imp).State; got != components.StateChase {
		t.Errorf("expected chase after one tick, got %v", got)
	}
	if f.dir.Brain(imp).LastSeen != f.player.Pos() {
		t.Error("expected last-seen to record the player position")
	}
}

func TestIdleIgnoresPlayerBeyondAwareness(t *testing.T) {
	f := newFixture(t, openRoom...)
	f.cfg.Derived.Hostiles[components.HostileImp].Awareness = 2
	imp := f.addHostile(components.HostileImp, 2.5, 5.5)
	f.placePlayer(9.5, 5.5, r2.Vec{X: -1})

	for i := 0; i < 60; i++ {
		f.tick(tickDT)
	}
	if got := f.dir.Brain(imp).State; got != components.StateIdle {
		t.Errorf("expected idle, got %v", got)
	}
}

func TestHiddenHostileNeverAttacks(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sim.WanderChance = 0.2 // wander a lot
	f := newFixtureWithConfig(t, cfg, sealedRooms...)
	imp := f.addHostile(components.HostileImp, 2.5, 2.5)
	demon := f.addHostile(components.HostileDemon, 3.5, 3.5)
	f.placePlayer(7.5, 2.5, r2.Vec{X: -1})

	for i := 0; i < 1200; i++ {
		f.tick(tickDT)
		for _, e := range []ecs.Entity{imp, demon} {
			if s := f.dir.Brain(e).State; s == components.StateAttack || s == components.StateChase {
				t.Fatalf("tick %d: hidden hostile reached %v", i, s)
			}
			p := f.dir.Pos(e)
			if f.grid.IsSolid(p.X, p.Y) {
				t.Fatalf("tick %d: hostile inside a wall at %v", i, p)
			}
		}
	}
	if f.player.Health != f.cfg.Player.Health {
		t.Errorf("player took damage from a hidden hostile: %d", f.player.Health)
	}
}

func TestChaseForgetsAfterTimeout(t *testing.T) {
	f := newFixture(t, sealedRooms...)
	imp := f.addHostile(components.HostileImp, 2.5, 2.5)
	f.placePlayer(7.5, 2.5, r2.Vec{X: -1})

	brain := f.dir.Brain(imp)
	brain.State = components.StateChase
	brain.LastSeen = r2.Vec{X: 3.5, Y: 2.5}

	forgetTicks := int(f.cfg.Sim.ForgetTimeout / tickDT)
	for i := 0; i < forgetTicks-5; i++ {
		f.tick(tickDT)
	}
	if got := f.dir.Brain(imp).State; got != components.StateChase {
		t.Fatalf("expected chase before the timeout, got %v", got)
	}
	// Chase heads for the last-seen position.
	if p := f.dir.Pos(imp); distance(p, r2.Vec{X: 3.5, Y: 2.5}) > 0.1 {
		t.Errorf("expected imp near last-seen position, got %v", p)
	}

	for i := 0; i < 10; i++ {
		f.tick(tickDT)
	}
	if got := f.dir.Brain(imp).State; got != components.StateIdle {
		t.Errorf("expected idle after the timeout, got %v", got)
	}
}

func TestAttackFallsBackToChase(t *testing.T) {
	f := newFixture(t, openRoom...)
	imp := f.addHostile(components.HostileImp, 2.5, 5.5)
	f.placePlayer(6.5, 5.5, r2.Vec{X: -1})
	f.dir.Brain(imp).State = components.StateAttack

	f.tick(tickDT)

	if got := f.dir.Brain(imp).State; got != components.StateChase {
		t.Errorf("expected chase when the player is beyond 1.5x range, got %v", got)
	}
	if f.player.Health != f.cfg.Player.Health {
		t.Error("no attack should land while out of range")
	}
}

func TestPainStunsThenChases(t *testing.T) {
	f := newFixture(t, openRoom...)
	imp := f.addHostile(components.HostileImp, 2.5, 5.5)
	f.placePlayer(8.5, 5.5, r2.Vec{X: -1})

	res := f.combat.ApplyDamage(imp, 1, PlayerSource(f.player))
	if res.Killed || f.dir.Brain(imp).State != components.StatePain {
		t.Fatalf("expected pain after non-lethal hit, got %+v state=%v", res, f.dir.Brain(imp).State)
	}
	start := f.dir.Pos(imp)

	painTicks := int(f.cfg.Sim.PainDuration / tickDT)
	for i := 0; i < painTicks-2; i++ {
		f.tick(tickDT)
	}
	if got := f.dir.Brain(imp).State; got != components.StatePain {
		t.Fatalf("expected pain to last %fs, got %v", f.cfg.Sim.PainDuration, got)
	}
	if f.dir.Pos(imp) != start {
		t.Error("a stunned hostile must not move")
	}

	for i := 0; i < 4; i++ {
		f.tick(tickDT)
	}
	if got := f.dir.Brain(imp).State; got != components.StateChase {
		t.Errorf("expected chase after the stun, got %v", got)
	}
}

func TestTimersClampAtZero(t *testing.T) {
	f := newFixture(t, openRoom...)
	imp := f.addHostile(components.HostileImp, 2.5, 5.5)
	f.placePlayer(8.5, 5.5, r2.Vec{X: -1})
	brain := f.dir.Brain(imp)
	brain.State = components.StatePain
	brain.StateTimer = 0.05
	brain.Cooldown = 0.02

	f.ai.Update(f.st, f.player, 0.1)

	if brain.StateTimer != 0 || brain.Cooldown != 0 {
		t.Errorf("timers went negative: state=%f cooldown=%f", brain.StateTimer, brain.Cooldown)
	}
	if f.st.SummonTimer != 0 {
		t.Errorf("summon timer went negative: %f", f.st.SummonTimer)
	}
}

func TestRangedAttackNeedsLineOfSight(t *testing.T) {
	f := newFixture(t, pillarRow...)
	trooper := f.addHostile(components.HostileTrooper, 2.5, 5.5)
	f.placePlayer(8.5, 5.5, r2.Vec{X: -1})
	f.dir.Brain(trooper).State = components.StateAttack

	intents := f.ai.Update(f.st, f.player, tickDT)
	if len(intents) != 0 {
		t.Fatalf("expected no intent without line of sight, got %+v", intents)
	}
	if got := f.dir.Brain(trooper).Cooldown; got != 0 {
		t.Errorf("failed ranged attack should not reset the cooldown, got %f", got)
	}

	// Step out from behind the pillar: the very next tick fires.
	f.placePlayer(8.5, 3.5, r2.Vec{X: -1})
	intents = f.ai.Update(f.st, f.player, tickDT)
	if len(intents) != 1 || intents[0].Shape != components.ShapeHitscan {
		t.Fatalf("expected one hit-scan intent, got %+v", intents)
	}
	stats := f.cfg.Derived.Hostiles[components.HostileTrooper]
	if intents[0].Damage != stats.RangedDamage {
		t.Errorf("expected ranged damage %d, got %d", stats.RangedDamage, intents[0].Damage)
	}
	if got := f.dir.Brain(trooper).Cooldown; got != stats.Cooldown {
		t.Errorf("expected cooldown reset to %f, got %f", stats.Cooldown, got)
	}
}

func TestRangedKindUsesMeleeUpClose(t *testing.T) {
	f := newFixture(t, openRoom...)
	trooper := f.addHostile(components.HostileTrooper, 4.5, 5.5)
	f.placePlayer(6.0, 5.5, r2.Vec{X: -1})
	f.dir.Brain(trooper).State = components.StateAttack

	intents := f.ai.Update(f.st, f.player, tickDT)
	if len(intents) != 1 || intents[0].Shape != components.ShapeMelee {
		t.Fatalf("expected melee within reach, got %+v", intents)
	}
	if intents[0].Damage != f.cfg.Derived.Hostiles[components.HostileTrooper].MeleeDamage {
		t.Errorf("expected melee damage, got %d", intents[0].Damage)
	}
}

func TestMeleeNeedsLineOfSight(t *testing.T) {
	f := newFixture(t, sealedRooms...)
	// Within melee reach and 1.5x attack range, but the x=5 wall is between.
	imp := f.addHostile(components.HostileImp, 4.75, 2.5)
	f.placePlayer(6.3, 2.5, r2.Vec{X: -1})
	brain := f.dir.Brain(imp)
	brain.State = components.StateAttack
	brain.LastSeen = r2.Vec{X: 4.75, Y: 2.5}

	for i := 0; i < 60; i++ {
		if intents := f.ai.Update(f.st, f.player, tickDT); len(intents) != 0 {
			t.Fatalf("tick %d: melee through a wall: %+v", i, intents)
		}
	}
	if brain.State != components.StateAttack {
		t.Errorf("state = %v, want attack", brain.State)
	}
	if brain.Cooldown != 0 {
		t.Errorf("blocked melee reset the cooldown to %f", brain.Cooldown)
	}
	if f.player.Health != f.cfg.Player.Health {
		t.Errorf("player health = %d, want %d", f.player.Health, f.cfg.Player.Health)
	}
}

func TestHiddenAttackerRepositionsThenForgets(t *testing.T) {
	f := newFixture(t, sealedRooms...)
	trooper := f.addHostile(components.HostileTrooper, 3.5, 2.5)
	f.placePlayer(7.5, 2.5, r2.Vec{X: -1})
	lastSeen := r2.Vec{X: 2.5, Y: 3.5}
	brain := f.dir.Brain(trooper)
	brain.State = components.StateChase
	brain.LastSeen = lastSeen

	f.tick(tickDT)
	if brain.State != components.StateAttack {
		t.Fatalf("state = %v, want attack with the player in range", brain.State)
	}

	for i := 0; i < 60; i++ {
		f.tick(tickDT)
	}
	if d := distance(f.dir.Pos(trooper), lastSeen); d > 0.5 {
		t.Errorf("trooper %v stayed %.2f from the last-seen spot", f.dir.Pos(trooper), d)
	}
	if brain.State != components.StateAttack {
		t.Errorf("state = %v before the forget timeout, want attack", brain.State)
	}

	forgetTicks := int(f.cfg.Sim.ForgetTimeout / tickDT)
	for i := 0; i < forgetTicks; i++ {
		f.tick(tickDT)
		if p := f.dir.Pos(trooper); f.grid.IsSolid(p.X, p.Y) {
			t.Fatalf("trooper inside a wall at %v", p)
		}
	}
	if brain.State != components.StateIdle {
		t.Errorf("state = %v after the forget timeout, want idle", brain.State)
	}
	if f.player.Health != f.cfg.Player.Health {
		t.Errorf("player hit from behind a wall: health %d", f.player.Health)
	}
}

func TestThrownAttackSpawnsProjectile(t *testing.T) {
	f := newFixture(t, openRoom...)
	caco := f.addHostile(components.HostileCacodemon, 2.5, 5.5)
	f.placePlayer(8.5, 5.5, r2.Vec{X: -1})
	f.dir.Brain(caco).State = components.StateAttack

	f.tick(tickDT)
	if f.proj.Len() != 1 {
		t.Fatalf("expected one projectile in flight, got %d", f.proj.Len())
	}
	if f.player.Health != f.cfg.Player.Health {
		t.Error("thrown attacks must not land instantly")
	}

	// 6 units at speed 5: well within the 4s lifetime.
	for i := 0; i < 120 && f.proj.Len() > 0; i++ {
		f.tick(tickDT)
	}
	want := f.cfg.Player.Health - f.cfg.Derived.Hostiles[components.HostileCacodemon].RangedDamage
	if f.player.Health != want {
		t.Errorf("expected player health %d after the projectile lands, got %d", want, f.player.Health)
	}
}

func TestSummonTimerIsShared(t *testing.T) {
	f := newFixture(t, openRoom...)
	a := f.addHostile(components.HostileOverlord, 3.5, 3.5)
	b := f.addHostile(components.HostileOverlord, 3.5, 8.5)
	f.placePlayer(8.5, 5.5, r2.Vec{X: -1})
	for _, e := range []ecs.Entity{a, b} {
		f.dir.Brain(e).State = components.StateAttack
		f.dir.Brain(e).Cooldown = 1000
	}

	f.ai.Update(f.st, f.player, tickDT)
	spawns := f.ai.DrainSpawns()
	stats := f.cfg.Derived.Hostiles[components.HostileOverlord]
	if len(spawns) != stats.SummonCount {
		t.Fatalf("expected %d summons from the first overlord only, got %d", stats.SummonCount, len(spawns))
	}
	for _, s := range spawns {
		if s.SourceID != f.dir.Identity(a).ID || s.Kind != stats.SummonKind {
			t.Errorf("unexpected spawn %+v", s)
		}
		if f.grid.IsSolid(s.Pos.X, s.Pos.Y) {
			t.Errorf("spawn inside a wall: %v", s.Pos)
		}
	}
	if f.st.SummonTimer != stats.SummonInterval {
		t.Errorf("expected shared timer %f, got %f", stats.SummonInterval, f.st.SummonTimer)
	}

	f.ai.Update(f.st, f.player, tickDT)
	if got := len(f.ai.DrainSpawns()); got != 0 {
		t.Errorf("expected no summons while the timer runs, got %d", got)
	}
}

func TestDeadHostileIsInert(t *testing.T) {
	f := newFixture(t, openRoom...)
	imp := f.addHostile(components.HostileImp, 4.5, 5.5)
	f.placePlayer(5.5, 5.5, r2.Vec{X: -1})

	res := f.combat.ApplyDamage(imp, 100, PlayerSource(f.player))
	if !res.Killed {
		t.Fatal("expected kill")
	}
	start := f.dir.Pos(imp)
	for i := 0; i < 120; i++ {
		if intents := f.ai.Update(f.st, f.player, tickDT); len(intents) != 0 {
			t.Fatalf("dead hostile produced intents: %+v", intents)
		}
	}
	if f.dir.Pos(imp) != start || f.dir.Brain(imp).State != components.StateDead {
		t.Error("dead hostile moved or left the dead state")
	}
}

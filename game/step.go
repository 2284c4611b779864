package game

import (
	"github.com/pthm-cable/gridfire/telemetry"
)

// Step advances the simulation by dt seconds. dt is clamped to
// [0, sim.max_dt]. Order: player input and pickups, player attack, hostile
// AI, hostile attacks, projectiles, compaction, telemetry.
func (g *Game) Step(dt float64, in Input) {
	dt = min(max(dt, 0), g.cfg.Sim.MaxDT)

	g.perfCollector.StartTick()
	g.st.Tick++
	g.st.Time += dt

	g.perfCollector.StartPhase(telemetry.PhasePlayer)
	g.applyInput(in, dt)
	g.collectPickups()
	if in.Attack != nil {
		if _, err := g.PlayerAttack(*in.Attack); err != nil {
			g.logger.Warn("attack ignored", "tick", g.st.Tick, "weapon", in.Attack.String(), "error", err)
		}
	}

	g.perfCollector.StartPhase(telemetry.PhaseAI)
	intents := g.ai.Update(g.st, g.player, dt)

	g.perfCollector.StartPhase(telemetry.PhaseCombat)
	for _, intent := range intents {
		g.combat.ResolveIntent(g.player, intent, g.projectiles)
	}

	g.perfCollector.StartPhase(telemetry.PhaseProjectiles)
	g.projectiles.Tick(dt, g.player)

	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.compact()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.writeEvents()
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// Advance runs StepsPerUpdate fixed steps of sim.dt with the same input.
// An attack in the input fires on the first step only.
func (g *Game) Advance(in Input) {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step(g.cfg.Sim.DT, in)
		in.Attack = nil
	}
}

// PerfStats reports per-phase tick timing over the last perf window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame feeds frame timing into the perf stats in windowed mode.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

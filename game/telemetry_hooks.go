package game

import (
	"github.com/pthm-cable/gridfire/telemetry"
)

// writeEvents appends this tick's events to events.csv.
func (g *Game) writeEvents() {
	if g.outputManager == nil || len(g.tickEvents) == 0 {
		return
	}
	if err := g.outputManager.WriteEvents(g.tickEvents); err != nil {
		g.logger.Error("failed to write events", "error", err)
	}
	g.tickEvents = g.tickEvents[:0]
}

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.st.Tick) {
		return
	}

	stats := g.collector.Flush(g.st.Tick, g.population(), g.hostileHealth())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats(g.logger)
		perfStats.LogStats(g.logger)
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			g.logger.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			g.logger.Error("failed to write perf", "error", err)
		}
	}
}

// population samples the end-of-window counts.
func (g *Game) population() telemetry.Population {
	return telemetry.Population{
		HostilesAlive: g.HostilesAlive(),
		Corpses:       len(g.corpses),
		Projectiles:   g.projectiles.Len(),
		PlayerHealth:  g.player.Health,
		PlayerArmor:   g.player.Armor,
	}
}

// hostileHealth collects the health fraction of every living hostile.
func (g *Game) hostileHealth() []float64 {
	var out []float64
	for e := range g.dir.Hostiles() {
		hp := g.dir.Health(e)
		if hp.Current <= 0 || hp.Max <= 0 {
			continue
		}
		out = append(out, float64(hp.Current)/float64(hp.Max))
	}
	return out
}

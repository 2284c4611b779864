package game

import (
	"log/slog"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/telemetry"
)

// logEvent writes the events worth a log line. Hits and attacks are too
// frequent and only go to events.csv.
func (g *Game) logEvent(ev telemetry.Event) {
	switch ev.Type {
	case telemetry.EventKill:
		g.logger.Debug("hostile killed", "tick", ev.Tick, "id", ev.TargetID, "kind", ev.Kind, "overkill", ev.Overkill)
	case telemetry.EventSummon:
		g.logger.Debug("hostile summoned", "tick", ev.Tick, "id", ev.TargetID, "kind", ev.Kind, "summoner", ev.SourceID)
	case telemetry.EventPlayerDeath:
		g.logger.Info("player died", "tick", ev.Tick, "killer", ev.SourceID, "kind", ev.Kind)
	}
}

// LogState logs a summary of the world: hostiles per AI state and kind,
// corpses, projectiles and the player's vitals.
func (g *Game) LogState() {
	var byState [components.StateDead + 1]int
	var byKind [components.NumHostileKinds]int
	for e := range g.dir.Hostiles() {
		byState[g.dir.Brain(e).State]++
		if g.dir.Targetable(e) {
			byKind[g.dir.Identity(e).Hostile]++
		}
	}

	attrs := []any{
		"tick", g.st.Tick,
		"time", g.st.Time,
		"player_health", g.player.Health,
		"player_armor", g.player.Armor,
		"corpses", len(g.corpses),
		"projectiles", g.projectiles.Len(),
		"kills", g.combat.Kills,
	}
	states := make([]any, 0, len(byState))
	for s, n := range byState {
		states = append(states, slog.Int(components.AIState(s).String(), n))
	}
	kinds := make([]any, 0, len(byKind))
	for k, n := range byKind {
		kinds = append(kinds, slog.Int(components.HostileKind(k).String(), n))
	}
	attrs = append(attrs, slog.Group("states", states...), slog.Group("hostiles", kinds...))

	g.logger.Info("world", attrs...)
}

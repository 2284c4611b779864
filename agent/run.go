package agent

import (
	"github.com/pthm-cable/gridfire/game"
)

// Result summarises one autopiloted encounter.
type Result struct {
	Ticks        int64
	Time         float64
	Kills        int
	HostilesLeft int
	PlayerHealth int
	PlayerDead   bool
	Cleared      bool // every hostile died
}

// Play steps g with the bot at the configured fixed dt until the
// encounter is over or maxTicks pass. maxTicks <= 0 means no limit.
func Play(g *game.Game, b *Bot, maxTicks int64) Result {
	dt := g.Config().Sim.DT
	for !g.Done() && (maxTicks <= 0 || g.Tick() < maxTicks) {
		g.Step(dt, b.Decide(g, dt))
	}
	return Summarize(g)
}

// Summarize reads the outcome of g so far.
func Summarize(g *game.Game) Result {
	p := g.PlayerSnapshot()
	left := g.HostilesAlive()
	return Result{
		Ticks:        g.Tick(),
		Time:         g.Time(),
		Kills:        g.Kills(),
		HostilesLeft: left,
		PlayerHealth: p.Health,
		PlayerDead:   p.Dead,
		Cleared:      left == 0,
	}
}

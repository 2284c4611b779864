package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	windowStartTick int64

	attacks      int
	attackHits   int
	hits         int
	kills        int
	overkills    int
	damageDealt  int
	damageTaken  int
	pickups      int
	summons      int
	playerDeaths int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record folds one event into the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventAttack:
		c.attacks++
		if ev.Amount > 0 {
			c.attackHits++
		}
	case EventHit:
		c.hits++
		c.damageDealt += ev.Amount
	case EventKill:
		c.kills++
		if ev.Overkill {
			c.overkills++
		}
	case EventPlayerDamage:
		c.damageTaken += ev.Amount
	case EventPlayerDeath:
		c.playerDeaths++
	case EventPickup:
		c.pickups++
	case EventSummon:
		c.summons++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Population is the state sampled at the end of a window.
type Population struct {
	HostilesAlive int
	Corpses       int
	Projectiles   int
	PlayerHealth  int
	PlayerArmor   int
}

// Flush produces a WindowStats and resets counters for the next window.
// hostileHealth holds the health fraction of every living hostile.
func (c *Collector) Flush(currentTick int64, pop Population, hostileHealth []float64) WindowStats {
	var accuracy, killRate float64
	if c.attacks > 0 {
		accuracy = float64(c.attackHits) / float64(c.attacks)
	}
	if c.hits > 0 {
		killRate = float64(c.kills) / float64(c.hits)
	}

	mean, p10, p50, p90 := ComputeHealthStats(hostileHealth)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		HostilesAlive: pop.HostilesAlive,
		Corpses:       pop.Corpses,
		Projectiles:   pop.Projectiles,
		PlayerHealth:  pop.PlayerHealth,
		PlayerArmor:   pop.PlayerArmor,

		Attacks:      c.attacks,
		Hits:         c.hits,
		Kills:        c.kills,
		Overkills:    c.overkills,
		DamageDealt:  c.damageDealt,
		DamageTaken:  c.damageTaken,
		Pickups:      c.pickups,
		Summons:      c.summons,
		PlayerDeaths: c.playerDeaths,
		Accuracy:     accuracy,
		KillRate:     killRate,

		HostileHealthMean: mean,
		HostileHealthP10:  p10,
		HostileHealthP50:  p50,
		HostileHealthP90:  p90,
	}

	c.windowStartTick = currentTick
	c.attacks = 0
	c.attackHits = 0
	c.hits = 0
	c.kills = 0
	c.overkills = 0
	c.damageDealt = 0
	c.damageTaken = 0
	c.pickups = 0
	c.summons = 0
	c.playerDeaths = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}

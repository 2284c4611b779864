package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Sampled at window end
	HostilesAlive int `csv:"hostiles"`
	Corpses       int `csv:"corpses"`
	Projectiles   int `csv:"projectiles"`
	PlayerHealth  int `csv:"player_health"`
	PlayerArmor   int `csv:"player_armor"`

	// Events during window
	Attacks      int     `csv:"attacks"`
	Hits         int     `csv:"hits"`
	Kills        int     `csv:"kills"`
	Overkills    int     `csv:"overkills"`
	DamageDealt  int     `csv:"damage_dealt"`
	DamageTaken  int     `csv:"damage_taken"`
	Pickups      int     `csv:"pickups"`
	Summons      int     `csv:"summons"`
	PlayerDeaths int     `csv:"player_deaths"`
	Accuracy     float64 `csv:"accuracy"`
	KillRate     float64 `csv:"kill_rate"`

	// Health fraction of living hostiles
	HostileHealthMean float64 `csv:"hostile_health_mean"`
	HostileHealthP10  float64 `csv:"hostile_health_p10"`
	HostileHealthP50  float64 `csv:"hostile_health_p50"`
	HostileHealthP90  float64 `csv:"hostile_health_p90"`
}

// ComputeHealthStats returns the mean and the 10th, 50th and 90th
// percentiles of the living hostiles' health fractions. Percentiles use
// linear interpolation of the empirical CDF. Empty input yields zeros.
func ComputeHealthStats(fractions []float64) (mean, p10, p50, p90 float64) {
	if len(fractions) == 0 {
		return 0, 0, 0, 0
	}
	sorted := slices.Clone(fractions)
	slices.Sort(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	p90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("hostiles", s.HostilesAlive),
		slog.Int("corpses", s.Corpses),
		slog.Int("projectiles", s.Projectiles),
		slog.Int("player_health", s.PlayerHealth),
		slog.Int("player_armor", s.PlayerArmor),
		slog.Int("attacks", s.Attacks),
		slog.Int("hits", s.Hits),
		slog.Int("kills", s.Kills),
		slog.Int("overkills", s.Overkills),
		slog.Int("damage_dealt", s.DamageDealt),
		slog.Int("damage_taken", s.DamageTaken),
		slog.Int("pickups", s.Pickups),
		slog.Int("summons", s.Summons),
		slog.Int("player_deaths", s.PlayerDeaths),
		slog.Float64("accuracy", s.Accuracy),
		slog.Float64("kill_rate", s.KillRate),
		slog.Float64("hostile_health_mean", s.HostileHealthMean),
		slog.Float64("hostile_health_p50", s.HostileHealthP50),
	)
}

// LogStats logs the window stats using logger.
func (s WindowStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"hostiles", s.HostilesAlive,
		"player_health", s.PlayerHealth,
		"player_armor", s.PlayerArmor,
		"attacks", s.Attacks,
		"hits", s.Hits,
		"kills", s.Kills,
		"overkills", s.Overkills,
		"damage_dealt", s.DamageDealt,
		"damage_taken", s.DamageTaken,
		"pickups", s.Pickups,
		"summons", s.Summons,
		"accuracy", s.Accuracy,
	)
}

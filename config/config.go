// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/gridfire/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	// ErrUnknownKind is returned when a config key names no known kind.
	ErrUnknownKind = errors.New("unknown kind")
	// ErrInvalidStats is returned when a per-kind stat record is unusable.
	ErrInvalidStats = errors.New("invalid stats")
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig             `yaml:"screen"`
	Sim       SimConfig                `yaml:"sim"`
	Player    PlayerConfig             `yaml:"player"`
	Hostiles  map[string]HostileConfig `yaml:"hostiles"`
	Weapons   map[string]WeaponConfig  `yaml:"weapons"`
	Pickups   map[string]PickupConfig  `yaml:"pickups"`
	Arena     ArenaConfig              `yaml:"arena"`
	Telemetry TelemetryConfig          `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the windowed viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
	Columns   int `yaml:"columns"` // rays cast per frame
}

// SimConfig holds the tick and behavior constants shared by all kinds.
type SimConfig struct {
	DT                  float64 `yaml:"dt"`                    // fixed step for Advance and headless runs
	MaxDT               float64 `yaml:"max_dt"`                // clamp applied to every tick
	ForgetTimeout       float64 `yaml:"forget_timeout"`        // seconds without LOS before chase gives up
	PainDuration        float64 `yaml:"pain_duration"`         // stun after non-lethal damage
	WanderChance        float64 `yaml:"wander_chance"`         // per-tick chance an idle hostile picks a new heading
	WanderSpeed         float64 `yaml:"wander_speed"`          // fraction of kind speed while wandering
	CollisionMargin     float64 `yaml:"collision_margin"`      // wall clearance in the direction of travel
	SeparationRadius    float64 `yaml:"separation_radius"`     // hostiles closer than this are nudged apart
	SeparationStrength  float64 `yaml:"separation_strength"`   // fraction of the overlap removed per tick
	LOSSamplesPerUnit   int     `yaml:"los_samples_per_unit"`  // line-of-sight sampling resolution
	ProjectileHitRadius float64 `yaml:"projectile_hit_radius"` // contact distance for projectiles
	ProjectileStep      float64 `yaml:"projectile_step"`       // max sub-step length for projectile travel
	SummonOffset        float64 `yaml:"summon_offset"`         // spawn distance around a summoner
	CorpseLimit         int     `yaml:"corpse_limit"`          // corpse markers kept, oldest dropped first
}

// PlayerConfig holds player aggregate parameters.
type PlayerConfig struct {
	Health       int     `yaml:"health"`
	MaxHealth    int     `yaml:"max_health"`
	MaxArmor     int     `yaml:"max_armor"`
	ArmorAbsorb  float64 `yaml:"armor_absorb"` // fraction of incoming damage taken by armor
	FOV          float64 `yaml:"fov"`
	Radius       float64 `yaml:"radius"`
	PickupRadius float64 `yaml:"pickup_radius"`
	MoveSpeed    float64 `yaml:"move_speed"` // used by input layers, not the kernel
	TurnSpeed    float64 `yaml:"turn_speed"`
}

// HostileConfig defines one hostile kind.
// A hostile entry in a user file replaces the default entry for that kind.
type HostileConfig struct {
	Health      int     `yaml:"health"`
	Speed       float64 `yaml:"speed"`
	MeleeDamage int     `yaml:"melee_damage"`
	AttackRange float64 `yaml:"attack_range"`
	Awareness   float64 `yaml:"awareness"`
	Cooldown    float64 `yaml:"cooldown"`
	Floats      bool    `yaml:"floats"`

	// Ranged is "", "hitscan" or "projectile".
	Ranged             string  `yaml:"ranged"`
	RangedDamage       int     `yaml:"ranged_damage"`
	ProjectileSpeed    float64 `yaml:"projectile_speed"`
	ProjectileSplash   float64 `yaml:"projectile_splash"`
	ProjectileLifetime float64 `yaml:"projectile_lifetime"`

	SummonKind     string  `yaml:"summon_kind"`
	SummonCount    int     `yaml:"summon_count"`
	SummonInterval float64 `yaml:"summon_interval"`
}

// WeaponConfig defines one player weapon.
type WeaponConfig struct {
	Shape           string  `yaml:"shape"` // melee, hitscan, spread, splash
	Damage          int     `yaml:"damage"`
	Range           float64 `yaml:"range"`
	HalfAngle       float64 `yaml:"half_angle"`
	Pellets         int     `yaml:"pellets"`
	Spread          float64 `yaml:"spread"`
	SplashRadius    float64 `yaml:"splash_radius"`
	ProjectileSpeed float64 `yaml:"projectile_speed"` // 0 detonates at the aim point instantly
	Lifetime        float64 `yaml:"lifetime"`
}

// PickupConfig defines one pickup kind.
type PickupConfig struct {
	Amount int `yaml:"amount"`
}

// ArenaConfig drives level.Generate.
type ArenaConfig struct {
	Width           int            `yaml:"width"`
	Height          int            `yaml:"height"`
	NoiseScale      float64        `yaml:"noise_scale"`
	PillarThreshold float64        `yaml:"pillar_threshold"`
	ClearRadius     float64        `yaml:"clear_radius"` // kept open around the player start
	Hostiles        map[string]int `yaml:"hostiles"`
	Pickups         map[string]int `yaml:"pickups"`
}

// TelemetryConfig holds telemetry and output parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // ticks per perf sample
}

// HostileStats is the resolved, validated form of HostileConfig.
type HostileStats struct {
	Health      int
	Speed       float64
	MeleeDamage int
	AttackRange float64
	Awareness   float64
	Cooldown    float64
	Floats      bool

	HasRanged          bool
	RangedShape        components.AttackShape // ShapeHitscan or ShapeProjectile
	RangedDamage       int
	ProjectileSpeed    float64
	ProjectileSplash   float64
	ProjectileLifetime float64

	Summons        bool
	SummonKind     components.HostileKind
	SummonCount    int
	SummonInterval float64
}

// WeaponStats is the resolved form of WeaponConfig.
type WeaponStats struct {
	Shape           components.AttackShape
	Damage          int
	Range           float64
	HalfAngle       float64
	Pellets         int
	Spread          float64
	SplashRadius    float64
	ProjectileSpeed float64
	Lifetime        float64
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Hostiles   [components.NumHostileKinds]HostileStats
	HasHostile [components.NumHostileKinds]bool
	Weapons    [components.NumWeaponKinds]WeaponStats
	HasWeapon  [components.NumWeaponKinds]bool
	Pickups    [components.NumPickupKinds]int
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse is Load for an in-memory YAML overlay.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Recompute re-resolves the derived tables after fields were edited in place.
func (c *Config) Recompute() error {
	return c.computeDerived()
}

// computeDerived resolves the string-keyed kind tables into arrays.
func (c *Config) computeDerived() error {
	if c.Sim.MaxDT <= 0 {
		c.Sim.MaxDT = 0.1
	}
	if c.Sim.LOSSamplesPerUnit < 4 {
		c.Sim.LOSSamplesPerUnit = 4
	}
	if c.Sim.ProjectileStep <= 0 {
		c.Sim.ProjectileStep = 0.1
	}

	c.Derived = DerivedConfig{}

	for _, name := range sortedKeys(c.Hostiles) {
		kind, ok := components.ParseHostileKind(name)
		if !ok {
			return fmt.Errorf("hostile %q: %w", name, ErrUnknownKind)
		}
		stats, err := resolveHostile(c.Hostiles[name])
		if err != nil {
			return fmt.Errorf("hostile %q: %w", name, err)
		}
		c.Derived.Hostiles[kind] = stats
		c.Derived.HasHostile[kind] = true
	}
	// Summoned kinds must have stats of their own.
	for kind, stats := range c.Derived.Hostiles {
		if stats.Summons && !c.Derived.HasHostile[stats.SummonKind] {
			return fmt.Errorf("hostile %q summons %q without stats: %w",
				components.HostileKind(kind), stats.SummonKind, ErrInvalidStats)
		}
	}

	for _, name := range sortedKeys(c.Weapons) {
		kind, ok := components.ParseWeaponKind(name)
		if !ok {
			return fmt.Errorf("weapon %q: %w", name, ErrUnknownKind)
		}
		stats, err := resolveWeapon(c.Weapons[name])
		if err != nil {
			return fmt.Errorf("weapon %q: %w", name, err)
		}
		c.Derived.Weapons[kind] = stats
		c.Derived.HasWeapon[kind] = true
	}

	for _, name := range sortedKeys(c.Pickups) {
		kind, ok := components.ParsePickupKind(name)
		if !ok {
			return fmt.Errorf("pickup %q: %w", name, ErrUnknownKind)
		}
		c.Derived.Pickups[kind] = c.Pickups[name].Amount
	}
	return nil
}

func resolveHostile(h HostileConfig) (HostileStats, error) {
	if h.Health <= 0 {
		return HostileStats{}, fmt.Errorf("health %d: %w", h.Health, ErrInvalidStats)
	}
	if h.Speed < 0 || h.AttackRange <= 0 || h.Cooldown < 0 || h.Awareness < 0 {
		return HostileStats{}, fmt.Errorf("speed, range, cooldown and awareness must be non-negative: %w", ErrInvalidStats)
	}
	s := HostileStats{
		Health:      h.Health,
		Speed:       h.Speed,
		MeleeDamage: h.MeleeDamage,
		AttackRange: h.AttackRange,
		Awareness:   h.Awareness,
		Cooldown:    h.Cooldown,
		Floats:      h.Floats,
	}
	switch h.Ranged {
	case "":
	case "hitscan", "projectile":
		s.HasRanged = true
		s.RangedShape, _ = components.ParseAttackShape(h.Ranged)
		s.RangedDamage = h.RangedDamage
		s.ProjectileSpeed = h.ProjectileSpeed
		s.ProjectileSplash = h.ProjectileSplash
		s.ProjectileLifetime = h.ProjectileLifetime
		if s.RangedShape == components.ShapeProjectile && (s.ProjectileSpeed <= 0 || s.ProjectileLifetime <= 0) {
			return HostileStats{}, fmt.Errorf("projectile needs speed and lifetime: %w", ErrInvalidStats)
		}
	default:
		return HostileStats{}, fmt.Errorf("ranged shape %q: %w", h.Ranged, ErrUnknownKind)
	}
	if h.SummonKind != "" {
		kind, ok := components.ParseHostileKind(h.SummonKind)
		if !ok {
			return HostileStats{}, fmt.Errorf("summon kind %q: %w", h.SummonKind, ErrUnknownKind)
		}
		if h.SummonCount <= 0 || h.SummonInterval <= 0 {
			return HostileStats{}, fmt.Errorf("summon needs count and interval: %w", ErrInvalidStats)
		}
		s.Summons = true
		s.SummonKind = kind
		s.SummonCount = h.SummonCount
		s.SummonInterval = h.SummonInterval
	}
	return s, nil
}

func resolveWeapon(w WeaponConfig) (WeaponStats, error) {
	shape, ok := components.ParseAttackShape(w.Shape)
	if !ok || shape == components.ShapeProjectile {
		return WeaponStats{}, fmt.Errorf("shape %q: %w", w.Shape, ErrUnknownKind)
	}
	if w.Damage < 0 || w.HalfAngle < 0 {
		return WeaponStats{}, fmt.Errorf("damage and half angle must be non-negative: %w", ErrInvalidStats)
	}
	if shape == components.ShapeSplash && w.SplashRadius <= 0 {
		return WeaponStats{}, fmt.Errorf("splash weapon without radius: %w", ErrInvalidStats)
	}
	pellets := w.Pellets
	if pellets <= 0 {
		pellets = 1
	}
	return WeaponStats{
		Shape:           shape,
		Damage:          w.Damage,
		Range:           w.Range,
		HalfAngle:       w.HalfAngle,
		Pellets:         pellets,
		Spread:          w.Spread,
		SplashRadius:    w.SplashRadius,
		ProjectileSpeed: w.ProjectileSpeed,
		Lifetime:        w.Lifetime,
	}, nil
}

// sortedKeys keeps error reporting deterministic across map iteration.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

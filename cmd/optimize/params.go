// Package main provides CMA-ES tuning of hostile stats for gridfire encounters.
package main

import (
	"maps"

	"github.com/pthm-cable/gridfire/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	set func(cfg *config.Config, v float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Imp
			{Name: "imp_speed", Path: "hostiles.imp.speed", Min: 0.6, Max: 2.0, Default: 1.2,
				set: hostileFloat("imp", func(h *config.HostileConfig) *float64 { return &h.Speed })},
			{Name: "imp_melee", Path: "hostiles.imp.melee_damage", Min: 2, Max: 12, Default: 5,
				set: hostileInt("imp", func(h *config.HostileConfig) *int { return &h.MeleeDamage })},
			// Trooper
			{Name: "trooper_ranged", Path: "hostiles.trooper.ranged_damage", Min: 2, Max: 12, Default: 6,
				set: hostileInt("trooper", func(h *config.HostileConfig) *int { return &h.RangedDamage })},
			{Name: "trooper_cooldown", Path: "hostiles.trooper.cooldown", Min: 0.8, Max: 3.0, Default: 1.5,
				set: hostileFloat("trooper", func(h *config.HostileConfig) *float64 { return &h.Cooldown })},
			// Demon
			{Name: "demon_speed", Path: "hostiles.demon.speed", Min: 1.0, Max: 3.0, Default: 2.0,
				set: hostileFloat("demon", func(h *config.HostileConfig) *float64 { return &h.Speed })},
			{Name: "demon_health", Path: "hostiles.demon.health", Min: 30, Max: 120, Default: 60,
				set: hostileInt("demon", func(h *config.HostileConfig) *int { return &h.Health })},
			// Cacodemon
			{Name: "caco_proj_speed", Path: "hostiles.cacodemon.projectile_speed", Min: 2, Max: 10, Default: 5,
				set: hostileFloat("cacodemon", func(h *config.HostileConfig) *float64 { return &h.ProjectileSpeed })},
			// Overlord
			{Name: "overlord_health", Path: "hostiles.overlord.health", Min: 150, Max: 600, Default: 300,
				set: hostileInt("overlord", func(h *config.HostileConfig) *int { return &h.Health })},
			{Name: "overlord_cooldown", Path: "hostiles.overlord.cooldown", Min: 1.5, Max: 4.0, Default: 2.5,
				set: hostileFloat("overlord", func(h *config.HostileConfig) *float64 { return &h.Cooldown })},
			// Shared
			{Name: "pain_duration", Path: "sim.pain_duration", Min: 0.1, Max: 0.8, Default: 0.3,
				set: func(cfg *config.Config, v float64) { cfg.Sim.PainDuration = v }},
		},
	}
}

// hostileFloat sets a float field on one hostile entry, if the config has it.
func hostileFloat(kind string, field func(*config.HostileConfig) *float64) func(*config.Config, float64) {
	return func(cfg *config.Config, v float64) {
		h, ok := cfg.Hostiles[kind]
		if !ok {
			return
		}
		*field(&h) = v
		cfg.Hostiles[kind] = h
	}
}

func hostileInt(kind string, field func(*config.HostileConfig) *int) func(*config.Config, float64) {
	return func(cfg *config.Config, v float64) {
		h, ok := cfg.Hostiles[kind]
		if !ok {
			return
		}
		*field(&h) = int(v + 0.5)
		cfg.Hostiles[kind] = h
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and re-resolves
// its derived tables.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		spec.set(cfg, clamped[i])
	}
	return cfg.Recompute()
}

// cloneConfig copies cfg deeply enough that ApplyToConfig on the copy
// leaves the original untouched.
func cloneConfig(cfg *config.Config) *config.Config {
	c := *cfg
	c.Hostiles = maps.Clone(cfg.Hostiles)
	c.Weapons = maps.Clone(cfg.Weapons)
	c.Pickups = maps.Clone(cfg.Pickups)
	c.Arena.Hostiles = maps.Clone(cfg.Arena.Hostiles)
	c.Arena.Pickups = maps.Clone(cfg.Arena.Pickups)
	return &c
}

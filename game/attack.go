package game

import (
	"fmt"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/systems"
	"github.com/pthm-cable/gridfire/telemetry"
)

// PlayerAttack fires weapon along the player's view now. Ammo and weapon
// cooldowns are the caller's concern.
func (g *Game) PlayerAttack(weapon components.WeaponKind) (systems.AttackReport, error) {
	if weapon >= components.NumWeaponKinds || !g.cfg.Derived.HasWeapon[weapon] {
		return systems.AttackReport{}, fmt.Errorf("weapon %s: %w", weapon, ErrNoStats)
	}
	w := g.cfg.Derived.Weapons[weapon]
	return g.attack(weapon.String(), w.Shape, systems.AttackParamsFor(w)), nil
}

// PlayerAttackShape fires an attack of the given shape with explicit
// parameters, for weapons defined outside the config.
func (g *Game) PlayerAttackShape(shape components.AttackShape, params systems.AttackParams) systems.AttackReport {
	return g.attack(shape.String(), shape, params)
}

func (g *Game) attack(name string, shape components.AttackShape, params systems.AttackParams) systems.AttackReport {
	if g.player.Dead {
		return systems.AttackReport{}
	}
	report := g.combat.PlayerAttack(g.player, shape, params, g.projectiles)
	g.record(telemetry.NewAttackEvent(name, report.Hits, g.player.Pos()))
	return report
}

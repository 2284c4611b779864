package components

import "strings"

// HostileKind identifies a hostile variant. Per-kind stats are resolved once
// from config into arrays indexed by this value.
type HostileKind uint8

const (
	HostileImp HostileKind = iota
	HostileTrooper
	HostileDemon
	HostileCacodemon
	HostileOverlord
	NumHostileKinds
)

// HostileKindNames returns the config names for all hostile kinds.
// The order matches the HostileKind constants.
func HostileKindNames() []string {
	return []string{"imp", "trooper", "demon", "cacodemon", "overlord"}
}

// String returns the config name for a HostileKind.
func (k HostileKind) String() string {
	names := HostileKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// ParseHostileKind maps a config name to its HostileKind.
func ParseHostileKind(s string) (HostileKind, bool) {
	i := indexOf(HostileKindNames(), s)
	return HostileKind(i), i >= 0
}

// PickupKind identifies a pickup variant.
type PickupKind uint8

const (
	PickupMedkit PickupKind = iota
	PickupArmor
	PickupAmmo
	NumPickupKinds
)

// PickupKindNames returns the config names for all pickup kinds.
func PickupKindNames() []string {
	return []string{"medkit", "armor", "ammo"}
}

func (k PickupKind) String() string {
	names := PickupKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// ParsePickupKind maps a config name to its PickupKind.
func ParsePickupKind(s string) (PickupKind, bool) {
	i := indexOf(PickupKindNames(), s)
	return PickupKind(i), i >= 0
}

// WeaponKind identifies a player weapon. Ammo and cooldowns are owned by the
// caller; the simulation only sees the attack shape and its parameters.
type WeaponKind uint8

const (
	WeaponFist WeaponKind = iota
	WeaponPistol
	WeaponShotgun
	WeaponChaingun
	WeaponRocket
	NumWeaponKinds
)

// WeaponKindNames returns the config names for all weapons.
func WeaponKindNames() []string {
	return []string{"fist", "pistol", "shotgun", "chaingun", "rocket"}
}

func (k WeaponKind) String() string {
	names := WeaponKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// ParseWeaponKind maps a config name to its WeaponKind.
func ParseWeaponKind(s string) (WeaponKind, bool) {
	i := indexOf(WeaponKindNames(), s)
	return WeaponKind(i), i >= 0
}

// AttackShape describes how an attack selects and damages its targets.
type AttackShape uint8

const (
	ShapeMelee AttackShape = iota
	ShapeHitscan
	ShapeSpread
	ShapeSplash
	ShapeProjectile
	NumAttackShapes
)

// AttackShapeNames returns the config names for all attack shapes.
func AttackShapeNames() []string {
	return []string{"melee", "hitscan", "spread", "splash", "projectile"}
}

func (s AttackShape) String() string {
	names := AttackShapeNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ParseAttackShape maps a config name to its AttackShape.
func ParseAttackShape(s string) (AttackShape, bool) {
	i := indexOf(AttackShapeNames(), s)
	return AttackShape(i), i >= 0
}

// AIState is the behavioral state of a hostile.
type AIState uint8

const (
	StateIdle AIState = iota
	StateChase
	StateAttack
	StatePain
	StateDead
)

// AIStateNames returns display names for all AI states.
func AIStateNames() []string {
	return []string{"idle", "chase", "attack", "pain", "dead"}
}

func (s AIState) String() string {
	names := AIStateNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Class separates hostiles from pickups inside the entity directory.
type Class uint8

const (
	ClassHostile Class = iota
	ClassPickup
)

func (c Class) String() string {
	if c == ClassPickup {
		return "pickup"
	}
	return "hostile"
}

func indexOf(names []string, s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i
		}
	}
	return -1
}

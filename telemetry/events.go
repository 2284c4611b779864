// Package telemetry provides combat event records, windowed stats and CSV output.
package telemetry

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gridfire/components"
)

// PlayerID is the source/target ID used for the player in events.
const PlayerID = 0

// EventType identifies telemetry events.
type EventType uint8

const (
	EventHit EventType = iota
	EventKill
	EventPlayerDamage
	EventPlayerDeath
	EventPickup
	EventSummon
	EventAttack
)

// EventTypeNames returns the names used in CSV output.
func EventTypeNames() []string {
	return []string{"hit", "kill", "player_damage", "player_death", "pickup", "summon", "attack"}
}

func (t EventType) String() string {
	names := EventTypeNames()
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// MarshalCSV writes the event type by name.
func (t EventType) MarshalCSV() (string, error) {
	return t.String(), nil
}

// Event is an ephemeral combat record. It drives external side effects
// (credits, feedback, logs) and is never read back by the simulation.
type Event struct {
	Type     EventType `csv:"type"`
	Tick     int64     `csv:"tick"`
	SourceID uint32    `csv:"source_id"` // PlayerID for the player
	TargetID uint32    `csv:"target_id"`
	Kind     string    `csv:"kind"` // hostile, pickup or weapon name

	Amount   int     `csv:"amount"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	DirX     float64 `csv:"dir_x"` // player damage: unit vector toward the source
	DirY     float64 `csv:"dir_y"`
	Lethal   bool    `csv:"lethal"`
	Overkill bool    `csv:"overkill"`
}

// NewHitEvent records damage dealt to a hostile.
func NewHitEvent(sourceID, targetID uint32, kind components.HostileKind, amount int, lethal bool) Event {
	return Event{
		Type:     EventHit,
		SourceID: sourceID,
		TargetID: targetID,
		Kind:     kind.String(),
		Amount:   amount,
		Lethal:   lethal,
	}
}

// NewKillEvent records a hostile's death at pos.
func NewKillEvent(sourceID, targetID uint32, kind components.HostileKind, pos r2.Vec, overkill bool) Event {
	return Event{
		Type:     EventKill,
		SourceID: sourceID,
		TargetID: targetID,
		Kind:     kind.String(),
		X:        pos.X,
		Y:        pos.Y,
		Lethal:   true,
		Overkill: overkill,
	}
}

// NewPlayerDamageEvent records damage taken by the player. dir points from
// the player toward the source.
func NewPlayerDamageEvent(sourceID uint32, kind components.HostileKind, amount int, dir r2.Vec, lethal bool) Event {
	return Event{
		Type:     EventPlayerDamage,
		SourceID: sourceID,
		TargetID: PlayerID,
		Kind:     kind.String(),
		Amount:   amount,
		DirX:     dir.X,
		DirY:     dir.Y,
		Lethal:   lethal,
	}
}

// NewPlayerDeathEvent records the player's death.
func NewPlayerDeathEvent(sourceID uint32, kind components.HostileKind, pos r2.Vec) Event {
	return Event{
		Type:     EventPlayerDeath,
		SourceID: sourceID,
		TargetID: PlayerID,
		Kind:     kind.String(),
		X:        pos.X,
		Y:        pos.Y,
		Lethal:   true,
	}
}

// NewPickupEvent records a collected pickup.
func NewPickupEvent(pickupID uint32, kind components.PickupKind, amount int, pos r2.Vec) Event {
	return Event{
		Type:     EventPickup,
		SourceID: pickupID,
		TargetID: PlayerID,
		Kind:     kind.String(),
		Amount:   amount,
		X:        pos.X,
		Y:        pos.Y,
	}
}

// NewSummonEvent records a hostile created by a summoner.
func NewSummonEvent(summonerID, childID uint32, kind components.HostileKind, pos r2.Vec) Event {
	return Event{
		Type:     EventSummon,
		SourceID: summonerID,
		TargetID: childID,
		Kind:     kind.String(),
		X:        pos.X,
		Y:        pos.Y,
	}
}

// NewAttackEvent records a player attack of the given weapon or shape name
// and the number of hostiles it hit.
func NewAttackEvent(name string, hits int, pos r2.Vec) Event {
	return Event{
		Type:     EventAttack,
		SourceID: PlayerID,
		Kind:     name,
		Amount:   hits,
		X:        pos.X,
		Y:        pos.Y,
	}
}

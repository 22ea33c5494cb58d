package world

import (
	"math"

	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/protocol"
)

// AIState is the behaviour phase of a live NPC instance.
type AIState uint8

const (
	AIIdle AIState = iota
	AIWandering
	AIChasing
	AIAttacking
	AIReturning
	AIDead
)

func (s AIState) String() string {
	switch s {
	case AIIdle:
		return "idle"
	case AIWandering:
		return "wandering"
	case AIChasing:
		return "chasing"
	case AIAttacking:
		return "attacking"
	case AIReturning:
		return "returning"
	case AIDead:
		return "dead"
	}
	return "unknown"
}

// NpcInfo is one spawned NPC instance. A Dead instance is inert until its
// respawn deadline passes.
type NpcInfo struct {
	ID       int64
	Template *data.NpcTemplate

	ZoneID   int32
	Position protocol.Vec3
	SpawnPos protocol.Vec3
	Rotation float64

	Health    int32
	MaxHealth int32

	State        AIState
	TargetCharID int64 // 0 when no target

	LastAttackMs uint64
	LastMoveMs   uint64
	RespawnAtMs  uint64

	// Damage per attacker, used for kill credit.
	DamageBy map[int64]int32
}

// Alive reports whether the instance participates in AI and combat.
func (n *NpcInfo) Alive() bool {
	return n.State != AIDead
}

// DistanceToSpawn is the planar distance from the current position back to
// the spawn point.
func (n *NpcInfo) DistanceToSpawn() float64 {
	return Distance(n.Position, n.SpawnPos)
}

// ResetToSpawn restores the instance to its spawn point at full health.
func (n *NpcInfo) ResetToSpawn() {
	n.Position = n.SpawnPos
	n.Health = n.MaxHealth
	n.State = AIIdle
	n.TargetCharID = 0
	n.RespawnAtMs = 0
	n.DamageBy = make(map[int64]int32)
}

// KillCredit returns the attacker that dealt the most damage.
func (n *NpcInfo) KillCredit() int64 {
	var best int64
	var bestDmg int32 = -1
	for charID, dmg := range n.DamageBy {
		if dmg > bestDmg {
			best, bestDmg = charID, dmg
		}
	}
	return best
}

// Distance is the Euclidean distance between two positions.
func Distance(a, b protocol.Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

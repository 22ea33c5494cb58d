package npc

import (
	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

const (
	wanderStartChance = 0.05
	wanderStopChance  = 0.3
	wanderRepickMs    = 2000
	wanderRadius      = 10.0
	wanderLeash       = 100.0
	chaseLeash        = 200.0
	attackRange       = 2.0
)

// stepAI advances one live instance's state machine for this tick.
func (m *Manager) stepAI(n *world.NpcInfo, nowMs uint64) {
	before := n.State
	fromZone := n.ZoneID

	switch n.State {
	case world.AIIdle:
		m.stepIdle(n)
	case world.AIWandering:
		m.stepWandering(n, nowMs)
	case world.AIChasing:
		m.stepChasing(n, nowMs)
	case world.AIAttacking:
		m.stepAttacking(n, nowMs)
	case world.AIReturning:
		m.stepReturning(n)
	}

	// Movement may carry the instance across a zone boundary; its zone must
	// always be the one containing its position.
	n.ZoneID = m.state.Zones.ZoneOf(n.Position)

	if n.State != before || n.ZoneID != fromZone {
		event.Emit(m.bus, event.NpcStateChanged{NpcID: n.ID, ZoneID: n.ZoneID})
	}
	if n.ZoneID != fromZone {
		// The zone left behind gets a final update so stale views clear.
		event.Emit(m.bus, event.NpcStateChanged{NpcID: n.ID, ZoneID: fromZone})
	}
}

func (m *Manager) stepIdle(n *world.NpcInfo) {
	if m.acquireTarget(n) {
		return
	}
	if m.rng.Float64() < wanderStartChance {
		n.State = world.AIWandering
	}
}

func (m *Manager) stepWandering(n *world.NpcInfo, nowMs uint64) {
	if m.acquireTarget(n) {
		return
	}
	if nowMs-n.LastMoveMs >= wanderRepickMs {
		n.LastMoveMs = nowMs
		if m.rng.Float64() < wanderStopChance {
			n.State = world.AIIdle
			return
		}
		dest := protocol.Vec3{
			X: n.Position.X + (m.rng.Float64()*2-1)*wanderRadius,
			Y: n.Position.Y + (m.rng.Float64()*2-1)*wanderRadius,
			Z: n.Position.Z,
		}
		// Stay leashed to the spawn point.
		if world.Distance(dest, n.SpawnPos) <= wanderLeash {
			n.Position = dest
		}
	}
}

func (m *Manager) stepChasing(n *world.NpcInfo, nowMs uint64) {
	target := m.state.Player(n.TargetCharID)
	if target == nil {
		n.TargetCharID = 0
		n.State = world.AIReturning
		return
	}
	if n.DistanceToSpawn() > chaseLeash {
		n.TargetCharID = 0
		n.State = world.AIReturning
		return
	}
	if world.Distance(n.Position, target.Position) <= attackRange {
		n.State = world.AIAttacking
		return
	}
	m.stepToward(n, target.Position, n.Template.Speed)
	n.LastMoveMs = nowMs
}

func (m *Manager) stepAttacking(n *world.NpcInfo, nowMs uint64) {
	target := m.state.Player(n.TargetCharID)
	if target == nil {
		n.TargetCharID = 0
		n.State = world.AIReturning
		return
	}
	if world.Distance(n.Position, target.Position) > attackRange {
		n.State = world.AIChasing
		return
	}
	interval := uint64(1000.0 / n.Template.Speed)
	if nowMs-n.LastAttackMs < interval {
		return
	}
	n.LastAttackMs = nowMs
	target.ApplyDamage(n.Template.AttackDamage)
	target.Dirty = true
	event.Emit(m.bus, event.PlayerDamaged{
		CharacterID: target.CharacterID,
		ZoneID:      n.ZoneID,
		NpcID:       n.ID,
		Amount:      n.Template.AttackDamage,
		Died:        target.Health == 0,
	})
}

func (m *Manager) stepReturning(n *world.NpcInfo) {
	step := 2 * n.Template.Speed
	if world.Distance(n.Position, n.SpawnPos) <= step {
		n.ResetToSpawn()
		return
	}
	m.stepToward(n, n.SpawnPos, step)
}

// acquireTarget locks an aggressive instance onto the nearest player inside
// its aggro range.
func (m *Manager) acquireTarget(n *world.NpcInfo) bool {
	if !n.Template.Aggressive {
		return false
	}
	var nearest *world.PlayerInfo
	best := n.Template.AggroRange
	for _, p := range m.state.SameZonePlayers(n.ZoneID, 0) {
		if p.Health <= 0 {
			continue
		}
		if d := world.Distance(n.Position, p.Position); d <= best {
			nearest, best = p, d
		}
	}
	if nearest == nil {
		return false
	}
	n.TargetCharID = nearest.CharacterID
	n.State = world.AIChasing
	return true
}

// stepToward moves the instance dist units toward a point, clamping at it.
func (m *Manager) stepToward(n *world.NpcInfo, to protocol.Vec3, dist float64) {
	total := world.Distance(n.Position, to)
	if total <= dist || total == 0 {
		n.Position = to
		return
	}
	f := dist / total
	n.Position.X += (to.X - n.Position.X) * f
	n.Position.Y += (to.Y - n.Position.Y) * f
	n.Position.Z += (to.Z - n.Position.Z) * f
}

// Package npc drives NPC instances: the per-tick AI state machine, damage
// and kill credit, drop rolls and the respawn queue.
package npc

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

// DeathHook runs after a kill, before the drops are delivered. Scripts use
// it to rewrite or extend the drop list.
type DeathHook func(n *world.NpcInfo, killerID int64, drops []protocol.Stack) []protocol.Stack

// Manager owns NPC lifecycle on the simulation goroutine.
type Manager struct {
	state   *world.State
	bus     *event.Bus
	rng     *rand.Rand
	log     *zap.Logger
	onDeath DeathHook

	respawns respawnHeap
}

func NewManager(state *world.State, bus *event.Bus, rng *rand.Rand, log *zap.Logger) *Manager {
	return &Manager{
		state: state,
		bus:   bus,
		rng:   rng,
		log:   log,
	}
}

// SetDeathHook installs the scripted drop hook.
func (m *Manager) SetDeathHook(hook DeathHook) {
	m.onDeath = hook
}

// SpawnAll instantiates the static spawn list against the template table.
func (m *Manager) SpawnAll(spawns []data.NpcSpawn, templates *data.NpcTable) int {
	spawned := 0
	for _, sp := range spawns {
		tpl := templates.Get(sp.TemplateID)
		if tpl == nil {
			m.log.Warn("npc spawn references unknown template",
				zap.Int32("template", sp.TemplateID))
			continue
		}
		count := sp.Count
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			m.state.SpawnNpc(tpl, protocol.Vec3{X: sp.X, Y: sp.Y, Z: sp.Z})
			spawned++
		}
	}
	return spawned
}

// Tick restores due respawns and advances every live instance's AI.
func (m *Manager) Tick(nowMs uint64) {
	for _, npcID := range m.respawns.popDue(nowMs) {
		n := m.state.Npc(npcID)
		if n == nil {
			continue
		}
		n.ResetToSpawn()
		n.ZoneID = m.state.Zones.ZoneOf(n.Position)
		event.Emit(m.bus, event.NpcStateChanged{NpcID: n.ID, ZoneID: n.ZoneID})
	}

	for _, n := range m.state.Npcs() {
		if n.Alive() {
			m.stepAI(n, nowMs)
		}
	}
}

// Damage applies player damage to an instance. The target is set and
// aggressive idle or wandering instances start chasing. Returns the rolled
// drops when the hit was lethal.
func (m *Manager) Damage(n *world.NpcInfo, attackerID int64, amount int32, nowMs uint64) (died bool, drops []protocol.Stack) {
	if !n.Alive() || amount <= 0 {
		return false, nil
	}
	n.Health -= amount
	n.DamageBy[attackerID] += amount
	n.TargetCharID = attackerID
	if n.Template.Aggressive && (n.State == world.AIIdle || n.State == world.AIWandering) {
		n.State = world.AIChasing
	}

	if n.Health > 0 {
		event.Emit(m.bus, event.NpcDamaged{
			NpcID: n.ID, ZoneID: n.ZoneID, AttackerID: attackerID, Amount: amount,
		})
		return false, nil
	}

	n.Health = 0
	n.State = world.AIDead
	killerID := n.KillCredit()
	drops = m.rollDrops(n.Template)
	if m.onDeath != nil {
		drops = m.onDeath(n, killerID, drops)
	}

	n.RespawnAtMs = nowMs + uint64(n.Template.RespawnSeconds)*1000
	m.respawns.schedule(n.ID, n.RespawnAtMs)

	event.Emit(m.bus, event.NpcDamaged{
		NpcID: n.ID, ZoneID: n.ZoneID, AttackerID: attackerID, Amount: amount, Died: true,
	})
	event.Emit(m.bus, event.NpcDied{
		NpcID:    n.ID,
		Template: n.Template.TemplateID,
		ZoneID:   n.ZoneID,
		KillerID: killerID,
		Drops:    drops,
	})
	m.log.Debug("npc killed",
		zap.Int64("npc", n.ID),
		zap.Int32("template", n.Template.TemplateID),
		zap.Int64("killer", killerID))
	return true, drops
}

// rollDrops runs one independent Bernoulli trial per drop row, sampling the
// quantity uniformly in [min, max].
func (m *Manager) rollDrops(tpl *data.NpcTemplate) []protocol.Stack {
	var drops []protocol.Stack
	for _, row := range tpl.Drops {
		if m.rng.Float64() >= row.Chance {
			continue
		}
		qty := row.Min
		if row.Max > row.Min {
			qty = row.Min + m.rng.Int31n(row.Max-row.Min+1)
		}
		if qty > 0 {
			drops = append(drops, protocol.Stack{ItemID: row.ItemID, Quantity: qty})
		}
	}
	return drops
}

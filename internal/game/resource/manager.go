// Package resource drives harvestable nodes: yield rolls, depletion with
// write-through persistence, and respawns.
package resource

import (
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/game/skill"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

var (
	ErrDepleted    = errors.New("resource: node depleted")
	ErrLevelTooLow = errors.New("resource: level too low")
	ErrWrongSkill  = errors.New("resource: wrong skill for node")
)

const bonusYieldMultiplier = 1.5

// StateSink receives node depletion state so a restart preserves it.
type StateSink interface {
	RecordNodeState(nodeID int64, depleted bool, respawnAtMs uint64)
}

// HarvestHook runs after a successful harvest, before delivery. Scripts
// use it to rewrite or extend the yielded items.
type HarvestHook func(n *world.NodeInfo, charID int64, items []protocol.Stack) []protocol.Stack

// HarvestResult reports one harvest attempt.
type HarvestResult struct {
	Success  bool
	XP       float64
	Items    []protocol.Stack
	Depleted bool
}

// Manager owns resource node lifecycle on the simulation goroutine.
type Manager struct {
	state     *world.State
	bus       *event.Bus
	rng       *rand.Rand
	log       *zap.Logger
	sink      StateSink
	onHarvest HarvestHook
}

func NewManager(state *world.State, bus *event.Bus, rng *rand.Rand, sink StateSink, log *zap.Logger) *Manager {
	return &Manager{
		state: state,
		bus:   bus,
		rng:   rng,
		log:   log,
		sink:  sink,
	}
}

// SetHarvestHook installs the scripted yield hook.
func (m *Manager) SetHarvestHook(hook HarvestHook) {
	m.onHarvest = hook
}

// PlaceAll instantiates the static spawn list against the template table.
func (m *Manager) PlaceAll(spawns []data.ResourceSpawn, templates *data.ResourceTable) int {
	placed := 0
	for _, sp := range spawns {
		tpl := templates.Get(sp.TemplateID)
		if tpl == nil {
			m.log.Warn("resource spawn references unknown template",
				zap.Int32("template", sp.TemplateID))
			continue
		}
		m.state.PlaceNode(tpl, protocol.Vec3{X: sp.X, Y: sp.Y, Z: sp.Z})
		placed++
	}
	return placed
}

// Harvest runs one gathering attempt against a node for a character at the
// given level. Rate limiting and position checks happen before this call.
func (m *Manager) Harvest(n *world.NodeInfo, charID int64, level int, action string, nowMs uint64) (HarvestResult, error) {
	tpl := n.Template
	if skill.SkillFor(action) != tpl.SkillRequired {
		return HarvestResult{}, ErrWrongSkill
	}
	if !n.Harvestable() {
		return HarvestResult{}, ErrDepleted
	}
	if level < tpl.LevelRequired {
		return HarvestResult{}, ErrLevelTooLow
	}

	if m.rng.Float64() >= skill.SuccessChance(level, tpl.LevelRequired) {
		return HarvestResult{}, nil
	}

	res := HarvestResult{
		Success: true,
		XP:      tpl.XPPerHarvest,
		Items:   m.rollYields(tpl, level),
	}
	if m.onHarvest != nil {
		res.Items = m.onHarvest(n, charID, res.Items)
	}

	if m.rng.Float64() < tpl.DepleteChance {
		respawnAt := nowMs + uint64(tpl.RespawnMs)
		n.Deplete(respawnAt)
		res.Depleted = true
		if m.sink != nil {
			m.sink.RecordNodeState(n.ID, true, respawnAt)
		}
		event.Emit(m.bus, event.NodeDepleted{NodeID: n.ID, ZoneID: n.ZoneID, RespawnAtMs: respawnAt})
	}
	return res, nil
}

// Tick respawns every node whose deadline has passed.
func (m *Manager) Tick(nowMs uint64) {
	for _, n := range m.state.Nodes() {
		if n.Depleted && n.RespawnAtMs <= nowMs {
			n.Respawn()
			if m.sink != nil {
				m.sink.RecordNodeState(n.ID, false, 0)
			}
			event.Emit(m.bus, event.NodeRespawned{NodeID: n.ID, ZoneID: n.ZoneID})
		}
	}
}

// RestoreStates reapplies persisted depletion state after a restart.
func (m *Manager) RestoreStates(states map[int64]uint64, nowMs uint64) {
	for nodeID, respawnAt := range states {
		n := m.state.Node(nodeID)
		if n == nil {
			continue
		}
		if respawnAt > nowMs {
			n.Deplete(respawnAt)
		}
	}
}

// rollYields runs the per-row chance, boosted past the bonus level tier.
func (m *Manager) rollYields(tpl *data.ResourceTemplate, level int) []protocol.Stack {
	var items []protocol.Stack
	for _, row := range tpl.Yields {
		chance := row.Chance
		if tpl.BonusLevelReq > 0 && level > tpl.BonusLevelReq {
			chance *= bonusYieldMultiplier
			if chance > 1.0 {
				chance = 1.0
			}
		}
		if m.rng.Float64() >= chance {
			continue
		}
		qty := row.Min
		if row.Max > row.Min {
			qty = row.Min + m.rng.Int31n(row.Max-row.Min+1)
		}
		if qty > 0 {
			items = append(items, protocol.Stack{ItemID: row.ItemID, Quantity: qty})
		}
	}
	return items
}

package system

import (
	"time"

	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/core/system"
	"github.com/runeward/server/internal/handler"
	"github.com/runeward/server/internal/protocol"
)

// Events swaps the bus buffers and dispatches last tick's events. Its
// subscriptions turn simulation events into zone broadcasts.
type Events struct {
	deps *handler.Deps
	bus  *event.Bus
}

func NewEvents(deps *handler.Deps, bus *event.Bus) *Events {
	s := &Events{deps: deps, bus: bus}
	s.subscribe()
	return s
}

func (s *Events) Phase() system.Phase { return system.PhasePreUpdate }

func (s *Events) Update(dt time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

func (s *Events) subscribe() {
	d := s.deps

	event.Subscribe(s.bus, func(ev event.PlayerMoved) {
		d.BroadcastZone(ev.ZoneID, ev.CharacterID, protocol.MOVE_SYNC, protocol.PlayerMoved{
			CharacterID: ev.CharacterID,
			Position:    ev.Position,
			Rotation:    ev.Rotation,
		})
	})

	event.Subscribe(s.bus, func(ev event.NpcStateChanged) {
		if n := d.World.Npc(ev.NpcID); n != nil {
			d.BroadcastZone(ev.ZoneID, 0, protocol.NPC_UPDATE, protocol.NpcUpdate{
				NpcID:    n.ID,
				Template: n.Template.TemplateID,
				Position: n.Position,
				Health:   n.Health,
				State:    n.State.String(),
			})
		}
	})

	event.Subscribe(s.bus, func(ev event.NpcDamaged) {
		if ev.AttackerID != 0 {
			// Player-sourced damage is already broadcast by the attack
			// handler.
			return
		}
		if n := d.World.Npc(ev.NpcID); n != nil {
			d.BroadcastZone(ev.ZoneID, 0, protocol.NPC_UPDATE, protocol.NpcUpdate{
				NpcID:    n.ID,
				Template: n.Template.TemplateID,
				Position: n.Position,
				Health:   n.Health,
				State:    n.State.String(),
			})
		}
	})

	event.Subscribe(s.bus, func(ev event.PlayerDamaged) {
		hit := protocol.DamageEvent{
			SourceID: -ev.NpcID, // negative ids mark NPC sources on the wire
			TargetID: ev.CharacterID,
			Amount:   ev.Amount,
		}
		d.SendToChar(ev.CharacterID, protocol.DAMAGE, hit)
		d.BroadcastZone(ev.ZoneID, ev.CharacterID, protocol.DAMAGE, hit)
		if ev.Died {
			d.HandlePlayerDeath(ev.CharacterID)
		}
	})

	event.Subscribe(s.bus, func(ev event.NpcDied) {
		d.BroadcastZone(ev.ZoneID, 0, protocol.NPC_DEATH, protocol.NpcUpdate{
			NpcID:    ev.NpcID,
			Template: ev.Template,
			Health:   0,
			State:    "Dead",
		})
	})

	event.Subscribe(s.bus, func(ev event.NodeDepleted) {
		d.BroadcastZone(ev.ZoneID, 0, protocol.NPC_UPDATE, protocol.NpcUpdate{
			NpcID: -ev.NodeID, // node updates reuse the entity update shape
			State: "Depleted",
		})
	})

	event.Subscribe(s.bus, func(ev event.NodeRespawned) {
		d.BroadcastZone(ev.ZoneID, 0, protocol.NPC_UPDATE, protocol.NpcUpdate{
			NpcID: -ev.NodeID,
			State: "Available",
		})
	})
}

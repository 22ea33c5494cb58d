package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/validate"
)

// HandleMove validates a movement packet against the speed envelope and the
// geometry oracles, commits it on success and rubber-bands on violation.
func (d *Deps) HandleMove(sess *net.Session, payload []byte) {
	var mv protocol.Move
	if err := protocol.Decode(payload, &mv); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	if mv.Kind == "" {
		mv.Kind = validate.MoveWalk
	}
	d.applyMove(sess, mv)
}

// HandleTeleport validates a teleport destination. Teleports skip the speed
// envelope but must land on valid geometry.
func (d *Deps) HandleTeleport(sess *net.Session, payload []byte) {
	var mv protocol.Move
	if err := protocol.Decode(payload, &mv); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	mv.Kind = validate.MoveTeleport
	d.applyMove(sess, mv)
}

func (d *Deps) applyMove(sess *net.Session, mv protocol.Move) {
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	nowMs := time.Now().UnixMilli()

	verdict := d.Movement.Check(p.CharacterID, p.Position, mv, nowMs)
	if !verdict.OK {
		d.send(sess, protocol.POSITION_CORRECTION, protocol.PositionCorrection{
			Position: verdict.Correct,
			Reason:   verdict.FlagKind,
		})
		if d.RaiseFlag(sess, verdict.FlagKind, verdict.Details) {
			return
		}
		if verdict.Disconnect {
			d.Disconnect(sess, "movement correction budget exhausted")
		}
		return
	}

	if verdict.Teleport {
		// Every granted teleport leaves a trace.
		d.Log.Info("teleport granted",
			zap.Int64("char", p.CharacterID),
			zap.Any("from", p.Position),
			zap.Any("to", mv.Position))
	}

	fromZone := p.ZoneID
	newZone, changed := d.World.CommitMove(p, mv.Position, mv.Rotation)
	if changed {
		d.send(sess, protocol.ZONE_CHANGE, protocol.ZoneChange{
			ZoneID:   newZone,
			ZoneName: d.World.Zones.ZoneName(newZone),
		})
		d.BroadcastZone(fromZone, p.CharacterID, protocol.PLAYER_LEAVE,
			protocol.PlayerLeave{CharacterID: p.CharacterID})
		d.BroadcastZone(newZone, p.CharacterID, protocol.PLAYER_JOIN, protocol.PlayerJoin{
			CharacterID: p.CharacterID,
			Name:        p.Name,
			Position:    p.Position,
			CombatLevel: p.CombatLevel(),
			Health:      p.Health,
			MaxHealth:   p.MaxHealth,
			Rotation:    p.Rotation,
		})
		d.sendSurroundings(sess, p)
		event.Emit(d.Bus, event.ZoneChanged{
			CharacterID: p.CharacterID,
			FromZone:    fromZone,
			ToZone:      newZone,
		})
	}

	event.Emit(d.Bus, event.PlayerMoved{
		CharacterID: p.CharacterID,
		ZoneID:      p.ZoneID,
		Position:    p.Position,
		Rotation:    p.Rotation,
	})
}

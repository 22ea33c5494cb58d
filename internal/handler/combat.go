package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/game/skill"
	"github.com/runeward/server/internal/metrics"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/validate"
	"github.com/runeward/server/internal/world"
)

const meleeRange = 2.0

// hitpointsXPShare is the fraction of combat XP mirrored into hitpoints.
const hitpointsXPShare = 1.0 / 3.0

// HandleAbility charges an ability through the rate limiter and registers
// movement abilities for the speed-grace window.
func (d *Deps) HandleAbility(sess *net.Session, payload []byte) {
	var req protocol.Ability
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	nowMs := time.Now().UnixMilli()

	if rej := d.Actions.Check(p.CharacterID, validate.ActionAbility, req.AbilityID, nowMs); rej != nil {
		d.sendRejected(sess, rej.Kind, rej.RemainingMs)
		metrics.PacketsRejected.WithLabelValues(rej.Kind).Inc()
		return
	}

	if validate.IsMovementAbility(req.AbilityID) {
		d.Movement.RegisterAbility(p.CharacterID, req.AbilityID, nowMs)
	}
}

// HandleAttack resolves one melee swing against an NPC.
func (d *Deps) HandleAttack(sess *net.Session, payload []byte) {
	var req protocol.Attack
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	n := d.World.Npc(req.TargetNpcID)
	if n == nil || !n.Alive() {
		d.sendError(sess, "TARGET_NOT_FOUND", "")
		return
	}
	if n.ZoneID != p.ZoneID || world.Distance(p.Position, n.Position) > meleeRange+skill.PositionTolerance {
		d.sendError(sess, "OUT_OF_RANGE", "")
		return
	}

	nowMs := time.Now().UnixMilli()
	if rej := d.Actions.Check(p.CharacterID, validate.ActionAttack, "", nowMs); rej != nil {
		d.sendRejected(sess, rej.Kind, rej.RemainingMs)
		metrics.PacketsRejected.WithLabelValues(rej.Kind).Inc()
		return
	}

	damage := d.Scripting.CalcPlayerAttack(
		p.SkillLevel(skill.Attack),
		p.SkillLevel(skill.Strength),
		n.Template.Defence,
	)
	died, drops := d.NpcMgr.Damage(n, p.CharacterID, damage, uint64(nowMs))

	hit := protocol.DamageEvent{
		SourceID: p.CharacterID,
		TargetID: n.ID,
		Amount:   damage,
		NpcDied:  died,
	}
	d.send(sess, protocol.DAMAGE, hit)
	d.BroadcastZone(n.ZoneID, p.CharacterID, protocol.DAMAGE, hit)

	if !died {
		return
	}

	// Kill credit pays combat XP and delivers the drop table.
	killer := d.World.Player(n.KillCredit())
	if killer == nil {
		killer = p
	}
	d.grantXP(killer, skill.Strength, float64(n.Template.XPReward))
	d.grantXP(killer, skill.Hitpoints, float64(n.Template.XPReward)*hitpointsXPShare)

	for _, drop := range drops {
		if err := killer.Backpack.Add(drop.ItemID, drop.Quantity); err != nil {
			d.Log.Debug("drop lost, backpack full",
				zap.Int64("character", killer.CharacterID),
				zap.Int32("item", drop.ItemID),
			)
			continue
		}
	}
	killer.Dirty = true
	d.SendToChar(killer.CharacterID, protocol.NPC_DEATH, protocol.NpcUpdate{
		NpcID:    n.ID,
		Template: n.Template.TemplateID,
		Position: n.Position,
		Health:   0,
		State:    n.State.String(),
	})
}

// HandlePlayerDeath respawns a dead character at the start position with
// full health. Hardcore characters drop to normal mode on death.
func (d *Deps) HandlePlayerDeath(charID int64) {
	p := d.World.Player(charID)
	if p == nil {
		return
	}
	d.BroadcastZone(p.ZoneID, 0, protocol.DEATH, protocol.PlayerMoved{
		CharacterID: p.CharacterID,
		Position:    p.Position,
	})

	if p.GameMode == world.ModeHardcore {
		p.GameMode = world.ModeNormal
		d.Log.Info("hardcore death", zap.Int64("character", p.CharacterID))
	}

	p.Health = p.MaxHealth
	fromZone := p.ZoneID
	d.World.CommitMove(p, startPosition, 0)
	d.SendToChar(p.CharacterID, protocol.RESPAWN, protocol.PlayerMoved{
		CharacterID: p.CharacterID,
		Position:    p.Position,
	})
	if p.ZoneID != fromZone {
		d.SendToChar(p.CharacterID, protocol.ZONE_CHANGE, protocol.ZoneChange{
			ZoneID:   p.ZoneID,
			ZoneName: d.World.Zones.ZoneName(p.ZoneID),
		})
	}
}

// grantXP applies XP through the skill engine and streams the drop and any
// level-up to the owning client.
func (d *Deps) grantXP(p *world.PlayerInfo, skillName string, base float64) {
	res := d.Skills.Grant(p.Skills, skillName, base)
	if res.Granted <= 0 {
		return
	}
	p.Dirty = true
	metrics.XPGranted.Add(float64(res.Granted))

	d.SendToChar(p.CharacterID, protocol.SKILL_XP, protocol.XPDrop{
		Skill:   skillName,
		Granted: res.Granted,
	})
	if res.LeveledUp {
		d.SendToChar(p.CharacterID, protocol.SKILL_LEVEL, protocol.LevelUp{
			Skill:    skillName,
			NewLevel: res.NewLevel,
		})
		d.Log.Info("level up",
			zap.Int64("character", p.CharacterID),
			zap.String("skill", skillName),
			zap.Int("level", res.NewLevel),
		)
	}
	event.Emit(d.Bus, event.XPGranted{
		CharacterID: p.CharacterID,
		Skill:       skillName,
		Granted:     res.Granted,
		LeveledUp:   res.LeveledUp,
		NewLevel:    res.NewLevel,
	})
}

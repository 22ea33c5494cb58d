package handler

import (
	"errors"
	"math/rand"
	"time"

	"github.com/runeward/server/internal/game/resource"
	"github.com/runeward/server/internal/game/skill"
	"github.com/runeward/server/internal/metrics"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/validate"
	"github.com/runeward/server/internal/world"
)

// HandleSkillAction resolves gathering against resource nodes and production
// against backpack recipes. The client-claimed position is cross-checked
// against the authoritative one before anything happens.
func (d *Deps) HandleSkillAction(sess *net.Session, payload []byte) {
	var req protocol.SkillAction
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}

	// Rate limiting runs before any world checks so a spamming client is
	// charged even when its claimed position is nonsense.
	nowMs := time.Now().UnixMilli()
	if rej := d.Actions.Check(p.CharacterID, validate.ActionSkill, "", nowMs); rej != nil {
		d.sendRejected(sess, rej.Kind, rej.RemainingMs)
		metrics.PacketsRejected.WithLabelValues(rej.Kind).Inc()
		return
	}

	if world.Distance(p.Position, req.Position) > skill.PositionTolerance {
		d.sendError(sess, "POSITION_MISMATCH", "")
		return
	}

	if skill.IsGathering(req.Action) {
		d.handleGathering(sess, p, req, nowMs)
		return
	}
	d.handleProduction(sess, p, req)
}

func (d *Deps) handleGathering(sess *net.Session, p *world.PlayerInfo, req protocol.SkillAction, nowMs int64) {
	n := d.World.Node(req.TargetID)
	if n == nil || n.ZoneID != p.ZoneID {
		d.sendError(sess, "NODE_NOT_FOUND", "")
		return
	}
	if world.Distance(p.Position, n.Position) > skill.InteractionRange {
		d.sendError(sess, "OUT_OF_RANGE", "")
		return
	}

	trained := skill.SkillFor(req.Action)
	res, err := d.ResMgr.Harvest(n, p.CharacterID, p.SkillLevel(trained), req.Action, uint64(nowMs))
	if err != nil {
		switch {
		case errors.Is(err, resource.ErrDepleted):
			d.sendError(sess, "NODE_DEPLETED", "")
		case errors.Is(err, resource.ErrLevelTooLow):
			d.sendError(sess, "LEVEL_TOO_LOW", "")
		case errors.Is(err, resource.ErrWrongSkill):
			d.sendError(sess, "WRONG_TOOL", "")
		default:
			d.sendError(sess, "INTERNAL_ERROR", "")
		}
		return
	}

	result := protocol.SkillResult{ResourceDepleted: res.Depleted}
	if res.Success {
		for _, it := range res.Items {
			if err := p.Backpack.Add(it.ItemID, it.Quantity); err != nil {
				d.sendError(sess, "BACKPACK_FULL", "")
				break
			}
			result.ItemsGained = append(result.ItemsGained, it)
		}
		if len(result.ItemsGained) > 0 {
			before := p.SkillLevel(trained)
			d.grantXP(p, trained, res.XP)
			result.XPGained = int64(res.XP)
			if after := p.SkillLevel(trained); after > before {
				result.LeveledUp = true
				result.NewLevel = after
			}
		}
	}
	d.send(sess, protocol.SKILL_ACTION, result)
}

func (d *Deps) handleProduction(sess *net.Session, p *world.PlayerInfo, req protocol.SkillAction) {
	// TargetID names the backpack slot holding the input for production
	// actions.
	slot := int(req.TargetID)
	input := p.Backpack.Get(slot)
	if input == nil {
		d.sendError(sess, "EMPTY_SLOT", "")
		return
	}
	recipe, ok := skill.RecipeFor(input.ItemID)
	if !ok {
		d.sendError(sess, "NO_RECIPE", "")
		return
	}
	trained := skill.SkillFor(req.Action)
	if trained != recipe.Skill {
		d.sendError(sess, "WRONG_TOOL", "")
		return
	}
	level := p.SkillLevel(trained)
	if level < recipe.LevelRequired {
		d.sendError(sess, "LEVEL_TOO_LOW", "")
		return
	}

	if _, err := p.Backpack.RemoveSlot(slot, 1); err != nil {
		d.sendError(sess, "EMPTY_SLOT", "")
		return
	}

	result := protocol.SkillResult{}
	if d.rollSuccess(level, recipe.LevelRequired) {
		if err := p.Backpack.Add(recipe.Output, 1); err == nil {
			result.ItemsGained = []protocol.Stack{{ItemID: recipe.Output, Quantity: 1}}
		}
		before := level
		d.grantXP(p, trained, recipe.XP)
		result.XPGained = int64(recipe.XP)
		if after := p.SkillLevel(trained); after > before {
			result.LeveledUp = true
			result.NewLevel = after
		}
	} else if recipe.Failure != 0 {
		if err := p.Backpack.Add(recipe.Failure, 1); err == nil {
			result.ItemsGained = []protocol.Stack{{ItemID: recipe.Failure, Quantity: 1}}
		}
	}
	p.Dirty = true
	d.send(sess, protocol.SKILL_ACTION, result)
}

func (d *Deps) rollSuccess(level, levelRequired int) bool {
	return rand.Float64() < skill.SuccessChance(level, levelRequired)
}

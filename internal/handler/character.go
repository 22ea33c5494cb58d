package handler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/game/inventory"
	"github.com/runeward/server/internal/game/skill"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/persist"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

const maxCharactersPerAccount = 6

// New characters start at the town square with a level-10 hitpoints pool.
var startPosition = protocol.Vec3{X: 3222, Y: 3218, Z: 0}

const startHealth int32 = 100

// HandleCharList answers with the account's character roster.
func (d *Deps) HandleCharList(sess *net.Session, payload []byte) {
	d.sendCharList(sess)
}

func (d *Deps) sendCharList(sess *net.Session) {
	ctx, cancel := repoCtx()
	defer cancel()

	rows, err := d.CharRepo.LoadByAccount(ctx, sess.AccountID)
	if err != nil {
		d.Log.Error("load characters failed", zap.Int64("account", sess.AccountID), zap.Error(err))
		d.sendError(sess, "INTERNAL_ERROR", "")
		return
	}

	list := protocol.CharList{Characters: make([]protocol.CharSummary, 0, len(rows))}
	for _, row := range rows {
		sheet, err := d.SkillRepo.LoadSheet(ctx, row.ID)
		if err != nil {
			d.Log.Error("load skill sheet failed", zap.Int64("character", row.ID), zap.Error(err))
			continue
		}
		list.Characters = append(list.Characters, protocol.CharSummary{
			CharacterID: row.ID,
			Name:        row.Name,
			TotalLevel:  skill.TotalLevel(sheet),
			CombatLevel: skill.CombatLevel(sheet),
			GameMode:    row.GameMode,
		})
	}
	d.send(sess, protocol.CHAR_LIST, list)
}

// HandleCharCreate creates a new character after name and mode validation.
func (d *Deps) HandleCharCreate(sess *net.Session, payload []byte) {
	var req protocol.CharCreate
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}

	name := world.FoldName(req.Name)
	if len(name) < 3 || len(name) > 12 {
		d.sendError(sess, "INVALID_NAME", "name must be 3-12 characters")
		return
	}
	if !world.ValidGameMode(req.GameMode) {
		d.sendError(sess, "INVALID_GAME_MODE", req.GameMode)
		return
	}

	ctx, cancel := repoCtx()
	defer cancel()

	count, err := d.CharRepo.CountByAccount(ctx, sess.AccountID)
	if err != nil {
		d.Log.Error("count characters failed", zap.Error(err))
		d.sendError(sess, "INTERNAL_ERROR", "")
		return
	}
	if count >= maxCharactersPerAccount {
		d.sendError(sess, "CHARACTER_LIMIT", fmt.Sprintf("max %d characters", maxCharactersPerAccount))
		return
	}
	taken, err := d.CharRepo.NameExists(ctx, req.Name)
	if err != nil {
		d.Log.Error("name check failed", zap.Error(err))
		d.sendError(sess, "INTERNAL_ERROR", "")
		return
	}
	if taken {
		d.sendError(sess, "NAME_TAKEN", req.Name)
		return
	}

	row := &persist.CharacterRow{
		AccountID:  sess.AccountID,
		Name:       req.Name,
		GameMode:   req.GameMode,
		Appearance: req.Appearance,
		PosX:       startPosition.X,
		PosY:       startPosition.Y,
		PosZ:       startPosition.Z,
		ZoneID:     world.DefaultZoneID,
		Health:     startHealth,
		MaxHealth:  startHealth,
	}
	if err := d.CharRepo.Create(ctx, row); err != nil {
		d.Log.Error("create character failed", zap.Error(err))
		d.sendError(sess, "INTERNAL_ERROR", "")
		return
	}
	if err := d.SkillRepo.SaveSheet(ctx, row.ID, skill.NewSheet()); err != nil {
		d.Log.Error("seed skill sheet failed", zap.Int64("character", row.ID), zap.Error(err))
	}

	d.Log.Info("character created",
		zap.Int64("account", sess.AccountID),
		zap.String("name", req.Name),
		zap.String("mode", req.GameMode),
	)
	d.sendCharList(sess)
}

// HandleCharDelete soft-deletes a character on this account.
func (d *Deps) HandleCharDelete(sess *net.Session, payload []byte) {
	var req protocol.CharDelete
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}

	ctx, cancel := repoCtx()
	defer cancel()

	if err := d.CharRepo.SoftDelete(ctx, req.CharacterID, sess.AccountID); err != nil {
		d.Log.Error("delete character failed", zap.Int64("character", req.CharacterID), zap.Error(err))
		d.sendError(sess, "INTERNAL_ERROR", "")
		return
	}
	d.sendCharList(sess)
}

// HandleCharSelect loads the character from storage, enters it into the
// world and announces it to the zone.
func (d *Deps) HandleCharSelect(sess *net.Session, payload []byte) {
	var req protocol.CharSelect
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}

	ctx, cancel := repoCtx()
	defer cancel()

	row, err := d.CharRepo.LoadByID(ctx, req.CharacterID)
	if err != nil {
		d.Log.Error("load character failed", zap.Int64("character", req.CharacterID), zap.Error(err))
		d.sendError(sess, "INTERNAL_ERROR", "")
		return
	}
	if row == nil || row.AccountID != sess.AccountID {
		d.sendError(sess, "CHARACTER_NOT_FOUND", "")
		return
	}
	if d.World.Player(row.ID) != nil {
		d.sendError(sess, "CHARACTER_IN_WORLD", "")
		return
	}

	sheet, err := d.SkillRepo.LoadSheet(ctx, row.ID)
	if err != nil {
		d.Log.Error("load skill sheet failed", zap.Int64("character", row.ID), zap.Error(err))
		d.sendError(sess, "INTERNAL_ERROR", "")
		return
	}

	bp := inventory.NewBackpack(d.Items)
	bank := inventory.NewBank(d.Items)
	eq := inventory.NewEquipment(d.Items)
	if err := d.ItemRepo.LoadContainers(ctx, row.ID, bp, bank, eq); err != nil {
		d.Log.Error("load containers failed", zap.Int64("character", row.ID), zap.Error(err))
		d.sendError(sess, "INTERNAL_ERROR", "")
		return
	}

	p := &world.PlayerInfo{
		CharacterID:   row.ID,
		AccountID:     row.AccountID,
		SessionID:     sess.Token,
		Name:          row.Name,
		GameMode:      row.GameMode,
		Position:      protocol.Vec3{X: row.PosX, Y: row.PosY, Z: row.PosZ},
		Rotation:      row.Rotation,
		Health:        row.Health,
		MaxHealth:     row.MaxHealth,
		Gold:          row.Gold,
		Skills:        sheet,
		Backpack:      bp,
		Bank:          bank,
		Equipment:     eq,
		ActivePrayers: make(map[string]bool),
		GuildID:       row.GuildID,
		AccessLevel:   sess.AccessLevel,
	}
	d.World.AddPlayer(p)
	sess.CharID = row.ID
	sess.CharName = row.Name
	d.Sessions.Bind(sess, row.ID)
	sess.SetState(net.StateInWorld)

	if err := d.CharRepo.TouchLogin(ctx, row.ID); err != nil {
		d.Log.Warn("touch login failed", zap.Int64("character", row.ID), zap.Error(err))
	}

	event.Emit(d.Bus, event.PlayerEnteredWorld{
		CharacterID: p.CharacterID,
		Name:        p.Name,
		ZoneID:      p.ZoneID,
	})

	d.send(sess, protocol.ZONE_CHANGE, protocol.ZoneChange{
		ZoneID:   p.ZoneID,
		ZoneName: d.World.Zones.ZoneName(p.ZoneID),
	})
	d.sendSurroundings(sess, p)

	join := protocol.PlayerJoin{
		CharacterID: p.CharacterID,
		Name:        p.Name,
		Position:    p.Position,
		CombatLevel: p.CombatLevel(),
		Health:      p.Health,
		MaxHealth:   p.MaxHealth,
		Rotation:    p.Rotation,
	}
	d.BroadcastZone(p.ZoneID, p.CharacterID, protocol.PLAYER_JOIN, join)

	d.Log.Info("character entered world",
		zap.Int64("character", p.CharacterID),
		zap.String("name", p.Name),
		zap.Int32("zone", p.ZoneID),
	)
}

// sendSurroundings streams the zone's current players, NPCs and nodes to a
// freshly entered character.
func (d *Deps) sendSurroundings(sess *net.Session, p *world.PlayerInfo) {
	for _, other := range d.World.SameZonePlayers(p.ZoneID, p.CharacterID) {
		d.send(sess, protocol.PLAYER_JOIN, protocol.PlayerJoin{
			CharacterID: other.CharacterID,
			Name:        other.Name,
			Position:    other.Position,
			CombatLevel: other.CombatLevel(),
			Health:      other.Health,
			MaxHealth:   other.MaxHealth,
			Rotation:    other.Rotation,
		})
	}
	for _, n := range d.World.Npcs() {
		if n.ZoneID != p.ZoneID {
			continue
		}
		d.send(sess, protocol.NPC_SPAWN, protocol.NpcUpdate{
			NpcID:    n.ID,
			Template: n.Template.TemplateID,
			Position: n.Position,
			Health:   n.Health,
			State:    n.State.String(),
		})
	}
}

// Logout tears down an in-world character: persists it, removes it from the
// world and releases the validator state. Also used by the idle reaper and
// enforcement kicks.
func (d *Deps) Logout(sess *net.Session) {
	ctx, cancel := repoCtx()
	defer cancel()

	if sess.CharID != 0 {
		if p := d.World.RemovePlayer(sess.CharID); p != nil {
			d.savePlayer(ctx, p)
			d.BroadcastZone(p.ZoneID, p.CharacterID, protocol.PLAYER_LEAVE,
				protocol.PlayerLeave{CharacterID: p.CharacterID})
			event.Emit(d.Bus, event.PlayerLeftWorld{
				CharacterID: p.CharacterID,
				SessionID:   p.SessionID,
			})
		}
		d.Movement.Forget(sess.CharID)
		d.Actions.Forget(sess.CharID)
		d.Ledger.Forget(sess.CharID)
	}

	if sess.AccountID != 0 {
		if err := d.Auth.Logout(ctx, sess.AccountID); err != nil {
			d.Log.Warn("logout mark failed", zap.Int64("account", sess.AccountID), zap.Error(err))
		}
	}
}

// SaveDirty persists every character with unsaved mutations. Returns the
// number saved.
func (d *Deps) SaveDirty(ctx context.Context) int {
	saved := 0
	for _, p := range d.World.Players() {
		if !p.Dirty {
			continue
		}
		d.savePlayer(ctx, p)
		saved++
	}
	return saved
}

// SaveAll persists every in-world character regardless of dirtiness, used
// at shutdown.
func (d *Deps) SaveAll(ctx context.Context) int {
	saved := 0
	for _, p := range d.World.Players() {
		d.savePlayer(ctx, p)
		saved++
	}
	return saved
}

// savePlayer writes a character's full state through the repos.
func (d *Deps) savePlayer(ctx context.Context, p *world.PlayerInfo) {
	row := &persist.CharacterRow{
		ID:        p.CharacterID,
		GameMode:  p.GameMode,
		PosX:      p.Position.X,
		PosY:      p.Position.Y,
		PosZ:      p.Position.Z,
		Rotation:  p.Rotation,
		ZoneID:    p.ZoneID,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Gold:      p.Gold,
		GuildID:   p.GuildID,
	}
	if err := d.CharRepo.Save(ctx, row); err != nil {
		d.Log.Error("save character failed", zap.Int64("character", p.CharacterID), zap.Error(err))
		return
	}
	if err := d.SkillRepo.SaveSheet(ctx, p.CharacterID, p.Skills); err != nil {
		d.Log.Error("save skills failed", zap.Int64("character", p.CharacterID), zap.Error(err))
	}
	if err := d.ItemRepo.SaveContainers(ctx, p.CharacterID, p.Backpack, p.Bank, p.Equipment); err != nil {
		d.Log.Error("save items failed", zap.Int64("character", p.CharacterID), zap.Error(err))
	}
	p.Dirty = false
}

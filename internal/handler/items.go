package handler

import (
	"time"

	"github.com/runeward/server/internal/game/inventory"
	"github.com/runeward/server/internal/metrics"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/validate"
	"github.com/runeward/server/internal/world"
)

// HandleEquipItem wears the item in a backpack slot, or takes a worn piece
// off when Unwear is set. Equip swaps are free of the tick budget but still
// metered by the per-kind cooldown.
func (d *Deps) HandleEquipItem(sess *net.Session, payload []byte) {
	var req protocol.EquipItem
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	nowMs := time.Now().UnixMilli()
	if rej := d.Actions.Check(p.CharacterID, validate.ActionEquip, "", nowMs); rej != nil {
		d.sendRejected(sess, rej.Kind, rej.RemainingMs)
		metrics.PacketsRejected.WithLabelValues(rej.Kind).Inc()
		return
	}

	var err error
	if req.Unwear {
		// Slot carries the equipment slot index when unwearing.
		if req.Slot < 0 || req.Slot >= len(inventory.EquipSlots) {
			d.sendError(sess, "BAD_SLOT", "")
			return
		}
		err = p.Equipment.Unequip(p.Backpack, inventory.EquipSlots[req.Slot])
	} else {
		err = p.Equipment.EquipFrom(p.Backpack, req.Slot)
	}
	if err != nil {
		d.sendError(sess, "EQUIP_FAILED", err.Error())
		return
	}
	p.Dirty = true
	d.sendInventory(sess, p)
}

// HandleSwitchPrayer toggles a prayer, metered by the per-tick prayer budget.
func (d *Deps) HandleSwitchPrayer(sess *net.Session, payload []byte) {
	var req protocol.SwitchPrayer
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	nowMs := time.Now().UnixMilli()
	if rej := d.Actions.Check(p.CharacterID, validate.ActionPrayer, "", nowMs); rej != nil {
		d.sendRejected(sess, rej.Kind, rej.RemainingMs)
		metrics.PacketsRejected.WithLabelValues(rej.Kind).Inc()
		return
	}
	if req.Active {
		p.ActivePrayers[req.PrayerID] = true
	} else {
		delete(p.ActivePrayers, req.PrayerID)
	}
}

// HandleItemMove rearranges backpack slots.
func (d *Deps) HandleItemMove(sess *net.Session, payload []byte) {
	var req protocol.ItemMove
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	nowMs := time.Now().UnixMilli()
	if rej := d.Actions.Check(p.CharacterID, validate.ActionItemMove, "", nowMs); rej != nil {
		d.sendRejected(sess, rej.Kind, rej.RemainingMs)
		return
	}
	if err := p.Backpack.Move(req.FromSlot, req.ToSlot); err != nil {
		d.sendError(sess, "BAD_SLOT", "")
		return
	}
	p.Dirty = true
	d.sendInventory(sess, p)
}

// HandleItemDrop destroys items from a backpack slot. Dropped items are not
// placed in the world; the ground layer is out of scope for this shard.
func (d *Deps) HandleItemDrop(sess *net.Session, payload []byte) {
	var req protocol.ItemDrop
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	if _, err := p.Backpack.RemoveSlot(req.Slot, req.Quantity); err != nil {
		d.sendError(sess, "BAD_SLOT", "")
		return
	}
	p.Dirty = true
	d.sendInventory(sess, p)
}

// HandleItemUse consumes one charge of a usable item. Food heals through the
// item's tier.
func (d *Deps) HandleItemUse(sess *net.Session, payload []byte) {
	var req protocol.ItemUse
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	s := p.Backpack.Get(req.Slot)
	if s == nil {
		d.sendError(sess, "EMPTY_SLOT", "")
		return
	}
	info := d.Items.Get(s.ItemID)
	if info == nil {
		d.sendError(sess, "UNKNOWN_ITEM", "")
		return
	}

	if _, err := p.Backpack.RemoveSlot(req.Slot, 1); err != nil {
		d.sendError(sess, "EMPTY_SLOT", "")
		return
	}
	heal := int32(info.Tier) * 20
	if heal > 0 {
		p.Health += heal
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
	}
	p.Dirty = true
	d.sendInventory(sess, p)
}

// HandleBankDeposit moves items from the backpack into a bank tab.
func (d *Deps) HandleBankDeposit(sess *net.Session, payload []byte) {
	var req protocol.BankDeposit
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	if err := inventory.Deposit(p.Backpack, p.Bank, req.InvSlot, req.Tab, req.Quantity); err != nil {
		d.sendError(sess, "DEPOSIT_FAILED", err.Error())
		return
	}
	p.Dirty = true
	d.sendInventory(sess, p)
}

// HandleBankWithdraw moves items from a bank slot into the backpack. The
// withdrawal is all-or-nothing against backpack space.
func (d *Deps) HandleBankWithdraw(sess *net.Session, payload []byte) {
	var req protocol.BankWithdraw
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}
	if err := inventory.Withdraw(p.Backpack, p.Bank, req.Tab, req.Slot, req.Quantity); err != nil {
		d.sendError(sess, "WITHDRAW_FAILED", err.Error())
		return
	}
	p.Dirty = true
	d.sendInventory(sess, p)
}

// sendInventory streams the current backpack snapshot to the owning client.
func (d *Deps) sendInventory(sess *net.Session, p *world.PlayerInfo) {
	upd := protocol.InventoryUpdate{Gold: p.Gold}
	for slot, s := range p.Backpack.Slots() {
		if s == nil {
			continue
		}
		upd.Backpack = append(upd.Backpack, protocol.SlotStack{
			Slot:     slot,
			ItemID:   s.ItemID,
			Quantity: s.Quantity,
		})
	}
	d.send(sess, protocol.INVENTORY_UPDATE, upd)
}

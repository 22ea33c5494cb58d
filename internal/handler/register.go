package handler

import (
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
)

// RegisterAll binds every packet type to its handler with the states it is
// legal in.
func (d *Deps) RegisterAll(reg *Registry) {
	handshake := []net.SessionState{net.StateHandshake}
	lobby := []net.SessionState{net.StateAuthenticated}
	inWorld := []net.SessionState{net.StateInWorld}
	anyState := []net.SessionState{net.StateHandshake, net.StateAuthenticated, net.StateInWorld}

	reg.Register(protocol.AUTH, handshake, d.HandleAuth)
	reg.Register(protocol.PING, anyState, d.HandlePing)

	reg.Register(protocol.CHAR_LIST, lobby, d.HandleCharList)
	reg.Register(protocol.CHAR_CREATE, lobby, d.HandleCharCreate)
	reg.Register(protocol.CHAR_SELECT, lobby, d.HandleCharSelect)
	reg.Register(protocol.CHAR_DELETE, lobby, d.HandleCharDelete)

	reg.Register(protocol.MOVE, inWorld, d.HandleMove)
	reg.Register(protocol.TELEPORT, inWorld, d.HandleTeleport)
	reg.Register(protocol.ATTACK, inWorld, d.HandleAttack)
	reg.Register(protocol.ABILITY, inWorld, d.HandleAbility)
	reg.Register(protocol.SKILL_ACTION, inWorld, d.HandleSkillAction)

	reg.Register(protocol.EQUIP_ITEM, inWorld, d.HandleEquipItem)
	reg.Register(protocol.SWITCH_PRAYER, inWorld, d.HandleSwitchPrayer)
	reg.Register(protocol.ITEM_MOVE, inWorld, d.HandleItemMove)
	reg.Register(protocol.ITEM_DROP, inWorld, d.HandleItemDrop)
	reg.Register(protocol.ITEM_USE, inWorld, d.HandleItemUse)
	reg.Register(protocol.BANK_DEPOSIT, inWorld, d.HandleBankDeposit)
	reg.Register(protocol.BANK_WITHDRAW, inWorld, d.HandleBankWithdraw)

	reg.Register(protocol.CHAT_MESSAGE, inWorld, d.HandleChat)

	reg.Register(protocol.GE_CREATE_OFFER, inWorld, d.HandleGECreate)
	reg.Register(protocol.GE_CANCEL_OFFER, inWorld, d.HandleGECancel)
	reg.Register(protocol.GE_COLLECT, inWorld, d.HandleGECollect)
}

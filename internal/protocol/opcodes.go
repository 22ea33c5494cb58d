// Package protocol defines the wire-level packet type codes and the typed
// message bodies carried in frame payloads. Frames are big-endian:
//
//	┌────────────────┬──────────────┬─────────────┬──────────────┐
//	│ length (2 B)   │ type (2 B)   │ seq (4 B)   │ payload      │
//	└────────────────┴──────────────┴─────────────┴──────────────┘
//
// After session establishment the payload is an encrypted signed envelope;
// during the handshake it is a plaintext JSON body.
package protocol

// Client→server and server→client packet type codes.
const (
	PING          uint16 = 0x01
	PONG          uint16 = 0x02
	AUTH          uint16 = 0x03
	AUTH_RESPONSE uint16 = 0x04

	MOVE      uint16 = 0x10
	MOVE_SYNC uint16 = 0x11
	TELEPORT  uint16 = 0x12

	ATTACK  uint16 = 0x20
	DAMAGE  uint16 = 0x21
	DEATH   uint16 = 0x22
	RESPAWN uint16 = 0x23

	SKILL_ACTION uint16 = 0x30
	SKILL_XP     uint16 = 0x31
	SKILL_LEVEL  uint16 = 0x32

	ITEM_PICKUP      uint16 = 0x40
	ITEM_DROP        uint16 = 0x41
	ITEM_USE         uint16 = 0x42
	INVENTORY_UPDATE uint16 = 0x43
	ITEM_MOVE        uint16 = 0x44
	BANK_DEPOSIT     uint16 = 0x45
	BANK_WITHDRAW    uint16 = 0x46

	CHAT_MESSAGE   uint16 = 0x50
	CHAT_BROADCAST uint16 = 0x51

	NPC_SPAWN  uint16 = 0x60
	NPC_MOVE   uint16 = 0x61
	NPC_DEATH  uint16 = 0x62
	NPC_UPDATE uint16 = 0x63

	PLAYER_JOIN   uint16 = 0x70
	PLAYER_LEAVE  uint16 = 0x71
	PLAYER_UPDATE uint16 = 0x72

	// Character lobby (pre-world).
	CHAR_LIST   uint16 = 0x80
	CHAR_CREATE uint16 = 0x81
	CHAR_SELECT uint16 = 0x82
	CHAR_DELETE uint16 = 0x83

	// Grand-exchange operations.
	GE_CREATE_OFFER uint16 = 0x90
	GE_CANCEL_OFFER uint16 = 0x91
	GE_COLLECT      uint16 = 0x92
	GE_OFFER_UPDATE uint16 = 0x93

	EQUIP_ITEM    uint16 = 0xA0
	SWITCH_PRAYER uint16 = 0xA1
	ABILITY       uint16 = 0xA2

	// Server-only notifications.
	SESSION_ESTABLISHED uint16 = 0xF0
	SESSION_ROTATED     uint16 = 0xF1
	POSITION_CORRECTION uint16 = 0xF2
	ACTION_REJECTED     uint16 = 0xF3
	ERROR_REPLY         uint16 = 0xF4
	ZONE_CHANGE         uint16 = 0xF5
)

// Name returns a short mnemonic for a packet type code, for logs.
func Name(t uint16) string {
	if n, ok := names[t]; ok {
		return n
	}
	return "unknown"
}

var names = map[uint16]string{
	PING: "ping", PONG: "pong", AUTH: "auth", AUTH_RESPONSE: "auth_response",
	MOVE: "move", MOVE_SYNC: "move_sync", TELEPORT: "teleport",
	ATTACK: "attack", DAMAGE: "damage", DEATH: "death", RESPAWN: "respawn",
	SKILL_ACTION: "skill_action", SKILL_XP: "skill_xp", SKILL_LEVEL: "skill_level",
	ITEM_PICKUP: "item_pickup", ITEM_DROP: "item_drop", ITEM_USE: "item_use",
	INVENTORY_UPDATE: "inventory_update", ITEM_MOVE: "item_move",
	BANK_DEPOSIT: "bank_deposit", BANK_WITHDRAW: "bank_withdraw",
	CHAT_MESSAGE:     "chat_message", CHAT_BROADCAST: "chat_broadcast",
	NPC_SPAWN: "npc_spawn", NPC_MOVE: "npc_move", NPC_DEATH: "npc_death", NPC_UPDATE: "npc_update",
	PLAYER_JOIN: "player_join", PLAYER_LEAVE: "player_leave", PLAYER_UPDATE: "player_update",
	CHAR_LIST: "char_list", CHAR_CREATE: "char_create", CHAR_SELECT: "char_select", CHAR_DELETE: "char_delete",
	GE_CREATE_OFFER: "ge_create_offer", GE_CANCEL_OFFER: "ge_cancel_offer",
	GE_COLLECT: "ge_collect", GE_OFFER_UPDATE: "ge_offer_update",
	EQUIP_ITEM: "equip_item", SWITCH_PRAYER: "switch_prayer", ABILITY: "ability",
	SESSION_ESTABLISHED: "session_established", SESSION_ROTATED: "session_rotated",
	POSITION_CORRECTION: "position_correction", ACTION_REJECTED: "action_rejected",
	ERROR_REPLY: "error", ZONE_CHANGE: "zone_change",
}

package protocol

import "encoding/json"

// Vec3 is a world position. The JSON field names match the client wire shape.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Envelope is the signed, encrypted gameplay payload carried in frames after
// session establishment. Payload is base64 of IV||TAG||ciphertext; Signature
// is hex of HMAC-SHA256 over ciphertext||sequence||timestamp||nonce.
type Envelope struct {
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
	Sequence  uint32 `json:"sequence"`
	Timestamp int64  `json:"timestamp"` // unix ms
	Nonce     string `json:"nonce"`     // hex
}

// ─── Handshake (plaintext) ──────────────────────────────────────────

type AuthRequest struct {
	Token    string `json:"token"`
	ClientID string `json:"clientId"`
}

type SessionEstablished struct {
	SessionID string `json:"sessionId"`
	ExpiresAt int64  `json:"expiresAt"` // unix ms
	SignKey   string `json:"signKey"`   // base64, 32 bytes
	CryptKey  string `json:"cryptKey"`  // base64, 32 bytes
}

type SessionRotated struct {
	SessionID string `json:"sessionId"`
	ExpiresAt int64  `json:"expiresAt"`
	SignKey   string `json:"signKey"`
	CryptKey  string `json:"cryptKey"`
}

// ─── Character lobby ────────────────────────────────────────────────

type CharCreate struct {
	Name       string          `json:"name"`
	GameMode   string          `json:"gameMode"` // normal|ironman|hardcore|ultimate
	Appearance json.RawMessage `json:"appearance"`
}

type CharSelect struct {
	CharacterID int64 `json:"characterId"`
}

type CharDelete struct {
	CharacterID int64 `json:"characterId"`
}

type CharSummary struct {
	CharacterID int64  `json:"characterId"`
	Name        string `json:"name"`
	TotalLevel  int    `json:"totalLevel"`
	CombatLevel int    `json:"combatLevel"`
	GameMode    string `json:"gameMode"`
}

type CharList struct {
	Characters []CharSummary `json:"characters"`
}

// ─── Gameplay, client→server ────────────────────────────────────────

type Move struct {
	Position  Vec3    `json:"position"`
	Rotation  float64 `json:"rotation"`
	Timestamp int64   `json:"timestamp"` // client ms
	Kind      string  `json:"kind"`      // walk|run|teleport
}

type Ability struct {
	AbilityID string `json:"abilityId"`
	TargetID  int64  `json:"targetId,omitempty"`
}

type Attack struct {
	TargetNpcID int64 `json:"targetNpcId"`
}

type SkillAction struct {
	Action   string `json:"action"` // mine_ore|chop_tree|catch_fish|cook_food|smith_item|generic
	TargetID int64  `json:"targetId"`
	Position Vec3   `json:"position"` // client-claimed position, cross-checked
}

type EquipItem struct {
	Slot   int  `json:"slot"`
	Unwear bool `json:"unwear,omitempty"`
}

type SwitchPrayer struct {
	PrayerID string `json:"prayerId"`
	Active   bool   `json:"active"`
}

type ItemMove struct {
	FromSlot int `json:"fromSlot"`
	ToSlot   int `json:"toSlot"`
}

type BankDeposit struct {
	InvSlot  int   `json:"invSlot"`
	Tab      int   `json:"tab"`
	Quantity int32 `json:"quantity"`
}

type BankWithdraw struct {
	Tab      int   `json:"tab"`
	Slot     int   `json:"slot"`
	Quantity int32 `json:"quantity"`
}

type ItemDrop struct {
	Slot     int   `json:"slot"`
	Quantity int32 `json:"quantity"`
}

type ItemUse struct {
	Slot int `json:"slot"`
}

type InventoryUpdate struct {
	Backpack []SlotStack `json:"backpack"`
	Gold     int64       `json:"gold"`
}

type SlotStack struct {
	Slot     int   `json:"slot"`
	ItemID   int32 `json:"itemId"`
	Quantity int32 `json:"quantity"`
}

type Chat struct {
	Channel string `json:"channel"` // local|zone|global|trade|guild|party|whisper
	Text    string `json:"text"`
	To      string `json:"to,omitempty"` // whisper recipient name
}

type GECreateOffer struct {
	Kind     string `json:"kind"` // buy|sell
	ItemID   int32  `json:"itemId"`
	Quantity int32  `json:"quantity"`
	Price    int32  `json:"price"` // per unit
}

type GECancelOffer struct {
	OfferID string `json:"offerId"`
}

type GECollect struct {
	OfferID string `json:"offerId"`
}

type Ping struct {
	ClientTime int64 `json:"clientTime"`
}

// ─── Gameplay, server→client ────────────────────────────────────────

type Pong struct {
	ClientTime int64 `json:"clientTime"`
	ServerTime int64 `json:"serverTime"`
}

type PositionCorrection struct {
	Position Vec3   `json:"position"`
	Reason   string `json:"reason"`
}

type ActionRejected struct {
	Kind              string `json:"kind"`
	CooldownRemaining int64  `json:"cooldownRemaining,omitempty"` // ms
}

type ErrorReply struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

type XPDrop struct {
	Skill   string `json:"skill"`
	Granted int64  `json:"granted"`
}

type LevelUp struct {
	Skill    string `json:"skill"`
	NewLevel int    `json:"newLevel"`
}

type SkillResult struct {
	XPGained         int64   `json:"xpGained"`
	LeveledUp        bool    `json:"leveledUp"`
	NewLevel         int     `json:"newLevel,omitempty"`
	ItemsGained      []Stack `json:"itemsGained,omitempty"`
	ResourceDepleted bool    `json:"resourceDepleted,omitempty"`
}

type Stack struct {
	ItemID   int32 `json:"itemId"`
	Quantity int32 `json:"quantity"`
}

type PlayerJoin struct {
	CharacterID int64   `json:"characterId"`
	Name        string  `json:"name"`
	Position    Vec3    `json:"position"`
	CombatLevel int     `json:"combatLevel"`
	Health      int32   `json:"health"`
	MaxHealth   int32   `json:"maxHealth"`
	Rotation    float64 `json:"rotation"`
}

type PlayerLeave struct {
	CharacterID int64 `json:"characterId"`
}

type PlayerMoved struct {
	CharacterID int64   `json:"characterId"`
	Position    Vec3    `json:"position"`
	Rotation    float64 `json:"rotation"`
}

type ZoneChange struct {
	ZoneID   int32  `json:"zoneId"`
	ZoneName string `json:"zoneName"`
}

type NpcUpdate struct {
	NpcID    int64  `json:"npcId"`
	Template int32  `json:"template"`
	Position Vec3   `json:"position"`
	Health   int32  `json:"health"`
	State    string `json:"state"`
}

type DamageEvent struct {
	SourceID int64 `json:"sourceId"`
	TargetID int64 `json:"targetId"`
	Amount   int32 `json:"amount"`
	NpcDied  bool  `json:"npcDied,omitempty"`
}

type GEOfferUpdate struct {
	OfferID        string `json:"offerId"`
	Status         string `json:"status"`
	QuantityFilled int32  `json:"quantityFilled"`
	GoldRefunded   int64  `json:"goldRefunded,omitempty"`
}

type ChatBroadcast struct {
	Channel string `json:"channel"`
	From    string `json:"from,omitempty"`
	Text    string `json:"text"`
}

// Decode unmarshals a JSON payload into v. Kept as a helper so handlers stay
// one-line on the decode path.
func Decode(payload []byte, v any) error {
	return json.Unmarshal(payload, v)
}

// Encode marshals v, panicking only on programmer error (unmarshalable type).
func Encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

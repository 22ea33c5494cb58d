package world

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/runeward/server/internal/game/inventory"
	"github.com/runeward/server/internal/game/skill"
	"github.com/runeward/server/internal/protocol"
)

var nameFolder = cases.Fold()

// Game modes restrict trading and death handling for a character.
const (
	ModeNormal   = "normal"
	ModeIronman  = "ironman"
	ModeHardcore = "hardcore"
	ModeUltimate = "ultimate"
)

// ValidGameMode reports whether mode names a known game mode.
func ValidGameMode(mode string) bool {
	switch mode {
	case ModeNormal, ModeIronman, ModeHardcore, ModeUltimate:
		return true
	}
	return false
}

// PlayerInfo is the authoritative state of one in-world character.
type PlayerInfo struct {
	CharacterID int64
	AccountID   int64
	SessionID   string
	Name        string
	FoldedName  string
	GameMode    string

	Position protocol.Vec3
	Rotation float64
	ZoneID   int32

	Health    int32
	MaxHealth int32

	Gold   int64
	Skills map[string]*skill.State

	Backpack  *inventory.Backpack
	Bank      *inventory.Bank
	Equipment *inventory.Equipment

	ActivePrayers map[string]bool

	GuildID     int64
	PartyID     int64
	TradeChat   bool
	AccessLevel int16

	// Dirty marks unsaved mutations; the persistence pass clears it.
	Dirty bool

	LastSeenTick uint64
}

// FoldName normalizes a character name for case-insensitive lookup.
func FoldName(name string) string {
	return nameFolder.String(strings.TrimSpace(name))
}

// CombatLevel derives the character's combat level from its skill sheet.
func (p *PlayerInfo) CombatLevel() int {
	return skill.CombatLevel(p.Skills)
}

// TotalLevel sums all skill levels.
func (p *PlayerInfo) TotalLevel() int {
	return skill.TotalLevel(p.Skills)
}

// SkillLevel returns the character's level in a skill, defaulting to 1.
func (p *PlayerInfo) SkillLevel(name string) int {
	if st, ok := p.Skills[name]; ok {
		return st.Level
	}
	return 1
}

// ApplyDamage reduces health, clamping at zero, and reports death.
func (p *PlayerInfo) ApplyDamage(amount int32) bool {
	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		return true
	}
	return false
}

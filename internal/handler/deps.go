package handler

import (
	"go.uber.org/zap"

	"github.com/runeward/server/internal/auth"
	"github.com/runeward/server/internal/config"
	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/game/chat"
	"github.com/runeward/server/internal/game/exchange"
	"github.com/runeward/server/internal/game/npc"
	"github.com/runeward/server/internal/game/resource"
	"github.com/runeward/server/internal/game/skill"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/persist"
	"github.com/runeward/server/internal/scripting"
	"github.com/runeward/server/internal/tick"
	"github.com/runeward/server/internal/validate"
	"github.com/runeward/server/internal/world"
)

// SessionTable indexes live sessions by connection id and bound character.
// Owned by the simulation goroutine.
type SessionTable struct {
	byID   map[uint64]*net.Session
	byChar map[int64]*net.Session
}

func NewSessionTable() *SessionTable {
	return &SessionTable{
		byID:   make(map[uint64]*net.Session),
		byChar: make(map[int64]*net.Session),
	}
}

func (t *SessionTable) Add(s *net.Session)          { t.byID[s.ID] = s }
func (t *SessionTable) ByID(id uint64) *net.Session { return t.byID[id] }
func (t *SessionTable) ByChar(charID int64) *net.Session {
	return t.byChar[charID]
}

// Bind associates a session with an in-world character.
func (t *SessionTable) Bind(s *net.Session, charID int64) {
	t.byChar[charID] = s
}

// Remove drops a session and its character binding, returning the session.
func (t *SessionTable) Remove(id uint64) *net.Session {
	s, ok := t.byID[id]
	if !ok {
		return nil
	}
	delete(t.byID, id)
	if s.CharID != 0 {
		delete(t.byChar, s.CharID)
	}
	return s
}

// All iterates every live session.
func (t *SessionTable) All(fn func(*net.Session)) {
	for _, s := range t.byID {
		fn(s)
	}
}

func (t *SessionTable) Count() int { return len(t.byID) }

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Clock    *tick.Clock
	World    *world.State
	Sessions *SessionTable
	Bus      *event.Bus

	Auth auth.Provider

	AccountRepo *persist.AccountRepo
	CharRepo    *persist.CharacterRepo
	SkillRepo   *persist.SkillRepo
	ItemRepo    *persist.ItemRepo
	OfferRepo   *persist.OfferRepo
	AuditRepo   *persist.AuditRepo
	Highscores  *persist.HighscoreRepo

	Items     *data.ItemTable
	Npcs      *data.NpcTable
	Resources *data.ResourceTable

	Skills    *skill.Engine
	Movement  *validate.Movement
	Actions   *validate.Actions
	Ledger    *validate.Ledger
	Exchange  *exchange.Engine
	Chat      *chat.Router
	NpcMgr    *npc.Manager
	ResMgr    *resource.Manager
	Scripting *scripting.Engine
}

// Thresholds builds the flag escalation thresholds from config.
func (d *Deps) Thresholds() validate.Thresholds {
	v := d.Config.Validation
	return validate.Thresholds{
		Low:      v.ThresholdLow,
		Medium:   v.ThresholdMedium,
		High:     v.ThresholdHigh,
		Critical: v.ThresholdCritical,
	}
}

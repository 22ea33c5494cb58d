package system

import (
	"time"

	"github.com/runeward/server/internal/core/system"
	"github.com/runeward/server/internal/game/npc"
	"github.com/runeward/server/internal/game/resource"
	"github.com/runeward/server/internal/handler"
)

// NpcTick advances the NPC state machines and the respawn queue.
type NpcTick struct {
	mgr *npc.Manager
}

func NewNpcTick(mgr *npc.Manager) *NpcTick {
	return &NpcTick{mgr: mgr}
}

func (s *NpcTick) Phase() system.Phase { return system.PhaseUpdate }

func (s *NpcTick) Update(dt time.Duration) {
	s.mgr.Tick(uint64(time.Now().UnixMilli()))
}

// ResourceTick respawns depleted nodes whose timers have elapsed.
type ResourceTick struct {
	mgr *resource.Manager
}

func NewResourceTick(mgr *resource.Manager) *ResourceTick {
	return &ResourceTick{mgr: mgr}
}

func (s *ResourceTick) Phase() system.Phase { return system.PhaseUpdate }

func (s *ResourceTick) Update(dt time.Duration) {
	s.mgr.Tick(uint64(time.Now().UnixMilli()))
}

// offerTTL is how long an unfilled offer rests in the book before the sweep
// expires it.
const offerTTL = 7 * 24 * time.Hour

// sweepEvery bounds how often the expiry scan runs.
const sweepEvery = time.Minute

// ExchangeSweep periodically expires stale offers and pushes their terminal
// state to owners and storage.
type ExchangeSweep struct {
	deps      *handler.Deps
	lastSweep time.Time
}

func NewExchangeSweep(deps *handler.Deps) *ExchangeSweep {
	return &ExchangeSweep{deps: deps}
}

func (s *ExchangeSweep) Phase() system.Phase { return system.PhaseUpdate }

func (s *ExchangeSweep) Update(dt time.Duration) {
	now := time.Now()
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	s.lastSweep = now

	for _, o := range s.deps.Exchange.ExpireBefore(now.Add(-offerTTL)) {
		s.deps.PersistOffer(o)
		s.deps.NotifyOffer(o)
	}
}

package validate

import "github.com/runeward/server/internal/config"

// Rejection kinds returned by the action limiter.
const (
	RejectTickBudget      = "TICK_BUDGET_EXCEEDED"
	RejectGlobalCooldown  = "GLOBAL_COOLDOWN"
	RejectAbilityCooldown = "ABILITY_ON_COOLDOWN"
)

// Action kinds metered by the tick bucket.
const (
	ActionAbility     = "ability"
	ActionAttack      = "attack"
	ActionSkill       = "skill_action"
	ActionEquip       = "equip_item"
	ActionItemMove    = "item_move"
	ActionPrayer      = "switch_prayer"
	ActionGEOperation = "ge_operation"
)

// actionTickCosts is the per-kind budget charge. Unlisted kinds cost 1.
var actionTickCosts = map[string]int{
	ActionAbility:     1,
	ActionAttack:      1,
	ActionSkill:       1,
	ActionEquip:       0,
	ActionItemMove:    0,
	ActionGEOperation: 0,
}

// abilityCooldowns maps ability ids to their cooldowns in ms.
var abilityCooldowns = map[string]int64{
	"surge":        17000,
	"escape":       17000,
	"bladed_dive":  20000,
	"barge":        20000,
	"dive":         17000,
	"double_surge": 17000,
	"mobile_perk":  0,
	"slice":        3000,
	"sever":        15000,
	"overpower":    30000,
	"snipe":        10000,
	"asphyxiate":   20000,
}

const suspicionCooldownBypassMs int64 = 1000

// Rejection reports why an action was refused.
type Rejection struct {
	Kind        string
	RemainingMs int64
}

// bucket is the per-character rate state. Counters reset on tick rollover;
// suspicion and cooldowns persist.
type bucket struct {
	tick           uint64
	actionsUsed    int
	prayerSwitches int
	suspicion      int
	lastActionAt   map[string]int64
	abilityReady   map[string]int64
	recentActions  []int64
}

// recentActionCap bounds the accepted-action timestamp window kept for the
// bot analytics scan.
const recentActionCap = 64

// Actions enforces per-tick budgets, the global cooldown and ability
// cooldowns.
type Actions struct {
	cfg     config.ValidationConfig
	buckets map[int64]*bucket
}

func NewActions(cfg config.ValidationConfig) *Actions {
	return &Actions{cfg: cfg, buckets: make(map[int64]*bucket)}
}

// Suspicion returns the character's current suspicion counter.
func (a *Actions) Suspicion(charID int64) int {
	return a.bucket(charID).suspicion
}

// ActionTimes returns the character's accepted action timestamps, oldest
// first, for the bot analytics scan.
func (a *Actions) ActionTimes(charID int64) []int64 {
	return a.bucket(charID).recentActions
}

// Forget drops a character's rate state, used on logout.
func (a *Actions) Forget(charID int64) {
	delete(a.buckets, charID)
}

// Check validates one action at nowMs. abilityID is "" for non-ability
// actions. A nil return means the action was accepted and charged.
func (a *Actions) Check(charID int64, kind, abilityID string, nowMs int64) *Rejection {
	b := a.bucket(charID)

	tick := uint64(nowMs / a.cfg.TickDurationMs)
	if tick > b.tick {
		b.tick = tick
		b.actionsUsed = 0
		b.prayerSwitches = 0
	}

	if kind == ActionPrayer {
		if b.prayerSwitches >= a.cfg.MaxPrayerSwitchPerTick {
			b.suspicion++
			return &Rejection{Kind: RejectTickBudget}
		}
		b.prayerSwitches++
		return nil
	}

	cost, ok := actionTickCosts[kind]
	if !ok {
		cost = 1
	}
	if b.actionsUsed+cost > a.cfg.MaxActionsPerTick {
		b.suspicion++
		return &Rejection{Kind: RejectTickBudget}
	}

	if last, ok := b.lastActionAt[kind]; ok {
		if since := nowMs - last; since < a.cfg.GlobalCooldownMs {
			return &Rejection{Kind: RejectGlobalCooldown, RemainingMs: a.cfg.GlobalCooldownMs - since}
		}
	}

	if abilityID != "" {
		if ready, ok := b.abilityReady[abilityID]; ok && nowMs < ready {
			remaining := ready - nowMs
			if remaining > suspicionCooldownBypassMs {
				b.suspicion++
			}
			return &Rejection{Kind: RejectAbilityCooldown, RemainingMs: remaining}
		}
	}

	b.actionsUsed += cost
	b.lastActionAt[kind] = nowMs
	b.recentActions = append(b.recentActions, nowMs)
	if len(b.recentActions) > recentActionCap {
		b.recentActions = b.recentActions[len(b.recentActions)-recentActionCap:]
	}
	if abilityID != "" {
		if cd, ok := abilityCooldowns[abilityID]; ok && cd > 0 {
			b.abilityReady[abilityID] = nowMs + cd
		}
	}
	if b.suspicion > 0 {
		b.suspicion--
	}
	return nil
}

func (a *Actions) bucket(charID int64) *bucket {
	b, ok := a.buckets[charID]
	if !ok {
		b = &bucket{
			lastActionAt: make(map[string]int64),
			abilityReady: make(map[string]int64),
		}
		a.buckets[charID] = b
	}
	return b
}

package skill

import "math"

// Engine grants XP and derives levels. XP multipliers (server rates, bonus
// events) are multiplied into every grant.
type Engine struct {
	xpRate float64
}

func NewEngine(xpRate float64) *Engine {
	if xpRate <= 0 {
		xpRate = 1.0
	}
	return &Engine{xpRate: xpRate}
}

// GrantResult reports the outcome of one XP grant.
type GrantResult struct {
	Granted   int64
	LeveledUp bool
	NewLevel  int
}

// Grant applies base XP (scaled by multipliers, floored) to a skill state,
// capping stored XP at MaxXP and recomputing the level against the skill's
// cap. The state is mutated in place.
func (e *Engine) Grant(sheet map[string]*State, skillName string, base float64) GrantResult {
	st, ok := sheet[skillName]
	if !ok {
		return GrantResult{}
	}
	effective := int64(math.Floor(base * e.xpRate))
	if effective < 0 {
		effective = 0
	}

	newXP := st.XP + effective
	if newXP > MaxXP {
		newXP = MaxXP
	}
	granted := newXP - st.XP
	st.XP = newXP

	oldLevel := st.Level
	st.Level = LevelFromXP(st.XP, CapFor(skillName))

	return GrantResult{
		Granted:   granted,
		LeveledUp: st.Level > oldLevel,
		NewLevel:  st.Level,
	}
}

// CombatLevel computes the closed-form combat level from a skill sheet:
//
//	base        = (defence + hitpoints + ⌊prayer/2⌋ + ⌊summoning/2⌋) × 0.25
//	melee       = (attack + strength) × 0.325
//	rangedMagic = max(⌊ranged×1.5⌋, ⌊magic×1.5⌋) × 0.325
//	combat      = ⌊base + max(melee, rangedMagic)⌋
func CombatLevel(sheet map[string]*State) int {
	lvl := func(name string) float64 {
		if st, ok := sheet[name]; ok {
			return float64(st.Level)
		}
		return 1
	}

	base := (lvl(Defence) + lvl(Hitpoints) +
		math.Floor(lvl(Prayer)/2) + math.Floor(lvl(Summoning)/2)) * 0.25
	melee := (lvl(Attack) + lvl(Strength)) * 0.325
	rangedMagic := math.Max(
		math.Floor(lvl(Ranged)*1.5),
		math.Floor(lvl(Magic)*1.5),
	) * 0.325

	return int(math.Floor(base + math.Max(melee, rangedMagic)))
}

package skill

import "math"

// Skill action kinds carried in skill_action packets.
const (
	ActionMineOre   = "mine_ore"
	ActionChopTree  = "chop_tree"
	ActionCatchFish = "catch_fish"
	ActionCookFood  = "cook_food"
	ActionSmithItem = "smith_item"
	ActionGeneric   = "generic"
)

// actionSkill maps an action kind to the skill it trains.
var actionSkill = map[string]string{
	ActionMineOre:   Mining,
	ActionChopTree:  Woodcutting,
	ActionCatchFish: Fishing,
	ActionCookFood:  Cooking,
	ActionSmithItem: Smithing,
}

// SkillFor returns the skill an action trains, or "" for generic actions.
func SkillFor(action string) string {
	return actionSkill[action]
}

// IsGathering reports whether the action targets a resource node.
func IsGathering(action string) bool {
	switch action {
	case ActionMineOre, ActionChopTree, ActionCatchFish:
		return true
	}
	return false
}

// SuccessChance is the per-attempt success probability for a gathering
// action: min(0.95, 0.5 + 0.02 × (level − levelRequired)).
func SuccessChance(level, levelRequired int) float64 {
	return math.Min(0.95, 0.5+0.02*float64(level-levelRequired))
}

// InteractionRange is the maximum distance, in world units, between a
// character and the node or station it acts on.
const InteractionRange = 10.0

// PositionTolerance is how far the client-claimed position may drift from
// the authoritative one before a skill action is refused.
const PositionTolerance = 10.0

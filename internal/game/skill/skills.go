package skill

// Canonical skill names. The elite set is capped at 120; everything else
// at 99.
const (
	Attack       = "attack"
	Strength     = "strength"
	Defence      = "defence"
	Hitpoints    = "hitpoints"
	Ranged       = "ranged"
	Prayer       = "prayer"
	Magic        = "magic"
	Cooking      = "cooking"
	Woodcutting  = "woodcutting"
	Fletching    = "fletching"
	Fishing      = "fishing"
	Firemaking   = "firemaking"
	Crafting     = "crafting"
	Smithing     = "smithing"
	Mining       = "mining"
	Herblore     = "herblore"
	Agility      = "agility"
	Thieving     = "thieving"
	Slayer       = "slayer"
	Farming      = "farming"
	Runecrafting = "runecrafting"
	Summoning    = "summoning"
	Dungeoneering = "dungeoneering"
	Invention     = "invention"
)

// AllSkills is the canonical registry, in display order.
var AllSkills = []string{
	Attack, Strength, Defence, Hitpoints, Ranged, Prayer, Magic,
	Cooking, Woodcutting, Fletching, Fishing, Firemaking, Crafting,
	Smithing, Mining, Herblore, Agility, Thieving, Slayer, Farming,
	Runecrafting, Summoning, Dungeoneering, Invention,
}

var eliteSkills = map[string]bool{
	Invention:     true,
	Slayer:        true,
	Dungeoneering: true,
	Herblore:      true,
	Farming:       true,
}

// combatSkills are the skills whose level feeds the combat-level formula.
var combatSkills = map[string]bool{
	Attack: true, Strength: true, Defence: true, Hitpoints: true,
	Prayer: true, Ranged: true, Magic: true, Summoning: true,
}

// IsSkill reports whether name is in the canonical registry.
func IsSkill(name string) bool {
	for _, s := range AllSkills {
		if s == name {
			return true
		}
	}
	return false
}

// CapFor returns the level cap for a skill: 120 for the elite set, 99
// otherwise.
func CapFor(name string) int {
	if eliteSkills[name] {
		return EliteCap
	}
	return NormalCap
}

// IsCombatSkill reports whether a change to this skill requires a combat
// level recomputation.
func IsCombatSkill(name string) bool {
	return combatSkills[name]
}

// State is one (character, skill) record.
type State struct {
	Level int
	XP    int64
}

// NewSheet returns a fresh skill sheet: hitpoints at level 10 / 1154 xp,
// everything else at level 1 / 0 xp.
func NewSheet() map[string]*State {
	sheet := make(map[string]*State, len(AllSkills))
	for _, name := range AllSkills {
		if name == Hitpoints {
			sheet[name] = &State{Level: 10, XP: HitpointsInit}
		} else {
			sheet[name] = &State{Level: 1, XP: 0}
		}
	}
	return sheet
}

// TotalLevel is the sum of all skill levels in a sheet.
func TotalLevel(sheet map[string]*State) int {
	total := 0
	for _, st := range sheet {
		total += st.Level
	}
	return total
}

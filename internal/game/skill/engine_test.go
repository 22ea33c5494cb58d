package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPTableKnownValues(t *testing.T) {
	assert.Equal(t, int64(0), XPForLevel(1))
	assert.Equal(t, int64(83), XPForLevel(2))
	assert.Equal(t, int64(13_034_431), XPForLevel(99))
}

func TestLevelFromXPRespectsCap(t *testing.T) {
	// Enough XP for level 100, but a normal skill stops at 99.
	xp := XPForLevel(100)
	assert.Equal(t, 99, LevelFromXP(xp, NormalCap))
	assert.Equal(t, 100, LevelFromXP(xp, EliteCap))
}

func TestCapFor(t *testing.T) {
	assert.Equal(t, NormalCap, CapFor(Attack))
	assert.Equal(t, EliteCap, CapFor(Slayer))
	assert.Equal(t, EliteCap, CapFor(Invention))
}

func TestNewSheet(t *testing.T) {
	sheet := NewSheet()
	require.Len(t, sheet, len(AllSkills))
	assert.Equal(t, 10, sheet[Hitpoints].Level)
	assert.Equal(t, int64(HitpointsInit), sheet[Hitpoints].XP)
	assert.Equal(t, 1, sheet[Attack].Level)
	assert.Equal(t, int64(0), sheet[Attack].XP)
}

func TestGrantLevelsUp(t *testing.T) {
	e := NewEngine(1.0)
	sheet := NewSheet()

	res := e.Grant(sheet, Attack, 83)
	assert.Equal(t, int64(83), res.Granted)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 2, sheet[Attack].Level)
}

func TestGrantAppliesRate(t *testing.T) {
	e := NewEngine(2.0)
	sheet := NewSheet()

	res := e.Grant(sheet, Mining, 50)
	assert.Equal(t, int64(100), res.Granted)
	assert.Equal(t, 2, res.NewLevel)
}

func TestGrantCapsAtMaxXP(t *testing.T) {
	e := NewEngine(1.0)
	sheet := NewSheet()
	sheet[Fishing].XP = MaxXP - 10

	res := e.Grant(sheet, Fishing, 100)
	assert.Equal(t, int64(10), res.Granted)
	assert.Equal(t, MaxXP, sheet[Fishing].XP)

	// A second grant against the cap yields nothing.
	res = e.Grant(sheet, Fishing, 100)
	assert.Equal(t, int64(0), res.Granted)
}

func TestGrantUnknownSkillIsNoop(t *testing.T) {
	e := NewEngine(1.0)
	res := e.Grant(map[string]*State{}, "juggling", 100)
	assert.Equal(t, int64(0), res.Granted)
	assert.False(t, res.LeveledUp)
}

func TestCombatLevelFreshSheet(t *testing.T) {
	// base (1+10)/4 = 2.75, melee (1+1)*0.325 = 0.65 → floor(3.4) = 3.
	assert.Equal(t, 3, CombatLevel(NewSheet()))
}

func TestCombatLevelMidGame(t *testing.T) {
	sheet := NewSheet()
	for _, name := range []string{Attack, Strength, Defence, Hitpoints} {
		sheet[name].Level = 60
	}
	sheet[Prayer].Level = 43

	// base (60+60+21+0)*0.25 = 35.25, melee (60+60)*0.325 = 39 → 74.
	assert.Equal(t, 74, CombatLevel(sheet))
}

func TestCombatLevelRangedOverMelee(t *testing.T) {
	sheet := NewSheet()
	sheet[Ranged].Level = 90

	// rangedMagic floor(90*1.5)*0.325 = 43.875 beats melee 0.65.
	base := 2.75
	want := int(base + 43.875)
	assert.Equal(t, want, CombatLevel(sheet))
}

func TestTotalLevel(t *testing.T) {
	sheet := NewSheet()
	// 23 skills at level 1 plus hitpoints at 10.
	assert.Equal(t, len(AllSkills)-1+10, TotalLevel(sheet))
}

func TestSuccessChance(t *testing.T) {
	assert.InDelta(t, 0.5, SuccessChance(1, 1), 1e-9)
	assert.InDelta(t, 0.7, SuccessChance(11, 1), 1e-9)
	assert.InDelta(t, 0.95, SuccessChance(99, 1), 1e-9)
}

func TestSkillForAction(t *testing.T) {
	assert.Equal(t, Mining, SkillFor(ActionMineOre))
	assert.Equal(t, Cooking, SkillFor(ActionCookFood))
	assert.Equal(t, "", SkillFor(ActionGeneric))

	assert.True(t, IsGathering(ActionChopTree))
	assert.False(t, IsGathering(ActionSmithItem))
}

func TestRecipeFor(t *testing.T) {
	r, ok := RecipeFor(2001)
	require.True(t, ok)
	assert.Equal(t, int32(2002), r.Output)
	assert.Equal(t, int32(2003), r.Failure)
	assert.Equal(t, Cooking, r.Skill)

	r, ok = RecipeFor(1002)
	require.True(t, ok)
	assert.Equal(t, int32(1102), r.Output)
	assert.Equal(t, 15, r.LevelRequired)
	assert.Zero(t, r.Failure)

	_, ok = RecipeFor(9999)
	assert.False(t, ok)
}

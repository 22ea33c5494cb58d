package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeward/server/internal/config"
)

func newActions() *Actions {
	return NewActions(config.Defaults().Validation)
}

func TestActionsTickBudget(t *testing.T) {
	a := newActions()

	require.Nil(t, a.Check(1, ActionAttack, "", 1000))

	// One metered action per tick; the second is over budget.
	rej := a.Check(1, ActionSkill, "", 1100)
	require.NotNil(t, rej)
	assert.Equal(t, RejectTickBudget, rej.Kind)
	assert.Equal(t, 1, a.Suspicion(1))

	// The budget resets on the next tick.
	assert.Nil(t, a.Check(1, ActionSkill, "", 1800))
}

func TestActionsGlobalCooldown(t *testing.T) {
	a := newActions()

	require.Nil(t, a.Check(1, ActionAttack, "", 500))

	// Next tick, but only 400ms since the last attack.
	rej := a.Check(1, ActionAttack, "", 900)
	require.NotNil(t, rej)
	assert.Equal(t, RejectGlobalCooldown, rej.Kind)
	assert.Equal(t, int64(180), rej.RemainingMs)

	assert.Nil(t, a.Check(1, ActionAttack, "", 1100))
}

func TestActionsFreeKindsSkipBudget(t *testing.T) {
	a := newActions()

	// Equip, item moves and exchange calls cost nothing, so they coexist
	// with a metered action on the same tick.
	require.Nil(t, a.Check(1, ActionEquip, "", 1000))
	require.Nil(t, a.Check(1, ActionItemMove, "", 1010))
	require.Nil(t, a.Check(1, ActionGEOperation, "", 1020))
	assert.Nil(t, a.Check(1, ActionAttack, "", 1030))
}

func TestActionsPrayerBudget(t *testing.T) {
	a := newActions()
	cfg := config.Defaults().Validation

	for i := 0; i < cfg.MaxPrayerSwitchPerTick; i++ {
		require.Nil(t, a.Check(1, ActionPrayer, "", 1000+int64(i)))
	}
	rej := a.Check(1, ActionPrayer, "", 1050)
	require.NotNil(t, rej)
	assert.Equal(t, RejectTickBudget, rej.Kind)
	assert.Equal(t, 1, a.Suspicion(1))

	// Prayer flicking does not touch the metered action budget.
	assert.Nil(t, a.Check(1, ActionAttack, "", 1060))
}

func TestActionsAbilityCooldown(t *testing.T) {
	a := newActions()

	require.Nil(t, a.Check(1, ActionAbility, "surge", 1000))

	rej := a.Check(1, ActionAbility, "surge", 2000)
	require.NotNil(t, rej)
	assert.Equal(t, RejectAbilityCooldown, rej.Kind)
	assert.Equal(t, int64(16000), rej.RemainingMs)
	// Trying again a full second early reads as a bypass attempt.
	assert.Equal(t, 1, a.Suspicion(1))

	assert.Nil(t, a.Check(1, ActionAbility, "surge", 18000))
}

func TestActionsSuspicionDecaysOnAccept(t *testing.T) {
	a := newActions()

	require.Nil(t, a.Check(1, ActionAttack, "", 1000))
	require.NotNil(t, a.Check(1, ActionAttack, "", 1100)) // budget
	assert.Equal(t, 1, a.Suspicion(1))

	require.Nil(t, a.Check(1, ActionAttack, "", 2200))
	assert.Equal(t, 0, a.Suspicion(1))
}

func TestActionsRecordsAcceptedTimes(t *testing.T) {
	a := newActions()

	require.Nil(t, a.Check(1, ActionAttack, "", 1000))
	require.Nil(t, a.Check(1, ActionAttack, "", 2200))
	require.NotNil(t, a.Check(1, ActionAttack, "", 2300))

	assert.Equal(t, []int64{1000, 2200}, a.ActionTimes(1))

	a.Forget(1)
	assert.Empty(t, a.ActionTimes(1))
}

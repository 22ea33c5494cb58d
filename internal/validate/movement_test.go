package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeward/server/internal/config"
	"github.com/runeward/server/internal/protocol"
)

func newMovement() *Movement {
	return NewMovement(config.Defaults().Validation, FlatWorld{}, FlatWorld{})
}

func walk(x float64, ts int64) protocol.Move {
	return protocol.Move{Position: protocol.Vec3{X: x}, Timestamp: ts, Kind: MoveWalk}
}

func TestMovementAcceptsPlausibleWalk(t *testing.T) {
	m := newMovement()

	// First move is judged against one tick of travel time.
	v := m.Check(1, protocol.Vec3{}, walk(10, 600), 600)
	assert.True(t, v.OK)
	assert.False(t, v.Teleport)
	require.Len(t, m.History(1), 1)
}

func TestMovementFlagsSpeedHack(t *testing.T) {
	m := newMovement()
	auth := protocol.Vec3{}

	// 200 units in 600ms is 333 u/s, past the walk envelope of 253.
	v := m.Check(1, auth, walk(200, 600), 600)
	assert.False(t, v.OK)
	assert.Equal(t, FlagSpeedHack, v.FlagKind)
	assert.Equal(t, auth, v.Correct)
	assert.False(t, v.Disconnect)
	// Rejected moves leave no history behind.
	assert.Empty(t, m.History(1))
}

func TestMovementRunEnvelopeIsWider(t *testing.T) {
	m := newMovement()

	mv := walk(200, 600)
	mv.Kind = MoveRun
	// The same 333 u/s step is fine when running (506 max).
	v := m.Check(1, protocol.Vec3{}, mv, 600)
	assert.True(t, v.OK)
}

func TestMovementFlagsTeleportStep(t *testing.T) {
	m := newMovement()

	mv := walk(150, 600)
	mv.Kind = MoveRun
	// Under the run speed cap but past the 100-unit teleport threshold.
	v := m.Check(1, protocol.Vec3{}, mv, 600)
	assert.False(t, v.OK)
	assert.Equal(t, FlagTeleportHack, v.FlagKind)
}

func TestMovementTeleportKindSkipsEnvelope(t *testing.T) {
	m := newMovement()

	mv := protocol.Move{Position: protocol.Vec3{X: 5000}, Timestamp: 600, Kind: MoveTeleport}
	v := m.Check(1, protocol.Vec3{}, mv, 600)
	assert.True(t, v.OK)
	assert.True(t, v.Teleport)
}

func TestMovementFlagsTimeAnomaly(t *testing.T) {
	m := newMovement()

	require.True(t, m.Check(1, protocol.Vec3{}, walk(10, 600), 600).OK)

	// Client timestamp going backwards is a violation, not a divide-by-zero.
	v := m.Check(1, protocol.Vec3{X: 10}, walk(20, 600), 1200)
	assert.False(t, v.OK)
	assert.Equal(t, FlagTimeAnomaly, v.FlagKind)
}

func TestMovementAbilityGrace(t *testing.T) {
	m := newMovement()

	m.RegisterAbility(1, "surge", 600)
	// A surge-sized hop right after the ability is let through.
	v := m.Check(1, protocol.Vec3{}, walk(200, 600), 700)
	assert.True(t, v.OK)

	// The grace does not apply to another character.
	v = m.Check(2, protocol.Vec3{}, walk(200, 600), 700)
	assert.False(t, v.OK)
}

func TestMovementAbilityGraceExpires(t *testing.T) {
	m := newMovement()

	m.RegisterAbility(1, "surge", 600)
	v := m.Check(1, protocol.Vec3{}, walk(200, 600), 600+abilityGraceMs+1)
	assert.False(t, v.OK)
	assert.Equal(t, FlagSpeedHack, v.FlagKind)
}

func TestMovementNonAbilityGrantsNoGrace(t *testing.T) {
	m := newMovement()

	m.RegisterAbility(1, "slice", 600)
	v := m.Check(1, protocol.Vec3{}, walk(200, 600), 700)
	assert.False(t, v.OK)
}

func TestMovementDisconnectsAfterCorrectionBudget(t *testing.T) {
	m := newMovement()
	cfg := config.Defaults().Validation

	for i := 0; i < cfg.MaxCorrectionsPerMin; i++ {
		v := m.Check(1, protocol.Vec3{}, walk(200, 600), 600)
		require.False(t, v.OK)
		require.False(t, v.Disconnect)
	}
	// One more rubber-band inside the minute exhausts the budget.
	v := m.Check(1, protocol.Vec3{}, walk(200, 600), 600)
	assert.True(t, v.Disconnect)
}

func TestMovementHistoryBounded(t *testing.T) {
	m := newMovement()
	cfg := config.Defaults().Validation

	auth := protocol.Vec3{}
	for i := 1; i <= cfg.PositionHistorySamples+5; i++ {
		ts := int64(i) * 600
		v := m.Check(1, auth, walk(float64(i)*10, ts), ts)
		require.True(t, v.OK)
		auth = protocol.Vec3{X: float64(i) * 10}
	}
	assert.Len(t, m.History(1), cfg.PositionHistorySamples)
}

func TestMovementForget(t *testing.T) {
	m := newMovement()
	require.True(t, m.Check(1, protocol.Vec3{}, walk(10, 600), 600).OK)
	m.Forget(1)
	assert.Empty(t, m.History(1))
}

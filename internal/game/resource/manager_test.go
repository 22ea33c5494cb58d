package resource

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/game/skill"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

// zeroSource makes every Float64 draw 0.0: success and depletion rolls with
// chance > 0 always pass, and yields land on their row minimum.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

// ceilSource makes every Float64 draw just under 1.0, failing every roll
// short of certainty.
type ceilSource struct{}

func (ceilSource) Int63() int64 { return math.MaxInt64 - 4095 }
func (ceilSource) Seed(int64)   {}

type fakeStateSink struct {
	states map[int64]uint64
}

func (s *fakeStateSink) RecordNodeState(nodeID int64, depleted bool, respawnAtMs uint64) {
	if s.states == nil {
		s.states = make(map[int64]uint64)
	}
	if depleted {
		s.states[nodeID] = respawnAtMs
	} else {
		delete(s.states, nodeID)
	}
}

func ironRock() data.ResourceTemplate {
	return data.ResourceTemplate{
		TemplateID:    102,
		Name:          "Iron rock",
		SkillRequired: skill.Mining,
		LevelRequired: 15,
		BonusLevelReq: 45,
		XPPerHarvest:  35,
		RespawnMs:     4000,
		DepleteChance: 1.0,
		Yields: []data.YieldRow{
			{ItemID: 1002, Min: 1, Max: 1, Chance: 1.0},
		},
	}
}

func newResourceFixture(t *testing.T, src rand.Source) (*Manager, *world.NodeInfo, *fakeStateSink) {
	t.Helper()
	state := world.NewState(nil)
	sink := &fakeStateSink{}
	m := NewManager(state, event.NewBus(), rand.New(src), sink, zap.NewNop())

	table := data.NewResourceTable([]data.ResourceTemplate{ironRock()})
	placed := m.PlaceAll([]data.ResourceSpawn{{TemplateID: 102, X: 10, Y: 10}}, table)
	require.Equal(t, 1, placed)

	var n *world.NodeInfo
	for _, cur := range state.Nodes() {
		n = cur
	}
	require.NotNil(t, n)
	return m, n, sink
}

func TestHarvestRejections(t *testing.T) {
	m, n, _ := newResourceFixture(t, zeroSource{})

	_, err := m.Harvest(n, 7, 50, skill.ActionChopTree, 1000)
	assert.ErrorIs(t, err, ErrWrongSkill)

	_, err = m.Harvest(n, 7, 10, skill.ActionMineOre, 1000)
	assert.ErrorIs(t, err, ErrLevelTooLow)

	n.Deplete(5000)
	_, err = m.Harvest(n, 7, 50, skill.ActionMineOre, 1000)
	assert.ErrorIs(t, err, ErrDepleted)
}

func TestHarvestSuccessDepletesNode(t *testing.T) {
	m, n, sink := newResourceFixture(t, zeroSource{})

	res, err := m.Harvest(n, 7, 20, skill.ActionMineOre, 1000)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 35.0, res.XP)
	assert.Equal(t, []protocol.Stack{{ItemID: 1002, Quantity: 1}}, res.Items)

	// deplete_chance 1.0: the rock is spent and the state is written through.
	assert.True(t, res.Depleted)
	assert.False(t, n.Harvestable())
	assert.Equal(t, uint64(5000), n.RespawnAtMs)
	assert.Equal(t, uint64(5000), sink.states[n.ID])
}

func TestHarvestFailureYieldsNothing(t *testing.T) {
	m, n, _ := newResourceFixture(t, ceilSource{})

	res, err := m.Harvest(n, 7, 20, skill.ActionMineOre, 1000)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Items)
	assert.True(t, n.Harvestable())
}

func TestHarvestHookRewritesYield(t *testing.T) {
	m, n, _ := newResourceFixture(t, zeroSource{})
	m.SetHarvestHook(func(_ *world.NodeInfo, charID int64, items []protocol.Stack) []protocol.Stack {
		assert.Equal(t, int64(7), charID)
		return append(items, protocol.Stack{ItemID: 6001, Quantity: 1})
	})

	res, err := m.Harvest(n, 7, 20, skill.ActionMineOre, 1000)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int32(6001), res.Items[1].ItemID)
}

func TestTickRespawnsDueNodes(t *testing.T) {
	m, n, sink := newResourceFixture(t, zeroSource{})
	_, err := m.Harvest(n, 7, 20, skill.ActionMineOre, 1000)
	require.NoError(t, err)

	m.Tick(4999)
	assert.False(t, n.Harvestable())

	m.Tick(5000)
	assert.True(t, n.Harvestable())
	assert.NotContains(t, sink.states, n.ID)
}

func TestRestoreStates(t *testing.T) {
	m, n, _ := newResourceFixture(t, zeroSource{})

	// A deadline in the past means the node came back while we were down.
	m.RestoreStates(map[int64]uint64{n.ID: 500}, 1000)
	assert.True(t, n.Harvestable())

	m.RestoreStates(map[int64]uint64{n.ID: 9000, 999: 9000}, 1000)
	assert.False(t, n.Harvestable())
	assert.Equal(t, uint64(9000), n.RespawnAtMs)
}

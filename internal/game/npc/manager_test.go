package npc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

// zeroSource makes every Float64 draw 0.0, so chance>0 rolls always pass
// and quantities land on their row minimum.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

func goblinTemplate() data.NpcTemplate {
	return data.NpcTemplate{
		TemplateID:     2,
		Name:           "Goblin",
		Level:          5,
		MaxHealth:      30,
		Aggressive:     true,
		AggroRange:     10,
		RespawnSeconds: 30,
		XPReward:       50,
		Drops: []data.DropRow{
			{ItemID: 1, Min: 5, Max: 5, Chance: 1.0},
			{ItemID: 1001, Min: 1, Max: 1, Chance: 1.0},
			{ItemID: 4001, Min: 1, Max: 1, Chance: 0},
		},
	}
}

func newNpcFixture(t *testing.T) (*Manager, *world.State, *world.NpcInfo) {
	t.Helper()
	state := world.NewState(nil)
	m := NewManager(state, event.NewBus(), rand.New(zeroSource{}), zap.NewNop())

	table := data.NewNpcTable([]data.NpcTemplate{goblinTemplate()})
	spawned := m.SpawnAll([]data.NpcSpawn{{TemplateID: 2, X: 10, Y: 10, Count: 1}}, table)
	require.Equal(t, 1, spawned)

	var n *world.NpcInfo
	for _, cur := range state.Npcs() {
		n = cur
	}
	require.NotNil(t, n)
	return m, state, n
}

func TestDamageBelowLethal(t *testing.T) {
	m, _, n := newNpcFixture(t)

	died, drops := m.Damage(n, 7, 10, 1000)
	assert.False(t, died)
	assert.Nil(t, drops)
	assert.Equal(t, int32(20), n.Health)
	assert.Equal(t, int32(10), n.DamageBy[7])
	assert.Equal(t, int64(7), n.TargetCharID)
	// Aggressive idle instances turn on their attacker.
	assert.Equal(t, world.AIChasing, n.State)
}

func TestLethalDamageRollsDrops(t *testing.T) {
	m, _, n := newNpcFixture(t)

	died, drops := m.Damage(n, 7, 30, 1000)
	assert.True(t, died)
	assert.Equal(t, []protocol.Stack{
		{ItemID: 1, Quantity: 5},
		{ItemID: 1001, Quantity: 1},
	}, drops)

	assert.Equal(t, world.AIDead, n.State)
	assert.False(t, n.Alive())
	assert.Equal(t, uint64(1000+30*1000), n.RespawnAtMs)

	// Dead instances soak no further damage.
	died, drops = m.Damage(n, 7, 30, 1100)
	assert.False(t, died)
	assert.Nil(t, drops)
}

func TestKillCreditGoesToTopDamage(t *testing.T) {
	m, _, n := newNpcFixture(t)

	m.Damage(n, 7, 12, 1000)
	m.Damage(n, 8, 10, 1100)
	m.Damage(n, 7, 8, 1200) // 7 has 20 total, lethal
	assert.Equal(t, int64(7), n.KillCredit())
}

func TestTickRespawnsAfterDeadline(t *testing.T) {
	m, _, n := newNpcFixture(t)
	m.Damage(n, 7, 30, 1000)
	deadline := n.RespawnAtMs

	m.Tick(deadline - 1)
	assert.False(t, n.Alive())

	m.Tick(deadline)
	assert.True(t, n.Alive())
	assert.Equal(t, n.MaxHealth, n.Health)
	assert.Equal(t, n.SpawnPos, n.Position)
	assert.Empty(t, n.DamageBy)
}

func TestDeathHookRewritesDrops(t *testing.T) {
	m, _, n := newNpcFixture(t)
	m.SetDeathHook(func(_ *world.NpcInfo, killerID int64, drops []protocol.Stack) []protocol.Stack {
		assert.Equal(t, int64(7), killerID)
		return append(drops, protocol.Stack{ItemID: 6001, Quantity: 1})
	})

	_, drops := m.Damage(n, 7, 30, 1000)
	require.Len(t, drops, 3)
	assert.Equal(t, int32(6001), drops[2].ItemID)
}

func borderZones() []data.ZoneRecord {
	return []data.ZoneRecord{
		{ZoneID: 1, Name: "Hearthmere", MinX: 0, MinY: 0, MinZ: -10, MaxX: 100, MaxY: 100, MaxZ: 50},
		{ZoneID: 2, Name: "Bandit Moor", MinX: 100.5, MinY: 0, MinZ: -10, MaxX: 200, MaxY: 100, MaxZ: 50},
	}
}

func TestChaseUpdatesZoneAcrossBoundary(t *testing.T) {
	state := world.NewState(borderZones())
	m := NewManager(state, event.NewBus(), rand.New(zeroSource{}), zap.NewNop())

	wolf := goblinTemplate()
	wolf.TemplateID = 3
	wolf.Speed = 10
	table := data.NewNpcTable([]data.NpcTemplate{wolf})
	require.Equal(t, 1, m.SpawnAll([]data.NpcSpawn{{TemplateID: 3, X: 99, Y: 50, Count: 1}}, table))

	var n *world.NpcInfo
	for _, cur := range state.Npcs() {
		n = cur
	}
	require.Equal(t, int32(1), n.ZoneID)

	state.AddPlayer(&world.PlayerInfo{
		CharacterID: 7,
		Name:        "Alva",
		Position:    protocol.Vec3{X: 150, Y: 50},
		Health:      50,
		MaxHealth:   50,
	})

	m.Damage(n, 7, 5, 1000)
	require.Equal(t, world.AIChasing, n.State)
	for i := uint64(1); i <= 10; i++ {
		m.Tick(1000 + i*600)
	}

	// The chase crossed into the moor; the zone tag follows the position.
	assert.Equal(t, int32(2), n.ZoneID)
	assert.Equal(t, state.Zones.ZoneOf(n.Position), n.ZoneID)

	// Respawning returns the instance to its spawn zone.
	m.Damage(n, 7, n.Health, 10000)
	require.False(t, n.Alive())
	m.Tick(n.RespawnAtMs)
	assert.True(t, n.Alive())
	assert.Equal(t, int32(1), n.ZoneID)
}

func TestSpawnAllSkipsUnknownTemplates(t *testing.T) {
	state := world.NewState(nil)
	m := NewManager(state, event.NewBus(), rand.New(zeroSource{}), zap.NewNop())
	table := data.NewNpcTable([]data.NpcTemplate{goblinTemplate()})

	spawned := m.SpawnAll([]data.NpcSpawn{
		{TemplateID: 2, X: 1, Y: 1, Count: 3},
		{TemplateID: 99, X: 2, Y: 2, Count: 1},
	}, table)
	assert.Equal(t, 3, spawned)
	assert.Len(t, state.Npcs(), 3)
}

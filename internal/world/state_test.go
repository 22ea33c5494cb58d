package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/protocol"
)

func testZones() []data.ZoneRecord {
	return []data.ZoneRecord{
		{ZoneID: 1, Name: "Hearthmere", MinX: 0, MinY: 0, MinZ: -10, MaxX: 100, MaxY: 100, MaxZ: 50, SafeZone: true},
		{ZoneID: 2, Name: "Bandit Moor", MinX: 100.5, MinY: 0, MinZ: -10, MaxX: 200, MaxY: 100, MaxZ: 50, PvpEnabled: true},
	}
}

func TestZoneOf(t *testing.T) {
	idx := NewZoneIndex(testZones())

	assert.Equal(t, int32(1), idx.ZoneOf(protocol.Vec3{X: 50, Y: 50}))
	assert.Equal(t, int32(2), idx.ZoneOf(protocol.Vec3{X: 150, Y: 50}))
	// Outside every box falls back to the default zone.
	assert.Equal(t, DefaultZoneID, idx.ZoneOf(protocol.Vec3{X: 500, Y: 500}))
	assert.Equal(t, DefaultZoneID, idx.ZoneOf(protocol.Vec3{X: 50, Y: 50, Z: 100}))
}

func TestZoneMembership(t *testing.T) {
	idx := NewZoneIndex(testZones())

	idx.Enter(1, 10)
	idx.Enter(1, 11)
	assert.Len(t, idx.Members(1), 2)

	assert.True(t, idx.Move(10, 1, 2))
	assert.False(t, idx.Move(10, 2, 2))
	assert.Len(t, idx.Members(1), 1)
	assert.Len(t, idx.Members(2), 1)

	idx.Leave(1, 11)
	assert.Empty(t, idx.Members(1))
}

func TestZoneName(t *testing.T) {
	idx := NewZoneIndex(testZones())
	assert.Equal(t, "Hearthmere", idx.ZoneName(1))
	assert.Equal(t, "", idx.ZoneName(99))
}

func newPlayer(charID int64, name string, pos protocol.Vec3) *PlayerInfo {
	return &PlayerInfo{
		CharacterID: charID,
		SessionID:   name + "-session",
		Name:        name,
		Position:    pos,
	}
}

func TestAddRemovePlayer(t *testing.T) {
	s := NewState(testZones())
	p := newPlayer(1, "Alva", protocol.Vec3{X: 50, Y: 50})

	s.AddPlayer(p)
	assert.Equal(t, int32(1), p.ZoneID)
	assert.Same(t, p, s.Player(1))
	assert.Same(t, p, s.PlayerBySession("Alva-session"))
	assert.Len(t, s.Zones.Members(1), 1)

	removed := s.RemovePlayer(1)
	assert.Same(t, p, removed)
	assert.Nil(t, s.Player(1))
	assert.Empty(t, s.Zones.Members(1))
	assert.Nil(t, s.RemovePlayer(1))
}

func TestPlayerByNameFoldsCase(t *testing.T) {
	s := NewState(testZones())
	s.AddPlayer(newPlayer(1, "Alva", protocol.Vec3{X: 50, Y: 50}))

	assert.NotNil(t, s.PlayerByName("alva"))
	assert.NotNil(t, s.PlayerByName("ALVA"))
	assert.NotNil(t, s.PlayerByName("  Alva "))
	assert.Nil(t, s.PlayerByName("Bryn"))
}

func TestCommitMoveChangesZone(t *testing.T) {
	s := NewState(testZones())
	p := newPlayer(1, "Alva", protocol.Vec3{X: 50, Y: 50})
	s.AddPlayer(p)

	zone, changed := s.CommitMove(p, protocol.Vec3{X: 60, Y: 50}, 0)
	assert.Equal(t, int32(1), zone)
	assert.False(t, changed)
	assert.True(t, p.Dirty)

	zone, changed = s.CommitMove(p, protocol.Vec3{X: 150, Y: 50}, 90)
	assert.Equal(t, int32(2), zone)
	assert.True(t, changed)
	assert.Equal(t, int32(2), p.ZoneID)
	assert.Len(t, s.Zones.Members(2), 1)
	assert.Empty(t, s.Zones.Members(1))
}

func TestSameZonePlayers(t *testing.T) {
	s := NewState(testZones())
	s.AddPlayer(newPlayer(1, "Alva", protocol.Vec3{X: 50, Y: 50}))
	s.AddPlayer(newPlayer(2, "Bryn", protocol.Vec3{X: 60, Y: 50}))
	s.AddPlayer(newPlayer(3, "Caro", protocol.Vec3{X: 150, Y: 50}))

	peers := s.SameZonePlayers(1, 1)
	require.Len(t, peers, 1)
	assert.Equal(t, int64(2), peers[0].CharacterID)
}

func TestSpawnNpcAssignsIDAndZone(t *testing.T) {
	s := NewState(testZones())
	tpl := &data.NpcTemplate{TemplateID: 1, Name: "Giant rat", MaxHealth: 20}

	a := s.SpawnNpc(tpl, protocol.Vec3{X: 50, Y: 50})
	b := s.SpawnNpc(tpl, protocol.Vec3{X: 150, Y: 50})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int32(1), a.ZoneID)
	assert.Equal(t, int32(2), b.ZoneID)
	assert.Equal(t, int32(20), a.Health)
	assert.True(t, a.Alive())
	assert.Same(t, a, s.Npc(a.ID))
}

func TestPlaceNode(t *testing.T) {
	s := NewState(testZones())
	tpl := &data.ResourceTemplate{TemplateID: 101, Name: "Copper rock", SkillRequired: "mining"}

	n := s.PlaceNode(tpl, protocol.Vec3{X: 50, Y: 50})
	assert.Equal(t, int32(1), n.ZoneID)
	assert.True(t, n.Harvestable())
	assert.Same(t, n, s.Node(n.ID))

	n.Deplete(5000)
	assert.False(t, n.Harvestable())
	n.Respawn()
	assert.True(t, n.Harvestable())
}

func TestKillCredit(t *testing.T) {
	n := &NpcInfo{DamageBy: map[int64]int32{1: 10, 2: 40, 3: 25}}
	assert.Equal(t, int64(2), n.KillCredit())
}

func TestValidGameMode(t *testing.T) {
	assert.True(t, ValidGameMode(ModeNormal))
	assert.True(t, ValidGameMode(ModeUltimate))
	assert.False(t, ValidGameMode("creative"))
}

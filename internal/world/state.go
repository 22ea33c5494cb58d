package world

import (
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/protocol"
)

// State is the shard's live entity registry. It is owned by the simulation
// goroutine; nothing here locks.
type State struct {
	Zones *ZoneIndex

	players    map[int64]*PlayerInfo
	bySession  map[string]*PlayerInfo
	byFoldName map[string]*PlayerInfo

	npcs  map[int64]*NpcInfo
	nodes map[int64]*NodeInfo

	nextNpcID  int64
	nextNodeID int64
}

func NewState(zones []data.ZoneRecord) *State {
	return &State{
		Zones:      NewZoneIndex(zones),
		players:    make(map[int64]*PlayerInfo),
		bySession:  make(map[string]*PlayerInfo),
		byFoldName: make(map[string]*PlayerInfo),
		npcs:       make(map[int64]*NpcInfo),
		nodes:      make(map[int64]*NodeInfo),
	}
}

// ─── Players ────────────────────────────────────────────────────────

// AddPlayer registers an in-world character and enters it into its zone.
func (s *State) AddPlayer(p *PlayerInfo) {
	p.FoldedName = FoldName(p.Name)
	p.ZoneID = s.Zones.ZoneOf(p.Position)
	s.players[p.CharacterID] = p
	s.bySession[p.SessionID] = p
	s.byFoldName[p.FoldedName] = p
	s.Zones.Enter(p.ZoneID, p.CharacterID)
}

// RemovePlayer unregisters a character and leaves its zone.
func (s *State) RemovePlayer(charID int64) *PlayerInfo {
	p, ok := s.players[charID]
	if !ok {
		return nil
	}
	delete(s.players, charID)
	delete(s.bySession, p.SessionID)
	delete(s.byFoldName, p.FoldedName)
	s.Zones.Leave(p.ZoneID, charID)
	return p
}

// Player returns the in-world character with the given id, or nil.
func (s *State) Player(charID int64) *PlayerInfo {
	return s.players[charID]
}

// PlayerBySession returns the character bound to a session, or nil.
func (s *State) PlayerBySession(sessionID string) *PlayerInfo {
	return s.bySession[sessionID]
}

// PlayerByName finds a character by case-insensitive name, or nil.
func (s *State) PlayerByName(name string) *PlayerInfo {
	return s.byFoldName[FoldName(name)]
}

// Players returns the live player registry.
func (s *State) Players() map[int64]*PlayerInfo {
	return s.players
}

// CommitMove updates a player's authoritative position and returns the new
// zone id and whether the zone changed.
func (s *State) CommitMove(p *PlayerInfo, pos protocol.Vec3, rotation float64) (int32, bool) {
	p.Position = pos
	p.Rotation = rotation
	p.Dirty = true
	newZone := s.Zones.ZoneOf(pos)
	changed := s.Zones.Move(p.CharacterID, p.ZoneID, newZone)
	if changed {
		p.ZoneID = newZone
	}
	return newZone, changed
}

// SameZonePlayers returns the players sharing a zone, excluding exceptID.
func (s *State) SameZonePlayers(zoneID int32, exceptID int64) []*PlayerInfo {
	var out []*PlayerInfo
	for charID := range s.Zones.Members(zoneID) {
		if charID == exceptID {
			continue
		}
		if p := s.players[charID]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ─── NPCs ───────────────────────────────────────────────────────────

// SpawnNpc instantiates a template at a position.
func (s *State) SpawnNpc(tpl *data.NpcTemplate, pos protocol.Vec3) *NpcInfo {
	s.nextNpcID++
	n := &NpcInfo{
		ID:        s.nextNpcID,
		Template:  tpl,
		ZoneID:    s.Zones.ZoneOf(pos),
		Position:  pos,
		SpawnPos:  pos,
		Health:    tpl.MaxHealth,
		MaxHealth: tpl.MaxHealth,
		State:     AIIdle,
		DamageBy:  make(map[int64]int32),
	}
	s.npcs[n.ID] = n
	return n
}

// Npc returns the instance with the given id, or nil.
func (s *State) Npc(id int64) *NpcInfo {
	return s.npcs[id]
}

// Npcs returns the live NPC registry.
func (s *State) Npcs() map[int64]*NpcInfo {
	return s.npcs
}

// ─── Resource nodes ─────────────────────────────────────────────────

// PlaceNode instantiates a resource template at a position.
func (s *State) PlaceNode(tpl *data.ResourceTemplate, pos protocol.Vec3) *NodeInfo {
	s.nextNodeID++
	n := &NodeInfo{
		ID:       s.nextNodeID,
		Template: tpl,
		ZoneID:   s.Zones.ZoneOf(pos),
		Position: pos,
	}
	s.nodes[n.ID] = n
	return n
}

// Node returns the resource node with the given id, or nil.
func (s *State) Node(id int64) *NodeInfo {
	return s.nodes[id]
}

// Nodes returns the resource node registry.
func (s *State) Nodes() map[int64]*NodeInfo {
	return s.nodes
}

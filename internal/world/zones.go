// Package world holds the authoritative in-memory state of one shard:
// connected players, NPC instances, resource nodes and the zone index.
// All access happens on the simulation goroutine.
package world

import (
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/protocol"
)

// DefaultZoneID is assigned to positions outside every configured zone.
const DefaultZoneID int32 = 0

// ZoneIndex resolves positions to zones and tracks which characters are in
// each zone so broadcasts can be spatially scoped.
type ZoneIndex struct {
	zones   []data.ZoneRecord
	byID    map[int32]*data.ZoneRecord
	members map[int32]map[int64]struct{}
}

func NewZoneIndex(zones []data.ZoneRecord) *ZoneIndex {
	idx := &ZoneIndex{
		zones:   zones,
		byID:    make(map[int32]*data.ZoneRecord, len(zones)),
		members: make(map[int32]map[int64]struct{}),
	}
	for i := range zones {
		idx.byID[zones[i].ZoneID] = &zones[i]
	}
	return idx
}

// ZoneOf returns the first zone whose box contains pos, or DefaultZoneID.
func (z *ZoneIndex) ZoneOf(pos protocol.Vec3) int32 {
	for i := range z.zones {
		r := &z.zones[i]
		if pos.X >= r.MinX && pos.X <= r.MaxX &&
			pos.Y >= r.MinY && pos.Y <= r.MaxY &&
			pos.Z >= r.MinZ && pos.Z <= r.MaxZ {
			return r.ZoneID
		}
	}
	return DefaultZoneID
}

// Zone returns the record for a zone id, or nil.
func (z *ZoneIndex) Zone(id int32) *data.ZoneRecord {
	return z.byID[id]
}

// ZoneName returns the display name of a zone, or "" for the default zone.
func (z *ZoneIndex) ZoneName(id int32) string {
	if r := z.byID[id]; r != nil {
		return r.Name
	}
	return ""
}

// Enter adds a character to a zone's member set.
func (z *ZoneIndex) Enter(zoneID int32, charID int64) {
	set := z.members[zoneID]
	if set == nil {
		set = make(map[int64]struct{})
		z.members[zoneID] = set
	}
	set[charID] = struct{}{}
}

// Leave removes a character from a zone's member set.
func (z *ZoneIndex) Leave(zoneID int32, charID int64) {
	if set := z.members[zoneID]; set != nil {
		delete(set, charID)
		if len(set) == 0 {
			delete(z.members, zoneID)
		}
	}
}

// Move transfers a character between zones and reports whether the zone
// actually changed.
func (z *ZoneIndex) Move(charID int64, from, to int32) bool {
	if from == to {
		return false
	}
	z.Leave(from, charID)
	z.Enter(to, charID)
	return true
}

// Members returns the character ids currently in a zone.
func (z *ZoneIndex) Members(zoneID int32) map[int64]struct{} {
	return z.members[zoneID]
}

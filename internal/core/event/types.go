package event

import "github.com/runeward/server/internal/protocol"

// Simulation events carried across ticks on the bus.

type PlayerEnteredWorld struct {
	CharacterID int64
	Name        string
	ZoneID      int32
}

type PlayerLeftWorld struct {
	CharacterID int64
	SessionID   string
}

type PlayerMoved struct {
	CharacterID int64
	ZoneID      int32
	Position    protocol.Vec3
	Rotation    float64
}

type ZoneChanged struct {
	CharacterID int64
	FromZone    int32
	ToZone      int32
}

type NpcDamaged struct {
	NpcID       int64
	ZoneID      int32
	AttackerID  int64
	Amount      int32
	Died        bool
}

type PlayerDamaged struct {
	CharacterID int64
	ZoneID      int32
	NpcID       int64
	Amount      int32
	Died        bool
}

type NpcDied struct {
	NpcID    int64
	Template int32
	ZoneID   int32
	KillerID int64
	Drops    []protocol.Stack
}

type NpcStateChanged struct {
	NpcID  int64
	ZoneID int32
}

type XPGranted struct {
	CharacterID int64
	Skill       string
	Granted     int64
	LeveledUp   bool
	NewLevel    int
}

type NodeDepleted struct {
	NodeID      int64
	ZoneID      int32
	RespawnAtMs uint64
}

type NodeRespawned struct {
	NodeID int64
	ZoneID int32
}

package world

import (
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/protocol"
)

// NodeInfo is one placed resource node. A depleted node refuses harvest
// until its respawn deadline passes.
type NodeInfo struct {
	ID       int64
	Template *data.ResourceTemplate

	ZoneID   int32
	Position protocol.Vec3

	Depleted    bool
	RespawnAtMs uint64
}

// Harvestable reports whether the node can currently yield.
func (n *NodeInfo) Harvestable() bool {
	return !n.Depleted
}

// Deplete marks the node exhausted until the given deadline.
func (n *NodeInfo) Deplete(respawnAtMs uint64) {
	n.Depleted = true
	n.RespawnAtMs = respawnAtMs
}

// Respawn restores the node.
func (n *NodeInfo) Respawn() {
	n.Depleted = false
	n.RespawnAtMs = 0
}

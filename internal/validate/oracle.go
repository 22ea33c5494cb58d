package validate

import "github.com/runeward/server/internal/protocol"

// FlatWorld is the geometry oracle used when no navmesh data is loaded:
// every path is walkable and the ground sits at z = 0. The fly-hack ceiling
// still applies.
type FlatWorld struct{}

func (FlatWorld) Walkable(from, to protocol.Vec3) bool       { return true }
func (FlatWorld) ValidDestination(pos protocol.Vec3) bool    { return true }
func (FlatWorld) HeightAt(x, y float64) float64              { return 0 }

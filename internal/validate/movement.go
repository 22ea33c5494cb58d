package validate

import (
	"fmt"

	"github.com/runeward/server/internal/config"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

// Movement kinds accepted on the wire.
const (
	MoveWalk     = "walk"
	MoveRun      = "run"
	MoveTeleport = "teleport"
)

// Movement abilities that legitimately break the speed envelope for a
// short window after use.
var movementAbilities = map[string]bool{
	"surge": true, "escape": true, "bladed_dive": true, "barge": true,
	"dive": true, "double_surge": true, "mobile_perk": true,
}

const (
	abilityGraceMs  int64 = 1500
	abilityRetainMs int64 = 5000
	rubberBandWinMs int64 = 60000
	maxFlyHeight          = 50.0
)

// IsMovementAbility reports whether an ability id grants a speed grace
// window.
func IsMovementAbility(id string) bool {
	return movementAbilities[id]
}

// Navmesh answers walkability questions for the static world geometry.
type Navmesh interface {
	Walkable(from, to protocol.Vec3) bool
	ValidDestination(pos protocol.Vec3) bool
}

// Ground reports terrain height, used to catch characters hovering far
// above the surface.
type Ground interface {
	HeightAt(x, y float64) float64
}

// PositionSample is one accepted movement, kept for bot analytics.
type PositionSample struct {
	Position protocol.Vec3
	AtMs     int64
}

type abilityUse struct {
	id   string
	atMs int64
}

// moveState is the per-character movement validation state.
type moveState struct {
	lastMoveMs     int64
	history        []PositionSample
	recentAbility  []abilityUse
	rubberBands    int
	lastRubberBand int64
}

// MoveVerdict is the outcome of one movement validation.
type MoveVerdict struct {
	OK bool
	// FlagKind is set on violation; the caller raises it on the ledger.
	FlagKind string
	Details  string
	// Correct carries the rubber-band position when OK is false.
	Correct protocol.Vec3
	// Disconnect is set when the correction budget is exhausted.
	Disconnect bool
	// ZoneCheck indicates the accepted position should go through zone
	// commit (always true on OK, kept explicit for teleports).
	Teleport bool
}

// Movement validates movement packets against the speed envelope, the
// teleport threshold and the geometry oracles.
type Movement struct {
	cfg     config.ValidationConfig
	navmesh Navmesh
	ground  Ground
	states  map[int64]*moveState
}

func NewMovement(cfg config.ValidationConfig, nav Navmesh, ground Ground) *Movement {
	return &Movement{
		cfg:     cfg,
		navmesh: nav,
		ground:  ground,
		states:  make(map[int64]*moveState),
	}
}

// RegisterAbility records a movement-ability use so the next moves may
// exceed the speed envelope.
func (m *Movement) RegisterAbility(charID int64, abilityID string, nowMs int64) {
	if !IsMovementAbility(abilityID) {
		return
	}
	st := m.state(charID)
	st.recentAbility = append(st.recentAbility, abilityUse{id: abilityID, atMs: nowMs})
}

// History returns the character's accepted position samples, oldest first.
func (m *Movement) History(charID int64) []PositionSample {
	return m.state(charID).history
}

// Forget drops a character's movement state, used on logout.
func (m *Movement) Forget(charID int64) {
	delete(m.states, charID)
}

// Check validates one movement from the authoritative position. The caller
// commits the new position only when the verdict is OK.
func (m *Movement) Check(charID int64, authoritative protocol.Vec3, mv protocol.Move, nowMs int64) MoveVerdict {
	st := m.state(charID)

	if mv.Kind == MoveTeleport {
		if m.navmesh != nil && !m.navmesh.ValidDestination(mv.Position) {
			return m.violation(st, authoritative, FlagTeleportHack, "teleport to invalid destination", nowMs)
		}
		m.accept(st, mv.Position, nowMs)
		return MoveVerdict{OK: true, Teleport: true}
	}

	dist := world.Distance(authoritative, mv.Position)
	graced := st.abilityUsedSince(nowMs - abilityGraceMs)

	dt := mv.Timestamp - st.lastMoveMs
	if st.lastMoveMs == 0 {
		dt = m.cfg.TickDurationMs
	}
	if dt <= 0 {
		return m.violation(st, authoritative, FlagTimeAnomaly,
			fmt.Sprintf("non-positive move delta %dms", dt), nowMs)
	}

	speed := dist / (float64(dt) / 1000.0)
	maxSpeed := m.cfg.BaseWalkSpeed
	if mv.Kind == MoveRun {
		maxSpeed = m.cfg.BaseRunSpeed
	}
	maxSpeed *= m.cfg.MaxSpeedMultiplier

	if !graced {
		if speed > maxSpeed {
			return m.violation(st, authoritative, FlagSpeedHack,
				fmt.Sprintf("speed %.1f > max %.1f", speed, maxSpeed), nowMs)
		}
		if dist > m.cfg.TeleportThresholdUnits {
			return m.violation(st, authoritative, FlagTeleportHack,
				fmt.Sprintf("step %.1f > threshold %.1f", dist, m.cfg.TeleportThresholdUnits), nowMs)
		}
	}
	if m.navmesh != nil && !m.navmesh.Walkable(authoritative, mv.Position) {
		return m.violation(st, authoritative, FlagWallClip, "path not walkable", nowMs)
	}
	if !graced && m.ground != nil {
		if mv.Position.Z-m.ground.HeightAt(mv.Position.X, mv.Position.Y) > maxFlyHeight {
			return m.violation(st, authoritative, FlagFlyHack, "above ground ceiling", nowMs)
		}
	}

	m.accept(st, mv.Position, nowMs)
	st.lastMoveMs = mv.Timestamp
	return MoveVerdict{OK: true}
}

func (m *Movement) accept(st *moveState, pos protocol.Vec3, nowMs int64) {
	st.history = append(st.history, PositionSample{Position: pos, AtMs: nowMs})
	if len(st.history) > m.cfg.PositionHistorySamples {
		st.history = st.history[len(st.history)-m.cfg.PositionHistorySamples:]
	}
	// Drop ability grants older than the retention window.
	keep := st.recentAbility[:0]
	for _, a := range st.recentAbility {
		if nowMs-a.atMs <= abilityRetainMs {
			keep = append(keep, a)
		}
	}
	st.recentAbility = keep
}

func (m *Movement) violation(st *moveState, authoritative protocol.Vec3, kind, details string, nowMs int64) MoveVerdict {
	if nowMs-st.lastRubberBand <= rubberBandWinMs {
		st.rubberBands++
	} else {
		st.rubberBands = 1
	}
	st.lastRubberBand = nowMs
	return MoveVerdict{
		FlagKind:   kind,
		Details:    details,
		Correct:    authoritative,
		Disconnect: st.rubberBands > m.cfg.MaxCorrectionsPerMin,
	}
}

func (m *Movement) state(charID int64) *moveState {
	st, ok := m.states[charID]
	if !ok {
		st = &moveState{}
		m.states[charID] = st
	}
	return st
}

func (st *moveState) abilityUsedSince(sinceMs int64) bool {
	for _, a := range st.recentAbility {
		if a.atMs >= sinceMs {
			return true
		}
	}
	return false
}

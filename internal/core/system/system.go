package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session queues, dispatch packets
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: NPC AI, resource respawns, exchange sweep
	PhasePostUpdate              // 3: regen, zone views, rotation checks
	PhaseOutput                  // 4: flush per-session output buffers
	PhasePersist                 // 5: periodic store saves
	PhaseCleanup                 // 6: reap idle and dead sessions
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

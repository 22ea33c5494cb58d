package system

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick.
type Runner struct {
	systems []System
	sorted  bool
	tick    uint64
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	r.tick++
	for _, s := range r.systems {
		r.run(s, dt)
	}
}

// TickPhase runs only the systems of one phase. Used between full ticks to
// poll input at a higher frequency than the simulation rate.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			r.run(s, dt)
		}
	}
}

// run contains a panicking system to the current tick; the remaining
// systems and the next tick still run.
func (r *Runner) run(s System, dt time.Duration) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("tick system panicked",
				zap.Uint64("tick", r.tick),
				zap.Any("panic", v),
				zap.Stack("stack"))
		}
	}()
	s.Update(dt)
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.Slice(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}

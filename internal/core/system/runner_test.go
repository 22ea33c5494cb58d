package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubSystem struct {
	phase  Phase
	update func()
	runs   int
}

func (s *stubSystem) Phase() Phase { return s.phase }
func (s *stubSystem) Update(dt time.Duration) {
	s.runs++
	if s.update != nil {
		s.update()
	}
}

func TestRunnerOrdersByPhase(t *testing.T) {
	r := NewRunner(zap.NewNop())
	var order []Phase
	record := func(p Phase) *stubSystem {
		return &stubSystem{phase: p, update: func() { order = append(order, p) }}
	}
	r.Register(record(PhaseOutput))
	r.Register(record(PhaseInput))
	r.Register(record(PhaseUpdate))

	r.Tick(600 * time.Millisecond)
	assert.Equal(t, []Phase{PhaseInput, PhaseUpdate, PhaseOutput}, order)
}

func TestRunnerContainsSystemPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := NewRunner(zap.New(core))

	faulty := &stubSystem{phase: PhaseUpdate, update: func() { panic("npc ai blew up") }}
	after := &stubSystem{phase: PhaseOutput}
	r.Register(faulty)
	r.Register(after)

	assert.NotPanics(t, func() {
		r.Tick(600 * time.Millisecond)
		r.Tick(600 * time.Millisecond)
	})

	// Later phases and later ticks still ran.
	assert.Equal(t, 2, faulty.runs)
	assert.Equal(t, 2, after.runs)

	entries := logs.FilterMessage("tick system panicked").All()
	assert.Len(t, entries, 2)
	assert.Equal(t, uint64(2), entries[1].ContextMap()["tick"])
	assert.Equal(t, "npc ai blew up", entries[1].ContextMap()["panic"])
}

func TestTickPhaseRunsOnlyThatPhase(t *testing.T) {
	r := NewRunner(zap.NewNop())
	in := &stubSystem{phase: PhaseInput}
	out := &stubSystem{phase: PhaseOutput}
	r.Register(in)
	r.Register(out)

	r.TickPhase(PhaseInput, 100*time.Millisecond)
	assert.Equal(t, 1, in.runs)
	assert.Equal(t, 0, out.runs)
}

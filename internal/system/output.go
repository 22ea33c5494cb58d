package system

import (
	"time"

	"github.com/runeward/server/internal/core/system"
	"github.com/runeward/server/internal/handler"
	"github.com/runeward/server/internal/metrics"
	"github.com/runeward/server/internal/net"
)

// Output flushes every session's buffered frames to its write loop and
// refreshes the online gauges.
type Output struct {
	deps *handler.Deps
}

func NewOutput(deps *handler.Deps) *Output {
	return &Output{deps: deps}
}

func (s *Output) Phase() system.Phase { return system.PhaseOutput }

func (s *Output) Update(dt time.Duration) {
	s.deps.Sessions.All(func(sess *net.Session) {
		sess.FlushOutput()
	})
	metrics.ConnectedSessions.Set(float64(s.deps.Sessions.Count()))
	metrics.PlayersOnline.Set(float64(len(s.deps.World.Players())))
}

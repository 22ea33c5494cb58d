package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/system"
	"github.com/runeward/server/internal/handler"
	"github.com/runeward/server/internal/net"
)

// Cleanup reaps idle and closed sessions at tick end.
type Cleanup struct {
	deps *handler.Deps
}

func NewCleanup(deps *handler.Deps) *Cleanup {
	return &Cleanup{deps: deps}
}

func (s *Cleanup) Phase() system.Phase { return system.PhaseCleanup }

func (s *Cleanup) Update(dt time.Duration) {
	idleCutoff := time.Now().Add(-s.deps.Config.Network.IdleTimeout)

	var reap []*net.Session
	s.deps.Sessions.All(func(sess *net.Session) {
		if sess.IsClosed() || sess.IdleSince().Before(idleCutoff) {
			reap = append(reap, sess)
		}
	})

	for _, sess := range reap {
		if !sess.IsClosed() {
			s.deps.Log.Info("reaping idle session",
				zap.Uint64("session", sess.ID),
				zap.Int64("character", sess.CharID),
			)
		}
		s.deps.Disconnect(sess, "session closed or idle")
	}
}

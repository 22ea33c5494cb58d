// Package system holds the per-tick simulation systems run by the phase
// runner. Every Update here executes on the simulation goroutine.
package system

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/core/system"
	"github.com/runeward/server/internal/handler"
	"github.com/runeward/server/internal/metrics"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/validate"
)

// Input accepts new connections, drains session queues and dispatches
// decoded packets through the handler registry.
type Input struct {
	deps     *handler.Deps
	server   *net.Server
	registry *handler.Registry
	log      *zap.Logger
}

func NewInput(deps *handler.Deps, server *net.Server, registry *handler.Registry) *Input {
	return &Input{
		deps:     deps,
		server:   server,
		registry: registry,
		log:      deps.Log,
	}
}

func (s *Input) Phase() system.Phase { return system.PhaseInput }

func (s *Input) Update(dt time.Duration) {
	s.acceptNew()
	s.drainDead()

	maxPerTick := s.deps.Config.Network.MaxPacketsPerTick
	s.deps.Sessions.All(func(sess *net.Session) {
		s.drainSession(sess, maxPerTick)
	})
}

func (s *Input) acceptNew() {
	for {
		select {
		case sess := <-s.server.NewSessions():
			s.deps.Sessions.Add(sess)
			metrics.ConnectedSessions.Inc()
		default:
			return
		}
	}
}

func (s *Input) drainDead() {
	for {
		select {
		case id := <-s.server.DeadSessions():
			if sess := s.deps.Sessions.Remove(id); sess != nil {
				s.deps.Logout(sess)
				metrics.ConnectedSessions.Dec()
			}
		default:
			return
		}
	}
}

func (s *Input) drainSession(sess *net.Session, budget int) {
	for i := 0; i < budget; i++ {
		select {
		case frame := <-sess.InQueue:
			s.handleFrame(sess, frame)
			if sess.IsClosed() {
				return
			}
		default:
			return
		}
	}
}

func (s *Input) handleFrame(sess *net.Session, frame net.Frame) {
	payload := frame.Payload

	// Past the handshake every payload is a sealed envelope.
	if sess.State() != net.StateHandshake {
		var env protocol.Envelope
		if err := protocol.Decode(payload, &env); err != nil {
			s.log.Debug("malformed envelope", zap.Uint64("session", sess.ID))
			sess.Close()
			return
		}
		plaintext, err := sess.OpenEnvelope(env, time.Now(), net.EnvelopeConfig{
			MaxPacketAgeMs:       s.deps.Config.Session.MaxPacketAgeMs,
			ClockSkewToleranceMs: s.deps.Config.Session.ClockSkewToleranceMs,
			SequenceWindow:       s.deps.Config.Session.SequenceWindow,
			NonceExpiryMs:        s.deps.Config.Session.NonceExpiryMs,
			RotationBuffer:       s.deps.Config.Session.RotationBuffer,
		})
		if err != nil {
			s.rejectEnvelope(sess, err)
			return
		}
		payload = plaintext
	}

	metrics.PacketsTotal.WithLabelValues(protocol.Name(frame.Type)).Inc()
	if err := s.registry.Dispatch(sess, frame.Type, payload); err != nil {
		s.log.Warn("dispatch failed",
			zap.Uint64("session", sess.ID),
			zap.String("type", protocol.Name(frame.Type)),
			zap.Error(err),
		)
	}
}

// rejectEnvelope handles an envelope validation failure: replay and
// signature failures raise critical flags, and the fatal class terminates
// the session.
func (s *Input) rejectEnvelope(sess *net.Session, err error) {
	metrics.PacketsRejected.WithLabelValues(err.Error()).Inc()

	if sess.CharID != 0 {
		switch {
		case errors.Is(err, net.ErrReplayAttack):
			s.deps.RaiseFlag(sess, validate.FlagReplayAttack, "envelope nonce replay")
		case errors.Is(err, net.ErrSignatureMismatch), errors.Is(err, net.ErrDecryptionFailed):
			s.deps.RaiseFlag(sess, validate.FlagBadSignature, "envelope verification failed")
		}
	}

	if net.Fatal(err) {
		s.log.Warn("terminating session on envelope failure",
			zap.Uint64("session", sess.ID),
			zap.Error(err),
		)
		s.deps.Disconnect(sess, err.Error())
		return
	}

	s.log.Debug("packet rejected",
		zap.Uint64("session", sess.ID),
		zap.Error(err),
	)
}

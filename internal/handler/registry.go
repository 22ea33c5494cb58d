// Package handler decodes inbound packets and applies them to the world.
// Everything here runs on the simulation goroutine.
package handler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
)

// HandlerFunc is the callback signature for packet handlers. The payload is
// the decrypted plaintext for in-world packets, or the raw body during the
// handshake.
type HandlerFunc func(sess *net.Session, payload []byte)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[net.SessionState]bool
}

// Registry maps packet type codes to handlers with state-based access
// control.
type Registry struct {
	handlers map[uint16]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[uint16]*handlerEntry),
		log:      log,
	}
}

// Register maps a packet type to a handler, restricted to the given session
// states.
func (reg *Registry) Register(packetType uint16, states []net.SessionState, fn HandlerFunc) {
	allowed := make(map[net.SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[packetType] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch validates the session state and calls the handler for a packet
// type. Unknown types are ignored; a disallowed state is an error.
func (reg *Registry) Dispatch(sess *net.Session, packetType uint16, payload []byte) error {
	entry, ok := reg.handlers[packetType]
	if !ok {
		reg.log.Debug("unknown packet type",
			zap.String("type", protocol.Name(packetType)),
			zap.String("state", sess.State().String()),
		)
		return nil
	}

	state := sess.State()
	if !entry.allowedStates[state] {
		reg.log.Warn("packet not allowed in state",
			zap.String("type", protocol.Name(packetType)),
			zap.String("state", state.String()),
		)
		return fmt.Errorf("packet %s not allowed in state %s", protocol.Name(packetType), state)
	}

	return reg.safeCall(entry.fn, sess, payload, packetType)
}

// safeCall executes a handler with panic recovery so a single bad packet
// cannot take down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess *net.Session, payload []byte, packetType uint16) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("type", protocol.Name(packetType)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for packet %s: %v", protocol.Name(packetType), rec)
		}
	}()
	fn(sess, payload)
	return nil
}

package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
)

// sendPlain buffers a plaintext frame. Only valid during the handshake and
// for the establishment/rotation records themselves.
func (d *Deps) sendPlain(sess *net.Session, packetType uint16, body any) {
	sess.Send(net.EncodeFrame(packetType, 0, protocol.Encode(body)))
}

// send seals a body into an envelope under the session keys and buffers the
// frame. When the session is inside the rotation buffer the new key record
// is sealed under the OLD keys and sent first, then the keys switch, so the
// client can always decrypt the record that replaces them.
func (d *Deps) send(sess *net.Session, packetType uint16, body any) {
	now := time.Now()

	if sess.RotationDue() {
		lifetime := time.Duration(d.Config.Session.KeyRotationMinutes) * time.Minute
		rec, install, err := sess.BeginRotation(lifetime)
		if err != nil {
			d.Log.Error("key rotation failed", zap.Uint64("session", sess.ID), zap.Error(err))
		} else {
			env, err := sess.SealEnvelope(protocol.Encode(rec), now)
			if err != nil {
				d.Log.Error("seal rotation record failed", zap.Uint64("session", sess.ID), zap.Error(err))
			} else {
				sess.Send(net.EncodeFrame(protocol.SESSION_ROTATED, 0, protocol.Encode(env)))
				install()
				d.Log.Info("session keys rotated", zap.Uint64("session", sess.ID))
			}
		}
	}

	env, err := sess.SealEnvelope(protocol.Encode(body), now)
	if err != nil {
		d.Log.Error("seal envelope failed",
			zap.Uint64("session", sess.ID),
			zap.String("type", protocol.Name(packetType)),
			zap.Error(err),
		)
		return
	}
	sess.Send(net.EncodeFrame(packetType, 0, protocol.Encode(env)))
}

// SendToChar delivers a sealed packet to an in-world character, if connected.
func (d *Deps) SendToChar(charID int64, packetType uint16, body any) {
	if sess := d.Sessions.ByChar(charID); sess != nil {
		d.send(sess, packetType, body)
	}
}

// BroadcastZone delivers a sealed packet to every character in a zone,
// excluding exceptID (0 excludes nobody).
func (d *Deps) BroadcastZone(zoneID int32, exceptID int64, packetType uint16, body any) {
	for _, p := range d.World.SameZonePlayers(zoneID, exceptID) {
		d.SendToChar(p.CharacterID, packetType, body)
	}
}

// sendError buffers a sealed ERROR_REPLY.
func (d *Deps) sendError(sess *net.Session, kind, message string) {
	d.send(sess, protocol.ERROR_REPLY, protocol.ErrorReply{Kind: kind, Message: message})
}

// sendRejected buffers a sealed ACTION_REJECTED.
func (d *Deps) sendRejected(sess *net.Session, kind string, remainingMs int64) {
	d.send(sess, protocol.ACTION_REJECTED, protocol.ActionRejected{
		Kind:              kind,
		CooldownRemaining: remainingMs,
	})
}

package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/auth"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
)

const repoTimeout = 5 * time.Second

func repoCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), repoTimeout)
}

// HandleAuth processes the plaintext login request: validates the token,
// establishes session keys and answers with the key record plus the account's
// character list.
func (d *Deps) HandleAuth(sess *net.Session, payload []byte) {
	var req protocol.AuthRequest
	if err := protocol.Decode(payload, &req); err != nil {
		d.sendPlain(sess, protocol.AUTH_RESPONSE, protocol.ErrorReply{Kind: "BAD_REQUEST"})
		sess.Close()
		return
	}

	ctx, cancel := repoCtx()
	defer cancel()

	ident, err := d.Auth.Authenticate(ctx, req.Token, req.ClientID)
	if err != nil {
		kind := "AUTH_FAILED"
		switch {
		case errors.Is(err, auth.ErrBanned):
			kind = "ACCOUNT_BANNED"
		case errors.Is(err, auth.ErrAlreadyOnline):
			kind = "ALREADY_ONLINE"
		case errors.Is(err, auth.ErrInvalidCredentials):
			kind = "INVALID_CREDENTIALS"
		default:
			d.Log.Error("authenticate failed", zap.Error(err))
		}
		d.sendPlain(sess, protocol.AUTH_RESPONSE, protocol.ErrorReply{Kind: kind})
		sess.Close()
		return
	}

	lifetime := time.Duration(d.Config.Session.KeyRotationMinutes) * time.Minute
	established, err := sess.EstablishKeys(lifetime)
	if err != nil {
		d.Log.Error("establish keys failed", zap.Uint64("session", sess.ID), zap.Error(err))
		sess.Close()
		return
	}

	sess.AccountID = ident.AccountID
	sess.AccessLevel = ident.AccessLevel
	sess.SetState(net.StateAuthenticated)
	d.sendPlain(sess, protocol.SESSION_ESTABLISHED, established)

	d.Log.Info("session established",
		zap.Uint64("session", sess.ID),
		zap.String("account", ident.Name),
	)

	d.sendCharList(sess)
}

// HandlePing answers with the server time for client clock sync.
func (d *Deps) HandlePing(sess *net.Session, payload []byte) {
	var req protocol.Ping
	if err := protocol.Decode(payload, &req); err != nil {
		return
	}
	pong := protocol.Pong{ClientTime: req.ClientTime, ServerTime: time.Now().UnixMilli()}
	if sess.State() == net.StateHandshake {
		d.sendPlain(sess, protocol.PONG, pong)
		return
	}
	d.send(sess, protocol.PONG, pong)
}

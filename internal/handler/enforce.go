package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/metrics"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/validate"
)

const tempBanDuration = 48 * time.Hour

// RaiseFlag records an anti-cheat flag and applies the escalation response.
// Returns true when the session was terminated.
func (d *Deps) RaiseFlag(sess *net.Session, kind, details string) bool {
	metrics.FlagsRaised.WithLabelValues(kind).Inc()
	resp := d.Ledger.Raise(sess.CharID, sess.Token, kind, details, time.Now(), d.Thresholds())

	d.Log.Warn("anticheat flag",
		zap.Int64("character", sess.CharID),
		zap.String("kind", kind),
		zap.String("details", details),
		zap.String("response", resp.String()),
	)

	switch resp {
	case validate.ResponseLog, validate.ResponseWarn:
		return false
	case validate.ResponseKick:
		d.Disconnect(sess, "kicked")
		return true
	case validate.ResponseTempBan:
		until := time.Now().Add(tempBanDuration)
		d.banAccount(sess, &until)
		return true
	case validate.ResponsePermBan:
		d.banAccount(sess, nil)
		return true
	}
	return false
}

func (d *Deps) banAccount(sess *net.Session, until *time.Time) {
	ctx, cancel := repoCtx()
	defer cancel()
	if err := d.AccountRepo.SetBanned(ctx, sess.AccountID, until); err != nil {
		d.Log.Error("ban failed", zap.Int64("account", sess.AccountID), zap.Error(err))
	}
	d.Disconnect(sess, "banned")
}

// Disconnect logs out and closes a session.
func (d *Deps) Disconnect(sess *net.Session, reason string) {
	d.Log.Info("disconnecting session",
		zap.Uint64("session", sess.ID),
		zap.Int64("character", sess.CharID),
		zap.String("reason", reason),
	)
	d.Logout(sess)
	d.Sessions.Remove(sess.ID)
	sess.FlushOutput()
	sess.Close()
}

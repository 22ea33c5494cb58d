package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runeward/server/internal/config"
	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/validate"
	"github.com/runeward/server/internal/world"
)

func newSkillActionDeps(t *testing.T, charID int64) (*Deps, *net.Session) {
	t.Helper()
	cfg := config.Defaults()
	state := world.NewState(nil)
	state.AddPlayer(&world.PlayerInfo{
		CharacterID: charID,
		Name:        "Bryn",
		Health:      10,
		MaxHealth:   10,
	})

	d := &Deps{
		Config:   cfg,
		Log:      zap.NewNop(),
		World:    state,
		Sessions: NewSessionTable(),
		Bus:      event.NewBus(),
		Actions:  validate.NewActions(cfg.Validation),
	}
	sess := &net.Session{CharID: charID, OutQueue: make(chan []byte, 4)}
	_, err := sess.EstablishKeys(time.Hour)
	require.NoError(t, err)
	return d, sess
}

func replyType(t *testing.T, sess *net.Session) uint16 {
	t.Helper()
	sess.FlushOutput()
	frame, err := net.DecodeFrame(<-sess.OutQueue)
	require.NoError(t, err)
	return frame.Type
}

func TestSkillActionRateLimitRunsBeforePositionCheck(t *testing.T) {
	d, sess := newSkillActionDeps(t, 9)

	// Burn the action budget, then spam a request with a nonsense position:
	// the limiter must answer, not the position cross-check.
	require.Nil(t, d.Actions.Check(9, validate.ActionSkill, "", time.Now().UnixMilli()))

	d.HandleSkillAction(sess, protocol.Encode(protocol.SkillAction{
		Action:   "mine_ore",
		TargetID: 1,
		Position: protocol.Vec3{X: 90, Y: 90},
	}))

	assert.Equal(t, protocol.ACTION_REJECTED, replyType(t, sess))
}

func TestSkillActionRejectsPositionMismatch(t *testing.T) {
	d, sess := newSkillActionDeps(t, 10)

	d.HandleSkillAction(sess, protocol.Encode(protocol.SkillAction{
		Action:   "mine_ore",
		TargetID: 1,
		Position: protocol.Vec3{X: 90, Y: 90},
	}))

	assert.Equal(t, protocol.ERROR_REPLY, replyType(t, sess))
}

package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/runeward/server/internal/config"
	"github.com/runeward/server/internal/core/event"
	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/validate"
	"github.com/runeward/server/internal/world"
)

func TestTeleportGrantIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := config.Defaults()
	state := world.NewState(nil)
	state.AddPlayer(&world.PlayerInfo{
		CharacterID: 4,
		Name:        "Alva",
		Position:    protocol.Vec3{X: 50, Y: 50},
		Health:      10,
		MaxHealth:   10,
	})

	d := &Deps{
		Config:   cfg,
		Log:      zap.New(core),
		World:    state,
		Sessions: NewSessionTable(),
		Bus:      event.NewBus(),
		Movement: validate.NewMovement(cfg.Validation, validate.FlatWorld{}, validate.FlatWorld{}),
	}
	sess := &net.Session{CharID: 4}

	d.applyMove(sess, protocol.Move{
		Position:  protocol.Vec3{X: 500, Y: 500},
		Timestamp: time.Now().UnixMilli(),
		Kind:      validate.MoveTeleport,
	})

	assert.Equal(t, protocol.Vec3{X: 500, Y: 500}, state.Player(4).Position)

	entries := logs.FilterMessage("teleport granted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].ContextMap()["char"])

	// An ordinary walk leaves no teleport trace.
	d.applyMove(sess, protocol.Move{
		Position:  protocol.Vec3{X: 501, Y: 500},
		Timestamp: time.Now().UnixMilli(),
		Kind:      validate.MoveWalk,
	})
	assert.Len(t, logs.FilterMessage("teleport granted").All(), 1)
}

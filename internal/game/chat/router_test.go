package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

func TestFilterMasksPreservingLength(t *testing.T) {
	f := NewFilter([]string{"goldseller", "rwt"})

	assert.Equal(t, "buy from **********", f.Apply("buy from GoldSeller"))
	assert.Equal(t, "no *** here, *** twice", f.Apply("no rwt here, RWT twice"))
	assert.Equal(t, "clean message", f.Apply("clean message"))
	assert.Equal(t, "anything", NewFilter(nil).Apply("anything"))
}

type delivery struct {
	to int64
	bc protocol.ChatBroadcast
}

type chatFixture struct {
	router *Router
	state  *world.State
	sent   []delivery
	logged []LogEntry
}

func (f *chatFixture) RecordChat(entry LogEntry) {
	f.logged = append(f.logged, entry)
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{}
	f.state = world.NewState([]data.ZoneRecord{
		{ZoneID: 1, MaxX: 100, MaxY: 100, MaxZ: 50, MinZ: -10},
		{ZoneID: 2, MinX: 100.5, MaxX: 200, MaxY: 100, MaxZ: 50, MinZ: -10},
	})
	f.router = NewRouter(f.state, NewFilter([]string{"rwt"}), f,
		func(target *world.PlayerInfo, bc protocol.ChatBroadcast) {
			f.sent = append(f.sent, delivery{to: target.CharacterID, bc: bc})
		}, zap.NewNop())

	add := func(id int64, name string, x float64) *world.PlayerInfo {
		p := &world.PlayerInfo{
			CharacterID: id,
			SessionID:   name,
			Name:        name,
			Position:    protocol.Vec3{X: x, Y: 50},
		}
		f.state.AddPlayer(p)
		return p
	}
	add(1, "Alva", 50)
	add(2, "Bryn", 60)
	add(3, "Caro", 150)
	return f
}

func (f *chatFixture) recipients() []int64 {
	var ids []int64
	for _, d := range f.sent {
		ids = append(ids, d.to)
	}
	return ids
}

func TestRouteZoneScoped(t *testing.T) {
	f := newChatFixture(t)
	sender := f.state.Player(1)

	err := f.router.Route(sender, protocol.Chat{Channel: ChannelZone, Text: "hello"})
	require.NoError(t, err)

	// Zone 1 holds Alva and Bryn; the sender hears their own message too.
	assert.ElementsMatch(t, []int64{1, 2}, f.recipients())
	require.Len(t, f.logged, 1)
	assert.Equal(t, "hello", f.logged[0].Text)
}

func TestRouteGlobalReachesEveryone(t *testing.T) {
	f := newChatFixture(t)

	err := f.router.Route(f.state.Player(1), protocol.Chat{Channel: ChannelGlobal, Text: "hi"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3}, f.recipients())
}

func TestRouteWhisper(t *testing.T) {
	f := newChatFixture(t)

	err := f.router.Route(f.state.Player(1), protocol.Chat{Channel: ChannelWhisper, Text: "psst", To: "caro"})
	require.NoError(t, err)
	// Recipient plus the sender's echo.
	assert.ElementsMatch(t, []int64{1, 3}, f.recipients())

	err = f.router.Route(f.state.Player(1), protocol.Chat{Channel: ChannelWhisper, Text: "psst", To: "Nobody"})
	assert.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestRouteRejectsEmptyAndUnknown(t *testing.T) {
	f := newChatFixture(t)
	sender := f.state.Player(1)

	assert.ErrorIs(t, f.router.Route(sender, protocol.Chat{Channel: ChannelZone, Text: "   "}), ErrEmptyMessage)
	assert.ErrorIs(t, f.router.Route(sender, protocol.Chat{Channel: "shout", Text: "hi"}), ErrUnknownChannel)
	assert.Empty(t, f.sent)
	assert.Empty(t, f.logged)
}

func TestRouteGuildAndPartyGating(t *testing.T) {
	f := newChatFixture(t)
	sender := f.state.Player(1)

	assert.ErrorIs(t, f.router.Route(sender, protocol.Chat{Channel: ChannelGuild, Text: "hi"}), ErrNotInGuild)
	assert.ErrorIs(t, f.router.Route(sender, protocol.Chat{Channel: ChannelParty, Text: "hi"}), ErrNotInParty)

	sender.GuildID = 9
	f.state.Player(3).GuildID = 9
	require.NoError(t, f.router.Route(sender, protocol.Chat{Channel: ChannelGuild, Text: "hi"}))
	assert.ElementsMatch(t, []int64{1, 3}, f.recipients())
}

func TestRouteTradeChannelOptIn(t *testing.T) {
	f := newChatFixture(t)
	f.state.Player(2).TradeChat = true

	err := f.router.Route(f.state.Player(1), protocol.Chat{Channel: ChannelTrade, Text: "selling ore"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2}, f.recipients())
}

func TestRouteFiltersAndTruncates(t *testing.T) {
	f := newChatFixture(t)

	long := strings.Repeat("a", MaxMessageLen+50) + " rwt"
	err := f.router.Route(f.state.Player(1), protocol.Chat{Channel: ChannelZone, Text: long})
	require.NoError(t, err)
	require.NotEmpty(t, f.sent)
	assert.Len(t, f.sent[0].bc.Text, MaxMessageLen)

	f.sent = nil
	err = f.router.Route(f.state.Player(1), protocol.Chat{Channel: ChannelZone, Text: "no RWT please"})
	require.NoError(t, err)
	assert.Equal(t, "no *** please", f.sent[0].bc.Text)
}

func TestRouteTruncatesOnRuneBoundary(t *testing.T) {
	f := newChatFixture(t)

	// Multi-byte runes: the limit is characters, and the cut must never
	// leave a broken rune at the end.
	long := strings.Repeat("ß", MaxMessageLen+50)
	err := f.router.Route(f.state.Player(1), protocol.Chat{Channel: ChannelZone, Text: long})
	require.NoError(t, err)
	require.NotEmpty(t, f.sent)

	got := f.sent[0].bc.Text
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, MaxMessageLen, utf8.RuneCountInString(got))

	// A message under the rune limit passes through whole even when its
	// byte length exceeds it.
	f.sent = nil
	short := strings.Repeat("ß", 400)
	require.NoError(t, f.router.Route(f.state.Player(1), protocol.Chat{Channel: ChannelZone, Text: short}))
	assert.Equal(t, short, f.sent[0].bc.Text)
}

func TestSystemMessages(t *testing.T) {
	f := newChatFixture(t)

	f.router.System("zone notice", 1)
	assert.ElementsMatch(t, []int64{1, 2}, f.recipients())
	for _, d := range f.sent {
		assert.Equal(t, ChannelSystem, d.bc.Channel)
	}

	f.sent = nil
	f.router.System("world notice", -1)
	assert.Len(t, f.sent, 3)
	// Server messages are never written to the chat audit log.
	assert.Empty(t, f.logged)
}

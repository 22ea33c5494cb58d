// Package chat routes player messages across channels with filtering and
// audit logging.
package chat

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/world"
)

// Channel names accepted on the wire.
const (
	ChannelLocal   = "local"
	ChannelZone    = "zone"
	ChannelGlobal  = "global"
	ChannelTrade   = "trade"
	ChannelGuild   = "guild"
	ChannelParty   = "party"
	ChannelWhisper = "whisper"
	ChannelSystem  = "system"
)

// MaxMessageLen bounds a chat message after trimming.
const MaxMessageLen = 500

var (
	ErrEmptyMessage      = errors.New("chat: empty message")
	ErrUnknownChannel    = errors.New("chat: unknown channel")
	ErrRecipientNotFound = errors.New("chat: recipient not found")
	ErrNotInGuild        = errors.New("chat: not in a guild")
	ErrNotInParty        = errors.New("chat: not in a party")
)

// LogEntry is one audited message.
type LogEntry struct {
	CharacterID int64
	Channel     string
	Text        string
	To          string
	At          time.Time
}

// Audit receives every non-system message for durable storage.
type Audit interface {
	RecordChat(entry LogEntry)
}

// Router fans messages out to their channel's recipients. Delivery goes
// through the send callback so the router stays independent of the
// transport.
type Router struct {
	state  *world.State
	filter *Filter
	audit  Audit
	send   func(target *world.PlayerInfo, bc protocol.ChatBroadcast)
	log    *zap.Logger
	now    func() time.Time
}

func NewRouter(state *world.State, filter *Filter, audit Audit,
	send func(*world.PlayerInfo, protocol.ChatBroadcast), log *zap.Logger) *Router {
	return &Router{
		state:  state,
		filter: filter,
		audit:  audit,
		send:   send,
		log:    log,
		now:    time.Now,
	}
}

// Route delivers one player message. The text is trimmed, bounded and
// filtered before fan-out.
func (r *Router) Route(sender *world.PlayerInfo, msg protocol.Chat) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return ErrEmptyMessage
	}
	// The limit counts characters, not bytes; cutting mid-rune would send
	// invalid UTF-8.
	if runes := []rune(text); len(runes) > MaxMessageLen {
		text = string(runes[:MaxMessageLen])
	}
	text = r.filter.Apply(text)

	bc := protocol.ChatBroadcast{
		Channel: msg.Channel,
		From:    sender.Name,
		Text:    text,
	}

	var err error
	switch msg.Channel {
	case ChannelLocal, ChannelZone:
		r.toZone(sender.ZoneID, bc)
	case ChannelGlobal:
		r.toAll(bc, nil)
	case ChannelTrade:
		r.toAll(bc, func(p *world.PlayerInfo) bool { return p.TradeChat })
	case ChannelGuild:
		if sender.GuildID == 0 {
			return ErrNotInGuild
		}
		r.toAll(bc, func(p *world.PlayerInfo) bool { return p.GuildID == sender.GuildID })
	case ChannelParty:
		if sender.PartyID == 0 {
			return ErrNotInParty
		}
		r.toAll(bc, func(p *world.PlayerInfo) bool { return p.PartyID == sender.PartyID })
	case ChannelWhisper:
		err = r.whisper(sender, msg.To, bc)
	default:
		return ErrUnknownChannel
	}
	if err != nil {
		return err
	}

	if r.audit != nil {
		r.audit.RecordChat(LogEntry{
			CharacterID: sender.CharacterID,
			Channel:     msg.Channel,
			Text:        text,
			To:          msg.To,
			At:          r.now(),
		})
	}
	return nil
}

// System sends a server-originated message, zone-scoped when zoneID is
// non-negative, global otherwise.
func (r *Router) System(text string, zoneID int32) {
	bc := protocol.ChatBroadcast{Channel: ChannelSystem, Text: text}
	if zoneID >= 0 {
		r.toZone(zoneID, bc)
		return
	}
	r.toAll(bc, nil)
}

func (r *Router) whisper(sender *world.PlayerInfo, to string, bc protocol.ChatBroadcast) error {
	target := r.state.PlayerByName(to)
	if target == nil {
		return ErrRecipientNotFound
	}
	r.send(target, bc)
	// The sender sees a copy of their own whisper.
	r.send(sender, bc)
	return nil
}

func (r *Router) toZone(zoneID int32, bc protocol.ChatBroadcast) {
	for charID := range r.state.Zones.Members(zoneID) {
		if p := r.state.Player(charID); p != nil {
			r.send(p, bc)
		}
	}
}

func (r *Router) toAll(bc protocol.ChatBroadcast, keep func(*world.PlayerInfo) bool) {
	for _, p := range r.state.Players() {
		if keep == nil || keep(p) {
			r.send(p, bc)
		}
	}
}

package handler

import (
	"strings"

	"github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/protocol"
)

// HandleChat routes a player message. Messages prefixed with "::" from
// privileged accounts run as GM commands instead.
func (d *Deps) HandleChat(sess *net.Session, payload []byte) {
	var msg protocol.Chat
	if err := protocol.Decode(payload, &msg); err != nil {
		d.sendError(sess, "BAD_REQUEST", "")
		return
	}
	p := d.World.Player(sess.CharID)
	if p == nil {
		return
	}

	if strings.HasPrefix(msg.Text, "::") && p.AccessLevel > 0 {
		d.runGMCommand(sess, strings.TrimPrefix(msg.Text, "::"))
		return
	}

	if err := d.Chat.Route(p, msg); err != nil {
		d.sendError(sess, "CHAT_FAILED", err.Error())
	}
}

// runGMCommand hands a privileged command line to the script engine and
// echoes the result back as a system message.
func (d *Deps) runGMCommand(sess *net.Session, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	reply := d.Scripting.GMCommand(fields[0], fields[1:])
	if reply == "" {
		reply = "unknown command: " + fields[0]
	}
	d.send(sess, protocol.CHAT_BROADCAST, protocol.ChatBroadcast{
		Channel: "system",
		Text:    reply,
	})
}

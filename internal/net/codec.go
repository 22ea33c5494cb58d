package net

import (
	"encoding/binary"
	"fmt"
)

// Frame is one decoded wire frame. Wire format, all big-endian:
// [2B length of payload][2B packet type][4B frame sequence][payload].
// Frames travel inside WebSocket binary messages, one frame per message.
type Frame struct {
	Type    uint16
	Seq     uint32
	Payload []byte
}

const frameHeaderLen = 8

// maxFramePayload bounds a single frame. Chat plus envelope overhead stays
// well under this; anything larger is a malformed or hostile client.
const maxFramePayload = 64 * 1024

// DecodeFrame parses a raw WebSocket message into a Frame.
func DecodeFrame(data []byte) (Frame, error) {
	if len(data) < frameHeaderLen {
		return Frame{}, fmt.Errorf("frame too short: %d bytes", len(data))
	}
	payloadLen := int(binary.BigEndian.Uint16(data[0:2]))
	if payloadLen > maxFramePayload {
		return Frame{}, fmt.Errorf("frame payload too large: %d", payloadLen)
	}
	if len(data) != frameHeaderLen+payloadLen {
		return Frame{}, fmt.Errorf("frame length mismatch: header says %d, got %d", payloadLen, len(data)-frameHeaderLen)
	}
	return Frame{
		Type:    binary.BigEndian.Uint16(data[2:4]),
		Seq:     binary.BigEndian.Uint32(data[4:8]),
		Payload: data[frameHeaderLen:],
	}, nil
}

// EncodeFrame builds the raw bytes for one frame.
func EncodeFrame(typ uint16, seq uint32, payload []byte) []byte {
	buf := make([]byte, frameHeaderLen+len(payload))
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(payload)))
	binary.BigEndian.PutUint16(buf[2:4], typ)
	binary.BigEndian.PutUint32(buf[4:8], seq)
	copy(buf[frameHeaderLen:], payload)
	return buf
}

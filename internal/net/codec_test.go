package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	raw := EncodeFrame(0x0012, 42, []byte("payload"))

	f, err := DecodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0012), f.Type)
	assert.Equal(t, uint32(42), f.Seq)
	assert.Equal(t, []byte("payload"), f.Payload)
}

func TestFrameEmptyPayload(t *testing.T) {
	raw := EncodeFrame(1, 1, nil)
	require.Len(t, raw, frameHeaderLen)

	f, err := DecodeFrame(raw)
	require.NoError(t, err)
	assert.Empty(t, f.Payload)
}

func TestDecodeFrameTooShort(t *testing.T) {
	_, err := DecodeFrame([]byte{0, 0, 0})
	assert.Error(t, err)
}

func TestDecodeFrameLengthMismatch(t *testing.T) {
	raw := EncodeFrame(1, 1, []byte("abc"))
	_, err := DecodeFrame(raw[:len(raw)-1])
	assert.Error(t, err)

	_, err = DecodeFrame(append(raw, 'x'))
	assert.Error(t, err)
}

package net

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeward/server/internal/protocol"
)

var testEnvCfg = EnvelopeConfig{
	MaxPacketAgeMs:       30000,
	ClockSkewToleranceMs: 5000,
	SequenceWindow:       1000,
	NonceExpiryMs:        60000,
	RotationBuffer:       5 * time.Minute,
}

// newTestSession builds a session with live key material and no socket.
// The envelope pipeline never touches the connection.
func newTestSession(t *testing.T, lifetime time.Duration) *Session {
	t.Helper()
	s := &Session{nonces: make(map[string]int64)}
	_, err := s.EstablishKeys(lifetime)
	require.NoError(t, err)
	return s
}

func TestEnvelopeRoundTrip(t *testing.T) {
	s := newTestSession(t, time.Hour)
	now := time.Now()

	env, err := s.SealEnvelope([]byte(`{"op":"move"}`), now)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), env.Sequence)

	plaintext, err := s.OpenEnvelope(env, now, testEnvCfg)
	require.NoError(t, err)
	assert.Equal(t, `{"op":"move"}`, string(plaintext))
	assert.Equal(t, uint32(1), s.LastSequence())
}

func TestEnvelopeReplayRejected(t *testing.T) {
	s := newTestSession(t, time.Hour)
	now := time.Now()

	env, err := s.SealEnvelope([]byte("x"), now)
	require.NoError(t, err)
	_, err = s.OpenEnvelope(env, now, testEnvCfg)
	require.NoError(t, err)

	_, err = s.OpenEnvelope(env, now, testEnvCfg)
	assert.ErrorIs(t, err, ErrReplayAttack)
}

func TestEnvelopeSequenceRegression(t *testing.T) {
	s := newTestSession(t, time.Hour)
	now := time.Now()

	first, err := s.SealEnvelope([]byte("a"), now)
	require.NoError(t, err)
	_, err = s.OpenEnvelope(first, now, testEnvCfg)
	require.NoError(t, err)

	// A later envelope rewound to an already-used sequence is rejected
	// before any cryptographic work.
	second, err := s.SealEnvelope([]byte("b"), now)
	require.NoError(t, err)
	second.Sequence = 1
	_, err = s.OpenEnvelope(second, now, testEnvCfg)
	assert.ErrorIs(t, err, ErrSequenceViolation)
}

func TestEnvelopeSequenceBeyondWindow(t *testing.T) {
	s := newTestSession(t, time.Hour)
	now := time.Now()

	env, err := s.SealEnvelope([]byte("a"), now)
	require.NoError(t, err)
	env.Sequence = testEnvCfg.SequenceWindow + 100
	_, err = s.OpenEnvelope(env, now, testEnvCfg)
	assert.ErrorIs(t, err, ErrSequenceViolation)
}

func TestEnvelopeTamperedPayload(t *testing.T) {
	s := newTestSession(t, time.Hour)
	now := time.Now()

	env, err := s.SealEnvelope([]byte("authentic"), now)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(env.Payload)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	env.Payload = base64.StdEncoding.EncodeToString(raw)

	_, err = s.OpenEnvelope(env, now, testEnvCfg)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestEnvelopeStaleTimestamp(t *testing.T) {
	s := newTestSession(t, time.Hour)
	now := time.Now()

	env, err := s.SealEnvelope([]byte("x"), now)
	require.NoError(t, err)

	_, err = s.OpenEnvelope(env, now.Add(40*time.Second), testEnvCfg)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)

	env2, err := s.SealEnvelope([]byte("y"), now.Add(10*time.Second))
	require.NoError(t, err)
	_, err = s.OpenEnvelope(env2, now, testEnvCfg)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestEnvelopeSessionExpired(t *testing.T) {
	s := newTestSession(t, time.Minute)
	now := time.Now()

	env, err := s.SealEnvelope([]byte("x"), now)
	require.NoError(t, err)
	_, err = s.OpenEnvelope(env, now.Add(2*time.Minute), testEnvCfg)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestEnvelopeWithoutKeys(t *testing.T) {
	s := &Session{nonces: make(map[string]int64)}
	_, err := s.OpenEnvelope(protocol.Envelope{}, time.Now(), testEnvCfg)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.SealEnvelope([]byte("x"), time.Now())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRotationDueInsideBuffer(t *testing.T) {
	s := newTestSession(t, 10*time.Minute)
	later := time.Now().Add(6 * time.Minute)

	env, err := s.SealEnvelope([]byte("x"), later)
	require.NoError(t, err)
	_, err = s.OpenEnvelope(env, later, testEnvCfg)
	require.NoError(t, err)

	// Consumed once, then cleared.
	assert.True(t, s.RotationDue())
	assert.False(t, s.RotationDue())
}

func TestBeginRotationSwapsKeys(t *testing.T) {
	s := newTestSession(t, time.Hour)
	now := time.Now()

	oldEnv, err := s.SealEnvelope([]byte("old"), now)
	require.NoError(t, err)

	rec, install, err := s.BeginRotation(time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.SignKey)
	assert.NotEmpty(t, rec.CryptKey)

	// Until install the old keys still work.
	_, err = s.OpenEnvelope(oldEnv, now, testEnvCfg)
	require.NoError(t, err)

	stale, err := s.SealEnvelope([]byte("stale"), now)
	require.NoError(t, err)

	install()

	// Envelopes sealed under the retired keys no longer verify.
	_, err = s.OpenEnvelope(stale, now, testEnvCfg)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	fresh, err := s.SealEnvelope([]byte("fresh"), now)
	require.NoError(t, err)
	plaintext, err := s.OpenEnvelope(fresh, now, testEnvCfg)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(plaintext))
}

func TestFatalClassification(t *testing.T) {
	assert.True(t, Fatal(ErrDecryptionFailed))
	assert.True(t, Fatal(ErrSessionExpired))
	assert.True(t, Fatal(ErrSessionNotFound))
	assert.False(t, Fatal(ErrReplayAttack))
	assert.False(t, Fatal(ErrInvalidTimestamp))
	assert.False(t, Fatal(ErrSignatureMismatch))
	assert.False(t, Fatal(ErrSequenceViolation))
}

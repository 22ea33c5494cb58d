package net

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/runeward/server/internal/protocol"
)

// SessionState represents the session's current protocol phase.
type SessionState int32

const (
	StateHandshake     SessionState = iota // connected, awaiting AUTH
	StateAuthenticated                     // token accepted, at character select
	StateInWorld                           // playing
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateAuthenticated:
		return "Authenticated"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(s))
	}
}

// Inbound is one decoded frame queued for the game loop.
type Inbound struct {
	SessionID uint64
	Frame     Frame
}

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; key material, sequence counters and the nonce set
// are touched only from the game loop goroutine.
type Session struct {
	ID    uint64 // connection-local numeric id
	Token string // uuid session identifier, sent to the client

	conn  *websocket.Conn
	state atomic.Int32

	InQueue  chan Frame  // readLoop → game loop
	OutQueue chan []byte // game loop → writeLoop

	IP          string
	AccountID   int64 // 0 until authenticated
	AccessLevel int16
	CharID      int64 // 0 until character select
	CharName    string

	// Envelope state (game loop only).
	cipher    *Cipher
	CreatedAt time.Time
	ExpiresAt time.Time
	lastSeq   uint32
	outSeq    uint32
	nonces    map[string]int64 // nonce hex → expiry unix ms
	rotateDue bool

	outBuf [][]byte // buffered frames, flushed once per tick

	lastInbound  atomic.Int64 // unix ms of last frame read
	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, inSize, outSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		Token:        uuid.NewString(),
		conn:         conn,
		InQueue:      make(chan Frame, inSize),
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		nonces:       make(map[string]int64),
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(StateHandshake))
	s.lastInbound.Store(time.Now().UnixMilli())
	return s
}

func (s *Session) State() SessionState      { return SessionState(s.state.Load()) }
func (s *Session) SetState(st SessionState) { s.state.Store(int32(st)) }

// EstablishKeys mints fresh key material and (re)arms the expiry window.
// Returns the handshake body carrying the keys to the client.
func (s *Session) EstablishKeys(lifetime time.Duration) (protocol.SessionEstablished, error) {
	signKey, cryptKey, err := GenerateKeys()
	if err != nil {
		return protocol.SessionEstablished{}, fmt.Errorf("generate keys: %w", err)
	}
	cipher, err := NewCipher(signKey, cryptKey)
	if err != nil {
		return protocol.SessionEstablished{}, err
	}
	now := time.Now()
	s.cipher = cipher
	s.CreatedAt = now
	s.ExpiresAt = now.Add(lifetime)
	s.rotateDue = false
	return protocol.SessionEstablished{
		SessionID: s.Token,
		ExpiresAt: s.ExpiresAt.UnixMilli(),
		SignKey:   base64.StdEncoding.EncodeToString(signKey),
		CryptKey:  base64.StdEncoding.EncodeToString(cryptKey),
	}, nil
}

// BeginRotation mints replacement keys and returns the rotation record plus
// an install callback. The record must be sealed and sent under the old
// keys; calling install switches the session to the new keys. Sequence
// counters and the bound character are untouched.
func (s *Session) BeginRotation(lifetime time.Duration) (protocol.SessionRotated, func(), error) {
	signKey, cryptKey, err := GenerateKeys()
	if err != nil {
		return protocol.SessionRotated{}, nil, fmt.Errorf("generate keys: %w", err)
	}
	cipher, err := NewCipher(signKey, cryptKey)
	if err != nil {
		return protocol.SessionRotated{}, nil, err
	}
	now := time.Now()
	expires := now.Add(lifetime)
	rec := protocol.SessionRotated{
		SessionID: s.Token,
		ExpiresAt: expires.UnixMilli(),
		SignKey:   base64.StdEncoding.EncodeToString(signKey),
		CryptKey:  base64.StdEncoding.EncodeToString(cryptKey),
	}
	install := func() {
		s.cipher = cipher
		s.CreatedAt = now
		s.ExpiresAt = expires
		s.rotateDue = false
	}
	return rec, install, nil
}

// RotationDue reports whether the next outbound packet should carry a
// session_rotated record. Set during envelope validation, consumed once.
func (s *Session) RotationDue() bool {
	due := s.rotateDue
	s.rotateDue = false
	return due
}

// OpenEnvelope runs the full inbound validation pipeline and returns the
// decrypted plaintext. Game loop only.
func (s *Session) OpenEnvelope(env protocol.Envelope, now time.Time, cfg EnvelopeConfig) ([]byte, error) {
	if s.cipher == nil {
		return nil, ErrSessionNotFound
	}

	nowMs := now.UnixMilli()

	// Expiry window. Sessions inside the rotation buffer are still usable
	// but are flagged so the next outbound packet carries new keys.
	if now.After(s.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	if s.ExpiresAt.Sub(now) <= cfg.RotationBuffer {
		s.rotateDue = true
	}

	if env.Timestamp < nowMs-cfg.MaxPacketAgeMs || env.Timestamp > nowMs+cfg.ClockSkewToleranceMs {
		return nil, ErrInvalidTimestamp
	}

	s.expireNonces(nowMs)
	if _, seen := s.nonces[env.Nonce]; seen {
		return nil, ErrReplayAttack
	}

	if env.Sequence <= s.lastSeq || env.Sequence > s.lastSeq+cfg.SequenceWindow {
		return nil, ErrSequenceViolation
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	signature, err := hex.DecodeString(env.Signature)
	if err != nil {
		return nil, ErrSignatureMismatch
	}
	nonce, err := hex.DecodeString(env.Nonce)
	if err != nil {
		return nil, ErrSignatureMismatch
	}
	if !s.cipher.Verify(ciphertext, env.Sequence, env.Timestamp, nonce, signature) {
		return nil, ErrSignatureMismatch
	}

	plaintext, err := s.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	// Accept: record the nonce, advance the sequence.
	s.nonces[env.Nonce] = nowMs + cfg.NonceExpiryMs
	s.lastSeq = env.Sequence
	return plaintext, nil
}

// SealEnvelope mirrors the inbound construction for an outbound payload,
// consuming the next outbound sequence number. Game loop only.
func (s *Session) SealEnvelope(plaintext []byte, now time.Time) (protocol.Envelope, error) {
	if s.cipher == nil {
		return protocol.Envelope{}, ErrSessionNotFound
	}
	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("seal: %w", err)
	}
	nonce, err := randomNonce()
	if err != nil {
		return protocol.Envelope{}, err
	}
	s.outSeq++
	sig := s.cipher.Sign(ciphertext, s.outSeq, now.UnixMilli(), nonce)
	return protocol.Envelope{
		Payload:   base64.StdEncoding.EncodeToString(ciphertext),
		Signature: hex.EncodeToString(sig),
		Sequence:  s.outSeq,
		Timestamp: now.UnixMilli(),
		Nonce:     hex.EncodeToString(nonce),
	}, nil
}

func (s *Session) expireNonces(nowMs int64) {
	for n, exp := range s.nonces {
		if exp <= nowMs {
			delete(s.nonces, n)
		}
	}
}

// LastSequence returns the last accepted inbound sequence (tests, metrics).
func (s *Session) LastSequence() uint32 { return s.lastSeq }

// EnvelopeConfig is the subset of session config the pipeline needs.
type EnvelopeConfig struct {
	MaxPacketAgeMs       int64
	ClockSkewToleranceMs int64
	SequenceWindow       uint32
	NonceExpiryMs        int64
	RotationBuffer       time.Duration
}

// ─── I/O goroutines ─────────────────────────────────────────────────

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers an encoded frame for this tick. The frame is not written to
// the socket until FlushOutput runs in the output phase.
// Called only from the game loop goroutine.
func (s *Session) Send(frame []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, frame)
}

// FlushOutput drains the per-tick buffer to OutQueue for the writeLoop.
// Non-blocking: a full queue means a client that cannot keep up, and the
// session is dropped rather than stalling the loop.
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow client")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// IdleSince returns the time of the last inbound frame.
func (s *Session) IdleSince() time.Time {
	return time.UnixMilli(s.lastInbound.Load())
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool { return s.closed.Load() }

func (s *Session) readLoop() {
	defer s.Close()
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		frame, err := DecodeFrame(data)
		if err != nil {
			s.log.Debug("bad frame", zap.Error(err))
			return
		}
		s.lastInbound.Store(time.Now().UnixMilli())

		// Block until the game loop drains the queue. Dropping frames here
		// would desync sequence numbers; blocking only stalls this client.
		select {
		case s.InQueue <- frame:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()
	for {
		select {
		case data := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func randomNonce() ([]byte, error) {
	n := make([]byte, 16)
	if err := fillRandom(n); err != nil {
		return nil, err
	}
	return n, nil
}

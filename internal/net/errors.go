package net

import "errors"

// Envelope validation failures. Each maps to the error kind string sent in
// reject replies; the last three also terminate the session.
var (
	ErrInvalidTimestamp  = errors.New("INVALID_TIMESTAMP")
	ErrReplayAttack      = errors.New("REPLAY_ATTACK")
	ErrSignatureMismatch = errors.New("SIGNATURE_MISMATCH")
	ErrSequenceViolation = errors.New("SEQUENCE_VIOLATION")
	ErrDecryptionFailed  = errors.New("DECRYPTION_FAILED")
	ErrSessionExpired    = errors.New("SESSION_EXPIRED")
	ErrSessionNotFound   = errors.New("SESSION_NOT_FOUND")
)

// Fatal reports whether an envelope error must terminate the session rather
// than just reject the packet. Signature and sequence failures only reject:
// a desynced but otherwise healthy client recovers on its next packet, while
// a session that cannot decrypt, has expired or does not exist never will.
func Fatal(err error) bool {
	return errors.Is(err, ErrDecryptionFailed) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrSessionNotFound)
}

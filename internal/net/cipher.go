package net

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

// Cipher holds one session's symmetric key material: an HMAC-SHA256 signing
// key and an AES-256-GCM encryption key. Ciphertext is framed as
// IV (12 bytes) || TAG (16 bytes) || ENC, matching the client.
type Cipher struct {
	signKey  []byte
	aead     cipher.AEAD
	cryptKey []byte
}

const (
	keyLen   = 32
	gcmIVLen = 12
	gcmTag   = 16
)

// NewCipher builds a Cipher from 32-byte sign and crypt keys.
func NewCipher(signKey, cryptKey []byte) (*Cipher, error) {
	if len(signKey) != keyLen || len(cryptKey) != keyLen {
		return nil, fmt.Errorf("session keys must be %d bytes", keyLen)
	}
	block, err := aes.NewCipher(cryptKey)
	if err != nil {
		return nil, fmt.Errorf("aes init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm init: %w", err)
	}
	return &Cipher{signKey: signKey, aead: aead, cryptKey: cryptKey}, nil
}

// GenerateKeys mints a fresh (signKey, cryptKey) pair.
func GenerateKeys() (signKey, cryptKey []byte, err error) {
	signKey = make([]byte, keyLen)
	cryptKey = make([]byte, keyLen)
	if _, err = io.ReadFull(rand.Reader, signKey); err != nil {
		return nil, nil, err
	}
	if _, err = io.ReadFull(rand.Reader, cryptKey); err != nil {
		return nil, nil, err
	}
	return signKey, cryptKey, nil
}

// fillRandom fills b from crypto/rand.
func fillRandom(b []byte) error {
	_, err := io.ReadFull(rand.Reader, b)
	return err
}

// Encrypt seals plaintext into IV||TAG||ENC.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	iv := make([]byte, gcmIVLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	// Seal appends ENC||TAG; the wire wants IV||TAG||ENC.
	sealed := c.aead.Seal(nil, iv, plaintext, nil)
	enc := sealed[:len(sealed)-gcmTag]
	tag := sealed[len(sealed)-gcmTag:]

	out := make([]byte, 0, gcmIVLen+gcmTag+len(enc))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, enc...)
	return out, nil
}

// Decrypt opens IV||TAG||ENC ciphertext.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	if len(data) < gcmIVLen+gcmTag {
		return nil, fmt.Errorf("ciphertext too short: %d bytes", len(data))
	}
	iv := data[:gcmIVLen]
	tag := data[gcmIVLen : gcmIVLen+gcmTag]
	enc := data[gcmIVLen+gcmTag:]

	sealed := make([]byte, 0, len(enc)+gcmTag)
	sealed = append(sealed, enc...)
	sealed = append(sealed, tag...)
	return c.aead.Open(nil, iv, sealed, nil)
}

// Sign computes HMAC-SHA256 over ciphertext || sequence || timestamp || nonce.
// Sequence and timestamp are rendered big-endian, the nonce as raw bytes.
func (c *Cipher) Sign(ciphertext []byte, sequence uint32, timestamp int64, nonce []byte) []byte {
	mac := hmac.New(sha256.New, c.signKey)
	mac.Write(ciphertext)
	var seqBuf [4]byte
	binary.BigEndian.PutUint32(seqBuf[:], sequence)
	mac.Write(seqBuf[:])
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(timestamp))
	mac.Write(tsBuf[:])
	mac.Write(nonce)
	return mac.Sum(nil)
}

// Verify checks a signature in constant time.
func (c *Cipher) Verify(ciphertext []byte, sequence uint32, timestamp int64, nonce, signature []byte) bool {
	expected := c.Sign(ciphertext, sequence, timestamp, nonce)
	return hmac.Equal(expected, signature)
}

// Package token wraps authenticated encryption for the cookie and backup
// tokens: opaque strings carrying a JSON payload with confidentiality,
// integrity and an embedded expiration.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrSecretTooShort = errors.New("session secret must be at least 32 characters")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

const minSecretLen = 32

// Fixed HKDF salt/info. Changing either invalidates every issued token.
var (
	hkdfSalt = []byte("danverse.token.v1")
	hkdfInfo = []byte("aes-256-gcm")
)

type Codec struct {
	aead cipher.AEAD
	now  func() time.Time
}

// NewCodec derives a 256-bit key from the configured secret via HKDF-SHA256
// and prepares an AES-GCM AEAD. The raw secret is never kept around.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, ErrSecretTooShort
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), hkdfSalt, hkdfInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &Codec{aead: aead, now: time.Now}, nil
}

// WithClock overrides the codec's time source. Useful for deterministic
// issuance and expiry in tests and tooling.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	IssuedAt  int64           `json:"iat"`
	ExpiresAt int64           `json:"exp"`
}

// Encode serializes v, stamps issued-at/expiry and seals the result. The
// returned token is base64url(nonce || ciphertext).
func (c *Codec) Encode(v any, ttl time.Duration) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	issued := c.now()
	plaintext, err := json.Marshal(envelope{
		Data:      data,
		IssuedAt:  issued.Unix(),
		ExpiresAt: issued.Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode verifies and decrypts a token into v. Any malformed, tampered or
// undecryptable token yields ErrInvalidToken; a valid but stale token yields
// ErrTokenExpired.
func (c *Codec) Decode(tok string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return ErrInvalidToken
	}
	if len(raw) < c.aead.NonceSize() {
		return ErrInvalidToken
	}

	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrInvalidToken
	}

	var env envelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return ErrInvalidToken
	}
	if c.now().Unix() > env.ExpiresAt {
		return ErrTokenExpired
	}

	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: payload does not match target type", ErrInvalidToken)
	}
	return nil
}

// Package crypto seals sensitive patient fields (phone numbers) with
// AES-256-GCM before they reach the store.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidKey    = errors.New("encryption key must be 32 bytes of hex")
	ErrNotSealed     = errors.New("value is not sealed")
	ErrMalformedSeal = errors.New("sealed value is malformed")
)

// sealPrefix marks values written by Seal; anything else is plaintext from
// before a key was configured.
const sealPrefix = "enc:v1:"

// Sealer encrypts short strings under one key. The associated data passed to
// Seal must be passed again to Open, which binds a sealed value to the record
// it was written for.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer takes a 64-char hex AES-256 key.
func NewSealer(hexKey string) (*Sealer, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil || len(key) != 32 {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// IsSealed reports whether v carries the Seal prefix.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, sealPrefix)
}

func (s *Sealer) Seal(plaintext, associated string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(associated))
	return sealPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(sealed, associated string) (string, error) {
	if !IsSealed(sealed) {
		return "", ErrNotSealed
	}
	data, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, sealPrefix))
	if err != nil || len(data) < s.aead.NonceSize() {
		return "", ErrMalformedSeal
	}
	nonce, body := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, body, []byte(associated))
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}

// Package cryptoutil seals small secrets, such as backend bearer tokens, before
// they are written to shared storage.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sealer turns a secret into an opaque storable string and back.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

const (
	// Versioned so a future key or algorithm rotation can tell records apart.
	sealedPrefixV1 = "v1:"
	keySize        = 32
)

// ErrUnsealable is returned when a stored value cannot be opened with the configured key.
var ErrUnsealable = errors.New("sealed value cannot be opened")

// AESGCM seals with AES-256-GCM and a random nonce per value.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM builds a sealer from a 32-byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("aes-gcm key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCM{aead: aead}, nil
}

// Seal encrypts plaintext and returns "v1:" followed by base64(nonce||ciphertext).
func (s *AESGCM) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	buf := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefixV1 + base64.StdEncoding.EncodeToString(buf), nil
}

// Open reverses Seal. Values written before sealing was enabled have no prefix
// and cannot be trusted, so they fail like any other unreadable value.
func (s *AESGCM) Open(sealed string) (string, error) {
	raw, ok := strings.CutPrefix(sealed, sealedPrefixV1)
	if !ok {
		return "", fmt.Errorf("%w: unknown version", ErrUnsealable)
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsealable, err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", fmt.Errorf("%w: too short", ErrUnsealable)
	}
	pt, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsealable, err)
	}
	return string(pt), nil
}

// Plain stores values unchanged. Used when no key is configured.
type Plain struct{}

func (Plain) Seal(plaintext string) (string, error) { return plaintext, nil }

// Open refuses sealed values so a missing key is reported instead of leaking ciphertext as a token.
func (Plain) Open(sealed string) (string, error) {
	if strings.HasPrefix(sealed, sealedPrefixV1) {
		return "", fmt.Errorf("%w: no key configured", ErrUnsealable)
	}
	return sealed, nil
}

// ParseKey accepts a 32-byte key encoded as base64 (standard or URL) or hex.
func ParseKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	decoders := []func(string) ([]byte, error){
		base64.StdEncoding.DecodeString,
		base64.RawStdEncoding.DecodeString,
		base64.URLEncoding.DecodeString,
		base64.RawURLEncoding.DecodeString,
		hex.DecodeString,
	}
	for _, decode := range decoders {
		if key, err := decode(encoded); err == nil && len(key) == keySize {
			return key, nil
		}
	}
	return nil, fmt.Errorf("key must decode to %d bytes (base64 or hex)", keySize)
}

// NewSealer returns an AES-GCM sealer for a non-empty encoded key and Plain otherwise.
func NewSealer(encodedKey string) (Sealer, error) {
	if strings.TrimSpace(encodedKey) == "" {
		return Plain{}, nil
	}
	key, err := ParseKey(encodedKey)
	if err != nil {
		return nil, err
	}
	return NewAESGCM(key)
}

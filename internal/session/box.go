package session

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Box seals bearer tokens before they reach durable storage (sqlite, redis).
// A nil Box is valid and passes tokens through unchanged, which the memory
// driver and tests rely on.
type Box struct {
	aead cipher.AEAD
}

// NewBox builds a Box from a hex-encoded 32-byte key (SESSION_KEY).
func NewBox(hexKey string) (*Box, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("session: bad SESSION_KEY: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("session: SESSION_KEY must be 32 bytes of hex")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Box{aead: aead}, nil
}

func (b *Box) Seal(token string) (string, error) {
	if b == nil {
		return token, nil
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *Box) Open(sealed string) (string, error) {
	if b == nil {
		return sealed, nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("session: unseal: %w", err)
	}
	if len(raw) < chacha20poly1305.NonceSize {
		return "", errors.New("session: sealed token too short")
	}
	nonce, ct := raw[:chacha20poly1305.NonceSize], raw[chacha20poly1305.NonceSize:]
	plain, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("session: unseal: %w", err)
	}
	return string(plain), nil
}

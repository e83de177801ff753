// Package vault provides the security primitives of the portal: AES-GCM sealing of
// credentials at rest and self-signed TLS certificates for the API daemon.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// KeySize is the master key length (AES-256).
const KeySize = 32

var (
	// ErrKeySize is returned for master keys that are not KeySize bytes.
	ErrKeySize = errors.New("vault: master key must be 32 bytes")
	// ErrTampered is returned when a sealed value fails authentication.
	ErrTampered = errors.New("vault: decryption failed (wrong key or tampered data)")
)

// ParseKey accepts either 32 raw characters or 64 hex digits.
func ParseKey(s string) ([]byte, error) {
	if len(s) == KeySize {
		return []byte(s), nil
	}
	if len(s) == 2*KeySize {
		key, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("vault: parse hex key: %w", err)
		}
		return key, nil
	}
	return nil, ErrKeySize
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext and returns nonce||ciphertext as a hex string.
func Seal(plaintext string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	return hex.EncodeToString(gcm.Seal(nonce, nonce, []byte(plaintext), nil)), nil
}

// Open reverses Seal.
func Open(sealed string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	raw, err := hex.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("vault: malformed sealed value: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("vault: sealed value too short")
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrTampered
	}
	return string(plaintext), nil
}

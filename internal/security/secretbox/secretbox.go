// Package secretbox encrypts small configuration secrets (the database
// DSN) with AES-256-GCM so they can live in config files and env blocks
// without being readable. The wire form is base64(nonce)|base64(ciphertext).
package secretbox

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

const (
	nonceSize = 12 // AES-GCM standard nonce, 96 bits
	keySize   = 32 // AES-256
	sep       = "|"
)

// ErrBadKey is returned when the key does not decode to 32 bytes.
var ErrBadKey = errors.New("secretbox: key must decode to 32 bytes")

// ParseKey accepts a key as base64 (std or raw), hex, or 32 raw bytes.
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)

	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == keySize {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == keySize {
		return b, nil
	}
	if b, err := hex.DecodeString(key); err == nil && len(b) == keySize {
		return b, nil
	}
	if len(key) == keySize {
		return []byte(key), nil
	}
	return nil, ErrBadKey
}

// Encrypt seals plaintext with key and returns the wire form.
func Encrypt(key, plaintext string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}

	ct := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep +
		base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt opens a wire-form value with key.
func Decrypt(key, value string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonceB64, ctB64, ok := strings.Cut(strings.TrimSpace(value), sep)
	if !ok {
		return "", errors.New("secretbox: malformed value, want nonce|ciphertext")
	}
	nonce, err := base64.StdEncoding.DecodeString(nonceB64)
	if err != nil || len(nonce) != nonceSize {
		return "", errors.New("secretbox: malformed nonce")
	}
	ct, err := base64.StdEncoding.DecodeString(ctB64)
	if err != nil {
		return "", errors.New("secretbox: malformed ciphertext")
	}

	pt, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("secretbox: decrypt: %w", err)
	}
	return string(pt), nil
}

func newGCM(key string) (cipher.AEAD, error) {
	kb, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(kb)
	if err != nil {
		return nil, fmt.Errorf("secretbox: cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Package adaptive provides adaptive encryption with automatic algorithm selection.
package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// Cipher provides authenticated encryption with associated data.
// Ciphertexts carry their nonce as a prefix.
type Cipher interface {
	Type() CipherType
	Encrypt(plaintext, additionalData []byte) ([]byte, error)
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)
}

// New creates a cipher with the given key, picking AES-GCM where the
// CPU accelerates it and ChaCha20-Poly1305 elsewhere.
func New(key []byte) (Cipher, error) {
	if hasAESAcceleration() {
		return NewAESGCM(key)
	}
	return NewChaCha20(key)
}

// hasAESAcceleration reports whether crypto/aes runs on hardware
// instructions for this architecture. amd64 has AES-NI, arm64 has the
// ARM crypto extensions; everything else is faster with ChaCha20.
func hasAESAcceleration() bool {
	return runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64"
}

// sealed is the shared AEAD wrapper behind both cipher types.
type sealed struct {
	kind CipherType
	aead cipher.AEAD
}

// NewAESGCM creates an AES-GCM cipher. Key must be 16, 24, or 32
// bytes.
func NewAESGCM(key []byte) (Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &sealed{kind: CipherAESGCM, aead: aead}, nil
}

// NewChaCha20 creates a ChaCha20-Poly1305 cipher. Key must be exactly
// 32 bytes.
func NewChaCha20(key []byte) (Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &sealed{kind: CipherChaCha20, aead: aead}, nil
}

func (s *sealed) Type() CipherType {
	return s.kind
}

func (s *sealed) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (s *sealed) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(ciphertext) < n {
		return nil, errors.New("ciphertext too short")
	}
	return s.aead.Open(nil, ciphertext[:n], ciphertext[n:], additionalData)
}

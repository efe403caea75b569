// Package token provides token generation, hashing, and fingerprint
// utilities for authgate.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// FingerprintKeySize is the HMAC key size in bytes.
const FingerprintKeySize = 32

// Fingerprinter derives integrity fingerprints for stored tokens.
//
// The key is generated per construction and never persisted, so a
// fingerprint from one lifetime domain (one process, one browser tab)
// cannot be replayed into another. A durable token whose fingerprint no
// longer verifies has been altered outside the vault.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a Fingerprinter with a fresh random key.
func NewFingerprinter() (*Fingerprinter, error) {
	key := make([]byte, FingerprintKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("token: generate fingerprint key: %w", err)
	}
	return &Fingerprinter{key: key}, nil
}

// NewFingerprinterWithKey creates a Fingerprinter with a fixed key.
// Intended for tests that need deterministic fingerprints.
func NewFingerprinterWithKey(key []byte) *Fingerprinter {
	return &Fingerprinter{key: key}
}

// Fingerprint computes the hex-encoded HMAC-SHA256 of value.
func (f *Fingerprinter) Fingerprint(value string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks value against an expected fingerprint in constant time.
func (f *Fingerprinter) Verify(value, expected string) bool {
	actual := f.Fingerprint(value)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}

// Package token provides token generation, hashing, and fingerprint
// utilities for authgate.
package token

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultLength is the default generated value length in bytes.
const DefaultLength = 32

// Generate generates a cryptographically secure random value.
//
// The result is Base64 RawURL encoded for safe URL transmission.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a value with the specified byte length.
func GenerateWithLength(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateBytes generates random bytes.
func GenerateBytes(length int) ([]byte, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	return bytes, nil
}

// Package adaptive provides adaptive encryption with automatic algorithm selection.
package adaptive

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DerivedKeySize is the size of keys produced by DeriveKey.
const DerivedKeySize = 32

// DeriveKey derives a purpose-bound 32-byte key from a master key using
// HKDF-SHA256. Distinct labels yield independent keys, so one master
// keyfile can serve several stores without key reuse.
func DeriveKey(master []byte, label string) ([]byte, error) {
	if len(master) < 16 {
		return nil, errors.New("master key too short: need at least 16 bytes")
	}

	r := hkdf.New(sha256.New, master, nil, []byte(label))
	key := make([]byte, DerivedKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

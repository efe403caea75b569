// Package adaptive provides adaptive encryption for authgate.
//
// This package implements a cipher abstraction that automatically
// selects the best available encryption algorithm based on hardware
// capabilities. The CLI vault uses it to encrypt token records at
// rest; the key never leaves the operator's machine.
//
// Supported Algorithms:
//
//   - AES-256-GCM: preferred when hardware AES support is available
//   - ChaCha20-Poly1305: fallback for systems without AES-NI
//
// Features:
//
//   - Hardware detection: automatic selection based on CPU features
//   - AEAD: authenticated encryption with associated data
//   - HKDF key derivation from a master key per purpose label
//   - Thread safety: all cipher operations are thread-safe
//
// Usage:
//
//	cipher, err := adaptive.New(key)
//	encrypted, err := cipher.Encrypt(plaintext, aad)
//	plaintext, err := cipher.Decrypt(encrypted, aad)
package adaptive

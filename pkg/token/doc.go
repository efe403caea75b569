// Package token provides token generation, hashing, and fingerprint
// utilities for authgate.
//
// The platform API issues opaque access/refresh tokens; this package
// never parses them. It provides:
//
//   - Cryptographically secure random value generation (request IDs,
//     CSRF values, test fixtures)
//   - SHA-256 hashing with constant-time comparison
//   - Keyed HMAC fingerprints used by the vault to detect tampering
//     with durably stored tokens
//
// Security:
//
//   - Uses crypto/rand for CSPRNG
//   - Constant-time comparison everywhere a secret is compared
//   - Fingerprint keys live only in volatile process memory
package token

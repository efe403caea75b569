// Package domain defines the core domain models for authgate.
package domain

import "time"

// Record names used by the token vault. The vault exclusively owns
// reads and writes of these; no other component touches the underlying
// storage directly.
const (
	RecordAccessToken  = "access_token"
	RecordRefreshToken = "refresh_token"
	RecordTenant       = "current_tenant"
	RecordProfile      = "current_profile"

	// RecordFingerprint lives only in the volatile store and holds the
	// integrity fingerprint of the durable access token.
	RecordFingerprint = "access_fingerprint"

	// RecordLegacySession is the pre-split single-blob record migrated
	// into the paired records by the one-time startup migration.
	RecordLegacySession = "auth_session"
)

// LegacyRecords are every storage location used before the record-split
// migration. Clear removes these unconditionally.
var LegacyRecords = []string{
	RecordLegacySession,
	"auth_token",
	"auth_refresh",
}

// SameSite mirrors the cookie same-site policy without importing
// net/http into the domain.
type SameSite int

const (
	SameSiteLax SameSite = iota
	SameSiteStrict
	SameSiteNone
)

// StoredRecord is a single named record in token storage: a cookie in
// the gateway, an encrypted badger entry in the CLI, a map entry in
// tests. Expiry and security flags travel with the value so every
// backend applies the same policy.
type StoredRecord struct {
	Name    string
	Value   string
	Expires time.Time

	Secure   bool
	SameSite SameSite
	Path     string
}

// Expired reports whether the record is past its expiry at now.
// A zero Expires never expires (the backend's own TTL governs).
func (r StoredRecord) Expired(now time.Time) bool {
	return !r.Expires.IsZero() && now.After(r.Expires)
}

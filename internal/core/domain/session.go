// Package domain defines the core domain models for authgate.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Token lifetimes used across the vault and the refresh scheduler.
// The access token TTL mirrors what the platform API issues; the refresh
// interval must stay safely inside it.
const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
	TenantTTL       = 30 * 24 * time.Hour

	// RefreshInterval is how often an authenticated session is renewed
	// in the background. 45 minutes against a 1 hour access token.
	RefreshInterval = 45 * time.Minute
)

// Session is the paired credential issued by the platform API.
//
// A session is only valid as a pair: an access token without its refresh
// token is treated as absent everywhere, because it cannot be renewed and
// would silently die mid-use.
type Session struct {
	// AccessToken is the short-lived bearer credential for API calls.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential used to rotate the pair.
	RefreshToken string `json:"refresh_token"`

	// IssuedAt is when this pair was issued (Unix milliseconds).
	IssuedAt int64 `json:"issued_at"`
}

// NewSession creates a Session issued now from a token pair.
func NewSession(access, refresh string) *Session {
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		IssuedAt:     time.Now().UnixMilli(),
	}
}

// Valid reports whether the session is a complete pair.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// Age returns how long ago the pair was issued.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.IssuedAt))
}

// ID prefixes for identifiers generated by this process.
const (
	RequestIDPrefix = "agrq-"
	DeviceIDPrefix  = "agdv-"
)

// NewRequestID generates a request ID of the form agrq-{ulid_lowercase}.
func NewRequestID() string {
	return RequestIDPrefix + newULID()
}

// NewDeviceID generates a device ID of the form agdv-{ulid_lowercase}.
// Device IDs key the volatile fingerprint store in the gateway.
func NewDeviceID() string {
	return DeviceIDPrefix + newULID()
}

func newULID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return strings.ToLower(id.String())
}

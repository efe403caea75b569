// Package vault provides tamper-checked token storage.
package vault

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/pkg/token"
)

// Vault stores the session pair, the active tenant, and the cached
// profile, with an integrity fingerprint of the access token kept in a
// separate volatile store.
type Vault struct {
	durable  RecordStore
	volatile RecordStore
	fp       *token.Fingerprinter
	logger   *slog.Logger
	nowFunc  func() time.Time
	tampered Counter

	secure bool
}

// Counter is the sliver of a metrics counter the vault reports
// through. Prometheus counters satisfy it.
type Counter interface {
	Inc()
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) {
		v.logger = logger
	}
}

// WithNow sets the time source (for tests).
func WithNow(now func() time.Time) Option {
	return func(v *Vault) {
		v.nowFunc = now
	}
}

// WithInsecureRecords drops the Secure flag on written records.
// Only for local development against plain HTTP.
func WithInsecureRecords() Option {
	return func(v *Vault) {
		v.secure = false
	}
}

// WithTamperCounter wires a counter incremented on every fingerprint
// mismatch.
func WithTamperCounter(c Counter) Option {
	return func(v *Vault) {
		v.tampered = c
	}
}

// New creates a Vault over a durable and a volatile record store.
func New(durable, volatile RecordStore, fp *token.Fingerprinter, opts ...Option) *Vault {
	v := &Vault{
		durable:  durable,
		volatile: volatile,
		fp:       fp,
		logger:   slog.Default(),
		nowFunc:  time.Now,
		secure:   true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// record builds a StoredRecord with the vault's standard flags.
func (v *Vault) record(name, value string, ttl time.Duration) domain.StoredRecord {
	return domain.StoredRecord{
		Name:     name,
		Value:    value,
		Expires:  v.nowFunc().Add(ttl),
		Secure:   v.secure,
		SameSite: domain.SameSiteLax,
		Path:     "/",
	}
}

// Store persists the session pair as two separate durable records and
// writes the access-token fingerprint to the volatile store.
//
// Write failures are not retried; the caller treats them as
// unauthenticated.
func (v *Vault) Store(ctx context.Context, sess *domain.Session) error {
	if !sess.Valid() {
		return domain.ErrStorage.WithDetails("refusing to store an incomplete session pair")
	}

	if err := v.durable.Set(ctx, v.record(domain.RecordAccessToken, sess.AccessToken, domain.AccessTokenTTL)); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	if err := v.durable.Set(ctx, v.record(domain.RecordRefreshToken, sess.RefreshToken, domain.RefreshTokenTTL)); err != nil {
		return domain.ErrStorage.WithCause(err)
	}

	print := v.fp.Fingerprint(sess.AccessToken)
	if err := v.volatile.Set(ctx, v.record(domain.RecordFingerprint, print, domain.AccessTokenTTL)); err != nil {
		return domain.ErrStorage.WithCause(err)
	}

	return nil
}

// Load returns the stored session.
//
// Absent (either record missing, or an orphaned access token without
// its refresh token) returns (nil, nil). A fingerprint mismatch means
// the durable access token was altered outside the vault: every record
// is wiped and ErrTokenCompromised is returned. A missing fingerprint
// (first load in this lifetime domain) is adopted, not treated as
// tampering.
func (v *Vault) Load(ctx context.Context) (*domain.Session, error) {
	access, ok, err := v.durable.Get(ctx, domain.RecordAccessToken)
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	if !ok {
		return nil, nil
	}

	refresh, ok, err := v.durable.Get(ctx, domain.RecordRefreshToken)
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	if !ok {
		// Orphaned access token: unusable, treat the session as absent.
		return nil, nil
	}

	print, ok, err := v.volatile.Get(ctx, domain.RecordFingerprint)
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	switch {
	case !ok:
		adopted := v.fp.Fingerprint(access.Value)
		if err := v.volatile.Set(ctx, v.record(domain.RecordFingerprint, adopted, domain.AccessTokenTTL)); err != nil {
			return nil, domain.ErrStorage.WithCause(err)
		}
	case !v.fp.Verify(access.Value, print.Value):
		v.logger.Warn("access token fingerprint mismatch, wiping session",
			"token_hash", token.Hash(access.Value)[:12])
		if v.tampered != nil {
			v.tampered.Inc()
		}
		if err := v.Clear(ctx); err != nil {
			v.logger.Error("wipe after fingerprint mismatch failed", "error", err)
		}
		return nil, domain.ErrTokenCompromised
	}

	// Cookie reads do not echo expiry back, so IssuedAt is best-effort:
	// reconstructed from the record expiry when the backend reports one.
	var issuedAt int64
	if !access.Expires.IsZero() {
		issuedAt = access.Expires.Add(-domain.AccessTokenTTL).UnixMilli()
	}
	return &domain.Session{
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		IssuedAt:     issuedAt,
	}, nil
}

// Clear idempotently removes every record, including the storage
// locations used before the record-split migration.
func (v *Vault) Clear(ctx context.Context) error {
	names := []string{
		domain.RecordAccessToken,
		domain.RecordRefreshToken,
		domain.RecordTenant,
		domain.RecordProfile,
	}
	names = append(names, domain.LegacyRecords...)

	var firstErr error
	for _, name := range names {
		if err := v.durable.Delete(ctx, name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := v.volatile.Delete(ctx, domain.RecordFingerprint); err != nil && firstErr == nil {
		firstErr = err
	}

	if firstErr != nil {
		return domain.ErrStorage.WithCause(firstErr)
	}
	return nil
}

// SetTenant persists the active tenant ID with its own expiry,
// independent of the session pair.
func (v *Vault) SetTenant(ctx context.Context, id string) error {
	if id == "" {
		if err := v.durable.Delete(ctx, domain.RecordTenant); err != nil {
			return domain.ErrStorage.WithCause(err)
		}
		return nil
	}
	if err := v.durable.Set(ctx, v.record(domain.RecordTenant, id, domain.TenantTTL)); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// Tenant retrieves the active tenant ID, or "" when none is stored.
func (v *Vault) Tenant(ctx context.Context) (string, error) {
	rec, ok, err := v.durable.Get(ctx, domain.RecordTenant)
	if err != nil {
		return "", domain.ErrStorage.WithCause(err)
	}
	if !ok {
		return "", nil
	}
	return rec.Value, nil
}

// CacheProfile mirrors the identity into the vault-backed profile
// cache. The cache lives as long as the access token.
func (v *Vault) CacheProfile(ctx context.Context, id *domain.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	if err := v.durable.Set(ctx, v.record(domain.RecordProfile, string(data), domain.AccessTokenTTL)); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// CachedProfile returns the cached identity, if any.
func (v *Vault) CachedProfile(ctx context.Context) (*domain.Identity, bool) {
	rec, ok, err := v.durable.Get(ctx, domain.RecordProfile)
	if err != nil || !ok {
		return nil, false
	}
	var id domain.Identity
	if err := json.Unmarshal([]byte(rec.Value), &id); err != nil {
		return nil, false
	}
	return &id, true
}

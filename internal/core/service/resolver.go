// Package service implements the authentication lifecycle for authgate.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/pkg/cmap"
)

// PlatformAPI is the slice of the platform API the services need.
// *platformapi.Client satisfies it.
type PlatformAPI interface {
	// Login authenticates against one tenant, or the hub when tenantID
	// is empty.
	Login(ctx context.Context, email, password, tenantID string) (*domain.Session, *domain.Identity, error)

	// Register creates an account, tenant-scoped when tenantID is set.
	Register(ctx context.Context, reg domain.Registration, tenantID string) (*domain.Session, *domain.Identity, error)

	// Refresh rotates a session pair.
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)

	// Me fetches the profile behind an access token.
	Me(ctx context.Context, accessToken string) (*domain.Identity, error)

	// UpdateMe patches the mutable profile fields.
	UpdateMe(ctx context.Context, accessToken string, upd domain.ProfileUpdate) (*domain.Identity, error)

	// Logout revokes the session server-side.
	Logout(ctx context.Context, accessToken string) error

	// LookupTenants asks the directory which tenants know an email.
	LookupTenants(ctx context.Context, email string) ([]domain.Tenant, error)
}

// Default per-email login attempt budget.
const (
	defaultAttemptRate  = rate.Limit(5.0 / 60.0) // 5 per minute
	defaultAttemptBurst = 5
)

// Cascade stages a login can be resolved by, reported in
// LoginResult.Source.
const (
	SourceHint      = "hint"
	SourceDirectory = "directory"
	SourceFallback  = "fallback"
	SourceHub       = "hub"
)

// LoginResult is the outcome of a successful cascade walk.
type LoginResult struct {
	Session  *domain.Session
	Identity *domain.Identity

	// Tenant is the tenant that accepted the credentials, nil when the
	// hub did.
	Tenant *domain.Tenant

	// Source names the cascade stage that produced the session.
	Source string
}

// TenantResolver walks the tenant cascade for a login attempt.
//
// Order: an explicit tenant hint short-circuits everything; otherwise
// the directory's candidates are tried sequentially, first success
// wins; the hub is the final fallback. Individual candidate rejections
// are swallowed, only full exhaustion surfaces ErrCredentialsInvalid.
type TenantResolver struct {
	api    PlatformAPI
	logger *slog.Logger

	// limiters tracks the per-email attempt budget.
	limiters *cmap.Map[*rate.Limiter]
	limit    rate.Limit
	burst    int

	mu       sync.RWMutex
	fallback []string
}

// ResolverOption configures a TenantResolver.
type ResolverOption func(*TenantResolver)

// WithResolverLogger sets the logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *TenantResolver) { r.logger = l }
}

// WithFallbackTenants sets the initial degraded-mode candidate list
// used when the directory fails or returns nothing. An empty list
// disables degraded mode.
func WithFallbackTenants(slugs []string) ResolverOption {
	return func(r *TenantResolver) { r.fallback = append([]string(nil), slugs...) }
}

// WithAttemptRate overrides the per-email attempt budget.
func WithAttemptRate(limit rate.Limit, burst int) ResolverOption {
	return func(r *TenantResolver) { r.limit, r.burst = limit, burst }
}

// NewTenantResolver creates a resolver over the given platform API.
func NewTenantResolver(api PlatformAPI, opts ...ResolverOption) *TenantResolver {
	r := &TenantResolver{
		api:      api,
		logger:   slog.Default(),
		limiters: cmap.New[*rate.Limiter](),
		limit:    defaultAttemptRate,
		burst:    defaultAttemptBurst,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetFallback replaces the degraded-mode candidate list. Safe to call
// while logins are in flight; the config watcher calls this on reload.
func (r *TenantResolver) SetFallback(slugs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = append([]string(nil), slugs...)
}

// Fallback returns a copy of the current degraded-mode list.
func (r *TenantResolver) Fallback() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.fallback...)
}

// FindCandidates returns the ordered tenants to try for an email and
// the cascade stage they came from. Directory failure or an empty
// directory answer degrades to the configured fallback list; it never
// fails the login outright.
func (r *TenantResolver) FindCandidates(ctx context.Context, email string) ([]domain.Tenant, string) {
	tenants, err := r.api.LookupTenants(ctx, email)
	if err != nil {
		r.logger.Warn("tenant directory lookup failed, using fallback list", "error", err)
	}
	if len(tenants) > 0 {
		return tenants, SourceDirectory
	}

	var out []domain.Tenant
	for _, slug := range r.Fallback() {
		out = append(out, domain.Tenant{Slug: slug})
	}
	return out, SourceFallback
}

// Login resolves credentials to a session.
func (r *TenantResolver) Login(ctx context.Context, creds domain.Credentials) (*LoginResult, error) {
	// 1. Per-email attempt budget
	if !r.limiter(creds.Email).Allow() {
		return nil, domain.ErrLoginRateLimited
	}

	// 2. An explicit hint skips discovery entirely; its failure is the
	// caller's answer.
	if creds.TenantHint != "" {
		return r.attempt(ctx, creds, domain.Tenant{Slug: creds.TenantHint}, SourceHint)
	}

	// 3. Directory candidates, first success wins
	candidates, source := r.FindCandidates(ctx, creds.Email)
	for _, tenant := range candidates {
		res, err := r.attempt(ctx, creds, tenant, source)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, domain.ErrNetwork) {
			// Transport trouble is not a rejection; stop walking.
			return nil, err
		}
		r.logger.Debug("tenant candidate rejected login", "tenant", tenant.Slug)
	}

	// 4. Hub as the final fallback
	session, identity, err := r.api.Login(ctx, creds.Email, creds.Password, "")
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrLoginRateLimited) {
			return nil, err
		}
		return nil, domain.ErrCredentialsInvalid
	}
	return &LoginResult{Session: session, Identity: identity, Source: SourceHub}, nil
}

// attempt runs one tenant-scoped login.
func (r *TenantResolver) attempt(ctx context.Context, creds domain.Credentials, tenant domain.Tenant, source string) (*LoginResult, error) {
	// The platform accepts the slug where the internal ID is unknown,
	// which is the case for hint and fallback candidates.
	id := tenant.ID
	if id == "" {
		id = tenant.Slug
	}

	session, identity, err := r.api.Login(ctx, creds.Email, creds.Password, id)
	if err != nil {
		return nil, err
	}
	t := tenant
	return &LoginResult{Session: session, Identity: identity, Tenant: &t, Source: source}, nil
}

// limiter returns the attempt limiter for an email, creating it on
// first sight.
func (r *TenantResolver) limiter(email string) *rate.Limiter {
	return r.limiters.Update(email, func(l *rate.Limiter, exists bool) *rate.Limiter {
		if exists {
			return l
		}
		return rate.NewLimiter(r.limit, r.burst)
	})
}

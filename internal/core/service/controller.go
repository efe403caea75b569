// Package service implements the authentication lifecycle for authgate.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/internal/vault"
)

// SessionController owns the authentication state machine.
//
// It is the sole writer of auth state. Reads go through Snapshot, which
// returns a copy. State-changing operations serialize on an internal
// mutex but release it around network calls, so a second call arriving
// while one is authenticating observes the authenticating status and is
// rejected rather than queued behind it.
type SessionController struct {
	api       PlatformAPI
	resolver  *TenantResolver
	vault     *vault.Vault
	refresher *RefreshScheduler
	logger    *slog.Logger

	schedOpts []SchedulerOption
	migrated  Counter
	loginObs  func(source, outcome string)

	mu         sync.Mutex
	state      domain.State
	refreshing bool
}

// ControllerOption configures a SessionController.
type ControllerOption func(*SessionController)

// WithControllerLogger sets the logger.
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(c *SessionController) { c.logger = l }
}

// WithSchedulerOptions forwards options to the embedded refresh
// scheduler.
func WithSchedulerOptions(opts ...SchedulerOption) ControllerOption {
	return func(c *SessionController) { c.schedOpts = opts }
}

// WithMigrationCounter wires a counter incremented when a legacy
// session record is folded into paired records.
func WithMigrationCounter(cnt Counter) ControllerOption {
	return func(c *SessionController) { c.migrated = cnt }
}

// WithLoginObserver wires a callback invoked after every login
// attempt with the cascade source and an "accepted" or "rejected"
// outcome.
func WithLoginObserver(obs func(source, outcome string)) ControllerOption {
	return func(c *SessionController) { c.loginObs = obs }
}

// NewSessionController wires the controller to its collaborators.
// The controller starts anonymous with the loading flag set; callers
// must run Start before serving guard decisions.
func NewSessionController(api PlatformAPI, resolver *TenantResolver, v *vault.Vault, opts ...ControllerOption) *SessionController {
	c := &SessionController{
		api:      api,
		resolver: resolver,
		vault:    v,
		logger:   slog.Default(),
		state: domain.State{
			Status:  domain.StatusAnonymous,
			Loading: true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.refresher = NewRefreshScheduler(c.Refresh, c.schedOpts...)
	return c
}

// Snapshot returns a copy of the current auth state.
func (c *SessionController) Snapshot() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start restores a persisted session: legacy migration first, then the
// vault load, then one identity fetch with at most one refresh retry.
// Any failure along the way degrades to a clean anonymous state; Start
// only errors on storage trouble that leaves the vault unusable.
func (c *SessionController) Start(ctx context.Context) error {
	defer c.finishLoading()

	// 1. Fold any legacy auth_session blob into paired records
	if migrated, err := c.vault.MigrateLegacy(ctx); err != nil {
		c.logger.Warn("legacy session migration failed", "error", err)
	} else if migrated {
		c.logger.Info("migrated legacy session record")
		count(c.migrated)
	}

	// 2. Load the stored pair
	sess, err := c.vault.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrTokenCompromised) {
			c.logger.Warn("stored session failed integrity check, starting anonymous")
			return nil
		}
		return err
	}
	if !sess.Valid() {
		return nil
	}

	if err := c.transition(domain.StatusAuthenticating); err != nil {
		return err
	}

	// 3. Validate the pair with one identity fetch, refreshing once if
	// the access token went stale while stored
	identity, err := c.api.Me(ctx, sess.AccessToken)
	if err != nil {
		sess, identity, err = c.refreshOnce(ctx, sess)
	}
	if err != nil {
		c.logger.Info("stored session rejected, clearing", "error", err)
		if clearErr := c.vault.Clear(ctx); clearErr != nil {
			c.logger.Error("vault clear failed", "error", clearErr)
		}
		return c.transition(domain.StatusAnonymous)
	}

	tenant := c.loadTenant(ctx)
	c.becomeAuthenticated(sess, identity, tenant)
	c.cacheProfile(ctx, identity)
	return nil
}

// refreshOnce rotates the pair and retries the identity fetch exactly
// once.
func (c *SessionController) refreshOnce(ctx context.Context, sess *domain.Session) (*domain.Session, *domain.Identity, error) {
	fresh, err := c.api.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return nil, nil, err
	}
	if err := c.vault.Store(ctx, fresh); err != nil {
		return nil, nil, err
	}
	identity, err := c.api.Me(ctx, fresh.AccessToken)
	if err != nil {
		return nil, nil, err
	}
	return fresh, identity, nil
}

// Login resolves credentials through the tenant cascade and persists
// the resulting session.
func (c *SessionController) Login(ctx context.Context, creds domain.Credentials) error {
	if err := c.transition(domain.StatusAuthenticating); err != nil {
		return err
	}

	res, err := c.resolver.Login(ctx, creds)
	if err != nil {
		c.observeLogin(rejectedSource(creds), "rejected")
		return c.fail(ctx, err)
	}
	c.observeLogin(res.Source, "accepted")
	return c.establish(ctx, res.Session, res.Identity, res.Tenant)
}

func (c *SessionController) observeLogin(source, outcome string) {
	if c.loginObs != nil {
		c.loginObs(source, outcome)
	}
}

// rejectedSource names the cascade stage a failed login died at: a
// hinted login never leaves the hint, everything else exhausts at the
// hub.
func rejectedSource(creds domain.Credentials) string {
	if creds.TenantHint != "" {
		return SourceHint
	}
	return SourceHub
}

// Register creates an account. Platforms that require email
// verification answer without tokens; that is a success that leaves
// the controller anonymous.
func (c *SessionController) Register(ctx context.Context, reg domain.Registration) error {
	if err := c.transition(domain.StatusAuthenticating); err != nil {
		return err
	}

	var tenantID string
	if reg.TenantHint != "" {
		tenantID = reg.TenantHint
	}
	sess, identity, err := c.api.Register(ctx, reg, tenantID)
	if err != nil {
		return c.fail(ctx, err)
	}

	if !sess.Valid() {
		return c.transition(domain.StatusAnonymous)
	}

	var tenant *domain.Tenant
	if reg.TenantHint != "" {
		tenant = &domain.Tenant{Slug: reg.TenantHint}
	}
	return c.establish(ctx, sess, identity, tenant)
}

// establish persists a fresh session and enters authenticated.
func (c *SessionController) establish(ctx context.Context, sess *domain.Session, identity *domain.Identity, tenant *domain.Tenant) error {
	if err := c.vault.Store(ctx, sess); err != nil {
		return c.fail(ctx, err)
	}
	slug := ""
	if tenant != nil {
		slug = tenant.Slug
	}
	if err := c.vault.SetTenant(ctx, slug); err != nil {
		c.logger.Warn("persisting tenant selection failed", "error", err)
	}
	c.cacheProfile(ctx, identity)

	c.becomeAuthenticated(sess, identity, tenant)
	return nil
}

// Logout revokes the session server-side on a best-effort basis, then
// clears local state unconditionally.
func (c *SessionController) Logout(ctx context.Context) error {
	c.mu.Lock()
	sess := c.state.Session
	c.mu.Unlock()

	if sess.Valid() {
		if err := c.api.Logout(ctx, sess.AccessToken); err != nil {
			c.logger.Warn("server-side logout failed, clearing locally anyway", "error", err)
		}
	}

	c.refresher.Disarm()
	if err := c.vault.Clear(ctx); err != nil {
		c.logger.Error("vault clear failed", "error", err)
	}

	c.mu.Lock()
	c.state = domain.State{Status: domain.StatusAnonymous}
	c.mu.Unlock()
	return nil
}

// Refresh rotates the session pair in place. Concurrent calls
// coalesce: the second returns immediately while the first is in
// flight. A rejected refresh token is terminal and forces a local
// clear; transport failures leave state untouched.
func (c *SessionController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Status != domain.StatusAuthenticated {
		c.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	if c.refreshing {
		c.mu.Unlock()
		return nil
	}
	c.refreshing = true
	sess := c.state.Session
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	fresh, err := c.api.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) {
			return err
		}
		// Rejected refresh token. The session is dead; no retry.
		c.forceLogout(ctx)
		return domain.ErrRefreshFailed.WithCause(err)
	}

	if err := c.vault.Store(ctx, fresh); err != nil {
		// The platform already rotated the pair; the old one is dead
		// and the new one cannot survive a restart unstored.
		c.forceLogout(ctx)
		return err
	}

	c.mu.Lock()
	if c.state.Status == domain.StatusAuthenticated {
		c.state.Session = fresh
	}
	c.mu.Unlock()
	return nil
}

// UpdateProfile patches the identity. Failure leaves both the state
// and the cached profile untouched.
func (c *SessionController) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) error {
	c.mu.Lock()
	if c.state.Status != domain.StatusAuthenticated {
		c.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	sess := c.state.Session
	c.mu.Unlock()

	identity, err := c.api.UpdateMe(ctx, sess.AccessToken, upd)
	if err != nil {
		return err
	}

	c.cacheProfile(ctx, identity)
	c.mu.Lock()
	if c.state.Status == domain.StatusAuthenticated {
		c.state.Identity = identity
	}
	c.mu.Unlock()
	return nil
}

// Close disarms the refresher. It does not touch stored state.
func (c *SessionController) Close() error {
	c.refresher.Disarm()
	return nil
}

// transition moves the state machine, enforcing the transition table.
func (c *SessionController) transition(to domain.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Status.CanTransition(to) {
		return domain.ErrInvalidTransition.WithDetails(string(c.state.Status) + " -> " + string(to))
	}
	c.state.Status = to
	if to == domain.StatusAnonymous {
		c.state.Session = nil
		c.state.Identity = nil
		c.state.Tenant = nil
		c.state.LastError = nil
	}
	return nil
}

// fail records an authentication failure. Transport failures return to
// anonymous without an error state so the user retries; rejections
// enter the error state with the cause attached.
func (c *SessionController) fail(ctx context.Context, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if errors.Is(err, domain.ErrNetwork) {
		c.state.Status = domain.StatusAnonymous
		return err
	}
	c.state.Status = domain.StatusError
	c.state.LastError = err
	return err
}

// forceLogout disarms the refresher, wipes the vault, and drops to
// anonymous. ctx is passed through to the refresher so a scheduler
// tick that turns terminal does not wait on its own loop.
func (c *SessionController) forceLogout(ctx context.Context) {
	c.refresher.disarm(ctx)
	if err := c.vault.Clear(ctx); err != nil {
		c.logger.Error("vault clear failed", "error", err)
	}
	c.mu.Lock()
	c.state = domain.State{Status: domain.StatusAnonymous}
	c.mu.Unlock()
}

// becomeAuthenticated installs the session and arms the refresher.
func (c *SessionController) becomeAuthenticated(sess *domain.Session, identity *domain.Identity, tenant *domain.Tenant) {
	c.mu.Lock()
	c.state.Status = domain.StatusAuthenticated
	c.state.Session = sess
	c.state.Identity = identity
	c.state.Tenant = tenant
	c.state.LastError = nil
	c.mu.Unlock()

	c.refresher.Arm()
}

// loadTenant restores the persisted tenant selection, if any.
func (c *SessionController) loadTenant(ctx context.Context) *domain.Tenant {
	slug, err := c.vault.Tenant(ctx)
	if err != nil {
		c.logger.Warn("loading tenant selection failed", "error", err)
		return nil
	}
	if slug == "" {
		return nil
	}
	return &domain.Tenant{Slug: slug}
}

// cacheProfile mirrors the identity into the vault-backed cache.
func (c *SessionController) cacheProfile(ctx context.Context, identity *domain.Identity) {
	if identity == nil {
		return
	}
	if err := c.vault.CacheProfile(ctx, identity); err != nil {
		c.logger.Warn("profile cache write failed", "error", err)
	}
}

// finishLoading clears the startup loading flag.
func (c *SessionController) finishLoading() {
	c.mu.Lock()
	c.state.Loading = false
	c.mu.Unlock()
}

// Package gateway is the browser-facing HTTP surface of authgate.
package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/internal/core/service"
	"github.com/kehilahub/authgate/internal/telemetry/metric"
	"github.com/kehilahub/authgate/internal/vault"
	"github.com/kehilahub/authgate/pkg/token"
)

// HandlerConfig wires a Handler to its collaborators.
type HandlerConfig struct {
	API           service.PlatformAPI
	Resolver      *service.TenantResolver
	Fingerprinter *token.Fingerprinter
	Metrics       *metric.Registry
	Logger        *slog.Logger

	DefaultLocale string

	// InsecureCookies drops the Secure flag on written cookies.
	// Local development only.
	InsecureCookies bool
}

// Handler serves the auth endpoints. It is stateless per request: each
// call builds a session controller over a cookie-backed vault bound to
// that exchange, with the volatile fingerprint store shared across
// requests and scoped by the device cookie.
type Handler struct {
	api      service.PlatformAPI
	resolver *service.TenantResolver
	fp       *token.Fingerprinter
	volatile *vault.MemStore
	metrics  *metric.Registry
	logger   *slog.Logger

	defaultLocale string
	insecure      bool
}

// NewHandler creates the auth endpoint handler.
func NewHandler(cfg *HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locale := cfg.DefaultLocale
	if locale == "" {
		locale = "fr"
	}
	return &Handler{
		api:           cfg.API,
		resolver:      cfg.Resolver,
		fp:            cfg.Fingerprinter,
		volatile:      vault.NewMemStore(),
		metrics:       cfg.Metrics,
		logger:        logger,
		defaultLocale: locale,
		insecure:      cfg.InsecureCookies,
	}
}

// controller builds the per-request session controller. The caller
// must Close it before the response is done.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) *service.SessionController {
	scope := GetDeviceIDFromContext(r.Context())
	if scope == "" {
		// No device middleware on this route; fall back to a scope
		// that never matches another browser.
		scope = domain.NewDeviceID()
	}

	vaultOpts := []vault.Option{vault.WithLogger(h.logger)}
	if h.insecure {
		vaultOpts = append(vaultOpts, vault.WithInsecureRecords())
	}
	if h.metrics != nil {
		vaultOpts = append(vaultOpts, vault.WithTamperCounter(h.metrics.FingerprintMismatches))
	}

	v := vault.New(
		vault.NewCookieStore(w, r),
		vault.NewScopedStore(h.volatile, scope),
		h.fp,
		vaultOpts...,
	)

	ctrlOpts := []service.ControllerOption{service.WithControllerLogger(h.logger)}
	if h.metrics != nil {
		ctrlOpts = append(ctrlOpts,
			service.WithMigrationCounter(h.metrics.SessionsMigrated),
			service.WithLoginObserver(func(source, outcome string) {
				h.metrics.LoginAttempts.WithLabelValues(source, outcome).Inc()
			}),
			service.WithSchedulerOptions(service.WithSchedulerCounters(
				h.metrics.RefreshTicks,
				h.metrics.RefreshCoalesced,
				h.metrics.RefreshFailures,
			)),
		)
	}
	return service.NewSessionController(h.api, h.resolver, v, ctrlOpts...)
}

// State resolves the auth state for a request by restoring any stored
// session. Guards call this; it refreshes cookies as a side effect.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) domain.State {
	ctrl := h.controller(w, r)
	defer ctrl.Close()

	if err := ctrl.Start(r.Context()); err != nil {
		h.logger.Error("session restore failed", "error", err)
	}
	return ctrl.Snapshot()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// stateResponse is the JSON shape of every auth endpoint answer.
type stateResponse struct {
	Authenticated bool             `json:"authenticated"`
	Identity      *domain.Identity `json:"identity,omitempty"`
	Tenant        *domain.Tenant   `json:"tenant,omitempty"`
	Redirect      string           `json:"redirect,omitempty"`
}

// Login authenticates through the tenant cascade. A site-mode path
// injects its slug as the tenant hint; the returnUrl query parameter,
// when present, overrides the dashboard as the post-login target.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mode := ResolveMode(r.URL.Path, h.defaultLocale)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, "AG-REQ-4000", "email and password are required")
		return
	}

	ctrl := h.controller(w, r)
	defer ctrl.Close()

	err := ctrl.Login(r.Context(), domain.Credentials{
		Email:      req.Email,
		Password:   req.Password,
		TenantHint: mode.TenantHint(),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snap := ctrl.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Authenticated: true,
		Identity:      snap.Identity,
		Tenant:        snap.Tenant,
		Redirect:      postLoginTarget(r, mode),
	})
}

// Register creates an account. Platforms that require email
// verification answer without tokens; that is reported as a success
// that leaves the caller on the login page.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	mode := ResolveMode(r.URL.Path, h.defaultLocale)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, "AG-REQ-4000", "email and password are required")
		return
	}

	ctrl := h.controller(w, r)
	defer ctrl.Close()

	err := ctrl.Register(r.Context(), domain.Registration{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		TenantHint: mode.TenantHint(),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snap := ctrl.Snapshot()
	resp := stateResponse{
		Authenticated: snap.Authenticated(),
		Identity:      snap.Identity,
		Tenant:        snap.Tenant,
	}
	if resp.Authenticated {
		resp.Redirect = postLoginTarget(r, mode)
	} else {
		resp.Redirect = mode.LoginPath("")
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Logout restores the stored session, revokes it best-effort, and
// clears every cookie regardless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	mode := ResolveMode(r.URL.Path, h.defaultLocale)

	ctrl := h.controller(w, r)
	defer ctrl.Close()

	if err := ctrl.Start(r.Context()); err != nil {
		h.logger.Error("session restore failed", "error", err)
	}
	if err := ctrl.Logout(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{Redirect: "/" + mode.Locale})
}

// Refresh rotates the session pair on demand.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	defer ctrl.Close()

	if err := ctrl.Start(r.Context()); err != nil {
		h.logger.Error("session restore failed", "error", err)
	}
	if err := ctrl.Refresh(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}

	snap := ctrl.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Authenticated: snap.Authenticated(),
		Identity:      snap.Identity,
		Tenant:        snap.Tenant,
	})
}

// Me reports the current auth state and identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	defer ctrl.Close()

	if err := ctrl.Start(r.Context()); err != nil {
		h.logger.Error("session restore failed", "error", err)
	}

	snap := ctrl.Snapshot()
	if !snap.Authenticated() {
		writeDomainError(w, domain.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		Authenticated: true,
		Identity:      snap.Identity,
		Tenant:        snap.Tenant,
	})
}

// UpdateMe patches the mutable profile fields.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, "AG-REQ-4000", "malformed profile update")
		return
	}

	ctrl := h.controller(w, r)
	defer ctrl.Close()

	if err := ctrl.Start(r.Context()); err != nil {
		h.logger.Error("session restore failed", "error", err)
	}
	if err := ctrl.UpdateProfile(r.Context(), upd); err != nil {
		writeDomainError(w, err)
		return
	}

	snap := ctrl.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Authenticated: true,
		Identity:      snap.Identity,
		Tenant:        snap.Tenant,
	})
}

// postLoginTarget honors a returnUrl parameter when it is a local
// path, otherwise lands on the dashboard.
func postLoginTarget(r *http.Request, mode Mode) string {
	target := r.URL.Query().Get("returnUrl")
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return mode.DashboardPath()
	}
	return target
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Package gateway is the browser-facing HTTP surface of authgate.
package gateway

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/internal/telemetry/metric"
)

// guardPlaceholder is the neutral body served while auth state is
// still loading. It must never contain protected content.
const guardPlaceholder = `<!doctype html><html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>&hellip;</title></head><body></body></html>`

// GuardConfig configures a route guard.
type GuardConfig struct {
	// State resolves the auth state for a request. The writer is
	// passed through so the resolver can refresh cookies.
	State func(w http.ResponseWriter, r *http.Request) domain.State

	// Role, when set, is required in addition to authentication.
	// An unmet role redirects to the dashboard instead of the login
	// page: the caller is known, just not allowed.
	Role domain.Role

	// DefaultLocale is used for redirect targets when the path
	// carries no locale segment.
	DefaultLocale string

	Metrics *metric.Registry
	Logger  *slog.Logger
}

// Guard wraps protected routes. While the auth state is loading it
// serves a neutral placeholder; once resolved it either passes the
// request through or redirects, and never leaks protected bytes on
// the way out.
func Guard(cfg *GuardConfig) Middleware {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := cfg.State(w, r)

			if state.Loading {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				io.WriteString(w, guardPlaceholder)
				return
			}

			mode := ResolveMode(r.URL.Path, cfg.DefaultLocale)

			if !state.Authenticated() {
				logger.Debug("guard redirecting unauthenticated request", "path", r.URL.Path)
				redirect(w, r, cfg, mode.LoginPath(r.URL.RequestURI()), metric.ReasonUnauthenticated)
				return
			}

			if cfg.Role != "" && !state.Identity.HasRole(cfg.Role) {
				logger.Debug("guard redirecting for unmet role",
					"path", r.URL.Path, "required", string(cfg.Role))
				redirect(w, r, cfg, mode.DashboardPath(), metric.ReasonRoleUnmet)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func redirect(w http.ResponseWriter, r *http.Request, cfg *GuardConfig, target, reason string) {
	if cfg.Metrics != nil {
		cfg.Metrics.GuardRedirects.WithLabelValues(reason).Inc()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

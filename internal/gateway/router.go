// Package gateway is the browser-facing HTTP surface of authgate.
package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/internal/infra/buildinfo"
	"github.com/kehilahub/authgate/internal/telemetry/metric"
)

// RouterConfig holds configuration for the gateway router.
type RouterConfig struct {
	Handler *Handler
	Metrics *metric.Registry
	Logger  *slog.Logger

	// DefaultLocale is used for redirect targets when the path
	// carries no locale segment.
	DefaultLocale string

	// RateLimit is the per-IP request budget (requests/second).
	// Zero disables the limiter.
	RateLimit int

	// InsecureCookies propagates to the device cookie.
	InsecureCookies bool
}

// NewRouter builds the gateway route table. Auth endpoints exist in a
// hub and a site-mode variant; the handlers derive the difference from
// the path.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := cfg.Handler
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	wrap := func(route string, fn http.HandlerFunc) http.Handler {
		mws := []Middleware{
			Recover(logger),
			RequestID(),
			DeviceID(cfg.InsecureCookies),
		}
		if cfg.RateLimit > 0 {
			mws = append(mws, RateLimit(cfg.RateLimit))
		}
		mws = append(mws, RequestLog(logger, cfg.Metrics, route))
		return Chain(fn, mws...)
	}

	guard := func(route string, fn http.HandlerFunc, role domain.Role) http.Handler {
		g := Guard(&GuardConfig{
			State:         h.State,
			Role:          role,
			DefaultLocale: cfg.DefaultLocale,
			Metrics:       cfg.Metrics,
			Logger:        logger,
		})
		return wrap(route, g(fn).ServeHTTP)
	}

	mux := http.NewServeMux()

	// Operational endpoints, kept off the middleware stack except for
	// panic recovery.
	mux.Handle("GET /healthz", Chain(http.HandlerFunc(healthz), Recover(logger)))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(logger)))
	}

	// Auth endpoints, hub and site-mode variants.
	for _, p := range []string{"/{locale}/auth", "/{locale}/sites/{slug}/auth"} {
		mux.Handle("POST "+p+"/login", wrap("auth/login", h.Login))
		mux.Handle("POST "+p+"/register", wrap("auth/register", h.Register))
		mux.Handle("POST "+p+"/logout", wrap("auth/logout", h.Logout))
		mux.Handle("POST "+p+"/refresh", wrap("auth/refresh", h.Refresh))
		mux.Handle("GET "+p+"/me", wrap("auth/me", h.Me))
		mux.Handle("PATCH "+p+"/me", wrap("auth/me", h.UpdateMe))
	}

	// Guarded pages. The dashboard only needs authentication; the
	// admin page additionally requires a tenant admin.
	mux.Handle("GET /{locale}/dashboard", guard("dashboard", dashboardPage, ""))
	mux.Handle("GET /{locale}/sites/{slug}/dashboard", guard("dashboard", dashboardPage, ""))
	mux.Handle("GET /{locale}/admin", guard("admin", adminPage, domain.RoleTenantAdmin))

	return mux
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
		buildinfo.Info
	}{Status: "ok", Info: buildinfo.Get()})
}

func dashboardPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, `<!doctype html><html><body><h1>Dashboard</h1></body></html>`)
}

func adminPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, `<!doctype html><html><body><h1>Administration</h1></body></html>`)
}

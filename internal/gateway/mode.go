// Package gateway is the browser-facing HTTP surface of authgate.
package gateway

import (
	"net/url"
	"strings"
)

// Mode is the routing context derived from a request path. Hub mode is
// the platform's shared, tenant-agnostic interface; site mode is one
// tenant's branded sub-site, identified by a slug in the path.
type Mode struct {
	// Locale is the language segment of the path, or the configured
	// default when the path carries none.
	Locale string

	// Site is true for site-mode paths (/{locale}/sites/{slug}/...).
	Site bool

	// Slug is the tenant slug in site mode, empty in hub mode.
	Slug string
}

// ResolveMode derives the mode from a request path. Recognized shapes
// are /{locale}/... and /{locale}/sites/{slug}/...; anything else is
// hub mode under the default locale.
func ResolveMode(path, defaultLocale string) Mode {
	m := Mode{Locale: defaultLocale}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && isLocale(parts[0]) {
		m.Locale = parts[0]
		parts = parts[1:]
	}
	if len(parts) >= 2 && parts[0] == "sites" && parts[1] != "" {
		m.Site = true
		m.Slug = parts[1]
	}
	return m
}

// isLocale reports whether a path segment looks like a two-letter
// language code.
func isLocale(s string) bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'z' && s[1] >= 'a' && s[1] <= 'z'
}

// TenantHint returns the slug to inject into login and register
// payloads so the resolver can skip discovery. Empty in hub mode.
func (m Mode) TenantHint() string {
	return m.Slug
}

// LoginPath returns the locale-prefixed login route, carrying the
// origin path as a returnUrl query parameter when one is given.
func (m Mode) LoginPath(returnURL string) string {
	p := "/" + m.Locale + "/login"
	if returnURL != "" {
		p += "?returnUrl=" + url.QueryEscape(returnURL)
	}
	return p
}

// DashboardPath returns the post-login landing route. Both modes land
// on the shared dashboard; site mode differs only in the labels shown,
// which is decided downstream.
func (m Mode) DashboardPath() string {
	return "/" + m.Locale + "/dashboard"
}

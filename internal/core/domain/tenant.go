// Package domain defines the core domain models for authgate.
package domain

// Tenant is an independent organization on the platform, with its own
// users, branding, and feature settings. A nil Tenant means hub mode:
// the shared, tenant-agnostic interface.
type Tenant struct {
	// ID is the stable tenant identifier used in X-Tenant-ID headers.
	ID string `json:"id"`

	// Slug is the URL-safe name that appears in site-mode paths
	// (/sites/{slug}/...).
	Slug string `json:"slug"`

	// Name is the display name shown on the tenant's branded site.
	Name string `json:"name"`

	// Settings holds per-tenant feature flags and options.
	Settings map[string]string `json:"settings,omitempty"`
}

// Credentials is the transient login input. It is produced by the login
// form, consumed once by the tenant resolver, and discarded. It is never
// persisted or logged.
type Credentials struct {
	Email    string
	Password string

	// TenantHint is the slug injected in site mode so the resolver can
	// skip discovery. Empty in hub mode.
	TenantHint string
}

// Registration is the transient sign-up input for hub registration.
type Registration struct {
	Email    string
	Password string
	Name     string

	// TenantHint mirrors Credentials.TenantHint for site-mode sign-up.
	TenantHint string
}

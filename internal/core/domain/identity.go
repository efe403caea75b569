// Package domain defines the core domain models for authgate.
package domain

// Role enumerates the platform roles an identity can hold.
type Role string

const (
	// RolePlatformAdmin administers the whole hub.
	RolePlatformAdmin Role = "platform_admin"

	// RoleTenantAdmin administers a single tenant's site.
	RoleTenantAdmin Role = "tenant_admin"

	// RoleMember is a regular member or donor.
	RoleMember Role = "member"
)

// KnownRole reports whether r is one of the enumerated roles.
func KnownRole(r Role) bool {
	switch r {
	case RolePlatformAdmin, RoleTenantAdmin, RoleMember:
		return true
	}
	return false
}

// Identity is the authenticated user profile as returned by the
// platform API "me" endpoint.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// HasRole reports whether the identity satisfies a role requirement.
// A platform admin satisfies every requirement.
func (i *Identity) HasRole(required Role) bool {
	if i == nil {
		return false
	}
	if i.Role == RolePlatformAdmin {
		return true
	}
	return i.Role == required
}

// ProfileUpdate carries the mutable fields of an identity.
// Zero-valued fields are left unchanged by the platform API.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

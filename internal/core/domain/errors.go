// Package domain defines the core domain models for authgate.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured
// error code. Codes are stable identifiers safe to match on; messages
// are for humans and may change.
type DomainError struct {
	Code    string // Error code (e.g., "AG-CRED-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// NewDomainError creates a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Unwrap.
func (e *DomainError) Unwrap() error { return e.Cause }

// Is matches two DomainErrors on code alone, so a sentinel with extra
// details or a cause still satisfies errors.Is against the bare
// sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// WithDetails returns a copy carrying additional human-readable detail.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// GetErrorCode returns the code of the DomainError in err's chain, or
// the empty string.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Credential and tenant resolution errors (CRED, TENT)
// ============================================================================

var (
	// ErrCredentialsInvalid means no tenant-scoped attempt and no hub
	// fallback accepted the credentials. Only exhaustion of the whole
	// cascade surfaces this; individual candidate failures are swallowed.
	ErrCredentialsInvalid = NewDomainError("AG-CRED-4010", "invalid credentials")

	// ErrTenantDiscoveryFailed means the directory lookup errored.
	// It degrades to the configured fallback list and is never fatal.
	ErrTenantDiscoveryFailed = NewDomainError("AG-TENT-5020", "tenant discovery failed")

	// ErrTenantUnknown means a tenant hint did not match any tenant.
	ErrTenantUnknown = NewDomainError("AG-TENT-4040", "unknown tenant")

	// ErrLoginRateLimited means too many attempts for one email.
	ErrLoginRateLimited = NewDomainError("AG-CRED-4290", "too many login attempts")
)

// ============================================================================
// Token and session errors (TOKN, AUTH)
// ============================================================================

var (
	// ErrTokenExpired means the access token was rejected as stale.
	// Triggers exactly one refresh attempt.
	ErrTokenExpired = NewDomainError("AG-TOKN-4011", "access token expired")

	// ErrTokenCompromised means the stored access token no longer
	// matches its integrity fingerprint. The vault wipes everything;
	// there is no retry.
	ErrTokenCompromised = NewDomainError("AG-TOKN-4030", "token integrity check failed")

	// ErrRefreshFailed means the refresh token was rejected. Terminal:
	// forces a full local clear, never retried automatically.
	ErrRefreshFailed = NewDomainError("AG-TOKN-4012", "session refresh rejected")

	// ErrSessionAbsent means storage holds no complete session pair.
	ErrSessionAbsent = NewDomainError("AG-AUTH-4040", "no stored session")

	// ErrNotAuthenticated means the operation requires an
	// authenticated state.
	ErrNotAuthenticated = NewDomainError("AG-AUTH-4010", "not authenticated")

	// ErrInvalidTransition means a state-changing call arrived in a
	// state that does not permit it (e.g. login while authenticating).
	ErrInvalidTransition = NewDomainError("AG-AUTH-4090", "invalid state transition")
)

// ============================================================================
// Infrastructure errors (NETW, STOR)
// ============================================================================

var (
	// ErrNetwork wraps transport failures. Surfaced to the caller for a
	// user-visible retry; does not mutate auth state.
	ErrNetwork = NewDomainError("AG-NETW-5030", "network error")

	// ErrStorage wraps record store write/read failures. Not retried;
	// treated as unauthenticated downstream.
	ErrStorage = NewDomainError("AG-STOR-5010", "token storage error")
)

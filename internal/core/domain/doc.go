// Package domain defines the core domain models for authgate.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - Session: the paired access/refresh token credential
//   - Identity: the authenticated user profile and role
//   - Tenant: the organization an identity is scoped to
//   - Credentials: transient login input, never persisted
//   - AuthState: the authentication state machine snapshot
//   - StoredRecord: a single named record in token storage
//   - Errors: domain-specific error definitions
package domain

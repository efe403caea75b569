// Package service implements the authentication lifecycle for authgate.
//
// Services contain the business logic and orchestrate operations on
// domain models. They define interfaces for their dependencies,
// allowing for dependency injection and testability.
//
// This package contains:
//
//   - TenantResolver: multi-tenant credential resolution over the
//     tenant cascade (hint, directory, fallback list, hub)
//   - SessionController: the authentication state machine and sole
//     writer of auth state
//   - RefreshScheduler: background session renewal while authenticated
//
// All platform calls go through the PlatformAPI interface so tests can
// substitute a scripted implementation.
package service

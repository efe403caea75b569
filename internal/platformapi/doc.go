// Package platformapi is the HTTP client for the kehilahub platform API.
//
// It covers the authentication surface only: login (hub and
// tenant-scoped), registration, token refresh, the profile endpoint,
// logout, and the tenant directory lookup. Transport failures are
// wrapped as ErrNetwork; API rejections are mapped onto the domain
// error sentinels so callers match on errors.Is instead of status
// codes.
//
// The client is stateless. Tokens are passed per call; persisting them
// is the vault's job.
package platformapi

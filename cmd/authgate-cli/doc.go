// Package main provides the entry point for authgate-cli.
//
// The CLI tool gives operators command-line access to the platform's
// authentication flow, using the same lifecycle services as the
// gateway:
//
//   - Login and logout against the hub or a specific tenant
//   - Session status and manual token rotation
//   - A long-running watch mode that keeps the pair fresh
//   - CLI configuration management
//
// Usage:
//
//	authgate-cli [command] [flags]
//	authgate-cli login --email dana@example.org --tenant chesed
//	authgate-cli status --output json
//	authgate-cli session watch
//
// Sessions persist in an encrypted badger vault under ~/.authgate, so
// a login survives across invocations until logout or refresh-token
// expiry.
package main

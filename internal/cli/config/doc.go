// Package config provides CLI configuration for authgate-cli.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.authgate/cli.yaml)
//   - loader.go: Configuration loading and saving
//
// Configuration includes:
//
//   - Platform base URL and trust roots
//   - Durable vault and master key locations
//   - Output format preferences
//   - Fallback tenant list for login probing
package config

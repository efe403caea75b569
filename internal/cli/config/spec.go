// Package config defines the CLI configuration structure.
package config

import (
	"os"
	"path/filepath"
)

// CLIConfig is the configuration for authgate-cli.
type CLIConfig struct {
	// Platform connection settings
	PlatformURL string `koanf:"platform_url" yaml:"platform_url"`
	CAFile      string `koanf:"ca_file" yaml:"ca_file,omitempty"`

	// Token persistence
	VaultDir string `koanf:"vault_dir" yaml:"vault_dir"`
	KeyFile  string `koanf:"key_file" yaml:"key_file"`

	// Output format preference (table, json, yaml)
	DefaultOutput string `koanf:"default_output" yaml:"default_output"`

	// Tenants probed when the directory lookup comes back empty
	FallbackTenants []string `koanf:"fallback_tenants" yaml:"fallback_tenants,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".authgate")
	return &CLIConfig{
		PlatformURL:   "https://api.kehilahub.org",
		VaultDir:      filepath.Join(base, "vault"),
		KeyFile:       filepath.Join(base, "vault.key"),
		DefaultOutput: "table",
	}
}

// Package confloader loads configuration from YAML files and the
// environment, built on koanf. Environment variables override file
// values, which override struct defaults.
package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix marks the environment variables the loader reads.
const DefaultEnvPrefix = "AUTHGATE_"

// Loader layers configuration sources onto a koanf instance.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the YAML file to load.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// NewLoader creates a loader; sources are read when Load is called.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the configured file, then the environment, and unmarshals
// the merged result into target via its koanf struct tags. target
// normally arrives pre-populated with defaults, which survive for any
// key no source mentions.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.loadFile(l.filePath); err != nil {
			return err
		}
	}
	if err := l.loadEnv(); err != nil {
		return err
	}
	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("confloader: unmarshal: %w", err)
	}
	return nil
}

func (l *Loader) loadFile(path string) error {
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("confloader: %s: %w", path, err)
	}
	return nil
}

// loadEnv maps AUTHGATE_SERVER_LISTEN to the key server.listen.
func (l *Loader) loadEnv() error {
	mapKey := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", mapKey), nil); err != nil {
		return fmt.Errorf("confloader: environment: %w", err)
	}
	return nil
}

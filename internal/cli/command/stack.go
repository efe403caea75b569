// Package command provides CLI command definitions for authgate-cli.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kehilahub/authgate/internal/cli/config"
	"github.com/kehilahub/authgate/internal/cli/output"
	"github.com/kehilahub/authgate/internal/core/service"
	"github.com/kehilahub/authgate/internal/infra/tlsroots"
	"github.com/kehilahub/authgate/internal/platformapi"
	"github.com/kehilahub/authgate/internal/vault"
	"github.com/kehilahub/authgate/pkg/token"
)

// commandTimeout bounds a single CLI invocation end to end.
const commandTimeout = 30 * time.Second

// masterKeySize is the size of the generated vault master key.
const masterKeySize = 32

// stack bundles the wired session services behind a CLI invocation.
//
// Each run opens the durable badger vault fresh; the fingerprint lives
// in a per-process volatile store, so the first load of a lifetime
// adopts it rather than flagging tampering.
type stack struct {
	cfg        *config.CLIConfig
	flags      *GlobalFlags
	api        *platformapi.Client
	controller *service.SessionController
	store      *vault.BadgerStore
	logger     *slog.Logger
}

// openStack loads configuration and wires the vault, resolver, and
// controller. Callers must Close the stack when done.
func openStack(c *cli.Context, opts ...service.ControllerOption) (*stack, error) {
	flags := ParseGlobalFlags(c)

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.Platform != "" {
		cfg.PlatformURL = flags.Platform
	}
	if flags.Output != "" {
		cfg.DefaultOutput = flags.Output
	}

	logger := newLogger(flags.Verbose)

	api, err := newPlatformClient(cfg)
	if err != nil {
		return nil, err
	}

	masterKey, err := loadMasterKey(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}

	store, err := vault.NewBadgerStore(cfg.VaultDir, masterKey, logger)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	fp, err := token.NewFingerprinter()
	if err != nil {
		store.Close()
		return nil, err
	}

	v := vault.New(store, vault.NewMemStore(), fp, vault.WithLogger(logger))
	resolver := service.NewTenantResolver(api,
		service.WithResolverLogger(logger),
		service.WithFallbackTenants(cfg.FallbackTenants),
	)

	ctlOpts := append([]service.ControllerOption{service.WithControllerLogger(logger)}, opts...)
	ctl := service.NewSessionController(api, resolver, v, ctlOpts...)

	return &stack{
		cfg:        cfg,
		flags:      flags,
		api:        api,
		controller: ctl,
		store:      store,
		logger:     logger,
	}, nil
}

// start restores any persisted session and returns a bounded context
// for the rest of the invocation.
func (s *stack) start() (context.Context, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	if err := s.controller.Start(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	return ctx, cancel, nil
}

// Close disarms the controller and releases the badger lock.
func (s *stack) Close() error {
	s.controller.Close()
	return s.store.Close()
}

// format resolves the effective output format for this invocation.
func (s *stack) format() output.Format {
	return output.Format(s.cfg.DefaultOutput)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newPlatformClient builds the platform API client, trusting an extra
// CA when one is configured.
func newPlatformClient(cfg *config.CLIConfig) (*platformapi.Client, error) {
	hc := &http.Client{Timeout: commandTimeout}

	if cfg.CAFile != "" {
		pool, err := tlsroots.NewPool()
		if err != nil {
			return nil, err
		}
		if err := pool.AddCertFile(cfg.CAFile); err != nil {
			return nil, err
		}
		hc.Transport = &http.Transport{TLSClientConfig: pool.TLSConfig()}
	}

	return platformapi.NewClient(cfg.PlatformURL, platformapi.WithHTTPClient(hc)), nil
}

// loadMasterKey reads the vault master key, generating one on first
// use. The key file is created 0600 under a 0700 directory.
func loadMasterKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) < masterKeySize {
			return nil, fmt.Errorf("key file %s is truncated", path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key, err = token.GenerateBytes(masterKeySize)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, err
	}
	return key, nil
}

// Package main provides the entry point for authgate-server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/kehilahub/authgate/internal/core/service"
	"github.com/kehilahub/authgate/internal/gateway"
	"github.com/kehilahub/authgate/internal/gateway/config"
	"github.com/kehilahub/authgate/internal/infra/buildinfo"
	"github.com/kehilahub/authgate/internal/infra/confloader"
	"github.com/kehilahub/authgate/internal/infra/shutdown"
	"github.com/kehilahub/authgate/internal/infra/tlsroots"
	"github.com/kehilahub/authgate/internal/platformapi"
	"github.com/kehilahub/authgate/internal/telemetry/logger"
	"github.com/kehilahub/authgate/internal/telemetry/metric"
	"github.com/kehilahub/authgate/pkg/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("authgate-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting authgate-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	metrics := metric.NewRegistry()

	api, err := initPlatformClient(cfg)
	if err != nil {
		return fmt.Errorf("init platform client: %w", err)
	}

	resolver := service.NewTenantResolver(api,
		service.WithResolverLogger(log),
		service.WithFallbackTenants(cfg.Auth.FallbackTenants),
		service.WithAttemptRate(rate.Limit(cfg.Auth.AttemptRate), cfg.Auth.AttemptBurst),
	)

	fp, err := token.NewFingerprinter()
	if err != nil {
		return fmt.Errorf("init fingerprinter: %w", err)
	}

	handler := gateway.NewHandler(&gateway.HandlerConfig{
		API:             api,
		Resolver:        resolver,
		Fingerprinter:   fp,
		Metrics:         metrics,
		Logger:          log,
		DefaultLocale:   cfg.Server.DefaultLocale,
		InsecureCookies: cfg.Server.InsecureCookies,
	})

	router := gateway.NewRouter(&gateway.RouterConfig{
		Handler:         handler,
		Metrics:         metrics,
		Logger:          log,
		DefaultLocale:   cfg.Server.DefaultLocale,
		RateLimit:       cfg.Server.RateLimit,
		InsecureCookies: cfg.Server.InsecureCookies,
	})

	server := gateway.New(cfg.Server.Listen, router)
	if cfg.Server.TLSCertFile != "" {
		if err := server.EnableTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile, log); err != nil {
			return fmt.Errorf("enable TLS: %w", err)
		}
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, resolver, log)
		if err != nil {
			log.Warn("config watcher unavailable, fallback list is static", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down gateway server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("gateway listening",
			"addr", cfg.Server.Listen,
			"tls", cfg.Server.TLSCertFile != "")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("gateway server error", "error", err)
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file, and environment.
func loadConfig(configFile string) (*config.GatewayConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger builds the redacting logger and installs it as default.
func initLogger(cfg *config.GatewayConfig) (*slog.Logger, error) {
	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	}
	l, err := logger.New(logCfg)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(l)

	return logger.NewSlog(logCfg)
}

// initPlatformClient builds the platform API client, trusting an
// extra CA when one is configured.
func initPlatformClient(cfg *config.GatewayConfig) (*platformapi.Client, error) {
	hc := &http.Client{Timeout: cfg.Platform.Timeout}

	if cfg.Platform.CAFile != "" {
		pool, err := tlsroots.NewPool()
		if err != nil {
			return nil, err
		}
		if err := pool.AddCertFile(cfg.Platform.CAFile); err != nil {
			return nil, err
		}
		hc.Transport = &http.Transport{TLSClientConfig: pool.TLSConfig()}
	}

	return platformapi.NewClient(cfg.Platform.BaseURL, platformapi.WithHTTPClient(hc)), nil
}

// watchConfig hot-reloads the degraded-mode fallback tenant list and
// the log level when the config file changes.
func watchConfig(path string, resolver *service.TenantResolver, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		return nil, err
	}

	watcher.OnChange(func(changed string) {
		cfg, err := loadConfig(changed)
		if err != nil {
			log.Error("config reload failed, keeping previous settings", "error", err)
			return
		}
		resolver.SetFallback(cfg.Auth.FallbackTenants)
		logger.SetLevel(cfg.Log.Level)
		log.Info("config reloaded",
			"fallback_tenants", len(cfg.Auth.FallbackTenants),
			"log_level", cfg.Log.Level)
	})
	watcher.StartAsync()
	return watcher, nil
}

// Package gateway is the browser-facing HTTP surface of authgate.
package gateway

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"

	"github.com/kehilahub/authgate/internal/infra/tlsroots"
)

// Server wraps the gateway HTTP server. TLS, when enabled, reloads its
// certificate on change.
type Server struct {
	httpServer *http.Server
	watcher    *tlsroots.Watcher
}

// New creates a gateway server on the given address.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
	}
}

// EnableTLS switches the server to HTTPS with a hot-reloading
// certificate.
func (s *Server) EnableTLS(certFile, keyFile string, logger *slog.Logger) error {
	w, err := tlsroots.NewWatcher(certFile, keyFile, tlsroots.WithLogger(logger))
	if err != nil {
		return err
	}
	s.watcher = w
	s.httpServer.TLSConfig = &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: w.GetCertificate,
	}
	return nil
}

// ListenAndServe serves until Shutdown, over TLS when enabled.
func (s *Server) ListenAndServe() error {
	if s.watcher != nil {
		s.watcher.StartAsync()
		// Cert and key paths live in the watcher's TLSConfig callback.
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

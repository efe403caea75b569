// Package tlsroots provides TLS certificate management.
package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadSettle is how long to wait after a change event before
// reloading, so both halves of a cert/key rotation land first.
const reloadSettle = 200 * time.Millisecond

// Watcher serves a certificate pair and reloads it when either file
// changes, so a cert rotation needs no gateway restart.
type Watcher struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate

	stopCh   chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a certificate watcher and eagerly loads the pair;
// a broken pair fails here, not on the first handshake.
func NewWatcher(certFile, keyFile string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   slog.Default(),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return w, nil
}

// GetCertificate returns the current certificate. It has the signature
// of tls.Config.GetCertificate.
func (w *Watcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cert, nil
}

// StartAsync watches the certificate files in a background goroutine
// until Stop.
func (w *Watcher) StartAsync() {
	go func() {
		if err := w.watch(); err != nil {
			w.logger.Error("certificate watcher stopped", "error", err)
		}
	}()
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) watch() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch directories rather than the files: editors and cert
	// managers replace files by rename, which drops a file watch.
	dirs := map[string]bool{}
	for _, f := range []string{w.certFile, w.keyFile} {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	w.logger.Info("certificate watcher started",
		"cert_file", w.certFile, "key_file", w.keyFile)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.concerns(event) {
				continue
			}
			time.Sleep(reloadSettle)
			if err := w.reload(); err != nil {
				// Keep serving the last good pair.
				w.logger.Error("certificate reload failed", "error", err)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("certificate watcher error", "error", err)
		case <-w.stopCh:
			return nil
		}
	}
}

// concerns reports whether an event touches the watched pair.
func (w *Watcher) concerns(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	base := filepath.Base(event.Name)
	return base == filepath.Base(w.certFile) || base == filepath.Base(w.keyFile)
}

func (w *Watcher) reload() error {
	cert, err := tls.LoadX509KeyPair(w.certFile, w.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	w.mu.Lock()
	w.cert = &cert
	w.mu.Unlock()

	w.logger.Info("certificate loaded", "cert_file", w.certFile)
	return nil
}

// Package service implements the authentication lifecycle for authgate.
package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kehilahub/authgate/internal/core/domain"
)

// tickerFunc builds the tick source for the scheduler loop. The
// returned stop function releases the source. Tests substitute a
// manual channel.
type tickerFunc func(interval time.Duration) (<-chan time.Time, func())

func realTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Counter is the sliver of a metrics counter the lifecycle services
// report through. Prometheus counters satisfy it.
type Counter interface {
	Inc()
}

// RefreshScheduler renews the session periodically while armed.
//
// The controller arms it on entering authenticated and disarms it on
// any departure. Ticks that land while a refresh is already in flight
// are dropped rather than queued, so a slow platform API cannot stack
// renewals.
type RefreshScheduler struct {
	interval time.Duration
	refresh  func(ctx context.Context) error
	logger   *slog.Logger
	ticker   tickerFunc

	ticks     Counter
	coalesced Counter
	failures  Counter

	// inFlight guards against overlapping refreshes.
	inFlight atomic.Bool

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// SchedulerOption configures a RefreshScheduler.
type SchedulerOption func(*RefreshScheduler)

// WithInterval overrides the renewal interval.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *RefreshScheduler) { s.interval = d }
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *RefreshScheduler) { s.logger = l }
}

// withTicker substitutes the tick source. Test hook.
func withTicker(fn tickerFunc) SchedulerOption {
	return func(s *RefreshScheduler) { s.ticker = fn }
}

// WithSchedulerCounters wires tick, coalesce, and failure counters.
// Any of them may be nil.
func WithSchedulerCounters(ticks, coalesced, failures Counter) SchedulerOption {
	return func(s *RefreshScheduler) {
		s.ticks, s.coalesced, s.failures = ticks, coalesced, failures
	}
}

// NewRefreshScheduler creates a disarmed scheduler that calls refresh
// on every tick.
func NewRefreshScheduler(refresh func(ctx context.Context) error, opts ...SchedulerOption) *RefreshScheduler {
	s := &RefreshScheduler{
		interval: domain.RefreshInterval,
		refresh:  refresh,
		logger:   slog.Default(),
		ticker:   realTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arm starts the renewal loop. Arming an armed scheduler is a no-op.
func (s *RefreshScheduler) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
}

// Disarm stops the renewal loop and waits for it to exit. Disarming a
// disarmed scheduler is a no-op.
func (s *RefreshScheduler) Disarm() {
	s.disarm(context.Background())
}

// disarm stops the loop. When ctx carries this scheduler's own tick
// marker the caller is the loop itself; waiting for it would block
// forever, and the loop exits on its own once the tick returns.
func (s *RefreshScheduler) disarm(ctx context.Context) {
	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	if own, ok := ctx.Value(tickCtxKey{}).(*RefreshScheduler); ok && own == s {
		return
	}
	<-doneCh
}

// Armed reports whether the loop is running.
func (s *RefreshScheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil
}

func (s *RefreshScheduler) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticks, stop := s.ticker(s.interval)
	defer stop()

	for {
		select {
		case <-ticks:
			s.tick()

		case <-stopCh:
			return
		}
	}
}

// tickCtxKey marks contexts handed to the refresh callback by the
// scheduler's own loop.
type tickCtxKey struct{}

// tick runs one renewal unless one is already in flight.
func (s *RefreshScheduler) tick() {
	count(s.ticks)
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("refresh tick coalesced with in-flight renewal")
		count(s.coalesced)
		return
	}
	defer s.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = context.WithValue(ctx, tickCtxKey{}, s)

	if err := s.refresh(ctx); err != nil {
		s.logger.Error("background refresh failed", "error", err)
		count(s.failures)
	}
}

func count(c Counter) {
	if c != nil {
		c.Inc()
	}
}

// Package vault provides tamper-checked token storage.
package vault

import (
	"context"
	"time"

	"github.com/kehilahub/authgate/internal/core/domain"
	"github.com/kehilahub/authgate/pkg/cmap"
)

// RecordStore is the storage interface the vault writes through.
//
// Implementations: CookieStore (gateway, per request), BadgerStore
// (CLI, on disk, encrypted), MemStore (volatile fingerprints, tests).
type RecordStore interface {
	// Set stores a record, replacing any record with the same name.
	Set(ctx context.Context, rec domain.StoredRecord) error

	// Get retrieves a record by name. The second return is false when
	// the record is absent or expired.
	Get(ctx context.Context, name string) (domain.StoredRecord, bool, error)

	// Delete removes a record by name. Deleting an absent record is
	// not an error.
	Delete(ctx context.Context, name string) error
}

// MemStore is an in-memory RecordStore with lazy TTL expiry.
//
// It backs the volatile fingerprint store and stands in for durable
// storage in tests. Safe for concurrent use.
type MemStore struct {
	records *cmap.Map[domain.StoredRecord]
	nowFunc func() time.Time
}

// MemStoreOption configures a MemStore.
type MemStoreOption func(*MemStore)

// WithClock sets the time source (for tests).
func WithClock(now func() time.Time) MemStoreOption {
	return func(s *MemStore) {
		s.nowFunc = now
	}
}

// NewMemStore creates an empty MemStore.
func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		records: cmap.New[domain.StoredRecord](),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores a record.
func (s *MemStore) Set(_ context.Context, rec domain.StoredRecord) error {
	s.records.Set(rec.Name, rec)
	return nil
}

// Get retrieves a record, expiring it lazily.
func (s *MemStore) Get(_ context.Context, name string) (domain.StoredRecord, bool, error) {
	rec, ok := s.records.Get(name)
	if !ok {
		return domain.StoredRecord{}, false, nil
	}
	if rec.Expired(s.nowFunc()) {
		s.records.Delete(name)
		return domain.StoredRecord{}, false, nil
	}
	return rec, true, nil
}

// Delete removes a record.
func (s *MemStore) Delete(_ context.Context, name string) error {
	s.records.Delete(name)
	return nil
}

// Sweep removes every expired record and returns how many were removed.
func (s *MemStore) Sweep() int {
	now := s.nowFunc()
	return s.records.DeleteIf(func(_ string, rec domain.StoredRecord) bool {
		return rec.Expired(now)
	})
}

// Len returns the number of live records (including not-yet-swept
// expired ones).
func (s *MemStore) Len() int {
	return s.records.Count()
}

// Package vault provides tamper-checked token storage.
package vault

import (
	"context"

	"github.com/kehilahub/authgate/internal/core/domain"
)

// ScopedStore namespaces record names inside a shared RecordStore.
//
// The gateway keeps one process-wide fingerprint store but serves many
// browsers; scoping by device ID keeps their records apart without one
// store per device.
type ScopedStore struct {
	inner RecordStore
	scope string
}

// NewScopedStore wraps inner so every record name is prefixed with
// scope.
func NewScopedStore(inner RecordStore, scope string) *ScopedStore {
	return &ScopedStore{inner: inner, scope: scope}
}

func (s *ScopedStore) key(name string) string {
	return s.scope + "/" + name
}

// Set stores a record under the scoped name.
func (s *ScopedStore) Set(ctx context.Context, rec domain.StoredRecord) error {
	scoped := rec
	scoped.Name = s.key(rec.Name)
	return s.inner.Set(ctx, scoped)
}

// Get retrieves a record by its unscoped name.
func (s *ScopedStore) Get(ctx context.Context, name string) (domain.StoredRecord, bool, error) {
	rec, ok, err := s.inner.Get(ctx, s.key(name))
	if err != nil || !ok {
		return domain.StoredRecord{}, ok, err
	}
	rec.Name = name
	return rec, true, nil
}

// Delete removes a record by its unscoped name.
func (s *ScopedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, s.key(name))
}

// Package cmap provides a sharded concurrent map keyed by string.
//
// Keys are spread over power-of-two shards by MurmurHash3, each shard
// behind its own RWMutex, so readers and writers on different keys
// rarely contend. The volatile record store and the per-email login
// limiter registry are the main users.
package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is used by New.
const DefaultShardCount = 16

// Map is a concurrent map with string keys and per-shard locking.
type Map[V any] struct {
	shards []*shard[V]
	mask   uint64
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New creates a map with DefaultShardCount shards.
func New[V any]() *Map[V] {
	return NewWithShards[V](DefaultShardCount)
}

// NewWithShards creates a map with the given shard count, which must
// be a power of two; anything else falls back to the default.
func NewWithShards[V any](count int) *Map[V] {
	if count <= 0 || count&(count-1) != 0 {
		count = DefaultShardCount
	}
	m := &Map[V]{
		shards: make([]*shard[V], count),
		mask:   uint64(count - 1),
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	return m.shards[murmur3.Sum64([]byte(key))&m.mask]
}

// Get retrieves the value for key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Set stores value under key.
func (m *Map[V]) Set(key string, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// Delete removes key.
func (m *Map[V]) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Update applies fn to the current value under the shard lock and
// stores the result. fn sees the zero value when the key is absent.
func (m *Map[V]) Update(key string, fn func(value V, exists bool) V) V {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[key]
	next := fn(cur, ok)
	s.items[key] = next
	return next
}

// DeleteIf removes every entry the predicate accepts and reports how
// many were removed. TTL sweeps are built on this.
func (m *Map[V]) DeleteIf(fn func(key string, value V) bool) int {
	removed := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if fn(k, v) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Range visits every entry until fn returns false. Shards are locked
// one at a time, so the view is not a snapshot.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Count returns the number of entries across all shards.
func (m *Map[V]) Count() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

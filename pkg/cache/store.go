// Package cache provides a bounded in-memory response cache with TTL
// expiration and LRU eviction, plus the request fingerprint used as its key.
// Cache lifetime equals process lifetime; there is no persistence.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"fiaecoach/pkg/logx"
)

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Size        int   `json:"size"`
	MaxEntries  int   `json:"max_entries"`
	TTLSeconds  int   `json:"ttl_seconds"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	Expirations int64 `json:"expirations"`
}

type entry[V any] struct {
	key      string
	value    V
	storedAt time.Time
	ttl      time.Duration
}

// Store is a concurrency-safe LRU cache with per-entry TTL.
// The mutex guards only map and list operations, never I/O.
type Store[V any] struct {
	mu         sync.Mutex
	maxEntries int
	defaultTTL time.Duration
	entries    map[string]*list.Element
	order      *list.List // front is most recently used

	hits        int64
	misses      int64
	evictions   int64
	expirations int64

	now    func() time.Time
	logger *logx.Logger
}

// New creates a store holding at most maxEntries values, each expiring
// defaultTTL after it was stored.
func New[V any](maxEntries int, defaultTTL time.Duration) *Store[V] {
	return &Store[V]{
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
		logger:     logx.NewLogger("cache"),
	}
}

// Get returns the value for key if present and not expired. An expired
// entry is removed on access. A hit refreshes the entry's recency.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	elem, ok := s.entries[key]
	if !ok {
		s.misses++
		return zero, false
	}

	ent := elem.Value.(*entry[V])
	if s.now().Sub(ent.storedAt) >= ent.ttl {
		s.removeLocked(elem)
		s.expirations++
		s.misses++
		return zero, false
	}

	s.order.MoveToFront(elem)
	s.hits++
	return ent.value, true
}

// Put inserts or overwrites key with the store's default TTL.
func (s *Store[V]) Put(key string, value V) {
	s.PutWithTTL(key, value, s.defaultTTL)
}

// PutWithTTL inserts or overwrites key. When capacity is exceeded the
// least recently used entry is evicted.
func (s *Store[V]) PutWithTTL(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.storedAt = s.now()
		ent.ttl = ttl
		s.order.MoveToFront(elem)
		return
	}

	elem := s.order.PushFront(&entry[V]{
		key:      key,
		value:    value,
		storedAt: s.now(),
		ttl:      ttl,
	})
	s.entries[key] = elem

	if s.order.Len() > s.maxEntries {
		oldest := s.order.Back()
		if oldest != nil {
			s.removeLocked(oldest)
			s.evictions++
		}
	}
}

// EvictExpired removes all expired entries and returns how many were removed.
func (s *Store[V]) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		ent := elem.Value.(*entry[V])
		if now.Sub(ent.storedAt) >= ent.ttl {
			s.removeLocked(elem)
			s.expirations++
			removed++
		}
		elem = prev
	}
	return removed
}

// Clear removes all entries.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*list.Element)
	s.order.Init()
}

// Len returns the number of entries currently held, expired or not.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Stats returns a snapshot of the cache counters.
func (s *Store[V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Size:        s.order.Len(),
		MaxEntries:  s.maxEntries,
		TTLSeconds:  int(s.defaultTTL / time.Second),
		Hits:        s.hits,
		Misses:      s.misses,
		Evictions:   s.evictions,
		Expirations: s.expirations,
	}
}

// Sweep runs EvictExpired every interval until ctx is cancelled. Intended
// to run as a background goroutine.
func (s *Store[V]) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.EvictExpired(); removed > 0 {
				s.logger.Debug("swept %d expired entries", removed)
			}
		}
	}
}

func (s *Store[V]) removeLocked(elem *list.Element) {
	ent := elem.Value.(*entry[V])
	s.order.Remove(elem)
	delete(s.entries, ent.key)
}

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance cache time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(maxEntries int, ttl time.Duration) (*Store[string], *fakeClock) {
	s := New[string](maxEntries, ttl)
	clock := newFakeClock()
	s.now = clock.now
	return s, clock
}

// =============================================================================
// Basic get/put behavior
// =============================================================================

func TestStore_GetMissing(t *testing.T) {
	s, _ := newTestStore(4, time.Hour)

	if _, ok := s.Get("absent"); ok {
		t.Error("Expected miss for absent key")
	}
	if stats := s.Stats(); stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
}

func TestStore_PutThenGet(t *testing.T) {
	s, _ := newTestStore(4, time.Hour)

	s.Put("k", "v")
	got, ok := s.Get("k")
	if !ok {
		t.Fatal("Expected hit for stored key")
	}
	if got != "v" {
		t.Errorf("Expected 'v', got %q", got)
	}
	if stats := s.Stats(); stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
}

func TestStore_OverwriteReplacesValue(t *testing.T) {
	s, _ := newTestStore(4, time.Hour)

	s.Put("k", "old")
	s.Put("k", "new")
	if got, _ := s.Get("k"); got != "new" {
		t.Errorf("Expected 'new', got %q", got)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 entry after overwrite, got %d", s.Len())
	}
}

// =============================================================================
// TTL expiry
// =============================================================================

func TestStore_ExpiredEntryRemovedOnAccess(t *testing.T) {
	s, clock := newTestStore(4, time.Minute)

	s.Put("k", "v")
	clock.advance(time.Minute)

	if _, ok := s.Get("k"); ok {
		t.Error("Expected expired entry to miss")
	}
	if s.Len() != 0 {
		t.Errorf("Expected expired entry removed, got len %d", s.Len())
	}
	stats := s.Stats()
	if stats.Expirations != 1 {
		t.Errorf("Expected 1 expiration, got %d", stats.Expirations)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected expired access counted as miss, got %d", stats.Misses)
	}
}

func TestStore_EntryJustUnderTTLStillServed(t *testing.T) {
	s, clock := newTestStore(4, time.Minute)

	s.Put("k", "v")
	clock.advance(time.Minute - time.Millisecond)

	if _, ok := s.Get("k"); !ok {
		t.Error("Expected entry just under TTL to hit")
	}
}

func TestStore_OverwriteRefreshesTTL(t *testing.T) {
	s, clock := newTestStore(4, time.Minute)

	s.Put("k", "v1")
	clock.advance(45 * time.Second)
	s.Put("k", "v2")
	clock.advance(45 * time.Second)

	got, ok := s.Get("k")
	if !ok {
		t.Fatal("Expected overwrite to refresh storedAt")
	}
	if got != "v2" {
		t.Errorf("Expected 'v2', got %q", got)
	}
}

func TestStore_PutWithTTLOverridesDefault(t *testing.T) {
	s, clock := newTestStore(4, time.Hour)

	s.PutWithTTL("short", "v", time.Second)
	clock.advance(2 * time.Second)

	if _, ok := s.Get("short"); ok {
		t.Error("Expected per-entry TTL to override default")
	}
}

func TestStore_EvictExpired(t *testing.T) {
	s, clock := newTestStore(8, time.Minute)

	s.Put("a", "1")
	s.Put("b", "2")
	clock.advance(2 * time.Minute)
	s.Put("c", "3")

	if removed := s.EvictExpired(); removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 entry left, got %d", s.Len())
	}
	if _, ok := s.Get("c"); !ok {
		t.Error("Expected fresh entry to survive sweep")
	}
}

// =============================================================================
// LRU eviction
// =============================================================================

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, _ := newTestStore(3, time.Hour)

	s.Put("a", "1")
	s.Put("b", "2")
	s.Put("c", "3")
	s.Put("d", "4")

	if _, ok := s.Get("a"); ok {
		t.Error("Expected oldest entry evicted")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := s.Get(k); !ok {
			t.Errorf("Expected %q to survive", k)
		}
	}
	if stats := s.Stats(); stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestStore_GetRefreshesRecency(t *testing.T) {
	s, _ := newTestStore(3, time.Hour)

	s.Put("a", "1")
	s.Put("b", "2")
	s.Put("c", "3")
	if _, ok := s.Get("a"); !ok {
		t.Fatal("Expected hit for 'a'")
	}
	s.Put("d", "4")

	if _, ok := s.Get("b"); ok {
		t.Error("Expected 'b' evicted after 'a' was touched")
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("Expected touched entry to survive")
	}
}

func TestStore_NeverExceedsCapacity(t *testing.T) {
	s, _ := newTestStore(5, time.Hour)

	for i := 0; i < 50; i++ {
		s.Put(fmt.Sprintf("k%d", i), "v")
	}
	if s.Len() != 5 {
		t.Errorf("Expected len 5, got %d", s.Len())
	}
}

// =============================================================================
// Misc
// =============================================================================

func TestStore_Clear(t *testing.T) {
	s, _ := newTestStore(4, time.Hour)

	s.Put("a", "1")
	s.Put("b", "2")
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("Expected empty store, got len %d", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Error("Expected miss after Clear")
	}
}

func TestStore_StatsSnapshot(t *testing.T) {
	s, _ := newTestStore(10, 90*time.Second)

	s.Put("a", "1")
	s.Get("a")
	s.Get("nope")

	stats := s.Stats()
	if stats.Size != 1 {
		t.Errorf("Expected size 1, got %d", stats.Size)
	}
	if stats.MaxEntries != 10 {
		t.Errorf("Expected max 10, got %d", stats.MaxEntries)
	}
	if stats.TTLSeconds != 90 {
		t.Errorf("Expected ttl 90s, got %d", stats.TTLSeconds)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit / 1 miss, got %d / %d", stats.Hits, stats.Misses)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s, _ := newTestStore(32, time.Hour)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", i%16)
				s.Put(key, "v")
				s.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if s.Len() > 32 {
		t.Errorf("Expected at most 32 entries, got %d", s.Len())
	}
}

package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultTTL applies when Set is called with a non-positive ttl.
	DefaultTTL = 30 * time.Minute
	// SweepInterval is how often expired entries are reclaimed in the background.
	SweepInterval = 5 * time.Minute
)

// Store is a process-local key/value store with per-entry expiry.
type Store interface {
	Set(key string, value any, ttl time.Duration)
	Get(key string) (any, bool)
	Has(key string) bool
	Delete(key string)
	Clear()
	Sweep()
	Keys() []string
	Len() int
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore implements Store on top of go-cache. The go-cache janitor runs
// Sweep on SweepInterval, so memory stays bounded without any reads.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore builds a store using the package defaults.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWith(DefaultTTL, SweepInterval)
}

// NewMemoryStoreWith builds a store with explicit default ttl and sweep interval.
// A non-positive sweep interval disables the background janitor.
func NewMemoryStoreWith(defaultTTL, sweepInterval time.Duration) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &MemoryStore{items: gocache.New(defaultTTL, sweepInterval)}
}

func (s *MemoryStore) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.items.Set(key, value, ttl)
}

// Get returns the value if present and unexpired. A miss drops expired
// entries on the way out; live entries written meanwhile are left alone.
func (s *MemoryStore) Get(key string) (any, bool) {
	v, ok := s.items.Get(key)
	if !ok {
		s.items.DeleteExpired()
		return nil, false
	}
	return v, true
}

func (s *MemoryStore) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *MemoryStore) Delete(key string) {
	s.items.Delete(key)
}

func (s *MemoryStore) Clear() {
	s.items.Flush()
}

func (s *MemoryStore) Sweep() {
	s.items.DeleteExpired()
}

// Keys lists the keys of unexpired entries.
func (s *MemoryStore) Keys() []string {
	items := s.items.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys
}

// Len counts physically stored entries, expired ones included until swept.
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}

// DeletePrefix removes every entry whose key starts with one of the prefixes
// and returns how many were removed.
func DeletePrefix(s Store, prefixes ...string) int {
	removed := 0
	for _, k := range s.Keys() {
		for _, p := range prefixes {
			if strings.HasPrefix(k, p) {
				s.Delete(k)
				removed++
				break
			}
		}
	}
	return removed
}

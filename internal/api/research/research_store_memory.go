package research

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps entries in process. Entries are evicted after retention,
// which should be at least the cache TTL so that staleness is decided by Cache.
type MemoryStore struct {
	items *cache.Cache
}

func NewMemoryStore(retention time.Duration) *MemoryStore {
	if retention <= 0 {
		retention = cache.NoExpiration
	}
	return &MemoryStore{items: cache.New(retention, time.Hour)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, found := s.items.Get(key)
	if !found {
		return nil, ErrCacheMiss
	}
	raw, ok := v.([]byte)
	if !ok {
		return nil, ErrCacheMiss
	}
	return raw, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.items.Set(key, value, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-itinerary-engine/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const (
	DefaultTTL           = 7 * 24 * time.Hour
	DefaultSchemaVersion = 1
)

// ErrCacheMiss is returned by a Store when a key is absent.
var ErrCacheMiss = errors.New("place cache miss")

// Store is an opaque key-value medium for serialized cache entries.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// Cache validates knowledge entries on read: an entry is only served when it
// was written under the current schema version and is no older than the TTL.
// Anything else, including undecodable bytes, is a miss.
type Cache struct {
	store   Store
	now     Clock
	ttl     time.Duration
	version int
	logger  *slog.Logger
}

type CacheOption func(*Cache)

func WithClock(clock Clock) CacheOption {
	return func(c *Cache) { c.now = clock }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithSchemaVersion(version int) CacheOption {
	return func(c *Cache) {
		if version > 0 {
			c.version = version
		}
	}
}

func NewCache(store Store, logger *slog.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		store:   store,
		now:     time.Now,
		ttl:     DefaultTTL,
		version: DefaultSchemaVersion,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey normalises a place name into its cache key.
func CacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns the cached knowledge for name if it is valid now.
func (c *Cache) Get(ctx context.Context, name string) (types.PlaceKnowledge, bool) {
	key := CacheKey(name)
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.WarnContext(ctx, "Place cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		c.miss(ctx, "absent")
		return types.PlaceKnowledge{}, false
	}

	var entry types.PlaceCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.WarnContext(ctx, "Discarding corrupt place cache entry", slog.String("key", key), slog.Any("error", err))
		c.miss(ctx, "corrupt")
		return types.PlaceKnowledge{}, false
	}
	if entry.Version != c.version {
		c.logger.DebugContext(ctx, "Place cache entry has old schema version",
			slog.String("key", key), slog.Int("version", entry.Version), slog.Int("current", c.version))
		c.miss(ctx, "version")
		return types.PlaceKnowledge{}, false
	}
	if c.now().Sub(entry.Timestamp) > c.ttl {
		c.miss(ctx, "expired")
		return types.PlaceKnowledge{}, false
	}

	metrics.Get().PlaceCacheHitsTotal.Add(ctx, 1)
	return entry.Data, true
}

// Set stores knowledge for name stamped with the current time and version.
func (c *Cache) Set(ctx context.Context, name string, k types.PlaceKnowledge) error {
	entry := types.PlaceCacheEntry{Data: k, Timestamp: c.now(), Version: c.version}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode place cache entry: %w", err)
	}
	if err := c.store.Set(ctx, CacheKey(name), raw); err != nil {
		return fmt.Errorf("failed to write place cache entry: %w", err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, name string) error {
	if err := c.store.Delete(ctx, CacheKey(name)); err != nil && !errors.Is(err, ErrCacheMiss) {
		return fmt.Errorf("failed to delete place cache entry: %w", err)
	}
	return nil
}

func (c *Cache) miss(ctx context.Context, reason string) {
	metrics.Get().PlaceCacheMissesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

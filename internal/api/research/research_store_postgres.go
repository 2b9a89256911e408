package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	database "github.com/FACorreiaa/go-itinerary-engine/app/db"
	"github.com/FACorreiaa/go-itinerary-engine/app/observability/metrics"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps entries in the place_cache table as JSONB. The version
// column mirrors the entry's schema version for ad-hoc cleanup.
type PostgresStore struct {
	pgpool database.Querier
}

func NewPostgresStore(pgpool database.Querier) *PostgresStore {
	return &PostgresStore{pgpool: pgpool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	var raw []byte
	err := s.pgpool.QueryRow(ctx, `SELECT entry FROM place_cache WHERE cache_key = $1`, key).Scan(&raw)
	observeQuery(ctx, "place_cache.get", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read place cache %s: %w", key, err)
	}
	return raw, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(value, &head); err != nil {
		return fmt.Errorf("place cache value is not an entry: %w", err)
	}
	start := time.Now()
	_, err := s.pgpool.Exec(ctx, `
		INSERT INTO place_cache (cache_key, entry, version, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (cache_key) DO UPDATE
		SET entry = EXCLUDED.entry, version = EXCLUDED.version, updated_at = NOW()`,
		key, value, head.Version)
	observeQuery(ctx, "place_cache.set", start, err)
	if err != nil {
		return fmt.Errorf("failed to write place cache %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	_, err := s.pgpool.Exec(ctx, `DELETE FROM place_cache WHERE cache_key = $1`, key)
	observeQuery(ctx, "place_cache.delete", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete place cache %s: %w", key, err)
	}
	return nil
}

func observeQuery(ctx context.Context, name string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("query", name))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

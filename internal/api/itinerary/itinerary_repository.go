package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-itinerary-engine/app/db"
	"github.com/FACorreiaa/go-itinerary-engine/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

var ErrItineraryNotFound = errors.New("itinerary not found")

var _ Repository = (*PostgresRepository)(nil)

// Repository persists generated itineraries per user.
type Repository interface {
	SaveItinerary(ctx context.Context, userID uuid.UUID, title string, itinerary types.GeneratedItinerary) (*types.SavedItinerary, error)
	// GetItinerary returns ErrItineraryNotFound when the id does not belong to userID.
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error)
	ListItineraries(ctx context.Context, userID uuid.UUID, limit int) ([]types.SavedItinerary, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresRepository(pgpool database.Querier, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) SaveItinerary(ctx context.Context, userID uuid.UUID, title string, itinerary types.GeneratedItinerary) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "SaveItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "generated_itineraries"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SaveItinerary"), slog.String("userID", userID.String()))

	payload, err := json.Marshal(itinerary)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to encode itinerary: %w", err)
	}

	query := `
        INSERT INTO generated_itineraries (id, user_id, title, region, itinerary)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`

	saved := &types.SavedItinerary{
		ID:        itinerary.ID,
		UserID:    userID,
		Title:     title,
		Itinerary: itinerary,
	}
	start := time.Now()
	err = r.pgpool.QueryRow(ctx, query, itinerary.ID, userID, title, itinerary.Region, payload).Scan(&saved.CreatedAt)
	observeQuery(ctx, "generated_itineraries.insert", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("failed to save itinerary: %w", err)
	}

	l.InfoContext(ctx, "Itinerary saved", slog.String("itineraryID", itinerary.ID.String()))
	span.SetStatus(codes.Ok, "Itinerary saved")
	return saved, nil
}

func (r *PostgresRepository) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "GetItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "generated_itineraries"),
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	query := `
        SELECT id, user_id, title, itinerary, created_at
        FROM generated_itineraries
        WHERE id = $1 AND user_id = $2`

	start := time.Now()
	saved, err := scanSaved(r.pgpool.QueryRow(ctx, query, itineraryID, userID))
	observeQuery(ctx, "generated_itineraries.get", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetStatus(codes.Error, "Itinerary not found")
		return nil, ErrItineraryNotFound
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to load itinerary", slog.String("itineraryID", itineraryID.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("failed to load itinerary: %w", err)
	}

	span.SetStatus(codes.Ok, "Itinerary loaded")
	return saved, nil
}

func (r *PostgresRepository) ListItineraries(ctx context.Context, userID uuid.UUID, limit int) ([]types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "ListItineraries", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "generated_itineraries"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	query := `
        SELECT id, user_id, title, itinerary, created_at
        FROM generated_itineraries
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, userID, limit)
	if err != nil {
		observeQuery(ctx, "generated_itineraries.list", start, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	saved := []types.SavedItinerary{}
	for rows.Next() {
		s, err := scanSaved(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan itinerary row: %w", err)
		}
		saved = append(saved, *s)
	}
	err = rows.Err()
	observeQuery(ctx, "generated_itineraries.list", start, err)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read itinerary rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Itineraries listed")
	return saved, nil
}

func scanSaved(row pgx.Row) (*types.SavedItinerary, error) {
	var (
		s       types.SavedItinerary
		payload []byte
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.Title, &payload, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &s.Itinerary); err != nil {
		return nil, fmt.Errorf("stored itinerary %s is not valid JSON: %w", s.ID, err)
	}
	return &s, nil
}

func observeQuery(ctx context.Context, name string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("query", name))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-engine/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-engine/internal/api/research"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service builds multi-day itineraries and keeps saved ones per user.
type Service interface {
	// GenerateItinerary never fails on recoverable input: bad dates fall back to
	// the default trip length and ungeocoded places only feed recommendations.
	GenerateItinerary(ctx context.Context, input types.ItineraryInput) (*types.GeneratedItinerary, error)
	// GenerateItineraryWithResearch researches every place first and lays the
	// trip out with what was learned. Progress is reported through opts.
	GenerateItineraryWithResearch(ctx context.Context, input types.ItineraryInput, opts research.Options) (*types.GeneratedItinerary, error)

	SaveItinerary(ctx context.Context, userID uuid.UUID, title string, itinerary types.GeneratedItinerary) (*types.SavedItinerary, error)
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error)
	ListItineraries(ctx context.Context, userID uuid.UUID, limit int) ([]types.SavedItinerary, error)
}

type ServiceImpl struct {
	logger          *slog.Logger
	scheduler       *Scheduler
	researchService research.Service
	repo            Repository
	now             func() time.Time
}

// NewServiceImpl wires the orchestrator. researchService and repo may be nil;
// the research variant then schedules without knowledge and persistence
// calls fail.
func NewServiceImpl(scheduler *Scheduler, researchService research.Service, repo Repository, logger *slog.Logger) *ServiceImpl {
	if scheduler == nil {
		scheduler = NewScheduler(DefaultConfig())
	}
	return &ServiceImpl{
		logger:          logger,
		scheduler:       scheduler,
		researchService: researchService,
		repo:            repo,
		now:             time.Now,
	}
}

func (s *ServiceImpl) GenerateItinerary(ctx context.Context, input types.ItineraryInput) (*types.GeneratedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.Int("places.count", len(input.Places)),
		attribute.String("dates.start", input.Dates.Start),
		attribute.String("dates.end", input.Dates.End),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Context done")
		return nil, err
	}

	start := time.Now()
	itinerary := s.build(input, nil, input.Region)
	s.record(ctx, "plain", start)

	s.logger.InfoContext(ctx, "Itinerary generated",
		slog.String("itineraryID", itinerary.ID.String()),
		slog.Int("days", itinerary.Summary.TotalDays),
		slog.Int("places_visited", itinerary.Summary.PlacesVisited))
	span.SetAttributes(attribute.String("itinerary.id", itinerary.ID.String()))
	span.SetStatus(codes.Ok, "Itinerary generated")
	return itinerary, nil
}

func (s *ServiceImpl) GenerateItineraryWithResearch(ctx context.Context, input types.ItineraryInput, opts research.Options) (*types.GeneratedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GenerateItineraryWithResearch", trace.WithAttributes(
		attribute.Int("places.count", len(input.Places)),
		attribute.Bool("use_cache", opts.UseCache),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateItineraryWithResearch"))
	if s.researchService == nil {
		l.WarnContext(ctx, "Research is not configured, generating without knowledge")
		return s.GenerateItinerary(ctx, input)
	}

	start := time.Now()
	places := sanitizePlaces(input.Places)
	region := input.Region
	if region == "" {
		region = s.researchService.DetectRegion(places)
	}
	span.SetAttributes(attribute.String("region", region))

	results, err := s.researchService.ResearchDetailed(ctx, places, region, opts)
	if err != nil {
		l.WarnContext(ctx, "Research did not finish", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Research did not finish")
		return nil, fmt.Errorf("failed to research places: %w", err)
	}

	knowledge := make([]types.PlaceKnowledge, len(results))
	for i, r := range results {
		knowledge[i] = r.Knowledge
	}
	merged, hints := MergeKnowledge(places, results)

	enriched := input
	enriched.Places = merged
	itinerary := s.build(enriched, hints, region)
	annotateMeals(itinerary.Days)
	itinerary.Knowledge = knowledge
	itinerary.Summary.ResearchedPlaces, itinerary.Summary.DegradedPlaces = researchCounts(results)
	s.record(ctx, "research", start)

	l.InfoContext(ctx, "Researched itinerary generated",
		slog.String("itineraryID", itinerary.ID.String()),
		slog.String("region", region),
		slog.Int("researched", itinerary.Summary.ResearchedPlaces),
		slog.Int("degraded", itinerary.Summary.DegradedPlaces))
	span.SetStatus(codes.Ok, "Itinerary generated")
	return itinerary, nil
}

// build runs the synchronous pipeline. It does no I/O and never fails.
func (s *ServiceImpl) build(input types.ItineraryInput, hints Hints, region string) *types.GeneratedItinerary {
	cfg := s.scheduler.Config()
	numDays, startDate := dayCount(input.Dates, cfg)
	days := emptyDays(numDays, startDate)
	budget := EffectiveBudget(input.Budget, input.Members)
	geocoded := withCoordinates(sanitizePlaces(input.Places))

	if len(geocoded) == 0 {
		// Nothing can be placed on a map: hand back empty days with the default
		// suggestions on day one.
		days[0].Recommendations = append(days[0].Recommendations, s.scheduler.Recommend(days, region)...)
	} else {
		clusters := s.clusterPlaces(geocoded, numDays)
		for i, c := range clusters {
			route := OptimizeRoute(c.Places)
			days[i].Activities = s.scheduler.planDay(route.Places, days[i].Day, hints)
			computeDayTotals(&days[i])
		}
		days = s.scheduler.BalanceFatigueAcrossDays(days, hints)
		s.scheduler.AdjustFirstDayFatigue(days)
		s.scheduler.applyCosts(days, budget, hints)
		s.scheduler.FillRecommendations(days, region)
	}

	for i := range days {
		computeDayTotals(&days[i])
	}
	return &types.GeneratedItinerary{
		ID:          uuid.New(),
		Days:        days,
		Route:       routePolyline(days),
		Summary:     buildSummary(cfg, days, currencyFor(cfg, budget)),
		GeneratedAt: s.now().UTC(),
		Region:      region,
	}
}

// clusterPlaces splits small sets evenly and clusters larger ones by
// proximity. It never returns more than numDays clusters.
func (s *ServiceImpl) clusterPlaces(places []types.Place, numDays int) []types.PlaceCluster {
	var (
		clusters []types.PlaceCluster
		err      error
	)
	if len(places) <= s.scheduler.Config().EvenSplitFactor*numDays {
		clusters, err = DistributeEvenly(places, numDays)
	} else {
		clusters, err = Cluster(places, numDays)
	}
	if err != nil {
		// numDays comes from dayCount and is always positive.
		s.logger.Error("Clustering failed", slog.Int("days", numDays), slog.Any("error", err))
		return nil
	}
	if len(clusters) > numDays {
		clusters = clusters[:numDays]
	}
	return clusters
}

func (s *ServiceImpl) record(ctx context.Context, variant string, start time.Time) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("variant", variant))
	m.ItinerariesGenerated.Add(ctx, 1, attrs)
	m.GenerationDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
}

func (s *ServiceImpl) SaveItinerary(ctx context.Context, userID uuid.UUID, title string, itinerary types.GeneratedItinerary) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "SaveItinerary")
	defer span.End()

	if s.repo == nil {
		return nil, errNoRepository
	}
	if strings.TrimSpace(title) == "" {
		title = defaultTitle(itinerary)
	}
	saved, err := s.repo.SaveItinerary(ctx, userID, title, itinerary)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save itinerary", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary saved")
	return saved, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary")
	defer span.End()

	if s.repo == nil {
		return nil, errNoRepository
	}
	saved, err := s.repo.GetItinerary(ctx, userID, itineraryID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary retrieved")
	return saved, nil
}

func (s *ServiceImpl) ListItineraries(ctx context.Context, userID uuid.UUID, limit int) ([]types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ListItineraries", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("limit", limit),
	))
	defer span.End()

	if s.repo == nil {
		return nil, errNoRepository
	}
	saved, err := s.repo.ListItineraries(ctx, userID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	return saved, nil
}

package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-itinerary-engine/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// Lookup researches a single place. It is the boundary to whatever external
// source backs the pipeline.
type Lookup interface {
	ResearchPlace(ctx context.Context, p types.Place, region string) (types.PlaceKnowledge, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, p types.Place, region string) (types.PlaceKnowledge, error)

func (f LookupFunc) ResearchPlace(ctx context.Context, p types.Place, region string) (types.PlaceKnowledge, error) {
	return f(ctx, p, region)
}

var errNoProvider = errors.New("no research provider configured")

// Pacer spaces consecutive external lookups.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewRatePacer allows one lookup per delay. An idle pacer lets the first
// lookup through at once; each later Wait returns no sooner than delay after
// the previous one. A non-positive delay never waits.
func NewRatePacer(delay time.Duration) Pacer {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

type Options struct {
	UseCache   bool
	OnProgress func(types.ResearchProgress)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Research(ctx context.Context, places []types.Place, region string, opts Options) ([]types.PlaceKnowledge, error)
	ResearchDetailed(ctx context.Context, places []types.Place, region string, opts Options) ([]types.ResearchResult, error)
	DetectRegion(places []types.Place) string
}

type ServiceImpl struct {
	logger *slog.Logger
	cache  *Cache
	lookup Lookup
	pacer  Pacer
	now    Clock
}

// NewServiceImpl wires the pipeline. cache and lookup may be nil: without a
// cache every place is looked up, without a lookup every miss degrades.
func NewServiceImpl(cache *Cache, lookup Lookup, pacer Pacer, logger *slog.Logger) *ServiceImpl {
	if pacer == nil {
		pacer = NewRatePacer(0)
	}
	return &ServiceImpl{
		logger: logger,
		cache:  cache,
		lookup: lookup,
		pacer:  pacer,
		now:    time.Now,
	}
}

func (s *ServiceImpl) DetectRegion(places []types.Place) string {
	return DetectRegion(places)
}

// Research returns one knowledge record per place, in input order.
func (s *ServiceImpl) Research(ctx context.Context, places []types.Place, region string, opts Options) ([]types.PlaceKnowledge, error) {
	results, err := s.ResearchDetailed(ctx, places, region, opts)
	out := make([]types.PlaceKnowledge, len(results))
	for i, r := range results {
		out[i] = r.Knowledge
	}
	return out, err
}

// ResearchDetailed researches places one after another. Cached records are
// served when opts.UseCache is set; otherwise the lookup runs. Every lookup
// passes the pacer first, so consecutive lookups start at least the configured
// delay apart and nothing waits after the last one. A failed lookup
// yields a degraded fallback record and the batch continues. If ctx ends, the
// remaining places are degraded and ctx.Err() is returned with the full slice.
func (s *ServiceImpl) ResearchDetailed(ctx context.Context, places []types.Place, region string, opts Options) ([]types.ResearchResult, error) {
	ctx, span := otel.Tracer("ResearchService").Start(ctx, "ResearchDetailed", trace.WithAttributes(
		attribute.Int("places.count", len(places)),
		attribute.String("region", region),
		attribute.Bool("use_cache", opts.UseCache),
	))
	defer span.End()

	l := s.logger.With(slog.String("component", "research"))
	total := len(places)
	results := make([]types.ResearchResult, 0, total)

	for i, p := range places {
		if err := ctx.Err(); err != nil {
			results = append(results, s.degradeRest(ctx, places[i:], region, err)...)
			span.RecordError(err)
			span.SetStatus(codes.Error, "research cancelled")
			return results, err
		}

		s.report(opts, types.StageSearching, p, i, total, float64(i)/float64(total)*100, fmt.Sprintf("Looking up %s", p.Name))

		if opts.UseCache && s.cache != nil {
			if k, ok := s.cache.Get(ctx, p.Name); ok {
				span.AddEvent("Cache hit", trace.WithAttributes(attribute.String("place", p.Name)))
				results = append(results, types.ResearchResult{Place: p, Knowledge: k, Status: types.ResearchCached})
				s.report(opts, types.StageComplete, p, i, total, float64(i+1)/float64(total)*100, fmt.Sprintf("Loaded %s from cache", p.Name))
				continue
			}
		}

		if err := s.pacer.Wait(ctx); err != nil {
			results = append(results, s.degradeRest(ctx, places[i:], region, err)...)
			span.RecordError(err)
			span.SetStatus(codes.Error, "research cancelled")
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			return results, err
		}

		s.report(opts, types.StageExtracting, p, i, total, (float64(i)+0.5)/float64(total)*100, fmt.Sprintf("Extracting details for %s", p.Name))
		result := s.researchOne(ctx, l, p, region)
		results = append(results, result)
		s.report(opts, types.StageComplete, p, i, total, float64(i+1)/float64(total)*100, fmt.Sprintf("Finished %s", p.Name))
	}

	span.SetStatus(codes.Ok, "Research completed")
	return results, nil
}

func (s *ServiceImpl) researchOne(ctx context.Context, l *slog.Logger, p types.Place, region string) types.ResearchResult {
	var (
		k   types.PlaceKnowledge
		err error
	)
	if s.lookup == nil {
		err = errNoProvider
	} else {
		k, err = s.lookup.ResearchPlace(ctx, p, region)
	}
	if err != nil {
		l.WarnContext(ctx, "Place research failed, using fallback", slog.String("place", p.Name), slog.Any("error", err))
		metrics.Get().ResearchLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "degraded")))
		return types.ResearchResult{
			Place:     p,
			Knowledge: FallbackKnowledge(p, region, s.now()),
			Status:    types.ResearchDegraded,
			Reason:    err.Error(),
		}
	}

	if k.Name == "" {
		k.Name = p.Name
	}
	ensureLists(&k)
	metrics.Get().ResearchLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	if s.cache != nil {
		if err := s.cache.Set(ctx, p.Name, k); err != nil {
			l.WarnContext(ctx, "Failed to cache place knowledge", slog.String("place", p.Name), slog.Any("error", err))
		}
	}
	return types.ResearchResult{Place: p, Knowledge: k, Status: types.ResearchOK}
}

func (s *ServiceImpl) degradeRest(ctx context.Context, places []types.Place, region string, cause error) []types.ResearchResult {
	out := make([]types.ResearchResult, 0, len(places))
	for _, p := range places {
		out = append(out, types.ResearchResult{
			Place:     p,
			Knowledge: FallbackKnowledge(p, region, s.now()),
			Status:    types.ResearchDegraded,
			Reason:    cause.Error(),
		})
	}
	s.logger.WarnContext(ctx, "Research stopped early", slog.Int("degraded", len(places)), slog.Any("error", cause))
	return out
}

func (s *ServiceImpl) report(opts Options, stage types.ResearchStage, p types.Place, idx, total int, percent float64, msg string) {
	if opts.OnProgress == nil {
		return
	}
	opts.OnProgress(types.ResearchProgress{
		Stage:       stage,
		PlaceName:   p.Name,
		PlaceIndex:  idx,
		TotalPlaces: total,
		Percent:     percent,
		Message:     msg,
	})
}

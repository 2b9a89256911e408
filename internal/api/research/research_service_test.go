package research

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// countingPacer records waits instead of sleeping. When err is set, every
// wait after the first failAfter returns it.
type countingPacer struct {
	mu        sync.Mutex
	waits     int
	failAfter int
	err       error
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits++
	if p.err != nil && p.waits > p.failAfter {
		return p.err
	}
	return ctx.Err()
}

// recordingLookup answers from a table and remembers which places it saw.
type recordingLookup struct {
	answers map[string]types.PlaceKnowledge
	calls   []string
}

func (l *recordingLookup) ResearchPlace(_ context.Context, p types.Place, _ string) (types.PlaceKnowledge, error) {
	l.calls = append(l.calls, p.Name)
	k, ok := l.answers[p.Name]
	if !ok {
		return types.PlaceKnowledge{}, fmt.Errorf("nothing known about %s", p.Name)
	}
	return k, nil
}

func goaPlaces(names ...string) []types.Place {
	places := make([]types.Place, len(names))
	for i, n := range names {
		places[i] = types.Place{Name: n}
	}
	return places
}

func setupServiceTest(lookup Lookup, pacer Pacer) (*ServiceImpl, *Cache) {
	cache := NewCache(NewMemoryStore(0), testLogger(), WithClock(func() time.Time { return t0 }))
	svc := NewServiceImpl(cache, lookup, pacer, testLogger())
	svc.now = func() time.Time { return t0 }
	return svc, cache
}

func TestServiceImpl_ResearchDetailed_FallbackForEveryPlace(t *testing.T) {
	ctx := context.Background()
	lookup := LookupFunc(func(context.Context, types.Place, string) (types.PlaceKnowledge, error) {
		return types.PlaceKnowledge{}, errors.New("quota exceeded")
	})
	svc, cache := setupServiceTest(lookup, &countingPacer{})
	places := goaPlaces("Fort Aguada", "Baga Beach", "Anjuna Flea Market")

	results, err := svc.ResearchDetailed(ctx, places, "Goa, India", Options{UseCache: true})
	require.NoError(t, err)
	require.Len(t, results, len(places))
	for i, r := range results {
		assert.Equal(t, places[i].Name, r.Knowledge.Name)
		assert.True(t, r.Degraded())
		assert.Contains(t, r.Reason, "quota exceeded")
		assert.LessOrEqual(t, r.Knowledge.ResearchConfidence, 0.2)
		assert.Contains(t, r.Knowledge.Description, "Goa, India")
		assert.NotNil(t, r.Knowledge.NearbyRestaurants)
	}

	// Fallbacks are never cached.
	_, ok := cache.Get(ctx, "Fort Aguada")
	assert.False(t, ok)
}

func TestServiceImpl_ResearchDetailed_NoProvider(t *testing.T) {
	svc, _ := setupServiceTest(nil, nil)
	knowledge, err := svc.Research(context.Background(), goaPlaces("Fort Aguada", "Baga Beach"), "", Options{})
	require.NoError(t, err)
	require.Len(t, knowledge, 2)
	assert.Equal(t, FallbackConfidence, knowledge[0].ResearchConfidence)
	assert.Empty(t, knowledge[1].Type, "a fallback never invents a category")
}

func TestServiceImpl_ResearchDetailed_CacheAndPacing(t *testing.T) {
	ctx := context.Background()
	lookup := &recordingLookup{answers: map[string]types.PlaceKnowledge{
		"Fort Aguada": aguadaKnowledge(),
		"Baga Beach":  {Name: "Baga Beach", Type: "beach", ResearchConfidence: 0.9},
	}}
	pacer := &countingPacer{}
	svc, cache := setupServiceTest(lookup, pacer)

	cached := types.PlaceKnowledge{Name: "Britto's", Type: "restaurant", ResearchConfidence: 0.9}
	require.NoError(t, cache.Set(ctx, "Britto's", cached))

	places := goaPlaces("Fort Aguada", "Britto's", "Baga Beach")
	results, err := svc.ResearchDetailed(ctx, places, "Goa, India", Options{UseCache: true})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, types.ResearchOK, results[0].Status)
	assert.Equal(t, types.ResearchCached, results[1].Status)
	assert.Equal(t, "restaurant", results[1].Knowledge.Type)
	assert.Equal(t, types.ResearchOK, results[2].Status)

	assert.Equal(t, []string{"Fort Aguada", "Baga Beach"}, lookup.calls)
	assert.Equal(t, len(lookup.calls), pacer.waits, "every lookup passes the pacer, cache hits do not")

	// Successful lookups are written back.
	k, ok := cache.Get(ctx, "baga beach")
	require.True(t, ok)
	assert.Equal(t, "beach", k.Type)

	t.Run("use_cache=false always looks up", func(t *testing.T) {
		lookup.calls = nil
		pacer.waits = 0
		results, err := svc.ResearchDetailed(ctx, places, "Goa, India", Options{UseCache: false})
		require.NoError(t, err)
		assert.Len(t, lookup.calls, 3)
		assert.Equal(t, 3, pacer.waits)
		assert.True(t, results[1].Degraded(), "no lookup answer for Britto's")
	})

	t.Run("everything cached means no waits", func(t *testing.T) {
		lookup.calls = nil
		pacer.waits = 0
		_, err := svc.ResearchDetailed(ctx, goaPlaces("Fort Aguada", "Baga Beach"), "", Options{UseCache: true})
		require.NoError(t, err)
		assert.Empty(t, lookup.calls)
		assert.Zero(t, pacer.waits)
	})
}

func TestServiceImpl_ResearchDetailed_Progress(t *testing.T) {
	lookup := &recordingLookup{answers: map[string]types.PlaceKnowledge{"Fort Aguada": aguadaKnowledge()}}
	svc, _ := setupServiceTest(lookup, &countingPacer{})

	var events []types.ResearchProgress
	opts := Options{OnProgress: func(p types.ResearchProgress) { events = append(events, p) }}
	_, err := svc.ResearchDetailed(context.Background(), goaPlaces("Fort Aguada", "Baga Beach"), "", opts)
	require.NoError(t, err)

	require.Len(t, events, 6)
	stages := make([]types.ResearchStage, len(events))
	for i, e := range events {
		stages[i] = e.Stage
		assert.Equal(t, 2, e.TotalPlaces)
		if i > 0 {
			assert.GreaterOrEqual(t, e.Percent, events[i-1].Percent)
		}
	}
	assert.Equal(t, []types.ResearchStage{
		types.StageSearching, types.StageExtracting, types.StageComplete,
		types.StageSearching, types.StageExtracting, types.StageComplete,
	}, stages)
	assert.Equal(t, 1, events[3].PlaceIndex)
	assert.Equal(t, "Baga Beach", events[3].PlaceName)
	assert.Equal(t, 100.0, events[5].Percent)
}

func TestServiceImpl_ResearchDetailed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lookup := LookupFunc(func(_ context.Context, p types.Place, _ string) (types.PlaceKnowledge, error) {
		cancel()
		return types.PlaceKnowledge{Name: p.Name, ResearchConfidence: 0.9}, nil
	})
	svc, _ := setupServiceTest(lookup, &countingPacer{})
	places := goaPlaces("Fort Aguada", "Baga Beach", "Anjuna Flea Market")

	results, err := svc.ResearchDetailed(ctx, places, "", Options{})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 3, "every place still gets a record")
	assert.Equal(t, types.ResearchOK, results[0].Status)
	assert.True(t, results[1].Degraded())
	assert.True(t, results[2].Degraded())
}

func TestServiceImpl_ResearchDetailed_PacerFailure(t *testing.T) {
	lookup := &recordingLookup{answers: map[string]types.PlaceKnowledge{
		"Fort Aguada": aguadaKnowledge(),
		"Baga Beach":  {Name: "Baga Beach"},
	}}
	svc, _ := setupServiceTest(lookup, &countingPacer{failAfter: 1, err: errors.New("limiter closed")})

	results, err := svc.ResearchDetailed(context.Background(), goaPlaces("Fort Aguada", "Baga Beach"), "", Options{})
	assert.EqualError(t, err, "limiter closed")
	require.Len(t, results, 2)
	assert.Equal(t, []string{"Fort Aguada"}, lookup.calls)
	assert.True(t, results[1].Degraded())
}

func TestServiceImpl_ResearchDetailed_FillsMissingName(t *testing.T) {
	lookup := LookupFunc(func(context.Context, types.Place, string) (types.PlaceKnowledge, error) {
		return types.PlaceKnowledge{Type: "beach"}, nil
	})
	svc, _ := setupServiceTest(lookup, nil)
	results, err := svc.ResearchDetailed(context.Background(), goaPlaces("Colva Beach"), "", Options{})
	require.NoError(t, err)
	assert.Equal(t, "Colva Beach", results[0].Knowledge.Name)
	assert.NotNil(t, results[0].Knowledge.SourceURLs)
}

func TestServiceImpl_ResearchDetailed_RatePacerSpacing(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps on a real limiter")
	}
	const delay = 150 * time.Millisecond

	var (
		mu    sync.Mutex
		calls []time.Time
	)
	lookup := LookupFunc(func(_ context.Context, p types.Place, _ string) (types.PlaceKnowledge, error) {
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
		return types.PlaceKnowledge{Name: p.Name, ResearchConfidence: 0.9}, nil
	})
	svc, _ := setupServiceTest(lookup, NewRatePacer(delay))

	start := time.Now()
	_, err := svc.ResearchDetailed(context.Background(), goaPlaces("Fort Aguada", "Baga Beach", "Chapora Fort"), "", Options{})
	require.NoError(t, err)
	require.Len(t, calls, 3)

	assert.Less(t, calls[0].Sub(start), delay, "the first lookup does not wait")
	// The limiter may hand out a token a hair early; allow a little slack.
	slack := 10 * time.Millisecond
	assert.GreaterOrEqual(t, calls[1].Sub(calls[0]), delay-slack, "gap between lookups 1 and 2")
	assert.GreaterOrEqual(t, calls[2].Sub(calls[1]), delay-slack, "gap between lookups 2 and 3")
}

func TestNewRatePacer(t *testing.T) {
	ctx := context.Background()
	p := NewRatePacer(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Wait(ctx))
	}

	slow := NewRatePacer(time.Hour)
	require.NoError(t, slow.Wait(ctx), "an idle pacer lets the first lookup through")
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, slow.Wait(short))
}

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		name   string
		places []types.Place
		want   string
	}{
		{"empty", nil, ""},
		{"keyword in names", goaPlaces("Baga Beach", "Curlies, Anjuna"), "Goa, India"},
		{"coordinates", []types.Place{{Name: "Somewhere quiet", Coordinates: &types.Coords{Lat: -8.51, Lng: 115.26}}}, "Bali, Indonesia"},
		{"trailing city", goaPlaces("Louvre, Paris", "Eiffel Tower, Paris", "Tate Modern, London"), "Paris"},
		{"nothing to go on", goaPlaces("Somewhere"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectRegion(tt.places))
		})
	}
}

func TestFallbackKnowledge(t *testing.T) {
	p := types.Place{Name: "Chapora Fort", Category: "fort", Coordinates: &types.Coords{Lat: 15.6060, Lng: 73.7360}}
	k := FallbackKnowledge(p, "", t0)
	assert.Equal(t, "fort", k.Type)
	assert.Equal(t, p.Coordinates, k.Coordinates)
	assert.Equal(t, FallbackRating, k.Rating)
	assert.Equal(t, t0, k.LastUpdated)
	assert.NotContains(t, k.Description, " in ")
}

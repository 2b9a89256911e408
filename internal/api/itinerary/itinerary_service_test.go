package itinerary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-engine/internal/api/research"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// MockResearchService is a mock implementation of research.Service
type MockResearchService struct {
	mock.Mock
}

func (m *MockResearchService) Research(ctx context.Context, places []types.Place, region string, opts research.Options) ([]types.PlaceKnowledge, error) {
	args := m.Called(ctx, places, region, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlaceKnowledge), args.Error(1)
}

func (m *MockResearchService) ResearchDetailed(ctx context.Context, places []types.Place, region string, opts research.Options) ([]types.ResearchResult, error) {
	args := m.Called(ctx, places, region, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ResearchResult), args.Error(1)
}

func (m *MockResearchService) DetectRegion(places []types.Place) string {
	args := m.Called(places)
	return args.String(0)
}

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveItinerary(ctx context.Context, userID uuid.UUID, title string, itinerary types.GeneratedItinerary) (*types.SavedItinerary, error) {
	args := m.Called(ctx, userID, title, itinerary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SavedItinerary), args.Error(1)
}

func (m *MockRepository) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error) {
	args := m.Called(ctx, userID, itineraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SavedItinerary), args.Error(1)
}

func (m *MockRepository) ListItineraries(ctx context.Context, userID uuid.UUID, limit int) ([]types.SavedItinerary, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SavedItinerary), args.Error(1)
}

var fixedNow = time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func setupItineraryServiceTest(researchService research.Service) (*ServiceImpl, *MockRepository) {
	repo := new(MockRepository)
	service := NewServiceImpl(nil, researchService, repo, testLogger())
	service.now = func() time.Time { return fixedNow }
	return service, repo
}

// Hotel in Panaji with a church about 1 km north and a museum about 3 km north.
var (
	panajiHotel  = types.Place{Name: "Mandovi Riverside Hotel", Coordinates: at(15.4900, 73.8278)}
	panajiChurch = types.Place{Name: "Immaculate Conception Church", Coordinates: at(15.4989, 73.8278)}
	panajiMuseum = types.Place{Name: "Goa State Museum", Coordinates: at(15.5169, 73.8278)}
)

func twoDayInput(places ...types.Place) types.ItineraryInput {
	return types.ItineraryInput{
		Places: places,
		Dates:  types.DateRange{Start: "2025-03-01", End: "2025-03-02"},
	}
}

func activityNames(acts []types.ScheduledActivity, kind types.ActivityType) []string {
	var names []string
	for _, a := range acts {
		if a.Type == kind {
			names = append(names, a.Place.Name)
		}
	}
	return names
}

func TestServiceImpl_GenerateItinerary(t *testing.T) {
	service, _ := setupItineraryServiceTest(nil)
	ctx := context.Background()

	t.Run("hotel and two landmarks over two days", func(t *testing.T) {
		it, err := service.GenerateItinerary(ctx, twoDayInput(panajiHotel, panajiChurch, panajiMuseum))
		require.NoError(t, err)
		require.Len(t, it.Days, 2)

		assert.NotEqual(t, uuid.Nil, it.ID)
		assert.Equal(t, fixedNow, it.GeneratedAt)
		assert.Equal(t, "2025-03-01", it.Days[0].Date)
		assert.Equal(t, "2025-03-02", it.Days[1].Date)

		visited := map[string]int{}
		for _, d := range it.Days {
			require.NotEmpty(t, d.Activities)
			assert.Equal(t, types.ActivityStay, d.Activities[0].Type)
			assert.Equal(t, []string{panajiHotel.Name}, activityNames(d.Activities, types.ActivityStay))
			assertNoOverlap(t, d.Activities)
			for _, name := range activityNames(d.Activities, types.ActivityVisit) {
				visited[name]++
			}
			for _, a := range d.Activities {
				require.NotNil(t, a.EstimatedCost)
				assert.GreaterOrEqual(t, *a.EstimatedCost, 0.0)
			}
		}
		assert.Equal(t, map[string]int{panajiChurch.Name: 1, panajiMuseum.Name: 1}, visited)

		assert.Equal(t, 2, it.Summary.TotalDays)
		assert.Equal(t, 2, it.Summary.PlacesVisited)
		assert.Greater(t, it.Summary.TotalDistanceKm, 0.0)
		assert.Equal(t, 4, it.Summary.MealsPlanned)
		assert.Equal(t, "INR", it.Summary.Currency)
		assert.Contains(t, it.Summary.CategoriesCovered, types.CategoryAccommodation)
		assert.Contains(t, it.Summary.CategoriesCovered, types.CategoryLandmark)
		assert.Len(t, it.Route, 4)

		// Day one carries the arrival surcharge.
		assert.True(t, it.Days[0].ArrivalAdjusted)
		assert.False(t, it.Days[1].ArrivalAdjusted)
		assert.Greater(t, it.Days[0].TotalFatigue, it.Days[1].TotalFatigue)
	})

	t.Run("places without coordinates only feed recommendations", func(t *testing.T) {
		input := types.ItineraryInput{
			Places: []types.Place{{Name: "Fontainhas"}, {Name: "Chapora Fort"}},
			Dates:  types.DateRange{Start: "2025-03-01", End: "2025-03-03"},
		}
		it, err := service.GenerateItinerary(ctx, input)
		require.NoError(t, err)
		require.Len(t, it.Days, 3)
		for _, d := range it.Days {
			assert.Empty(t, d.Activities)
		}
		assert.NotEmpty(t, it.Summary.MissingCategories)
		assert.NotEmpty(t, it.Days[0].Recommendations)
		assert.Empty(t, it.Days[1].Recommendations)
		assert.Zero(t, it.Summary.PlacesVisited)
		assert.Empty(t, it.Route)
	})

	t.Run("unparseable dates fall back to three days", func(t *testing.T) {
		input := twoDayInput(panajiChurch)
		input.Dates = types.DateRange{Start: "next friday", End: "2025-13-40"}
		it, err := service.GenerateItinerary(ctx, input)
		require.NoError(t, err)
		assert.Len(t, it.Days, 3)
		assert.Empty(t, it.Days[0].Date)
	})

	t.Run("reversed dates fall back to three days", func(t *testing.T) {
		input := twoDayInput(panajiChurch)
		input.Dates = types.DateRange{Start: "2025-03-05", End: "2025-03-01"}
		it, err := service.GenerateItinerary(ctx, input)
		require.NoError(t, err)
		assert.Len(t, it.Days, 3)
		assert.Equal(t, "2025-03-05", it.Days[0].Date)
	})

	t.Run("long trips are capped", func(t *testing.T) {
		input := twoDayInput(panajiChurch)
		input.Dates = types.DateRange{Start: "2025-01-01", End: "2025-12-31"}
		it, err := service.GenerateItinerary(ctx, input)
		require.NoError(t, err)
		assert.Len(t, it.Days, DefaultConfig().MaxDays)
	})

	t.Run("budget drives costs", func(t *testing.T) {
		input := twoDayInput(panajiHotel, panajiChurch)
		input.Budget = &types.Budget{PerPerson: 10000, Currency: "EUR"}
		input.Members = []string{"ana", "rui"}
		it, err := service.GenerateItinerary(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "EUR", it.Summary.Currency)

		stay := it.Days[0].Activities[0]
		require.Equal(t, types.ActivityStay, stay.Type)
		require.NotNil(t, stay.EstimatedCost)
		assert.Equal(t, 3500.0, *stay.EstimatedCost)
	})

	t.Run("out of range coordinates are ignored", func(t *testing.T) {
		input := twoDayInput(panajiChurch, types.Place{Name: "Broken Pin", Coordinates: at(123, 73.8)})
		it, err := service.GenerateItinerary(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, 1, it.Summary.PlacesVisited)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := service.GenerateItinerary(cctx, twoDayInput(panajiChurch))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestServiceImpl_GenerateItineraryWithResearch(t *testing.T) {
	ctx := context.Background()
	museumWithoutPin := types.Place{Name: panajiMuseum.Name}

	lookup := research.LookupFunc(func(_ context.Context, p types.Place, _ string) (types.PlaceKnowledge, error) {
		k := types.PlaceKnowledge{Name: p.Name, ResearchConfidence: 0.8}
		switch p.Name {
		case panajiChurch.Name:
			k.Type = "landmark"
			k.TypicalDuration = "2 hours"
			k.EntryFee = "INR 50 per person"
			k.BestTimeToVisit = "Early morning"
			k.NearbyRestaurants = []string{"Viva Panjim", "Hotel Venite", "Ritz Classic", "Cafe Bhonsle"}
		case panajiMuseum.Name:
			k.Type = "museum"
			k.EntryFee = "Free"
			k.Coordinates = panajiMuseum.Coordinates
		case panajiHotel.Name:
			k.Type = "hotel"
		default:
			return types.PlaceKnowledge{}, errors.New("no results")
		}
		return k, nil
	})

	t.Run("knowledge shapes the layout", func(t *testing.T) {
		svc := research.NewServiceImpl(nil, lookup, nil, testLogger())
		service, _ := setupItineraryServiceTest(svc)

		var stages []types.ResearchStage
		opts := research.Options{OnProgress: func(p types.ResearchProgress) { stages = append(stages, p.Stage) }}
		input := twoDayInput(panajiHotel, panajiChurch, museumWithoutPin)
		input.Region = "Goa"

		it, err := service.GenerateItineraryWithResearch(ctx, input, opts)
		require.NoError(t, err)
		assert.Equal(t, "Goa", it.Region)
		assert.Len(t, it.Knowledge, 3)
		assert.Equal(t, 3, it.Summary.ResearchedPlaces)
		assert.Zero(t, it.Summary.DegradedPlaces)
		assert.Equal(t, 2, it.Summary.PlacesVisited, "museum is placed with researched coordinates")
		assert.Len(t, stages, 9)

		var church *types.ScheduledActivity
		var lunchNotes []string
		for d := range it.Days {
			for i, a := range it.Days[d].Activities {
				if a.Type == types.ActivityVisit && a.Place.Name == panajiChurch.Name {
					church = &it.Days[d].Activities[i]
				}
				if a.Type == types.ActivityMeal && a.Place.Name == "Lunch" && d == 0 {
					lunchNotes = a.Notes
				}
			}
		}
		require.NotNil(t, church)
		assert.Equal(t, 120, church.DurationMin)
		require.NotNil(t, church.EstimatedCost)
		assert.Equal(t, 50.0, *church.EstimatedCost)
		assert.Contains(t, church.Notes, "Best time: Early morning")
		require.NotNil(t, church.Knowledge)
		assert.Contains(t, lunchNotes, "Nearby: Viva Panjim, Hotel Venite, Ritz Classic")
	})

	t.Run("failed lookups degrade but still schedule", func(t *testing.T) {
		svc := research.NewServiceImpl(nil, lookup, nil, testLogger())
		service, _ := setupItineraryServiceTest(svc)

		mystery := types.Place{Name: "Mystery Spot", Coordinates: at(15.5000, 73.8300)}
		it, err := service.GenerateItineraryWithResearch(ctx, twoDayInput(panajiChurch, mystery), research.Options{})
		require.NoError(t, err)
		assert.Equal(t, 2, it.Summary.ResearchedPlaces)
		assert.Equal(t, 1, it.Summary.DegradedPlaces)
		assert.Equal(t, 2, it.Summary.PlacesVisited)
		assert.NotEmpty(t, it.Region, "region is detected from coordinates")
	})

	t.Run("failed lookups keep the plain layout", func(t *testing.T) {
		failing := research.LookupFunc(func(context.Context, types.Place, string) (types.PlaceKnowledge, error) {
			return types.PlaceKnowledge{}, errors.New("quota exceeded")
		})
		service, _ := setupItineraryServiceTest(research.NewServiceImpl(nil, failing, nil, testLogger()))
		input := twoDayInput(
			types.Place{Name: "Taj Holiday Village Hotel", Coordinates: at(15.5020, 73.7680)},
			types.Place{Name: "Fort Aguada", Coordinates: at(15.4920, 73.7730)},
			types.Place{Name: "Calangute Beach", Coordinates: at(15.5440, 73.7550)},
		)

		plain, err := service.GenerateItinerary(ctx, input)
		require.NoError(t, err)
		researched, err := service.GenerateItineraryWithResearch(ctx, input, research.Options{})
		require.NoError(t, err)

		assert.Equal(t, 3, researched.Summary.DegradedPlaces)
		assert.Equal(t, plain.Summary.PlacesVisited, researched.Summary.PlacesVisited)
		assert.Equal(t, layoutRows(plain), layoutRows(researched))
		for _, day := range researched.Days {
			require.NotEmpty(t, day.Activities)
			assert.Equal(t, types.ActivityStay, day.Activities[0].Type)
			assert.Equal(t, "Taj Holiday Village Hotel", day.Activities[0].Place.Name)
			for _, a := range day.Activities {
				if a.Category == types.CategoryBeach {
					assert.Equal(t, DefaultConfig().Durations[types.CategoryBeach], a.DurationMin, "a degraded beach keeps the table duration")
					assert.NotContains(t, a.Notes, "Open Check locally")
				}
			}
		}
	})

	t.Run("research error is returned", func(t *testing.T) {
		mockResearch := new(MockResearchService)
		service, _ := setupItineraryServiceTest(mockResearch)
		input := twoDayInput(panajiChurch)

		mockResearch.On("DetectRegion", mock.Anything).Return("Goa, India").Once()
		mockResearch.On("ResearchDetailed", mock.Anything, mock.Anything, "Goa, India", mock.Anything).
			Return(nil, context.DeadlineExceeded).Once()

		_, err := service.GenerateItineraryWithResearch(ctx, input, research.Options{})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		mockResearch.AssertExpectations(t)
	})

	t.Run("without research configured", func(t *testing.T) {
		service, _ := setupItineraryServiceTest(nil)
		it, err := service.GenerateItineraryWithResearch(ctx, twoDayInput(panajiChurch), research.Options{})
		require.NoError(t, err)
		assert.Empty(t, it.Knowledge)
		assert.Equal(t, 1, it.Summary.PlacesVisited)
	})
}

// layoutRows flattens the schedule into comparable rows, ignoring IDs and
// attached knowledge.
func layoutRows(it *types.GeneratedItinerary) []string {
	var rows []string
	for _, day := range it.Days {
		for _, a := range day.Activities {
			rows = append(rows, fmt.Sprintf("%d %s %s %s %s-%s", day.Day, a.Type, a.Place.Name, a.Category, a.StartTime, a.EndTime))
		}
	}
	return rows
}

func TestMergeKnowledge(t *testing.T) {
	beach := types.Place{Name: "Calangute Beach", Coordinates: at(15.5440, 73.7550)}
	fort := types.Place{Name: "Fort Aguada"}

	results := []types.ResearchResult{
		{
			Place:  beach,
			Status: types.ResearchDegraded,
			Knowledge: types.PlaceKnowledge{
				Name:            beach.Name,
				Type:            "destination",
				TypicalDuration: "1-2 hours",
				OpeningHours:    "Check locally",
				EntryFee:        "INR 500",
			},
		},
		{
			Place:  fort,
			Status: types.ResearchOK,
			Knowledge: types.PlaceKnowledge{
				Name:            fort.Name,
				Type:            "fort",
				TypicalDuration: "45 min",
				Coordinates:     at(15.4920, 73.7730),
			},
		},
	}

	merged, hints := MergeKnowledge([]types.Place{beach, fort}, results)
	require.Len(t, merged, 2)

	assert.Empty(t, merged[0].Category, "degraded type is not copied")
	beachHint, ok := hints.lookup(beach)
	require.True(t, ok)
	assert.Zero(t, beachHint.DurationMin)
	assert.Nil(t, beachHint.EntryFee)
	assert.Empty(t, beachHint.Notes)
	require.NotNil(t, beachHint.Knowledge)

	assert.Equal(t, "fort", merged[1].Category)
	require.NotNil(t, merged[1].EnrichedCoordinates)
	fortHint, ok := hints.lookup(fort)
	require.True(t, ok)
	assert.Equal(t, 45, fortHint.DurationMin)
}

func TestServiceImpl_SavedItineraries(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("blank title gets a default", func(t *testing.T) {
		service, repo := setupItineraryServiceTest(nil)
		it, err := service.GenerateItinerary(ctx, types.ItineraryInput{
			Places: []types.Place{panajiChurch},
			Dates:  types.DateRange{Start: "2025-03-01", End: "2025-03-02"},
			Region: "Goa",
		})
		require.NoError(t, err)

		want := &types.SavedItinerary{ID: it.ID, UserID: userID, Title: "Goa trip from 2025-03-01 (2 days)"}
		repo.On("SaveItinerary", ctx, userID, "Goa trip from 2025-03-01 (2 days)", *it).Return(want, nil).Once()

		saved, err := service.SaveItinerary(ctx, userID, "  ", *it)
		require.NoError(t, err)
		assert.Equal(t, want, saved)
		repo.AssertExpectations(t)
	})

	t.Run("repository errors are wrapped", func(t *testing.T) {
		service, repo := setupItineraryServiceTest(nil)
		itineraryID := uuid.New()
		repo.On("GetItinerary", ctx, userID, itineraryID).Return(nil, ErrItineraryNotFound).Once()

		_, err := service.GetItinerary(ctx, userID, itineraryID)
		assert.ErrorIs(t, err, ErrItineraryNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("list passes the limit through", func(t *testing.T) {
		service, repo := setupItineraryServiceTest(nil)
		list := []types.SavedItinerary{{ID: uuid.New(), UserID: userID, Title: "Weekend"}}
		repo.On("ListItineraries", ctx, userID, 5).Return(list, nil).Once()

		got, err := service.ListItineraries(ctx, userID, 5)
		require.NoError(t, err)
		assert.Equal(t, list, got)
		repo.AssertExpectations(t)
	})

	t.Run("no repository", func(t *testing.T) {
		service := NewServiceImpl(nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err := service.ListItineraries(ctx, userID, 0)
		assert.ErrorIs(t, err, errNoRepository)
	})
}

package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// MockResearchService is a mock implementation of Service
type MockResearchService struct {
	mock.Mock
}

func (m *MockResearchService) Research(ctx context.Context, places []types.Place, region string, opts Options) ([]types.PlaceKnowledge, error) {
	args := m.Called(ctx, places, region, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlaceKnowledge), args.Error(1)
}

func (m *MockResearchService) ResearchDetailed(ctx context.Context, places []types.Place, region string, opts Options) ([]types.ResearchResult, error) {
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

func setupHandlerTest() (*HandlerImpl, *MockResearchService) {
	svc := new(MockResearchService)
	return NewHandlerImpl(svc, testLogger()), svc
}

func postResearch(h *HandlerImpl, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/places/research", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ResearchPlaces(rr, req)
	return rr
}

func TestHandlerImpl_ResearchPlaces(t *testing.T) {
	places := []types.Place{{Name: "Fort Aguada"}, {Name: "Mystery Spot"}}
	results := []types.ResearchResult{
		{Place: places[0], Knowledge: aguadaKnowledge(), Status: types.ResearchCached},
		{Place: places[1], Knowledge: FallbackKnowledge(places[1], "Goa, India", t0), Status: types.ResearchDegraded, Reason: "timeout"},
	}

	t.Run("detects region and reports degraded places", func(t *testing.T) {
		h, svc := setupHandlerTest()
		svc.On("DetectRegion", places).Return("Goa, India").Once()
		svc.On("ResearchDetailed", mock.Anything, places, "Goa, India", Options{UseCache: true}).Return(results, nil).Once()

		rr := postResearch(h, `{"places": [{"name": "Fort Aguada"}, {"name": "Mystery Spot"}]}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp types.ResearchPlacesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Goa, India", resp.Region)
		require.Len(t, resp.Knowledge, 2)
		assert.Equal(t, "fort", resp.Knowledge[0].Type)
		assert.Equal(t, []string{"Mystery Spot"}, resp.Degraded)
		svc.AssertExpectations(t)
	})

	t.Run("explicit region and cache bypass", func(t *testing.T) {
		h, svc := setupHandlerTest()
		svc.On("ResearchDetailed", mock.Anything, places[:1], "North Goa", Options{UseCache: false}).Return(results[:1], nil).Once()

		rr := postResearch(h, `{"places": [{"name": "Fort Aguada"}], "region": "North Goa", "use_cache": false}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, mustField(t, rr, "degraded"))
		svc.AssertNotCalled(t, "DetectRegion", mock.Anything)
		svc.AssertExpectations(t)
	})

	t.Run("research failure", func(t *testing.T) {
		h, svc := setupHandlerTest()
		svc.On("DetectRegion", places).Return("").Once()
		svc.On("ResearchDetailed", mock.Anything, places, "", mock.Anything).Return(nil, context.DeadlineExceeded).Once()

		rr := postResearch(h, `{"places": [{"name": "Fort Aguada"}, {"name": "Mystery Spot"}]}`)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "deadline")
		svc.AssertExpectations(t)
	})
}

func TestHandlerImpl_ResearchPlaces_InvalidInput(t *testing.T) {
	var many strings.Builder
	many.WriteString(`{"places": [`)
	for i := 0; i <= maxResearchPlaces; i++ {
		if i > 0 {
			many.WriteString(",")
		}
		fmt.Fprintf(&many, `{"name": "Place %d"}`, i)
	}
	many.WriteString(`]}`)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"places": [`},
		{"unknown field", `{"places": [{"name": "Fort Aguada"}], "radius": 5}`},
		{"no places", `{"places": []}`},
		{"unnamed place", `{"places": [{"name": ""}]}`},
		{"too many places", many.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := setupHandlerTest()
			rr := postResearch(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			svc.AssertNotCalled(t, "ResearchDetailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func mustField(t *testing.T, rr *httptest.ResponseRecorder, field string) string {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	raw, ok := body[field]
	require.True(t, ok, "missing field %s", field)
	return string(raw)
}

package research

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const aguadaReply = `{
  "name": "Fort Aguada",
  "type": "fort",
  "coordinates": {"lat": 15.492, "lng": 73.7737},
  "description": "Fort Aguada is a well-preserved seventeenth-century Portuguese fort.",
  "rating": 4.4,
  "review_count": 52000,
  "price_level": 1,
  "opening_hours": "09:30-18:00",
  "best_time_to_visit": "late afternoon",
  "typical_duration": "1-2 hours",
  "crowd_peak_hours": [16, 17],
  "nearby_restaurants": ["Bomra's", "Gunpowder"],
  "nearby_attractions": ["Sinquerim Beach"],
  "entry_fee": "Free",
  "parking_available": true,
  "wheelchair_accessible": false,
  "source_urls": [],
  "research_confidence": 0.85
}`

// MockContentGenerator is a mock implementation of ContentGenerator
type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	args := m.Called(ctx, prompt, config)
	return args.String(0), args.Error(1)
}

func TestCleanJSONResponse(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\": 1}\n```":                  `{"a": 1}`,
		"```\n{\"a\": 1}```":                        `{"a": 1}`,
		"Sure! Here it is: {\"a\": {\"b\": 2}} Enjoy": `{"a": {"b": 2}}`,
		"no json here":                             "no json here",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanJSONResponse(in))
	}
}

func TestParseKnowledge(t *testing.T) {
	p := types.Place{Name: "Fort Aguada"}

	t.Run("fenced reply", func(t *testing.T) {
		k, err := parseKnowledge("```json\n"+aguadaReply+"\n```", p, t0)
		require.NoError(t, err)
		assert.Equal(t, "fort", k.Type)
		assert.Equal(t, 0.85, k.ResearchConfidence)
		assert.Equal(t, []int{16, 17}, k.CrowdPeakHours)
		assert.Equal(t, t0, k.LastUpdated)
		require.NotNil(t, k.Coordinates)
		assert.InDelta(t, 15.492, k.Coordinates.Lat, 1e-9)
	})

	t.Run("out of range values are normalised", func(t *testing.T) {
		raw := `{"rating": 7, "price_level": 9, "crowd_peak_hours": [-1, 11, 25],
			"coordinates": {"lat": 0, "lng": 0}, "research_confidence": 0}`
		k, err := parseKnowledge(raw, p, t0)
		require.NoError(t, err)
		assert.Equal(t, "Fort Aguada", k.Name)
		assert.Equal(t, 5.0, k.Rating)
		assert.Zero(t, k.PriceLevel)
		assert.Equal(t, []int{11}, k.CrowdPeakHours)
		assert.Nil(t, k.Coordinates)
		assert.Equal(t, defaultModelConfidence, k.ResearchConfidence)
		assert.NotNil(t, k.NearbyAttractions)
	})

	t.Run("confidence is capped", func(t *testing.T) {
		k, err := parseKnowledge(`{"research_confidence": 3, "coordinates": {"lat": 95, "lng": 10}}`, p, t0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, k.ResearchConfidence)
		assert.Nil(t, k.Coordinates)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseKnowledge("I could not find that place.", p, t0)
		assert.Error(t, err)
	})
}

func TestResearchPrompt(t *testing.T) {
	prompt := researchPrompt(types.Place{
		Name:        "Fort Aguada",
		Category:    "fort",
		Coordinates: &types.Coords{Lat: 15.492, Lng: 73.7737},
	}, "Goa, India")
	assert.Contains(t, prompt, `"Fort Aguada" in Goa, India (listed as fort) near latitude 15.49200, longitude 73.77370`)
	assert.Contains(t, prompt, `"typical_duration"`)
}

func TestGeminiLookup(t *testing.T) {
	ctx := context.Background()
	p := types.Place{Name: "Fort Aguada"}

	t.Run("success", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", ctx, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "Fort Aguada") && strings.Contains(prompt, "Goa, India")
		}), mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
			return cfg.ResponseMIMEType == "application/json" && *cfg.Temperature == float32(researchTemperature)
		})).Return(aguadaReply, nil).Once()

		lookup := NewGeminiLookup(gen)
		lookup.now = func() time.Time { return t0 }
		k, err := lookup.ResearchPlace(ctx, p, "Goa, India")
		require.NoError(t, err)
		assert.Equal(t, "Fort Aguada", k.Name)
		assert.Equal(t, []string{"Bomra's", "Gunpowder"}, k.NearbyRestaurants)
		gen.AssertExpectations(t)
	})

	t.Run("client error", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", ctx, mock.Anything, mock.Anything).Return("", errors.New("resource exhausted")).Once()

		_, err := NewGeminiLookup(gen).ResearchPlace(ctx, p, "")
		assert.ErrorContains(t, err, "resource exhausted")
	})
}

func TestOpenAILookup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var body struct {
				Model          string `json:"model"`
				ResponseFormat struct {
					Type string `json:"type"`
				} `json:"response_format"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, DefaultOpenAIModel, body.Model)
			assert.Equal(t, "json_object", body.ResponseFormat.Type)
			if assert.Len(t, body.Messages, 2) {
				assert.Contains(t, body.Messages[1].Content, "Fort Aguada")
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "chatcmpl-1",
				"object": "chat.completion",
				"model":  DefaultOpenAIModel,
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": aguadaReply},
				}},
			})
		}))
		defer srv.Close()

		lookup := NewOpenAILookup("test-key", srv.URL+"/v1", "")
		k, err := lookup.ResearchPlace(ctx, types.Place{Name: "Fort Aguada"}, "Goa, India")
		require.NoError(t, err)
		assert.Equal(t, "fort", k.Type)
		assert.Equal(t, "Free", k.EntryFee)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
		}))
		defer srv.Close()

		_, err := NewOpenAILookup("test-key", srv.URL+"/v1", "gpt-4o").ResearchPlace(ctx, types.Place{Name: "Fort Aguada"}, "")
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
		}))
		defer srv.Close()

		_, err := NewOpenAILookup("test-key", srv.URL+"/v1", "").ResearchPlace(ctx, types.Place{Name: "Fort Aguada"}, "")
		assert.Error(t, err)
	})
}

const aguadaPage = `<html><body>
<div id="mw-content-text">
  <p class="mw-empty-elt"></p>
  <p>  </p>
  <p><b>Fort Aguada</b> is a seventeenth-century Portuguese fort, along with a lighthouse,
  standing in Goa, India, on Sinquerim Beach overlooking the Arabian Sea.[1][2]</p>
  <p>Second paragraph.</p>
</div>
</body></html>`

func TestWebEnricher(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/Fort_Aguada" {
			http.NotFound(w, r)
			return
		}
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(aguadaPage))
	}))
	defer srv.Close()

	thin := LookupFunc(func(_ context.Context, p types.Place, _ string) (types.PlaceKnowledge, error) {
		return types.PlaceKnowledge{Name: p.Name, Description: "A fort.", SourceURLs: []string{}}, nil
	})

	t.Run("thin description is replaced", func(t *testing.T) {
		enricher := NewWebEnricher(thin, srv.Client(), srv.URL+"/", testLogger())
		k, err := enricher.ResearchPlace(ctx, types.Place{Name: "Fort Aguada"}, "")
		require.NoError(t, err)
		assert.Equal(t, "Fort Aguada is a seventeenth-century Portuguese fort, along with a lighthouse, standing in Goa, India, on Sinquerim Beach overlooking the Arabian Sea.", k.Description)
		assert.Equal(t, []string{srv.URL + "/wiki/Fort_Aguada"}, k.SourceURLs)
	})

	t.Run("rich description is kept", func(t *testing.T) {
		rich := LookupFunc(func(context.Context, types.Place, string) (types.PlaceKnowledge, error) {
			return types.PlaceKnowledge{Name: "Fort Aguada", Description: strings.Repeat("Detailed history. ", 10)}, nil
		})
		k, err := NewWebEnricher(rich, srv.Client(), srv.URL, testLogger()).ResearchPlace(ctx, types.Place{Name: "Fort Aguada"}, "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(k.Description, "Detailed history."))
		assert.Len(t, k.SourceURLs, 1)
	})

	t.Run("missing page is ignored", func(t *testing.T) {
		k, err := NewWebEnricher(thin, srv.Client(), srv.URL, testLogger()).ResearchPlace(ctx, types.Place{Name: "Tito's Lane"}, "")
		require.NoError(t, err)
		assert.Equal(t, "A fort.", k.Description)
		assert.Empty(t, k.SourceURLs)
	})

	t.Run("inner lookup errors pass through", func(t *testing.T) {
		failing := LookupFunc(func(context.Context, types.Place, string) (types.PlaceKnowledge, error) {
			return types.PlaceKnowledge{}, errors.New("upstream down")
		})
		_, err := NewWebEnricher(failing, srv.Client(), srv.URL, testLogger()).ResearchPlace(ctx, types.Place{Name: "Fort Aguada"}, "")
		assert.EqualError(t, err, "upstream down")
	})
}

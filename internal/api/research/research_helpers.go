package research

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const defaultModelConfidence = 0.7

// cleanJSONResponse strips markdown fences and any prose around the outermost
// JSON object of a model reply.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}

// parseKnowledge decodes a model reply into a knowledge record and normalises
// the fields models tend to get wrong.
func parseKnowledge(raw string, p types.Place, now time.Time) (types.PlaceKnowledge, error) {
	var k types.PlaceKnowledge
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &k); err != nil {
		return types.PlaceKnowledge{}, fmt.Errorf("failed to decode research reply: %w", err)
	}
	if strings.TrimSpace(k.Name) == "" {
		k.Name = p.Name
	}
	if k.Coordinates != nil && k.Coordinates.Lat == 0 && k.Coordinates.Lng == 0 {
		k.Coordinates = nil
	}
	if k.Coordinates != nil && (k.Coordinates.Lat < -90 || k.Coordinates.Lat > 90 || k.Coordinates.Lng < -180 || k.Coordinates.Lng > 180) {
		k.Coordinates = nil
	}
	k.Rating = clamp(k.Rating, 0, 5)
	if k.PriceLevel < 0 || k.PriceLevel > 4 {
		k.PriceLevel = 0
	}
	hours := k.CrowdPeakHours[:0]
	for _, h := range k.CrowdPeakHours {
		if h >= 0 && h <= 23 {
			hours = append(hours, h)
		}
	}
	k.CrowdPeakHours = hours
	if k.ResearchConfidence <= 0 {
		k.ResearchConfidence = defaultModelConfidence
	}
	k.ResearchConfidence = clamp(k.ResearchConfidence, 0, 1)
	k.LastUpdated = now
	ensureLists(&k)
	return k, nil
}

func ensureLists(k *types.PlaceKnowledge) {
	if k.CrowdPeakHours == nil {
		k.CrowdPeakHours = []int{}
	}
	if k.NearbyRestaurants == nil {
		k.NearbyRestaurants = []string{}
	}
	if k.NearbyAttractions == nil {
		k.NearbyAttractions = []string{}
	}
	if k.SourceURLs == nil {
		k.SourceURLs = []string{}
	}
}

func clamp(x, lo, hi float64) float64 {
	return min(hi, max(lo, x))
}

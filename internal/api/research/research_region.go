package research

import (
	"strings"

	"github.com/FACorreiaa/go-itinerary-engine/internal/geo"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// DetectRegion guesses a region label for a trip. It tries, in order, the
// known-region keyword table against place names, the known-region bounds
// against the centroid of the located places, and finally the most common
// trailing ", City" part of the names. It returns "" when nothing matches.
func DetectRegion(places []types.Place) string {
	if len(places) == 0 {
		return ""
	}

	best, bestHits := "", 0
	for _, r := range geo.KnownRegions() {
		hits := 0
		for _, p := range places {
			if r.MatchKeyword(p.Name) || r.MatchKeyword(p.Category) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = r.Name, hits
		}
	}
	if best != "" {
		return best
	}

	var coords []types.Coords
	for _, p := range places {
		if c := p.EffectiveCoordinates(); c != nil {
			coords = append(coords, *c)
		}
	}
	if len(coords) > 0 {
		if r, ok := geo.RegionForCoords(geo.Centroid(coords)); ok {
			return r.Name
		}
	}

	counts := map[string]int{}
	var order []string
	for _, p := range places {
		idx := strings.LastIndex(p.Name, ",")
		if idx < 0 {
			continue
		}
		city := strings.TrimSpace(p.Name[idx+1:])
		if city == "" {
			continue
		}
		if counts[city] == 0 {
			order = append(order, city)
		}
		counts[city]++
	}
	city, n := "", 0
	for _, c := range order {
		if counts[c] > n {
			city, n = c, counts[c]
		}
	}
	return city
}

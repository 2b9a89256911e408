package itinerary

import (
	"fmt"

	"github.com/FACorreiaa/go-itinerary-engine/internal/geo"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

var suggestionLabels = map[types.Category]string{
	types.CategoryAccommodation: "Recommended stay",
	types.CategoryRestaurant:    "Local restaurant",
	types.CategoryLandmark:      "Historic landmark",
	types.CategoryActivity:      "Guided activity",
	types.CategoryNightlife:     "Evening nightlife spot",
	types.CategoryBeach:         "Nearby beach",
	types.CategoryFort:          "Nearby fort",
	types.CategoryDestination:   "Local highlight",
}

const (
	curatedScore   = 0.9
	subAreaScore   = 0.8
	generatedScore = 0.6
)

// Recommend proposes places for every expected category the plan misses, plus
// one nudge towards an unvisited part of a known region. Names never repeat
// within a call and never duplicate a scheduled place.
func (s *Scheduler) Recommend(days []types.DayItinerary, region string) []types.PlaceRecommendation {
	var coords []types.Coords
	seen := map[string]bool{}
	for _, d := range days {
		for _, a := range d.Activities {
			seen[placeKey(a.Place.Name)] = true
			if a.Type != types.ActivityVisit && a.Type != types.ActivityStay {
				continue
			}
			if c := a.Place.EffectiveCoordinates(); c != nil {
				coords = append(coords, *c)
			}
		}
	}

	known, isKnown := geo.RegionByName(region)
	centroid := geo.Centroid(coords)
	if !isKnown && len(coords) > 0 {
		known, isKnown = geo.RegionForCoords(centroid)
	}
	if isKnown && len(coords) == 0 {
		centroid = known.Center()
	}
	label := region
	if isKnown {
		label = known.Name
	}

	recs := []types.PlaceRecommendation{}
	add := func(name string, cat types.Category, at types.Coords, reason string, score float64) {
		key := placeKey(name)
		if seen[key] {
			return
		}
		seen[key] = true
		recs = append(recs, types.PlaceRecommendation{
			Name:          name,
			Type:          cat,
			Coordinates:   at,
			Distance:      round2(geo.Distance(centroid, at)),
			Reason:        reason,
			Score:         score,
			MapURL:        geo.MapURL(at),
			GoogleMapsURL: geo.GoogleMapsURL(at),
		})
	}

	missing := missingCategories(s.cfg, coveredCategories(days))
	for i, cat := range missing {
		reason := fmt.Sprintf("Missing %s", cat)
		if l, ok := curatedFor(known, isKnown, cat, seen); ok {
			add(l.Name, l.Category, l.Coords, reason, curatedScore)
			continue
		}
		name := suggestionLabels[cat]
		if name == "" {
			name = "Suggested " + string(cat)
		}
		if label != "" {
			name = fmt.Sprintf("%s in %s", name, label)
		}
		bearing := float64(i) * 360 / float64(len(missing))
		add(name, cat, geo.Offset(centroid, bearing, s.cfg.RecommendationRadiusKm), reason, generatedScore)
	}

	if isKnown && len(coords) > 0 {
		if area, ok := uncoveredSubArea(known, coords); ok {
			add(area.Flagship.Name, area.Flagship.Category, area.Flagship.Coords,
				fmt.Sprintf("Explore %s", area.Name), subAreaScore)
		}
	}
	return recs
}

// FillRecommendations attaches Recommend's output to the days round-robin.
// Recommendations never become activities.
func (s *Scheduler) FillRecommendations(days []types.DayItinerary, region string) {
	if len(days) == 0 {
		return
	}
	for i, rec := range s.Recommend(days, region) {
		d := &days[i%len(days)]
		d.Recommendations = append(d.Recommendations, rec)
	}
}

func curatedFor(r geo.Region, known bool, cat types.Category, seen map[string]bool) (geo.Landmark, bool) {
	if !known {
		return geo.Landmark{}, false
	}
	for _, l := range r.Suggestions {
		if coveredCategory(l.Category) == cat && !seen[placeKey(l.Name)] {
			return l, true
		}
	}
	return geo.Landmark{}, false
}

// uncoveredSubArea returns the first sub-area with no scheduled place, provided
// at least one other sub-area is covered.
func uncoveredSubArea(r geo.Region, coords []types.Coords) (geo.SubArea, bool) {
	if len(r.SubAreas) < 2 {
		return geo.SubArea{}, false
	}
	covered := make([]bool, len(r.SubAreas))
	anyCovered := false
	for i, a := range r.SubAreas {
		for _, c := range coords {
			if a.Contains(c) {
				covered[i] = true
				anyCovered = true
				break
			}
		}
	}
	if !anyCovered {
		return geo.SubArea{}, false
	}
	for i, a := range r.SubAreas {
		if !covered[i] {
			return a, true
		}
	}
	return geo.SubArea{}, false
}

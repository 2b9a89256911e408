package geo

import (
	"strings"

	"github.com/golang/geo/s2"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// Landmark is a curated point used for suggestions.
type Landmark struct {
	Name     string
	Category types.Category
	Coords   types.Coords
}

// SubArea is a named part of a region, e.g. North Goa.
type SubArea struct {
	Name     string
	Bounds   s2.Rect
	Flagship Landmark
}

// Region is a known destination with enough metadata to detect it and to check
// whether a trip covers all of it.
type Region struct {
	Name        string
	Keywords    []string
	Bounds      s2.Rect
	SubAreas    []SubArea
	Suggestions []Landmark
}

func rect(minLat, minLng, maxLat, maxLng float64) s2.Rect {
	return s2.RectFromLatLng(s2.LatLngFromDegrees(minLat, minLng)).
		AddPoint(s2.LatLngFromDegrees(maxLat, maxLng))
}

var knownRegions = []Region{
	{
		Name:     "Goa, India",
		Keywords: []string{"goa", "panaji", "panjim", "baga", "calangute", "anjuna", "candolim", "vagator", "arambol", "palolem", "colva", "margao", "benaulim"},
		Bounds:   rect(14.85, 73.65, 15.85, 74.35),
		SubAreas: []SubArea{
			{
				Name:     "North Goa",
				Bounds:   rect(15.45, 73.65, 15.85, 74.35),
				Flagship: Landmark{Name: "Baga Beach", Category: types.CategoryBeach, Coords: types.Coords{Lat: 15.5553, Lng: 73.7517}},
			},
			{
				Name:     "South Goa",
				Bounds:   rect(14.85, 73.65, 15.45, 74.35),
				Flagship: Landmark{Name: "Palolem Beach", Category: types.CategoryBeach, Coords: types.Coords{Lat: 15.0100, Lng: 74.0232}},
			},
		},
		Suggestions: []Landmark{
			{Name: "Fort Aguada", Category: types.CategoryLandmark, Coords: types.Coords{Lat: 15.4920, Lng: 73.7737}},
			{Name: "Britto's", Category: types.CategoryRestaurant, Coords: types.Coords{Lat: 15.5560, Lng: 73.7514}},
			{Name: "Dudhsagar Falls", Category: types.CategoryActivity, Coords: types.Coords{Lat: 15.3144, Lng: 74.3143}},
			{Name: "Tito's Lane", Category: types.CategoryNightlife, Coords: types.Coords{Lat: 15.5557, Lng: 73.7531}},
		},
	},
	{
		Name:     "Bali, Indonesia",
		Keywords: []string{"bali", "ubud", "seminyak", "kuta", "uluwatu", "canggu", "nusa dua", "sanur", "jimbaran"},
		Bounds:   rect(-8.95, 114.40, -8.05, 115.75),
		SubAreas: []SubArea{
			{
				Name:     "Central Bali",
				Bounds:   rect(-8.55, 114.40, -8.05, 115.75),
				Flagship: Landmark{Name: "Tegallalang Rice Terrace", Category: types.CategoryActivity, Coords: types.Coords{Lat: -8.4312, Lng: 115.2793}},
			},
			{
				Name:     "South Bali",
				Bounds:   rect(-8.95, 114.40, -8.55, 115.75),
				Flagship: Landmark{Name: "Uluwatu Temple", Category: types.CategoryLandmark, Coords: types.Coords{Lat: -8.8291, Lng: 115.0849}},
			},
		},
		Suggestions: []Landmark{
			{Name: "Tanah Lot", Category: types.CategoryLandmark, Coords: types.Coords{Lat: -8.6212, Lng: 115.0868}},
			{Name: "Locavore", Category: types.CategoryRestaurant, Coords: types.Coords{Lat: -8.5076, Lng: 115.2638}},
			{Name: "Mount Batur Sunrise Trek", Category: types.CategoryActivity, Coords: types.Coords{Lat: -8.2420, Lng: 115.3750}},
			{Name: "Potato Head Beach Club", Category: types.CategoryNightlife, Coords: types.Coords{Lat: -8.6780, Lng: 115.1530}},
		},
	},
}

// KnownRegions returns the built-in destination table.
func KnownRegions() []Region {
	return knownRegions
}

func (r Region) Contains(c types.Coords) bool {
	return r.Bounds.ContainsLatLng(s2.LatLngFromDegrees(c.Lat, c.Lng))
}

// Center is the middle of the region's bounding box.
func (r Region) Center() types.Coords {
	c := r.Bounds.Center()
	return types.Coords{Lat: c.Lat.Degrees(), Lng: c.Lng.Degrees()}
}

func (a SubArea) Contains(c types.Coords) bool {
	return a.Bounds.ContainsLatLng(s2.LatLngFromDegrees(c.Lat, c.Lng))
}

// RegionForCoords returns the known region whose bounds contain c.
func RegionForCoords(c types.Coords) (Region, bool) {
	for _, r := range knownRegions {
		if r.Contains(c) {
			return r, true
		}
	}
	return Region{}, false
}

// RegionByName matches a free-text label ("Goa", "North Goa, India") against the
// region names and keywords.
func RegionByName(label string) (Region, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return Region{}, false
	}
	for _, r := range knownRegions {
		if strings.Contains(label, strings.ToLower(r.Name)) {
			return r, true
		}
		for _, kw := range r.Keywords {
			if containsWord(label, kw) {
				return r, true
			}
		}
	}
	return Region{}, false
}

// MatchKeyword reports whether text mentions one of the region keywords.
func (r Region) MatchKeyword(text string) bool {
	text = strings.ToLower(text)
	for _, kw := range r.Keywords {
		if containsWord(text, kw) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(text[idx-1])
		end := idx + len(word)
		after := end == len(text) || !isLetter(text[end])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], word)
		if next < 0 {
			break
		}
		idx += next + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

package types

import "time"

// PlaceKnowledge is what the research pipeline knows about one place.
type PlaceKnowledge struct {
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	Coordinates          *Coords   `json:"coordinates,omitempty"`
	Description          string    `json:"description"`
	Rating               float64   `json:"rating"`
	ReviewCount          int       `json:"review_count"`
	PriceLevel           int       `json:"price_level"` // 0 free .. 4 very expensive
	OpeningHours         string    `json:"opening_hours"`
	BestTimeToVisit      string    `json:"best_time_to_visit"`
	TypicalDuration      string    `json:"typical_duration"`
	CrowdPeakHours       []int     `json:"crowd_peak_hours"`
	NearbyRestaurants    []string  `json:"nearby_restaurants"`
	NearbyAttractions    []string  `json:"nearby_attractions"`
	EntryFee             string    `json:"entry_fee"`
	ParkingAvailable     bool      `json:"parking_available"`
	WheelchairAccessible bool      `json:"wheelchair_accessible"`
	SourceURLs           []string  `json:"source_urls"`
	LastUpdated          time.Time `json:"last_updated"`
	ResearchConfidence   float64   `json:"research_confidence"`
}

// PlaceCacheEntry is the serialized form of a cached knowledge record.
type PlaceCacheEntry struct {
	Data      PlaceKnowledge `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
	Version   int            `json:"version"`
}

type ResearchStage string

const (
	StageSearching  ResearchStage = "searching"
	StageExtracting ResearchStage = "extracting"
	StageComplete   ResearchStage = "complete"
)

type ResearchProgress struct {
	Stage       ResearchStage `json:"stage"`
	PlaceName   string        `json:"place_name"`
	PlaceIndex  int           `json:"place_index"`
	TotalPlaces int           `json:"total_places"`
	Percent     float64       `json:"percent"`
	Message     string        `json:"message"`
}

type ResearchStatus string

const (
	ResearchOK       ResearchStatus = "ok"
	ResearchCached   ResearchStatus = "cached"
	ResearchDegraded ResearchStatus = "degraded"
)

// ResearchResult tags a knowledge record with how it was obtained, so callers
// can tell low-confidence fallbacks apart without parsing descriptions.
type ResearchResult struct {
	Place     Place          `json:"place"`
	Knowledge PlaceKnowledge `json:"knowledge"`
	Status    ResearchStatus `json:"status"`
	Reason    string         `json:"reason,omitempty"`
}

func (r ResearchResult) Degraded() bool { return r.Status == ResearchDegraded }

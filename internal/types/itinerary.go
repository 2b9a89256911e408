package types

import (
	"time"

	"github.com/google/uuid"
)

// Coords is a WGS84 point in degrees.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Place struct {
	Name                string  `json:"name"`
	Category            string  `json:"category,omitempty"` // free text, classified by the scheduler
	Coordinates         *Coords `json:"coordinates,omitempty"`
	EnrichedCoordinates *Coords `json:"enriched_coordinates,omitempty"` // filled by research when the source had none
}

// EffectiveCoordinates returns the place's own coordinates, falling back to the
// enriched ones. Nil means the place cannot be geo-scheduled.
func (p Place) EffectiveCoordinates() *Coords {
	if p.Coordinates != nil {
		return p.Coordinates
	}
	if p.EnrichedCoordinates != nil {
		return p.EnrichedCoordinates
	}
	return nil
}

type DateRange struct {
	Start string `json:"start"` // ISO date, 2006-01-02
	End   string `json:"end"`
}

type Budget struct {
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
	PerPerson float64 `json:"per_person,omitempty"`
}

// ItineraryInput is everything the engine needs to plan a trip.
type ItineraryInput struct {
	Places  []Place   `json:"places"`
	Dates   DateRange `json:"dates"`
	Budget  *Budget   `json:"budget,omitempty"`
	Members []string  `json:"members,omitempty"`
	Region  string    `json:"region,omitempty"`
}

type PlaceCluster struct {
	Places        []Place `json:"places"`
	Centroid      Coords  `json:"centroid"`
	TotalDistance float64 `json:"total_distance"`
}

type RouteSegment struct {
	From     Place      `json:"from"`
	To       Place      `json:"to"`
	Distance float64    `json:"distance"`
	Duration int        `json:"duration"` // minutes
	Mode     TravelMode `json:"mode"`
}

type OptimizedRoute struct {
	Places        []Place        `json:"places"`
	TotalDistance float64        `json:"total_distance"`
	Segments      []RouteSegment `json:"segments"`
}

type TravelInfo struct {
	Distance float64    `json:"distance"`
	Duration int        `json:"duration"` // minutes
	Mode     TravelMode `json:"mode"`
}

// ScheduledActivity is a single slot in a day plan. StartMinute and EndMinute are
// minutes since midnight of the activity's day and may run past 1440; StartTime and
// EndTime are their wall-clock renderings.
type ScheduledActivity struct {
	ID             string          `json:"id"`
	Place          Place           `json:"place"`
	Day            int             `json:"day"`
	TimeSlot       TimeSlot        `json:"time_slot"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	StartMinute    int             `json:"start_minute"`
	EndMinute      int             `json:"end_minute"`
	DurationMin    int             `json:"duration_min"`
	Type           ActivityType    `json:"type"`
	Category       Category        `json:"category"`
	FatigueImpact  float64         `json:"fatigue_impact"`
	EstimatedCost  *float64        `json:"estimated_cost,omitempty"`
	TravelFromPrev *TravelInfo     `json:"travel_from_prev,omitempty"`
	Notes          []string        `json:"notes,omitempty"`
	Knowledge      *PlaceKnowledge `json:"knowledge,omitempty"`
}

type PlaceRecommendation struct {
	Name          string   `json:"name"`
	Type          Category `json:"type"`
	Coordinates   Coords   `json:"coordinates"`
	Distance      float64  `json:"distance"`
	Reason        string   `json:"reason"`
	Score         float64  `json:"score"`
	MapURL        string   `json:"map_url,omitempty"`
	GoogleMapsURL string   `json:"google_maps_url,omitempty"`
}

type DayItinerary struct {
	Day             int                   `json:"day"`
	Date            string                `json:"date"`
	Activities      []ScheduledActivity   `json:"activities"`
	TotalFatigue    float64               `json:"total_fatigue"`
	TotalCost       float64               `json:"total_cost"`
	TravelDistance  float64               `json:"travel_distance"`
	Recommendations []PlaceRecommendation `json:"recommendations"`
	ArrivalAdjusted bool                  `json:"arrival_adjusted,omitempty"`
}

type ItinerarySummary struct {
	TotalDays         int        `json:"total_days"`
	TotalActivities   int        `json:"total_activities"`
	PlacesVisited     int        `json:"places_visited"`
	MealsPlanned      int        `json:"meals_planned"`
	RestBreaks        int        `json:"rest_breaks"`
	TotalDistanceKm   float64    `json:"total_distance_km"`
	TotalFatigue      float64    `json:"total_fatigue"`
	AverageFatigue    float64    `json:"average_fatigue"`
	TotalCost         float64    `json:"total_cost"`
	Currency          string     `json:"currency"`
	CategoriesCovered []Category `json:"categories_covered"`
	MissingCategories []Category `json:"missing_categories"`
	ResearchedPlaces  int        `json:"researched_places,omitempty"`
	DegradedPlaces    int        `json:"degraded_places,omitempty"`
}

type GeneratedItinerary struct {
	ID          uuid.UUID        `json:"id"`
	Days        []DayItinerary   `json:"days"`
	Route       []Coords         `json:"route"`
	Summary     ItinerarySummary `json:"summary"`
	GeneratedAt time.Time        `json:"generated_at"`
	Region      string           `json:"region,omitempty"`
	Knowledge   []PlaceKnowledge `json:"knowledge,omitempty"`
}

// SavedItinerary is a generated itinerary persisted for a user.
type SavedItinerary struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Title     string             `json:"title"`
	Itinerary GeneratedItinerary `json:"itinerary"`
	CreatedAt time.Time          `json:"created_at"`
}

type GenerateItineraryRequest struct {
	ItineraryInput
	Title    string `json:"title,omitempty"`
	Research bool   `json:"research,omitempty"`
	UseCache *bool  `json:"use_cache,omitempty"`
}

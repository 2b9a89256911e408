package itinerary

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-itinerary-engine/internal/geo"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidInput = errors.New("invalid itinerary input")
	errNoRepository = errors.New("itinerary persistence is not configured")
)

// ValidateInput rejects requests that cannot be planned at all. Recoverable
// problems such as bad dates or missing coordinates are not errors.
func ValidateInput(input types.ItineraryInput) error {
	for i, p := range input.Places {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: place %d has no name", ErrInvalidInput, i)
		}
		if c := p.EffectiveCoordinates(); c != nil && !validCoords(*c) {
			return fmt.Errorf("%w: place %q has coordinates out of range", ErrInvalidInput, p.Name)
		}
	}
	if b := input.Budget; b != nil && (b.Total < 0 || b.PerPerson < 0) {
		return fmt.Errorf("%w: budget cannot be negative", ErrInvalidInput)
	}
	return nil
}

// sanitizePlaces drops unnamed places and forgets coordinates that are out of
// range, so the pipeline can treat whatever is left as valid.
func sanitizePlaces(places []types.Place) []types.Place {
	out := make([]types.Place, 0, len(places))
	for _, p := range places {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		if p.Coordinates != nil && !validCoords(*p.Coordinates) {
			p.Coordinates = nil
		}
		if p.EnrichedCoordinates != nil && !validCoords(*p.EnrichedCoordinates) {
			p.EnrichedCoordinates = nil
		}
		out = append(out, p)
	}
	return out
}

func validCoords(c types.Coords) bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lng) &&
		c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// dayCount returns the inclusive number of days in the range and the parsed
// start. Unparseable or reversed ranges fall back to cfg.FallbackDays.
func dayCount(dates types.DateRange, cfg Config) (int, *time.Time) {
	start, errStart := time.Parse(dateLayout, strings.TrimSpace(dates.Start))
	end, errEnd := time.Parse(dateLayout, strings.TrimSpace(dates.End))
	var startPtr *time.Time
	if errStart == nil {
		startPtr = &start
	}
	if errStart != nil || errEnd != nil || end.Before(start) {
		return cfg.FallbackDays, startPtr
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > cfg.MaxDays {
		days = cfg.MaxDays
	}
	return days, startPtr
}

func emptyDays(numDays int, start *time.Time) []types.DayItinerary {
	days := make([]types.DayItinerary, numDays)
	for i := range days {
		days[i] = types.DayItinerary{
			Day:             i + 1,
			Activities:      []types.ScheduledActivity{},
			Recommendations: []types.PlaceRecommendation{},
		}
		if start != nil {
			days[i].Date = start.AddDate(0, 0, i).Format(dateLayout)
		}
	}
	return days
}

// addTravelSegments splices a travel activity before every activity whose place
// is away from the last located place. Meals and rests have no location and are
// skipped over.
func addTravelSegments(acts []types.ScheduledActivity) []types.ScheduledActivity {
	out := make([]types.ScheduledActivity, 0, len(acts)*2)
	var last *types.Coords
	for _, act := range acts {
		here := act.Place.EffectiveCoordinates()
		if here != nil && last != nil && len(out) > 0 {
			hop := geo.TravelTime(*last, *here, "")
			if hop.Duration > 0 {
				prevEnd := out[len(out)-1].EndMinute
				info := hop
				travel := types.ScheduledActivity{
					ID:             uuid.NewString(),
					Place:          act.Place,
					Day:            act.Day,
					Type:           types.ActivityTravel,
					DurationMin:    hop.Duration,
					TravelFromPrev: &info,
					Notes:          []string{fmt.Sprintf("%.1f km by %s", hop.Distance, hop.Mode)},
				}
				setWindow(&travel, prevEnd, prevEnd+hop.Duration)
				out = append(out, travel)
				arrival := hop
				act.TravelFromPrev = &arrival
			}
		}
		out = append(out, act)
		if here != nil {
			last = here
		}
	}
	shiftOverlaps(out)
	return out
}

func computeDayTotals(day *types.DayItinerary) {
	var fatigue, cost, distance float64
	for _, a := range day.Activities {
		fatigue += a.FatigueImpact
		if a.EstimatedCost != nil {
			cost += *a.EstimatedCost
		}
		if a.Type == types.ActivityTravel && a.TravelFromPrev != nil {
			distance += a.TravelFromPrev.Distance
		}
	}
	day.TotalFatigue = round2(fatigue)
	day.TotalCost = round2(cost)
	day.TravelDistance = round2(distance)
}

// isMealVisit reports whether a restaurant visit was scheduled to cover a meal.
func isMealVisit(a types.ScheduledActivity) bool {
	return a.Type == types.ActivityVisit && a.Category == types.CategoryRestaurant &&
		(slices.Contains(a.Notes, "Lunch") || slices.Contains(a.Notes, "Dinner"))
}

func countType(acts []types.ScheduledActivity, kind types.ActivityType) int {
	n := 0
	for _, a := range acts {
		if a.Type == kind {
			n++
		}
	}
	return n
}

// routePolyline concatenates the coordinates of every stay and visit in day and
// visit order.
func routePolyline(days []types.DayItinerary) []types.Coords {
	route := []types.Coords{}
	for _, d := range days {
		for _, a := range d.Activities {
			if a.Type != types.ActivityVisit && a.Type != types.ActivityStay {
				continue
			}
			if c := a.Place.EffectiveCoordinates(); c != nil {
				route = append(route, *c)
			}
		}
	}
	return route
}

// coveredCategories is the set of categories visited or stayed at.
func coveredCategories(days []types.DayItinerary) map[types.Category]bool {
	covered := map[types.Category]bool{}
	for _, d := range days {
		for _, a := range d.Activities {
			if a.Type == types.ActivityVisit || a.Type == types.ActivityStay {
				covered[coveredCategory(a.Category)] = true
			}
		}
	}
	return covered
}

func missingCategories(cfg Config, covered map[types.Category]bool) []types.Category {
	missing := []types.Category{}
	for _, c := range cfg.ExpectedCategories {
		if !covered[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func buildSummary(cfg Config, days []types.DayItinerary, currency string) types.ItinerarySummary {
	covered := coveredCategories(days)
	summary := types.ItinerarySummary{
		TotalDays:         len(days),
		Currency:          currency,
		CategoriesCovered: []types.Category{},
		MissingCategories: missingCategories(cfg, covered),
	}
	for _, c := range types.AllCategories {
		if covered[c] {
			summary.CategoriesCovered = append(summary.CategoriesCovered, c)
		}
	}
	for _, d := range days {
		summary.TotalActivities += len(d.Activities)
		summary.PlacesVisited += countType(d.Activities, types.ActivityVisit)
		summary.MealsPlanned += countType(d.Activities, types.ActivityMeal)
		summary.RestBreaks += countType(d.Activities, types.ActivityRest)
		summary.TotalDistanceKm += d.TravelDistance
		summary.TotalFatigue += d.TotalFatigue
		summary.TotalCost += d.TotalCost
		for _, a := range d.Activities {
			if isMealVisit(a) {
				summary.MealsPlanned++
			}
		}
	}
	summary.TotalDistanceKm = round2(summary.TotalDistanceKm)
	summary.TotalFatigue = round2(summary.TotalFatigue)
	summary.TotalCost = round2(summary.TotalCost)
	if len(days) > 0 {
		summary.AverageFatigue = round2(summary.TotalFatigue / float64(len(days)))
	}
	return summary
}

func currencyFor(cfg Config, b *types.Budget) string {
	if b != nil && b.Currency != "" {
		return b.Currency
	}
	return cfg.DefaultCurrency
}

func defaultTitle(it types.GeneratedItinerary) string {
	name := "Trip"
	if it.Region != "" {
		name = it.Region + " trip"
	}
	if len(it.Days) > 0 && it.Days[0].Date != "" {
		return fmt.Sprintf("%s from %s (%d days)", name, it.Days[0].Date, len(it.Days))
	}
	return fmt.Sprintf("%s (%d days)", name, len(it.Days))
}

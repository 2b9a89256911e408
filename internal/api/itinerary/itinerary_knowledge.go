package itinerary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

var (
	hoursPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-|to|–)?\s*(\d+(?:\.\d+)?)?\s*(h|hr|hrs|hour|hours)\b`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*(?:-|to|–)?\s*(\d+)?\s*(m|min|mins|minute|minutes)\b`)
	amountPattern  = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

const maxNearbyRestaurants = 3

// MergeKnowledge folds research results into the places and builds the layout
// hints. Places without coordinates take the researched ones as enriched
// coordinates, and places without a category take the researched type.
// Degraded results carry no real knowledge: they are attached for reference
// but never change a category, duration, fee or note.
func MergeKnowledge(places []types.Place, results []types.ResearchResult) ([]types.Place, Hints) {
	byName := make(map[string]types.ResearchResult, len(results))
	for _, r := range results {
		byName[placeKey(r.Knowledge.Name)] = r
	}

	merged := make([]types.Place, len(places))
	hints := make(Hints, len(results))
	for i, p := range places {
		merged[i] = p
		r, ok := byName[placeKey(p.Name)]
		if !ok {
			continue
		}
		k := r.Knowledge
		if r.Degraded() {
			hints[placeKey(p.Name)] = ActivityHint{Knowledge: &k}
			continue
		}
		if p.Coordinates == nil && p.EnrichedCoordinates == nil && k.Coordinates != nil && validCoords(*k.Coordinates) {
			c := *k.Coordinates
			merged[i].EnrichedCoordinates = &c
		}
		if strings.TrimSpace(p.Category) == "" && k.Type != "" {
			merged[i].Category = k.Type
		}
		hints[placeKey(p.Name)] = hintFor(k)
	}
	return merged, hints
}

func hintFor(k types.PlaceKnowledge) ActivityHint {
	knowledge := k
	hint := ActivityHint{
		DurationMin: ParseDuration(k.TypicalDuration),
		EntryFee:    ParseEntryFee(k.EntryFee),
		Knowledge:   &knowledge,
	}
	if k.BestTimeToVisit != "" {
		hint.Notes = append(hint.Notes, "Best time: "+k.BestTimeToVisit)
	}
	if len(k.CrowdPeakHours) > 0 {
		hours := make([]string, len(k.CrowdPeakHours))
		for i, h := range k.CrowdPeakHours {
			hours[i] = fmt.Sprintf("%02d:00", h)
		}
		hint.Notes = append(hint.Notes, "Crowded around "+strings.Join(hours, ", "))
	}
	if k.OpeningHours != "" {
		hint.Notes = append(hint.Notes, "Open "+k.OpeningHours)
	}
	return hint
}

// ParseDuration reads free text such as "2-3 hours", "45 min" or "1.5 hrs" and
// returns whole minutes, taking the midpoint of a range. Zero means unknown.
func ParseDuration(text string) int {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0
	}
	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		return int(midpoint(m[1], m[2]) * 60)
	}
	if m := minutesPattern.FindStringSubmatch(text); m != nil {
		return int(midpoint(m[1], m[2]))
	}
	return 0
}

func midpoint(lo, hi string) float64 {
	a, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return 0
	}
	b, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return a
	}
	return (a + b) / 2
}

// ParseEntryFee returns the first amount in text, zero for "free", and nil
// when the fee is unknown.
func ParseEntryFee(text string) *float64 {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	if strings.Contains(text, "free") || strings.Contains(text, "no entry fee") {
		zero := 0.0
		return &zero
	}
	raw := amountPattern.FindString(text)
	if raw == "" {
		return nil
	}
	fee, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || fee < 0 {
		return nil
	}
	return &fee
}

// annotateMeals suggests restaurants near the preceding visit for generic meals.
func annotateMeals(days []types.DayItinerary) {
	for d := range days {
		var nearby []string
		for i := range days[d].Activities {
			act := &days[d].Activities[i]
			switch act.Type {
			case types.ActivityVisit, types.ActivityStay:
				if act.Knowledge != nil && len(act.Knowledge.NearbyRestaurants) > 0 {
					nearby = act.Knowledge.NearbyRestaurants
				}
			case types.ActivityMeal:
				if len(nearby) == 0 {
					continue
				}
				n := min(len(nearby), maxNearbyRestaurants)
				act.Notes = append(act.Notes, "Nearby: "+strings.Join(nearby[:n], ", "))
			}
		}
	}
}

// researchCounts tallies how many places were researched and how many of those
// fell back to a low-confidence record.
func researchCounts(results []types.ResearchResult) (researched, degraded int) {
	for _, r := range results {
		researched++
		if r.Degraded() {
			degraded++
		}
	}
	return researched, degraded
}

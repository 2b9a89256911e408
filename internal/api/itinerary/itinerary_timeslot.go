package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const minutesPerDay = 24 * 60

// ActivityHint carries research results into the layout for one place.
type ActivityHint struct {
	DurationMin int
	Notes       []string
	EntryFee    *float64
	Knowledge   *types.PlaceKnowledge
}

// Hints are keyed by placeKey of the place name.
type Hints map[string]ActivityHint

func (h Hints) lookup(p types.Place) (ActivityHint, bool) {
	if h == nil {
		return ActivityHint{}, false
	}
	hint, ok := h[placeKey(p.Name)]
	return hint, ok
}

func placeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type meal struct {
	name   string
	at     int
	served bool
}

type dayLayout struct {
	cfg        Config
	day        int
	clock      int
	hints      Hints
	meals      []*meal
	activities []types.ScheduledActivity
}

// AssignTimeSlots lays one day's places out from the configured day start.
// Lodging comes first and nightlife last. Restaurants are held back for lunch
// and dinner; when the clock reaches a meal time with no restaurant left a
// generic meal activity is inserted instead. Remaining meals are served at their
// meal time after the last visit. Windows never overlap.
func (s *Scheduler) AssignTimeSlots(places []types.Place, day int, hints Hints) []types.ScheduledActivity {
	if len(places) == 0 {
		return []types.ScheduledActivity{}
	}

	var stays, visits, restaurants, nightlife []types.Place
	for _, p := range places {
		switch Classify(p) {
		case types.CategoryAccommodation:
			stays = append(stays, p)
		case types.CategoryRestaurant:
			restaurants = append(restaurants, p)
		case types.CategoryNightlife:
			nightlife = append(nightlife, p)
		default:
			visits = append(visits, p)
		}
	}

	start, _ := parseClock(s.cfg.DayStart)
	lunch, _ := parseClock(s.cfg.LunchTime)
	dinner, _ := parseClock(s.cfg.DinnerTime)
	l := &dayLayout{
		cfg:   s.cfg,
		day:   day,
		clock: start,
		hints: hints,
		meals: []*meal{{name: "Lunch", at: lunch}, {name: "Dinner", at: dinner}},
	}

	for _, p := range stays {
		l.add(p, types.CategoryAccommodation, types.ActivityStay, l.clock)
	}
	for _, p := range visits {
		restaurants = l.serveDueMeals(restaurants)
		l.add(p, Classify(p), types.ActivityVisit, l.clock)
	}
	for _, m := range l.meals {
		if !m.served {
			restaurants = l.serve(m, max(l.clock, m.at), restaurants)
		}
	}
	for _, p := range restaurants {
		l.add(p, types.CategoryRestaurant, types.ActivityVisit, l.clock)
	}
	for _, p := range nightlife {
		l.add(p, types.CategoryNightlife, types.ActivityVisit, l.clock)
	}
	return l.activities
}

func (l *dayLayout) serveDueMeals(restaurants []types.Place) []types.Place {
	for _, m := range l.meals {
		if !m.served && l.clock >= m.at {
			restaurants = l.serve(m, l.clock, restaurants)
		}
	}
	return restaurants
}

func (l *dayLayout) serve(m *meal, at int, restaurants []types.Place) []types.Place {
	m.served = true
	if len(restaurants) > 0 {
		act := l.add(restaurants[0], types.CategoryRestaurant, types.ActivityVisit, at)
		act.Notes = append(act.Notes, m.name)
		return restaurants[1:]
	}
	act := l.add(types.Place{Name: m.name}, types.CategoryRestaurant, types.ActivityMeal, at)
	act.DurationMin = l.cfg.MealDuration
	setWindow(act, at, at+l.cfg.MealDuration)
	l.clock = act.EndMinute
	return restaurants
}

func (l *dayLayout) add(p types.Place, cat types.Category, kind types.ActivityType, at int) *types.ScheduledActivity {
	duration := l.cfg.duration(cat)
	act := types.ScheduledActivity{
		ID:       uuid.NewString(),
		Place:    p,
		Day:      l.day,
		Type:     kind,
		Category: cat,
	}
	if hint, ok := l.hints.lookup(p); ok && kind != types.ActivityMeal {
		if hint.DurationMin > 0 {
			duration = hint.DurationMin
		}
		act.Notes = append(act.Notes, hint.Notes...)
		act.Knowledge = hint.Knowledge
	}
	act.DurationMin = duration
	setWindow(&act, at, at+duration)
	l.activities = append(l.activities, act)
	l.clock = act.EndMinute
	return &l.activities[len(l.activities)-1]
}

func setWindow(act *types.ScheduledActivity, start, end int) {
	act.StartMinute = start
	act.EndMinute = end
	act.StartTime = formatClock(start)
	act.EndTime = formatClock(end)
	act.TimeSlot = slotFor(start)
}

// shiftOverlaps pushes every activity that starts before its predecessor ends
// to the predecessor's end, keeping its duration. Gaps are left alone.
func shiftOverlaps(acts []types.ScheduledActivity) {
	for i := 1; i < len(acts); i++ {
		if acts[i].StartMinute < acts[i-1].EndMinute {
			d := acts[i].EndMinute - acts[i].StartMinute
			setWindow(&acts[i], acts[i-1].EndMinute, acts[i-1].EndMinute+d)
		}
	}
}

func slotFor(minute int) types.TimeSlot {
	m := ((minute % minutesPerDay) + minutesPerDay) % minutesPerDay
	switch {
	case m < 12*60:
		return types.SlotMorning
	case m < 17*60:
		return types.SlotAfternoon
	case m < 21*60:
		return types.SlotEvening
	default:
		return types.SlotNight
	}
}

func parseClock(hhmm string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minute int) string {
	m := ((minute % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutesToTime adds minutes to an HH:MM clock time, wrapping around midnight
// in either direction. Unparseable input is returned unchanged.
func AddMinutesToTime(hhmm string, minutes int) string {
	start, err := parseClock(hhmm)
	if err != nil {
		return hhmm
	}
	return formatClock(start + minutes)
}

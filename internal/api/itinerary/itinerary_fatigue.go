package itinerary

import (
	"math"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const varianceEpsilon = 1e-9

// ApplyFatigueValues sets FatigueImpact on every activity. Visits cost the
// category's hourly base scaled by duration, travel costs a fixed amount per
// started segment, meals a flat amount. Stays and rests are free.
func (s *Scheduler) ApplyFatigueValues(acts []types.ScheduledActivity) {
	for i := range acts {
		acts[i].FatigueImpact = s.fatigueFor(acts[i])
	}
}

func (s *Scheduler) fatigueFor(act types.ScheduledActivity) float64 {
	switch act.Type {
	case types.ActivityVisit:
		return round2(s.cfg.BaseFatigue[act.Category] * float64(act.DurationMin) / 60)
	case types.ActivityTravel:
		segments := math.Ceil(float64(act.DurationMin) / float64(s.cfg.TravelSegmentMinutes))
		return round2(segments * s.cfg.TravelFatiguePerSegment)
	case types.ActivityMeal:
		return s.cfg.MealFatigue
	default:
		return 0
	}
}

// InsertRestBreaks walks the day accumulating fatigue and splices a rest after
// the activity that pushes the running total past the threshold, then resets
// the total. No rest is placed after the last activity, so none can precede the
// first either. Later activities shift to keep windows apart.
func (s *Scheduler) InsertRestBreaks(acts []types.ScheduledActivity) []types.ScheduledActivity {
	out := make([]types.ScheduledActivity, 0, len(acts)+2)
	var acc float64
	for i, act := range acts {
		out = append(out, act)
		acc += act.FatigueImpact
		if acc <= s.cfg.RestThreshold || i == len(acts)-1 || act.Type == types.ActivityRest {
			continue
		}
		rest := types.ScheduledActivity{
			ID:          uuid.NewString(),
			Place:       types.Place{Name: "Rest break"},
			Day:         act.Day,
			Type:        types.ActivityRest,
			DurationMin: s.cfg.RestDuration,
			Notes:       []string{"Take a break before continuing"},
		}
		setWindow(&rest, act.EndMinute, act.EndMinute+s.cfg.RestDuration)
		out = append(out, rest)
		acc = 0
	}
	shiftOverlaps(out)
	return out
}

// planDay runs the single-day stages on places that are already in visit order.
func (s *Scheduler) planDay(places []types.Place, day int, hints Hints) []types.ScheduledActivity {
	acts := s.AssignTimeSlots(places, day, hints)
	acts = addTravelSegments(acts)
	s.ApplyFatigueValues(acts)
	return s.InsertRestBreaks(acts)
}

// BalanceFatigueAcrossDays is a local, best-effort rebalance. While the
// population variance of day totals is above the configured threshold it moves
// one boundary visit of the most tired day into a lighter neighbour (the last
// visit forward, or the first visit back) and re-lays both days. A move is kept
// only if it strictly lowers the variance, so a balanced plan comes back
// unchanged and repeated calls are idempotent.
func (s *Scheduler) BalanceFatigueAcrossDays(days []types.DayItinerary, hints Hints) []types.DayItinerary {
	if len(days) < 2 {
		return days
	}
	maxMoves := 0
	for _, d := range days {
		maxMoves += countType(d.Activities, types.ActivityVisit)
	}

	current := days
	for move := 0; move < maxMoves; move++ {
		v := variance(dayFatigue(current))
		if v <= s.cfg.BalanceVariance {
			break
		}
		next, ok := s.improve(current, hints, v)
		if !ok {
			break
		}
		current = next
	}
	return current
}

func (s *Scheduler) improve(days []types.DayItinerary, hints Hints, v float64) ([]types.DayItinerary, bool) {
	totals := dayFatigue(days)
	heavy := 0
	for i, t := range totals {
		if t > totals[heavy] {
			heavy = i
		}
	}

	type candidate struct {
		to   int
		last bool
	}
	var candidates []candidate
	if heavy+1 < len(days) && totals[heavy+1] < totals[heavy] {
		candidates = append(candidates, candidate{to: heavy + 1, last: true})
	}
	if heavy > 0 && totals[heavy-1] < totals[heavy] {
		c := candidate{to: heavy - 1, last: false}
		if len(candidates) == 1 && totals[heavy-1] < totals[heavy+1] {
			candidates = append([]candidate{c}, candidates...)
		} else {
			candidates = append(candidates, c)
		}
	}

	for _, c := range candidates {
		next, ok := s.moveVisit(days, heavy, c.to, c.last, hints)
		if !ok {
			continue
		}
		if variance(dayFatigue(next)) < v-varianceEpsilon {
			return next, true
		}
	}
	return days, false
}

func (s *Scheduler) moveVisit(days []types.DayItinerary, from, to int, last bool, hints Hints) ([]types.DayItinerary, bool) {
	fromStays, fromVisits := scheduledPlaces(days[from].Activities)
	if len(fromVisits) == 0 {
		return nil, false
	}
	toStays, toVisits := scheduledPlaces(days[to].Activities)

	var moved types.Place
	if last {
		moved = fromVisits[len(fromVisits)-1]
		fromVisits = fromVisits[:len(fromVisits)-1]
		toVisits = append([]types.Place{moved}, toVisits...)
	} else {
		moved = fromVisits[0]
		fromVisits = fromVisits[1:]
		toVisits = append(toVisits, moved)
	}
	if len(toStays) == 0 {
		toStays = fromStays
	}

	next := make([]types.DayItinerary, len(days))
	copy(next, days)
	next[from] = s.relayDay(days[from], fromStays, fromVisits, hints)
	next[to] = s.relayDay(days[to], toStays, toVisits, hints)
	return next, true
}

func (s *Scheduler) relayDay(day types.DayItinerary, stays, visits []types.Place, hints Hints) types.DayItinerary {
	if len(visits) == 0 {
		// Lodging alone is not a day plan.
		stays = nil
	}
	places := make([]types.Place, 0, len(stays)+len(visits))
	places = append(places, stays...)
	places = append(places, visits...)
	day.Activities = s.planDay(places, day.Day, hints)
	computeDayTotals(&day)
	return day
}

// AdjustFirstDayFatigue scales day 1 by the arrival multiplier. It runs once per
// itinerary; the ArrivalAdjusted flag makes further calls no-ops.
func (s *Scheduler) AdjustFirstDayFatigue(days []types.DayItinerary) {
	if len(days) == 0 || days[0].ArrivalAdjusted {
		return
	}
	for i := range days[0].Activities {
		days[0].Activities[i].FatigueImpact = round2(days[0].Activities[i].FatigueImpact * s.cfg.ArrivalMultiplier)
	}
	days[0].ArrivalAdjusted = true
	computeDayTotals(&days[0])
}

// scheduledPlaces returns the lodging and visited places of a day in order.
func scheduledPlaces(acts []types.ScheduledActivity) (stays, visits []types.Place) {
	for _, a := range acts {
		switch a.Type {
		case types.ActivityStay:
			stays = append(stays, a.Place)
		case types.ActivityVisit:
			visits = append(visits, a.Place)
		}
	}
	return stays, visits
}

func dayFatigue(days []types.DayItinerary) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.TotalFatigue
	}
	return out
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var v float64
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return v / float64(len(xs))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

package itinerary

import (
	"math"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// EffectiveBudget resolves the trip total. A per-person amount is multiplied by
// the number of members (at least one) when no total is given. It returns nil
// when there is no usable budget.
func EffectiveBudget(b *types.Budget, members []string) *types.Budget {
	if b == nil {
		return nil
	}
	out := *b
	if out.Total <= 0 && out.PerPerson > 0 {
		out.Total = out.PerPerson * float64(max(1, len(members)))
	}
	if out.Total <= 0 || math.IsNaN(out.Total) || math.IsInf(out.Total, 0) {
		return nil
	}
	return &out
}

// EstimateActivityCost returns the expected spend for one activity. Travel and
// rest are free. With a budget each category receives a fixed share of the
// daily budget and every meal a flat share; without one the configured default
// amounts apply. The result is never negative.
func (s *Scheduler) EstimateActivityCost(act types.ScheduledActivity, budget *types.Budget, numDays int) float64 {
	if act.Type == types.ActivityTravel || act.Type == types.ActivityRest {
		return 0
	}
	cat := act.Category
	if act.Type == types.ActivityStay {
		cat = types.CategoryAccommodation
	}

	var cost float64
	if budget != nil && budget.Total > 0 {
		daily := budget.Total / float64(max(1, numDays))
		if act.Type == types.ActivityMeal {
			cost = daily * s.cfg.MealBudgetRatio
		} else {
			cost = daily * s.cfg.BudgetRatios[cat]
		}
	} else if act.Type == types.ActivityMeal {
		cost = s.cfg.DefaultMealCost
	} else {
		cost = s.cfg.DefaultCosts[cat]
	}

	if cost < 0 || math.IsNaN(cost) {
		return 0
	}
	return round2(cost)
}

// applyCosts prices every activity of every day and refreshes the day totals.
// A numeric entry fee from research replaces the estimate for that visit.
func (s *Scheduler) applyCosts(days []types.DayItinerary, budget *types.Budget, hints Hints) {
	for d := range days {
		for i := range days[d].Activities {
			act := &days[d].Activities[i]
			cost := s.EstimateActivityCost(*act, budget, len(days))
			if act.Type == types.ActivityVisit {
				if hint, ok := hints.lookup(act.Place); ok && hint.EntryFee != nil && *hint.EntryFee >= 0 {
					cost = *hint.EntryFee
				}
			}
			act.EstimatedCost = &cost
		}
		computeDayTotals(&days[d])
	}
}

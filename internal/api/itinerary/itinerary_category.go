package itinerary

import (
	"strings"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

type categoryRule struct {
	category types.Category
	keywords []string
}

// Rules are evaluated in order and the first match wins, so the more specific
// kinds (lodging, beaches, forts) come before the generic ones.
var categoryRules = []categoryRule{
	{types.CategoryAccommodation, []string{"hotel", "resort", "hostel", "villa", "homestay", "guest house", "guesthouse", "inn", "lodge", "airbnb", "accommodation", "stay", "bnb", "motel"}},
	{types.CategoryBeach, []string{"beach", "shore", "cove", "bay", "seaside", "praia"}},
	{types.CategoryFort, []string{"fort", "fortress", "citadel", "castle", "palace"}},
	{types.CategoryNightlife, []string{"club", "nightclub", "pub", "bar", "lounge", "disco", "casino", "nightlife", "party", "shack"}},
	{types.CategoryRestaurant, []string{"restaurant", "cafe", "café", "bistro", "diner", "eatery", "bakery", "kitchen", "dhaba", "food", "brunch", "dining", "grill", "pizzeria", "tavern"}},
	{types.CategoryLandmark, []string{"church", "temple", "basilica", "cathedral", "chapel", "mosque", "museum", "monument", "landmark", "memorial", "ruins", "heritage", "gallery", "statue", "tower", "shrine"}},
	{types.CategoryActivity, []string{"trek", "hike", "tour", "cruise", "diving", "snorkel", "kayak", "surf", "parasail", "rafting", "safari", "waterfall", "falls", "park", "spa", "market", "zoo", "adventure", "activity", "class", "sanctuary", "wildlife"}},
}

// Classify maps a place to a category from its declared category text and name.
// The declared category is tried first; places that match no rule are
// destinations.
func Classify(p types.Place) types.Category {
	if c, ok := parseCategory(p.Category); ok {
		return c
	}
	for _, text := range []string{p.Category, p.Name} {
		if c, ok := matchRules(text); ok {
			return c
		}
	}
	return types.CategoryDestination
}

func parseCategory(s string) (types.Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range types.AllCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func matchRules(text string) (types.Category, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", false
	}
	words := tokenize(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(text, kw) {
					return rule.category, true
				}
				continue
			}
			if _, ok := words[kw]; ok {
				return rule.category, true
			}
		}
	}
	return "", false
}

func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		words[f] = struct{}{}
		// plural forms ("falls" is kept as its own keyword)
		if len(f) > 3 && strings.HasSuffix(f, "s") {
			words[strings.TrimSuffix(f, "s")] = struct{}{}
		}
	}
	return words
}

// isLodging reports whether p should anchor every day.
func isLodging(p types.Place) bool {
	return Classify(p) == types.CategoryAccommodation
}

// coveredCategory folds categories that satisfy the same expectation.
func coveredCategory(c types.Category) types.Category {
	if c == types.CategoryFort {
		return types.CategoryLandmark
	}
	return c
}

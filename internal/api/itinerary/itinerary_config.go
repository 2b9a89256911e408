package itinerary

import (
	"errors"
	"fmt"

	"github.com/FACorreiaa/go-itinerary-engine/config"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// Config holds the scheduling tunables. All of them are product defaults, not
// algorithmic invariants, and can be overridden from the scheduling section of
// config.yml.
type Config struct {
	DayStart   string // HH:MM
	LunchTime  string
	DinnerTime string

	// Minutes spent at a place of each category.
	Durations    map[types.Category]int
	MealDuration int

	// Fatigue per hour of visit, by category.
	BaseFatigue             map[types.Category]float64
	MealFatigue             float64
	TravelFatiguePerSegment float64
	TravelSegmentMinutes    int
	RestThreshold           float64
	RestDuration            int
	BalanceVariance         float64
	ArrivalMultiplier       float64

	BudgetRatios    map[types.Category]float64
	MealBudgetRatio float64
	DefaultCosts    map[types.Category]float64
	DefaultMealCost float64
	DefaultCurrency string

	ExpectedCategories     []types.Category
	RecommendationRadiusKm float64

	FallbackDays int
	MaxDays      int
	// Sets of at most EvenSplitFactor*numDays places are split evenly instead of clustered.
	EvenSplitFactor int
}

func DefaultConfig() Config {
	return Config{
		DayStart:   "09:00",
		LunchTime:  "12:30",
		DinnerTime: "19:00",
		Durations: map[types.Category]int{
			types.CategoryAccommodation: 30,
			types.CategoryBeach:         180,
			types.CategoryFort:          120,
			types.CategoryLandmark:      90,
			types.CategoryRestaurant:    60,
			types.CategoryActivity:      120,
			types.CategoryNightlife:     120,
			types.CategoryDestination:   90,
		},
		MealDuration: 60,
		BaseFatigue: map[types.Category]float64{
			types.CategoryAccommodation: 0,
			types.CategoryBeach:         1.5,
			types.CategoryFort:          2.0,
			types.CategoryLandmark:      1.5,
			types.CategoryRestaurant:    0.5,
			types.CategoryActivity:      2.5,
			types.CategoryNightlife:     2.0,
			types.CategoryDestination:   1.5,
		},
		MealFatigue:             0.5,
		TravelFatiguePerSegment: 1.0,
		TravelSegmentMinutes:    30,
		RestThreshold:           8.0,
		RestDuration:            30,
		BalanceVariance:         9.0,
		ArrivalMultiplier:       1.2,
		BudgetRatios: map[types.Category]float64{
			types.CategoryAccommodation: 0.35,
			types.CategoryRestaurant:    0.10,
			types.CategoryActivity:      0.20,
			types.CategoryNightlife:     0.15,
			types.CategoryLandmark:      0.05,
			types.CategoryFort:          0.05,
			types.CategoryDestination:   0.02,
			types.CategoryBeach:         0,
		},
		MealBudgetRatio: 0.10,
		DefaultCosts: map[types.Category]float64{
			types.CategoryAccommodation: 2500,
			types.CategoryRestaurant:    600,
			types.CategoryActivity:      1500,
			types.CategoryNightlife:     1200,
			types.CategoryLandmark:      100,
			types.CategoryFort:          100,
			types.CategoryDestination:   50,
			types.CategoryBeach:         0,
		},
		DefaultMealCost: 400,
		DefaultCurrency: "INR",
		ExpectedCategories: []types.Category{
			types.CategoryAccommodation,
			types.CategoryRestaurant,
			types.CategoryLandmark,
			types.CategoryActivity,
			types.CategoryNightlife,
		},
		RecommendationRadiusKm: 3,
		FallbackDays:           3,
		MaxDays:                30,
		EvenSplitFactor:        2,
	}
}

var ErrInvalidConfig = errors.New("invalid scheduling config")

// Validate rejects tunables that would break the layout invariants, such as
// zero-length activities or clock strings that do not parse.
func (c Config) Validate() error {
	for _, hhmm := range []string{c.DayStart, c.LunchTime, c.DinnerTime} {
		if _, err := parseClock(hhmm); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	for cat, d := range c.Durations {
		if d <= 0 {
			return fmt.Errorf("%w: duration for %s must be positive, got %d", ErrInvalidConfig, cat, d)
		}
	}
	if c.MealDuration <= 0 || c.RestDuration <= 0 {
		return fmt.Errorf("%w: meal and rest durations must be positive", ErrInvalidConfig)
	}
	if c.TravelSegmentMinutes <= 0 {
		return fmt.Errorf("%w: travel segment minutes must be positive", ErrInvalidConfig)
	}
	if c.RestThreshold <= 0 {
		return fmt.Errorf("%w: rest threshold must be positive", ErrInvalidConfig)
	}
	for cat, f := range c.BaseFatigue {
		if f < 0 {
			return fmt.Errorf("%w: fatigue for %s is negative", ErrInvalidConfig, cat)
		}
	}
	for cat, r := range c.BudgetRatios {
		if r < 0 {
			return fmt.Errorf("%w: budget ratio for %s is negative", ErrInvalidConfig, cat)
		}
	}
	for cat, v := range c.DefaultCosts {
		if v < 0 {
			return fmt.Errorf("%w: default cost for %s is negative", ErrInvalidConfig, cat)
		}
	}
	if c.FallbackDays <= 0 || c.MaxDays <= 0 {
		return fmt.Errorf("%w: fallback and max days must be positive", ErrInvalidConfig)
	}
	return nil
}

// Scheduler runs the per-day layout stages with one set of tunables. It holds
// no state between calls.
type Scheduler struct {
	cfg Config
}

func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

func (s *Scheduler) Config() Config { return s.cfg }

func (c Config) duration(cat types.Category) int {
	if d, ok := c.Durations[cat]; ok && d > 0 {
		return d
	}
	if d := c.Durations[types.CategoryDestination]; d > 0 {
		return d
	}
	return 90
}

// ConfigFromSettings overlays the scheduling section of config.yml on the
// defaults. Zero or negative durations are ignored so a bad override cannot
// produce empty windows. Unknown category keys are an error.
func ConfigFromSettings(settings config.SchedulingConfig) (Config, error) {
	cfg := DefaultConfig()
	overrideString(&cfg.DayStart, settings.DayStart)
	overrideString(&cfg.LunchTime, settings.LunchTime)
	overrideString(&cfg.DinnerTime, settings.DinnerTime)
	overrideString(&cfg.DefaultCurrency, settings.DefaultCurrency)
	overrideInt(&cfg.MealDuration, settings.MealDuration)
	overrideInt(&cfg.RestDuration, settings.RestDuration)
	overrideInt(&cfg.FallbackDays, settings.FallbackDays)
	overrideInt(&cfg.MaxDays, settings.MaxDays)
	overrideFloat(&cfg.RestThreshold, settings.RestThreshold)
	overrideFloat(&cfg.BalanceVariance, settings.BalanceVariance)
	overrideFloat(&cfg.ArrivalMultiplier, settings.ArrivalMultiplier)
	overrideFloat(&cfg.RecommendationRadiusKm, settings.RecommendationRadiusKm)

	for key, d := range settings.Durations {
		cat, ok := parseCategory(key)
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown category %q in durations", ErrInvalidConfig, key)
		}
		if d > 0 {
			cfg.Durations[cat] = d
		}
	}
	for _, m := range []struct {
		name string
		src  map[string]float64
		dst  map[types.Category]float64
	}{
		{"baseFatigue", settings.BaseFatigue, cfg.BaseFatigue},
		{"budgetRatios", settings.BudgetRatios, cfg.BudgetRatios},
		{"defaultCosts", settings.DefaultCosts, cfg.DefaultCosts},
	} {
		for key, v := range m.src {
			cat, ok := parseCategory(key)
			if !ok {
				return Config{}, fmt.Errorf("%w: unknown category %q in %s", ErrInvalidConfig, key, m.name)
			}
			if v >= 0 {
				m.dst[cat] = v
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func overrideFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

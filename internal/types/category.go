package types

// Category is the closed set of place kinds the scheduler understands.
type Category string

const (
	CategoryAccommodation Category = "accommodation"
	CategoryBeach         Category = "beach"
	CategoryFort          Category = "fort"
	CategoryLandmark      Category = "landmark"
	CategoryRestaurant    Category = "restaurant"
	CategoryActivity      Category = "activity"
	CategoryNightlife     Category = "nightlife"
	CategoryDestination   Category = "destination"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryAccommodation,
	CategoryBeach,
	CategoryFort,
	CategoryLandmark,
	CategoryRestaurant,
	CategoryActivity,
	CategoryNightlife,
	CategoryDestination,
}

type ActivityType string

const (
	ActivityVisit  ActivityType = "visit"
	ActivityTravel ActivityType = "travel"
	ActivityMeal   ActivityType = "meal"
	ActivityRest   ActivityType = "rest"
	// ActivityStay is the lodging anchor opening each day. It is not a visit.
	ActivityStay ActivityType = "stay"
)

type TravelMode string

const (
	ModeWalk TravelMode = "walk"
	ModeBike TravelMode = "bike"
	ModeAuto TravelMode = "auto"
	ModeCar  TravelMode = "car"
)

type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotNight     TimeSlot = "night"
)

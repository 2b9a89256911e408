package research

import (
	"fmt"
	"time"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const (
	FallbackRating     = 4.0
	FallbackConfidence = 0.2
)

// FallbackKnowledge is the minimal record used when a lookup fails. It is never
// cached. Type echoes the caller's category and stays empty without one, so
// classification by name still applies downstream.
func FallbackKnowledge(p types.Place, region string, now time.Time) types.PlaceKnowledge {
	description := fmt.Sprintf("%s is a popular stop worth a visit.", p.Name)
	if region != "" {
		description = fmt.Sprintf("%s is a popular stop in %s worth a visit.", p.Name, region)
	}
	k := types.PlaceKnowledge{
		Name:               p.Name,
		Type:               p.Category,
		Coordinates:        p.EffectiveCoordinates(),
		Description:        description,
		Rating:             FallbackRating,
		OpeningHours:       "Check locally",
		BestTimeToVisit:    "Morning or late afternoon",
		TypicalDuration:    "1-2 hours",
		LastUpdated:        now,
		ResearchConfidence: FallbackConfidence,
	}
	ensureLists(&k)
	return k
}

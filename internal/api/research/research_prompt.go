package research

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const researchSystemPrompt = `You are a meticulous travel researcher. You answer with a single JSON object and nothing else. When you are unsure about a field, leave it empty and lower research_confidence.`

func researchPrompt(p types.Place, region string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research the place %q", p.Name)
	if region != "" {
		fmt.Fprintf(&b, " in %s", region)
	}
	if p.Category != "" {
		fmt.Fprintf(&b, " (listed as %s)", p.Category)
	}
	if c := p.EffectiveCoordinates(); c != nil {
		fmt.Fprintf(&b, " near latitude %.5f, longitude %.5f", c.Lat, c.Lng)
	}
	b.WriteString(".\n\n")
	b.WriteString(`Return JSON with exactly these keys:
{
  "name": "official name",
  "type": "accommodation | beach | fort | landmark | restaurant | activity | nightlife | destination",
  "coordinates": {"lat": 0.0, "lng": 0.0},
  "description": "two or three sentences",
  "rating": 4.5,
  "review_count": 1200,
  "price_level": 2,
  "opening_hours": "09:00-18:00, closed Mondays",
  "best_time_to_visit": "early morning",
  "typical_duration": "2 hours",
  "crowd_peak_hours": [11, 12, 17],
  "nearby_restaurants": ["name"],
  "nearby_attractions": ["name"],
  "entry_fee": "free or an amount with currency",
  "parking_available": true,
  "wheelchair_accessible": false,
  "source_urls": ["https://..."],
  "research_confidence": 0.8
}
price_level runs from 0 (free) to 4 (very expensive). crowd_peak_hours are hours of the day, 0-23. research_confidence is between 0 and 1.`)
	return b.String()
}

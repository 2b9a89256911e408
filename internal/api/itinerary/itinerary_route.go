package itinerary

import (
	"github.com/FACorreiaa/go-itinerary-engine/internal/geo"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

// OptimizeRoute orders one day's places with the nearest-neighbour heuristic.
// The walk starts at the lodging place if there is one, otherwise at places[0],
// and always moves to the closest unvisited place, the first one found winning
// ties. It is deterministic but not an optimal tour: crossings and long closing
// hops are possible. Segment durations assume bike speed.
func OptimizeRoute(places []types.Place) types.OptimizedRoute {
	geocoded := withCoordinates(places)
	if len(geocoded) <= 1 {
		return types.OptimizedRoute{Places: geocoded, Segments: []types.RouteSegment{}}
	}

	start := 0
	for i, p := range geocoded {
		if isLodging(p) {
			start = i
			break
		}
	}

	pool := make([]types.Place, 0, len(geocoded)-1)
	pool = append(pool, geocoded[:start]...)
	pool = append(pool, geocoded[start+1:]...)

	route := types.OptimizedRoute{
		Places:   []types.Place{geocoded[start]},
		Segments: make([]types.RouteSegment, 0, len(pool)),
	}
	current := geocoded[start]
	for len(pool) > 0 {
		idx := nearestIndex(*current.EffectiveCoordinates(), pool)
		next := pool[idx]
		pool = append(pool[:idx:idx], pool[idx+1:]...)

		hop := geo.TravelTime(*current.EffectiveCoordinates(), *next.EffectiveCoordinates(), types.ModeBike)
		route.Segments = append(route.Segments, types.RouteSegment{
			From:     current,
			To:       next,
			Distance: hop.Distance,
			Duration: hop.Duration,
			Mode:     hop.Mode,
		})
		route.TotalDistance += hop.Distance
		route.Places = append(route.Places, next)
		current = next
	}
	return route
}

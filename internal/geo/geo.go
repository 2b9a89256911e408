// Package geo holds the great-circle distance and travel-time model used by the
// scheduler. Everything here is pure; distances are straight-line, not road network.
package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const EarthRadiusKm = 6371.0

// FallbackCenter is used when a centroid is requested for no points (Panaji, Goa).
var FallbackCenter = types.Coords{Lat: 15.4909, Lng: 73.8278}

// Average speeds in km/h.
var modeSpeeds = map[types.TravelMode]float64{
	types.ModeWalk: 5,
	types.ModeBike: 25,
	types.ModeAuto: 30,
	types.ModeCar:  40,
}

// Distance returns the Haversine distance between a and b in kilometers.
func Distance(a, b types.Coords) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	dlat := (b.Lat - a.Lat) * math.Pi / 180
	dlon := (b.Lng - a.Lng) * math.Pi / 180

	x := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	// Guard against rounding pushing x just outside [0,1] for antipodal points.
	x = math.Min(1, math.Max(0, x))
	c := 2 * math.Atan2(math.Sqrt(x), math.Sqrt(1-x))

	return EarthRadiusKm * c
}

// DefaultMode picks a travel mode for a hop of the given length.
func DefaultMode(distanceKm float64) types.TravelMode {
	switch {
	case distanceKm <= 1:
		return types.ModeWalk
	case distanceKm <= 10:
		return types.ModeBike
	default:
		return types.ModeCar
	}
}

// Speed returns the average speed of mode in km/h. Unknown modes travel at car speed.
func Speed(mode types.TravelMode) float64 {
	if s, ok := modeSpeeds[mode]; ok {
		return s
	}
	return modeSpeeds[types.ModeCar]
}

// TravelTime estimates the hop from a to b. An empty mode means DefaultMode.
func TravelTime(a, b types.Coords, mode types.TravelMode) types.TravelInfo {
	d := Distance(a, b)
	if mode == "" {
		mode = DefaultMode(d)
	}
	return types.TravelInfo{
		Distance: d,
		Duration: int(math.Ceil(d / Speed(mode) * 60)),
		Mode:     mode,
	}
}

// Centroid is the arithmetic mean of the points, or FallbackCenter when there are none.
func Centroid(points []types.Coords) types.Coords {
	if len(points) == 0 {
		return FallbackCenter
	}
	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(points))
	return types.Coords{Lat: sumLat / n, Lng: sumLng / n}
}

// Offset returns the point reached by travelling km from c on the given initial bearing
// (degrees clockwise from north).
func Offset(c types.Coords, bearingDeg, km float64) types.Coords {
	p := s2.LatLngFromDegrees(c.Lat, c.Lng)
	bearing := (s1.Angle(bearingDeg) * s1.Degree).Radians()
	angular := km / EarthRadiusKm

	lat1 := p.Lat.Radians()
	lng1 := p.Lng.Radians()
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lng2 := lng1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2))

	out := s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lng2)}.Normalized()
	return types.Coords{Lat: out.Lat.Degrees(), Lng: out.Lng.Degrees()}
}

func MapURL(c types.Coords) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=16/%.6f/%.6f", c.Lat, c.Lng, c.Lat, c.Lng)
}

func GoogleMapsURL(c types.Coords) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f", c.Lat, c.Lng)
}

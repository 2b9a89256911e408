package itinerary

import (
	"errors"
	"math"

	"github.com/FACorreiaa/go-itinerary-engine/internal/geo"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

var ErrInvalidDayCount = errors.New("number of days must be at least 1")

// Cluster partitions places into at most numDays buckets with a greedy
// nearest-neighbour heuristic. The lodging anchor, if any, is removed from the
// pool and prepended to every bucket. Each bucket is seeded with the first
// remaining place in input order and grows by repeatedly taking the closest
// unclustered place to the last one added, ties going to the earlier place.
// The result is not a globally optimal partition and can hold fewer buckets
// than numDays; callers pad the missing days.
//
// Places without effective coordinates are skipped.
func Cluster(places []types.Place, numDays int) ([]types.PlaceCluster, error) {
	if numDays <= 0 {
		return nil, ErrInvalidDayCount
	}
	geocoded := withCoordinates(places)
	if len(geocoded) == 0 {
		return nil, nil
	}
	if len(geocoded) <= numDays {
		return []types.PlaceCluster{newCluster(geocoded)}, nil
	}

	anchor, pool := splitAnchor(geocoded)
	if len(pool) == 0 {
		return []types.PlaceCluster{newCluster([]types.Place{*anchor})}, nil
	}
	perDay := int(math.Ceil(float64(len(pool)) / float64(numDays)))

	clusters := make([]types.PlaceCluster, 0, numDays)
	for len(pool) > 0 && len(clusters) < numDays {
		bucket := []types.Place{pool[0]}
		pool = pool[1:]
		for len(bucket) < perDay && len(pool) > 0 {
			idx := nearestIndex(*bucket[len(bucket)-1].EffectiveCoordinates(), pool)
			bucket = append(bucket, pool[idx])
			pool = append(pool[:idx:idx], pool[idx+1:]...)
		}
		clusters = append(clusters, newCluster(withAnchor(anchor, bucket)))
	}
	return clusters, nil
}

// DistributeEvenly splits places into contiguous chunks whose sizes differ by at
// most one. The non-anchor places are first ordered by a nearest-neighbour walk
// from the anchor (or from the first place) so neighbours land on the same day.
// Empty chunks are dropped.
func DistributeEvenly(places []types.Place, numDays int) ([]types.PlaceCluster, error) {
	if numDays <= 0 {
		return nil, ErrInvalidDayCount
	}
	geocoded := withCoordinates(places)
	if len(geocoded) == 0 {
		return nil, nil
	}

	anchor, rest := splitAnchor(geocoded)
	if len(rest) == 0 {
		return []types.PlaceCluster{newCluster([]types.Place{*anchor})}, nil
	}

	start := *rest[0].EffectiveCoordinates()
	if anchor != nil {
		start = *anchor.EffectiveCoordinates()
	}
	ordered := nearestNeighbourWalk(start, rest)

	base, extra := len(ordered)/numDays, len(ordered)%numDays
	clusters := make([]types.PlaceCluster, 0, numDays)
	offset := 0
	for day := 0; day < numDays; day++ {
		size := base
		if day < extra {
			size++
		}
		if size == 0 {
			break
		}
		chunk := ordered[offset : offset+size]
		offset += size
		clusters = append(clusters, newCluster(withAnchor(anchor, chunk)))
	}
	return clusters, nil
}

func withCoordinates(places []types.Place) []types.Place {
	out := make([]types.Place, 0, len(places))
	for _, p := range places {
		if p.EffectiveCoordinates() != nil {
			out = append(out, p)
		}
	}
	return out
}

// splitAnchor removes the first lodging place from places.
func splitAnchor(places []types.Place) (*types.Place, []types.Place) {
	for i, p := range places {
		if isLodging(p) {
			anchor := p
			rest := make([]types.Place, 0, len(places)-1)
			rest = append(rest, places[:i]...)
			rest = append(rest, places[i+1:]...)
			return &anchor, rest
		}
	}
	out := make([]types.Place, len(places))
	copy(out, places)
	return nil, out
}

func withAnchor(anchor *types.Place, places []types.Place) []types.Place {
	if anchor == nil {
		out := make([]types.Place, len(places))
		copy(out, places)
		return out
	}
	out := make([]types.Place, 0, len(places)+1)
	out = append(out, *anchor)
	return append(out, places...)
}

// nearestIndex returns the index of the candidate closest to from. Ties go to
// the first candidate.
func nearestIndex(from types.Coords, candidates []types.Place) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range candidates {
		d := geo.Distance(from, *c.EffectiveCoordinates())
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func nearestNeighbourWalk(start types.Coords, places []types.Place) []types.Place {
	pool := make([]types.Place, len(places))
	copy(pool, places)
	ordered := make([]types.Place, 0, len(places))
	current := start
	for len(pool) > 0 {
		idx := nearestIndex(current, pool)
		next := pool[idx]
		ordered = append(ordered, next)
		current = *next.EffectiveCoordinates()
		pool = append(pool[:idx:idx], pool[idx+1:]...)
	}
	return ordered
}

func newCluster(places []types.Place) types.PlaceCluster {
	coords := make([]types.Coords, 0, len(places))
	for _, p := range places {
		coords = append(coords, *p.EffectiveCoordinates())
	}
	var total float64
	for i := 1; i < len(coords); i++ {
		total += geo.Distance(coords[i-1], coords[i])
	}
	return types.PlaceCluster{
		Places:        places,
		Centroid:      geo.Centroid(coords),
		TotalDistance: total,
	}
}

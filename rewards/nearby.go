package rewards

import (
	"context"
	"sort"

	"github.com/warp/tourguide/tourguide"
)

// NearbyAttractions returns the NearbyAttractionLimit closest catalog
// attractions to location, however far away they are.
func (e *Engine) NearbyAttractions(ctx context.Context, location tourguide.Coordinate) ([]NearbyAttraction, error) {
	attractions, err := e.catalog.Attractions(ctx)
	if err != nil {
		return nil, tourguide.Upstream("attraction catalog", err)
	}
	return ClosestAttractions(attractions, location, NearbyAttractionLimit), nil
}

// ClosestAttractions sorts attractions by distance from location and keeps
// the first limit. Equal distances keep catalog order.
func ClosestAttractions(attractions []tourguide.Attraction, location tourguide.Coordinate, limit int) []NearbyAttraction {
	ranked := make([]NearbyAttraction, len(attractions))
	for i, a := range attractions {
		ranked[i] = NearbyAttraction{
			Attraction: a,
			Distance:   tourguide.Distance(a.Location, location),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

/*
Package provider holds the simulated upstream services the engine talks to.

PURPOSE:
  The reward engine and tracker depend on interfaces (tourguide/ports.go).
  This package provides stand-ins that behave like the real services:
  latency, random coordinates, random point values. They are used by the
  server in test mode and by performance-style tests.

IMPLEMENTATIONS:
  Catalog:       static in-memory attraction list
  GPS:           random current location per user, optional latency
  RewardCentral: random point values in [1, 1000), optional latency
  CachedOracle:  TTL cache in front of any PointsOracle

SEE ALSO:
  - tourguide/ports.go: Interfaces implemented here
  - store/sqlite/sqlite.go: Persists the default catalog
*/
package provider

import (
	"context"

	"github.com/google/uuid"

	"github.com/warp/tourguide/tourguide"
)

// Catalog is a static AttractionCatalog.
type Catalog struct {
	attractions []tourguide.Attraction
}

var _ tourguide.AttractionCatalog = (*Catalog)(nil)

// NewCatalog copies attractions into a catalog.
func NewCatalog(attractions []tourguide.Attraction) *Catalog {
	return &Catalog{attractions: append([]tourguide.Attraction(nil), attractions...)}
}

// Attractions returns a copy of the catalog in its original order.
func (c *Catalog) Attractions(_ context.Context) ([]tourguide.Attraction, error) {
	out := make([]tourguide.Attraction, len(c.attractions))
	copy(out, c.attractions)
	return out, nil
}

// attractionNamespace derives stable attraction IDs from names.
var attractionNamespace = uuid.MustParse("6f1c3a8e-4f0b-4a53-9a41-2f6f7d7c1e55")

func attraction(name, city, state string, lat, lon float64) tourguide.Attraction {
	return tourguide.Attraction{
		ID:       uuid.NewSHA1(attractionNamespace, []byte(name)),
		Name:     name,
		City:     city,
		State:    state,
		Location: tourguide.NewCoordinate(lat, lon),
	}
}

// DefaultAttractions returns the built-in catalog of 26 attractions.
// IDs are derived from the names so they are stable across restarts.
func DefaultAttractions() []tourguide.Attraction {
	return []tourguide.Attraction{
		attraction("Disneyland", "Anaheim", "CA", 33.817595, -117.922008),
		attraction("Jackson Hole", "Jackson Hole", "WY", 43.582767, -110.821999),
		attraction("Mojave National Preserve", "Kelso", "CA", 35.141689, -115.510399),
		attraction("Joshua Tree National Park", "Joshua Tree National Park", "CA", 33.881866, -115.90065),
		attraction("Buffalo National River", "St Joe", "AR", 35.985512, -92.757652),
		attraction("Hot Springs National Park", "Hot Springs", "AR", 34.52153, -93.042267),
		attraction("Kartchner Caverns State Park", "Benson", "AZ", 31.837551, -110.347382),
		attraction("Legend Valley", "Thornville", "OH", 39.937778, -82.40667),
		attraction("Flowers Bakery of Memphis", "Memphis", "TN", 35.061434, -90.037251),
		attraction("McKinley Tower", "Anchorage", "AK", 61.218887, -149.877502),
		attraction("Flatiron Building", "New York City", "NY", 40.741112, -73.989723),
		attraction("Fallingwater", "Mill Run", "PA", 39.906113, -79.468056),
		attraction("Union Station", "Washington D.C.", "CD", 38.897095, -77.006332),
		attraction("Roger Dean Stadium", "Jupiter", "FL", 26.890959, -80.116577),
		attraction("Texas Memorial Stadium", "Austin", "TX", 30.283682, -97.732536),
		attraction("Bryant-Denny Stadium", "Tuscaloosa", "AL", 33.208973, -87.550438),
		attraction("Tiger Stadium", "Baton Rouge", "LA", 30.412035, -91.183815),
		attraction("Neyland Stadium", "Knoxville", "TN", 35.955013, -83.925011),
		attraction("Kyle Field", "College Station", "TX", 30.61025, -96.339844),
		attraction("San Diego Zoo", "San Diego", "CA", 32.735317, -117.149048),
		attraction("Zoo Tampa at Lowry Park", "Tampa", "FL", 28.012804, -82.469269),
		attraction("Franklin Park Zoo", "Boston", "MA", 42.302601, -71.086731),
		attraction("El Paso Zoo", "El Paso", "TX", 31.769125, -106.44487),
		attraction("Rio Grande Zoo", "Albuquerque", "NM", 35.0796, -106.6695),
		attraction("Cinque Terre", "La Spezia", "Italy", 44.127331, 9.708227),
		attraction("Gateway Arch", "St. Louis", "MO", 38.624691, -90.184776),
	}
}

/*
ports.go - Interfaces to the collaborators around the engine

PURPOSE:
  The reward engine and the tracker never talk to a concrete GPS service,
  points service or database. They depend on these interfaces so tests can
  plug deterministic fakes and production can plug simulated or real ones.

KEY INTERFACES:
  LocationProvider:  current coordinates of a user (may be slow)
  PointsOracle:      point value for an attraction/user pair (may be slow)
  AttractionCatalog: the list of attractions, static for one computation
  UserStore:         name-keyed directory of users
  TripPricer:        trip deals for a user's preferences

IMPLEMENTATIONS:
  - provider/gps.go:           Simulated LocationProvider
  - provider/rewardcentral.go: Simulated PointsOracle
  - provider/catalog.go:       In-memory AttractionCatalog
  - tourguide/store/memory.go: UserStore
  - pricing/pricer.go:         TripPricer
*/
package tourguide

import (
	"context"

	"github.com/google/uuid"
)

// LocationProvider returns a user's current location as a new Visit.
type LocationProvider interface {
	CurrentLocation(ctx context.Context, userID UserID) (Visit, error)
}

// PointsOracle returns the reward points for visiting an attraction.
type PointsOracle interface {
	AttractionRewardPoints(ctx context.Context, attractionID AttractionID, userID UserID) (int, error)
}

// AttractionCatalog lists every known attraction.
type AttractionCatalog interface {
	Attractions(ctx context.Context) ([]Attraction, error)
}

// UserStore is a concurrent-safe directory of users keyed by name.
type UserStore interface {
	// Add inserts u unless its name is already present. Reports whether u was inserted.
	Add(u *User) bool
	// Get returns the user registered under name.
	Get(name string) (*User, bool)
	// All returns a weakly consistent snapshot of every user.
	All() []*User
	// Len returns the number of users.
	Len() int
}

// TripPricer prices trips for a party.
type TripPricer interface {
	Price(ctx context.Context, apiKey string, tripID uuid.UUID, adults, children, nights, rewardPoints int) ([]Provider, error)
}

/*
Package tourguide provides the core value types of the tour guide engine.

PURPOSE:
  Users visit places. Places near a tourist attraction earn reward points.
  This package holds the vocabulary shared by every other package: where
  something is (Coordinate), what can be visited (Attraction), where a user
  was (Visit) and what the user earned (Reward).

KEY CONCEPTS IN THIS FILE (types.go):
  - Coordinate: latitude/longitude pair in decimal degrees
  - Attraction: catalog entry with a stable identifier
  - Visit: timestamped user coordinate, immutable once created
  - Reward: ties one Visit to one Attraction with a point value
  - Provider: a trip deal returned by the pricing collaborator

DESIGN PRINCIPLES:
  1. Immutability: Coordinate, Attraction, Visit and Reward are plain values
  2. Stable identity: rewards are keyed by AttractionID, never by display name
  3. Ownership: the mutable User lives in user.go and guards its own state

SEE ALSO:
  - user.go: User and its per-user locking
  - distance.go: Great-circle distance in statute miles
  - ports.go: Interfaces to the external collaborators
*/
package tourguide

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// COORDINATE
// =============================================================================

// Coordinate is a point on the earth in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate builds a Coordinate.
func NewCoordinate(latitude, longitude float64) Coordinate {
	return Coordinate{Latitude: latitude, Longitude: longitude}
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID = uuid.UUID
type AttractionID = uuid.UUID

// =============================================================================
// ATTRACTION
// =============================================================================

// Attraction is a read-only catalog entry.
type Attraction struct {
	ID       AttractionID `json:"attraction_id"`
	Name     string       `json:"attraction_name"`
	City     string       `json:"city"`
	State    string       `json:"state"`
	Location Coordinate   `json:"location"`
}

// =============================================================================
// VISIT
// =============================================================================

// Visit records where a user was at a point in time.
type Visit struct {
	UserID    UserID     `json:"user_id"`
	Location  Coordinate `json:"location"`
	VisitedAt time.Time  `json:"time_visited"`
}

// =============================================================================
// REWARD
// =============================================================================

// Reward awards points for one Visit near one Attraction.
type Reward struct {
	Visit      Visit      `json:"visited_location"`
	Attraction Attraction `json:"attraction"`
	Points     int        `json:"reward_points"`
}

// =============================================================================
// TRIP DEALS
// =============================================================================

// Provider is a priced trip offer.
type Provider struct {
	TripID uuid.UUID       `json:"trip_id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Preferences holds the trip preferences used when pricing deals.
type Preferences struct {
	AttractionProximity int             `json:"attraction_proximity"`
	Currency            string          `json:"currency"`
	LowerPricePoint     decimal.Decimal `json:"lower_price_point"`
	HighPricePoint      decimal.Decimal `json:"high_price_point"`
	TripDuration        int             `json:"trip_duration"`
	TicketQuantity      int             `json:"ticket_quantity"`
	NumberOfAdults      int             `json:"number_of_adults"`
	NumberOfChildren    int             `json:"number_of_children"`
}

// DefaultPreferences returns the preferences a new user starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		AttractionProximity: 1<<31 - 1,
		Currency:            "USD",
		LowerPricePoint:     decimal.Zero,
		HighPricePoint:      decimal.NewFromInt(1<<31 - 1),
		TripDuration:        1,
		TicketQuantity:      1,
		NumberOfAdults:      1,
		NumberOfChildren:    0,
	}
}

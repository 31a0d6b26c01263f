/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model in package tourguide from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Users:     UserDTO, CreateUserRequest
  Location:  LocationDTO, VisitDTO
  Rewards:   RewardDTO
  Nearby:    NearbyAttractionDTO, NearbyAttractionsResponse
  Trips:     ProviderDTO
  Admin:     ProximityBufferRequest, ProximityBufferDTO, TrackingRunDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/tourguide/service"
	"github.com/warp/tourguide/store/sqlite"
	"github.com/warp/tourguide/tourguide"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID           string `json:"id"`
	Name         string `json:"userName"`
	Phone        string `json:"phoneNumber"`
	Email        string `json:"emailAddress"`
	Visits       int    `json:"visitCount"`
	Rewards      int    `json:"rewardCount"`
	RewardPoints int    `json:"rewardPoints"`
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Name  string `json:"userName"`
	Phone string `json:"phoneNumber"`
	Email string `json:"emailAddress"`
}

// LocationDTO is a latitude/longitude pair.
type LocationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VisitDTO is a user's location at a point in time.
type VisitDTO struct {
	UserID      string      `json:"userId"`
	Location    LocationDTO `json:"location"`
	TimeVisited time.Time   `json:"timeVisited"`
}

// AttractionDTO is a catalog entry.
type AttractionDTO struct {
	ID       string      `json:"attractionId"`
	Name     string      `json:"attractionName"`
	City     string      `json:"city"`
	State    string      `json:"state"`
	Location LocationDTO `json:"location"`
}

// RewardDTO represents an earned reward.
type RewardDTO struct {
	Visit        VisitDTO      `json:"visitedLocation"`
	Attraction   AttractionDTO `json:"attraction"`
	RewardPoints int           `json:"rewardPoints"`
}

// NearbyAttractionDTO is one of the closest attractions to a user.
type NearbyAttractionDTO struct {
	Name         string      `json:"attractionName"`
	Location     LocationDTO `json:"attractionLocation"`
	Distance     float64     `json:"distance"`
	RewardPoints int         `json:"rewardPoints"`
}

// NearbyAttractionsResponse wraps the closest attractions with the user's location.
type NearbyAttractionsResponse struct {
	UserLocation LocationDTO           `json:"userLocation"`
	Attractions  []NearbyAttractionDTO `json:"attractions"`
}

// ProviderDTO is one priced trip offer.
type ProviderDTO struct {
	TripID string          `json:"tripId"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// ProximityBufferRequest sets the reward radius.
type ProximityBufferRequest struct {
	Miles float64 `json:"miles"`
}

// ProximityBufferDTO reports the reward radius.
type ProximityBufferDTO struct {
	Miles float64 `json:"miles"`
}

// TrackingRunDTO represents one tracker cycle.
type TrackingRunDTO struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Users       int        `json:"users"`
	Failures    int        `json:"failures"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// TrackerStatusDTO reports the tracker lifecycle state.
type TrackerStatusDTO struct {
	State string `json:"state"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toUserDTO(u *tourguide.User) UserDTO {
	return UserDTO{
		ID:           u.ID.String(),
		Name:         u.Name,
		Phone:        u.Phone,
		Email:        u.Email,
		Visits:       len(u.Visits()),
		Rewards:      len(u.Rewards()),
		RewardPoints: u.TotalRewardPoints(),
	}
}

func toLocationDTO(c tourguide.Coordinate) LocationDTO {
	return LocationDTO{Latitude: c.Latitude, Longitude: c.Longitude}
}

func toVisitDTO(v tourguide.Visit) VisitDTO {
	return VisitDTO{
		UserID:      v.UserID.String(),
		Location:    toLocationDTO(v.Location),
		TimeVisited: v.VisitedAt,
	}
}

func toAttractionDTO(a tourguide.Attraction) AttractionDTO {
	return AttractionDTO{
		ID:       a.ID.String(),
		Name:     a.Name,
		City:     a.City,
		State:    a.State,
		Location: toLocationDTO(a.Location),
	}
}

func toRewardDTOs(rewards []tourguide.Reward) []RewardDTO {
	out := make([]RewardDTO, len(rewards))
	for i, r := range rewards {
		out[i] = RewardDTO{
			Visit:        toVisitDTO(r.Visit),
			Attraction:   toAttractionDTO(r.Attraction),
			RewardPoints: r.Points,
		}
	}
	return out
}

func toNearbyResponse(n service.Nearby) NearbyAttractionsResponse {
	out := NearbyAttractionsResponse{
		UserLocation: toLocationDTO(n.UserLocation),
		Attractions:  make([]NearbyAttractionDTO, len(n.Attractions)),
	}
	for i, a := range n.Attractions {
		out.Attractions[i] = NearbyAttractionDTO{
			Name:         a.Attraction.Name,
			Location:     toLocationDTO(a.Attraction.Location),
			Distance:     a.Distance,
			RewardPoints: a.RewardPoints,
		}
	}
	return out
}

func toProviderDTOs(deals []tourguide.Provider) []ProviderDTO {
	out := make([]ProviderDTO, len(deals))
	for i, d := range deals {
		out[i] = ProviderDTO{TripID: d.TripID.String(), Name: d.Name, Price: d.Price}
	}
	return out
}

func toTrackingRunDTOs(runs []sqlite.TrackingRun) []TrackingRunDTO {
	out := make([]TrackingRunDTO, len(runs))
	for i, r := range runs {
		out[i] = TrackingRunDTO{
			ID:          r.ID,
			Status:      r.Status,
			Users:       r.Users,
			Failures:    r.Failures,
			Error:       r.Error,
			StartedAt:   r.StartedAt,
			CompletedAt: r.CompletedAt,
		}
	}
	return out
}

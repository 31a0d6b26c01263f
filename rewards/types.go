/*
Package rewards grants reward points to users for visits near attractions.

PURPOSE:
  Given a user's visit history and the attraction catalog, the engine finds
  every (visit, attraction) pair within the proximity buffer, asks the points
  oracle how much the attraction is worth, and appends one Reward per
  attraction to the user.

KEY CONCEPTS:
  Proximity buffer:
    - Distance in statute miles under which a visit qualifies
    - Default 10 miles, changed at runtime with SetProximityBuffer
    - Owned by the Engine instance, read atomically

  Attraction proximity range:
    - Fixed 200 miles, wider than the buffer
    - Used by IsWithinProximity to classify "nearby" attractions,
      independently of reward eligibility

  Dedup:
    - At most one Reward per attraction per user
    - Keyed by attraction ID; two attractions sharing a display name
      are rewarded separately

CONCURRENCY:
  ComputeRewards snapshots the visits and the set of rewarded attractions,
  then evaluates each visit in its own goroutine (bounded by Concurrency)
  and waits for all of them. Check-and-append on the user's rewards is one
  atomic step, so concurrent calls on the same user never double-reward.

FAILURES:
  A points oracle failure skips that candidate and is logged. The next call
  (usually the next tracker cycle) tries again because dedup is based on
  granted rewards, not on attempts.

SEE ALSO:
  - engine.go: ComputeRewards, proximity configuration
  - nearby.go: Closest attractions to a coordinate
  - metrics.go: Prometheus collectors
*/
package rewards

import (
	"github.com/warp/tourguide/tourguide"
)

const (
	// DefaultProximityBuffer is the reward radius in miles used until reconfigured.
	DefaultProximityBuffer = 10.0

	// AttractionProximityRange is the fixed "nearby" radius in miles.
	AttractionProximityRange = 200.0

	// NearbyAttractionLimit is how many attractions NearbyAttractions returns.
	NearbyAttractionLimit = 5

	// DefaultConcurrency bounds the visits evaluated in parallel for one user.
	DefaultConcurrency = 32
)

// NearbyAttraction is an attraction with its distance from a reference point.
type NearbyAttraction struct {
	Attraction tourguide.Attraction
	Distance   float64
}

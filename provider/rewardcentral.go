package provider

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/warp/tourguide/tourguide"
)

// Reward central hands out between 1 and 999 points.
const (
	minRewardPoints = 1
	maxRewardPoints = 1000
)

// RewardCentral simulates the points oracle.
type RewardCentral struct {
	// MaxLatency bounds the simulated round trip. Zero disables it.
	MaxLatency time.Duration
}

var _ tourguide.PointsOracle = (*RewardCentral)(nil)

// NewRewardCentral returns an oracle that waits up to one second per call
// when simulateLatency is set.
func NewRewardCentral(simulateLatency bool) *RewardCentral {
	rc := &RewardCentral{}
	if simulateLatency {
		rc.MaxLatency = time.Second
	}
	return rc
}

// AttractionRewardPoints returns a random point value.
func (rc *RewardCentral) AttractionRewardPoints(ctx context.Context, _ tourguide.AttractionID, _ tourguide.UserID) (int, error) {
	if err := sleep(ctx, rc.MaxLatency); err != nil {
		return 0, err
	}
	return minRewardPoints + rand.IntN(maxRewardPoints-minRewardPoints), nil
}

package provider

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/warp/tourguide/tourguide"
)

// GPS simulates a location service that returns a random coordinate.
type GPS struct {
	// MaxLatency bounds the simulated round trip. Zero disables it.
	MaxLatency time.Duration
	Now        func() time.Time
}

var _ tourguide.LocationProvider = (*GPS)(nil)

func NewGPS(maxLatency time.Duration) *GPS {
	return &GPS{MaxLatency: maxLatency, Now: time.Now}
}

// CurrentLocation returns a new Visit at a random coordinate.
func (g *GPS) CurrentLocation(ctx context.Context, userID tourguide.UserID) (tourguide.Visit, error) {
	if err := sleep(ctx, g.MaxLatency); err != nil {
		return tourguide.Visit{}, err
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return tourguide.Visit{
		UserID:    userID,
		Location:  RandomCoordinate(),
		VisitedAt: now().UTC(),
	}, nil
}

// RandomCoordinate returns a uniformly random latitude in [-90, 90) and
// longitude in [-180, 180).
func RandomCoordinate() tourguide.Coordinate {
	return tourguide.NewCoordinate(
		rand.Float64()*180-90,
		rand.Float64()*360-180,
	)
}

// sleep waits a random duration in [0, max), returning early on cancellation.
func sleep(ctx context.Context, max time.Duration) error {
	if max <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(rand.N(max))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

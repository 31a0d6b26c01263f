package provider

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/warp/tourguide/tourguide"
)

// CachedOracle remembers point quotes for a while so repeated nearby
// lookups do not pay the oracle latency every time. Failures are not cached.
type CachedOracle struct {
	next  tourguide.PointsOracle
	cache *cache.Cache
}

var _ tourguide.PointsOracle = (*CachedOracle)(nil)

// NewCachedOracle wraps next with a cache of the given TTL.
func NewCachedOracle(next tourguide.PointsOracle, ttl time.Duration) *CachedOracle {
	return &CachedOracle{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedOracle) AttractionRewardPoints(ctx context.Context, attractionID tourguide.AttractionID, userID tourguide.UserID) (int, error) {
	key := attractionID.String() + ":" + userID.String()
	if v, ok := c.cache.Get(key); ok {
		return v.(int), nil
	}

	points, err := c.next.AttractionRewardPoints(ctx, attractionID, userID)
	if err != nil {
		return 0, err
	}
	c.cache.SetDefault(key, points)
	return points, nil
}

// Flush drops every cached quote.
func (c *CachedOracle) Flush() {
	c.cache.Flush()
}

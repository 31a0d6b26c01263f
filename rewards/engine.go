package rewards

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/tourguide/tourguide"
)

const tracerName = "github.com/warp/tourguide/rewards"

// Config configures an Engine. Zero values fall back to defaults.
type Config struct {
	// ProximityBuffer is the initial and default reward radius in miles.
	ProximityBuffer float64
	// Concurrency bounds the visits evaluated in parallel per call.
	Concurrency int
	Logger      *zap.Logger
	Metrics     *Metrics
	Tracer      trace.Tracer
}

// Engine computes rewards. It is safe for concurrent use.
type Engine struct {
	catalog tourguide.AttractionCatalog
	oracle  tourguide.PointsOracle

	defaultBuffer float64
	buffer        atomic.Uint64 // math.Float64bits of the current buffer

	concurrency int
	log         *zap.Logger
	metrics     *Metrics
	tracer      trace.Tracer
}

// NewEngine builds an engine over the given catalog and points oracle.
func NewEngine(catalog tourguide.AttractionCatalog, oracle tourguide.PointsOracle, cfg Config) (*Engine, error) {
	if catalog == nil {
		return nil, tourguide.InvalidArgument("catalog", "must not be nil")
	}
	if oracle == nil {
		return nil, tourguide.InvalidArgument("oracle", "must not be nil")
	}
	if cfg.ProximityBuffer < 0 || math.IsNaN(cfg.ProximityBuffer) {
		return nil, tourguide.InvalidArgument("proximity buffer", "must be greater than 0")
	}
	if cfg.ProximityBuffer == 0 {
		cfg.ProximityBuffer = DefaultProximityBuffer
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}

	e := &Engine{
		catalog:       catalog,
		oracle:        oracle,
		defaultBuffer: cfg.ProximityBuffer,
		concurrency:   cfg.Concurrency,
		log:           cfg.Logger,
		metrics:       cfg.Metrics,
		tracer:        cfg.Tracer,
	}
	e.buffer.Store(math.Float64bits(cfg.ProximityBuffer))
	return e, nil
}

// =============================================================================
// PROXIMITY CONFIGURATION
// =============================================================================

// ProximityBuffer returns the current reward radius in miles.
func (e *Engine) ProximityBuffer() float64 {
	return math.Float64frombits(e.buffer.Load())
}

// SetProximityBuffer changes the reward radius for all subsequent computations.
// Non-positive values are rejected and leave the current radius in place.
func (e *Engine) SetProximityBuffer(miles float64) error {
	if miles <= 0 || math.IsNaN(miles) {
		return tourguide.InvalidArgument("proximity buffer", "must be greater than 0")
	}
	e.buffer.Store(math.Float64bits(miles))
	return nil
}

// ResetProximityBuffer restores the default reward radius.
func (e *Engine) ResetProximityBuffer() {
	e.buffer.Store(math.Float64bits(e.defaultBuffer))
}

// IsWithinProximity reports whether location lies within the fixed
// attraction proximity range of attraction.
func (e *Engine) IsWithinProximity(attraction tourguide.Attraction, location tourguide.Coordinate) bool {
	return tourguide.Distance(attraction.Location, location) <= AttractionProximityRange
}

// =============================================================================
// REWARD COMPUTATION
// =============================================================================

// ComputeRewards grants rewards to user against the engine's catalog.
func (e *Engine) ComputeRewards(ctx context.Context, user *tourguide.User) error {
	if user == nil {
		return tourguide.InvalidArgument("user", "must not be nil")
	}

	attractions, err := e.catalog.Attractions(ctx)
	if err != nil {
		return tourguide.Upstream("attraction catalog", err)
	}
	if attractions == nil {
		attractions = []tourguide.Attraction{}
	}
	return e.ComputeRewardsFor(ctx, user, attractions)
}

// ComputeRewardsFor grants rewards to user against the given attractions.
//
// Visits and already-rewarded attractions are snapshotted on entry; visits
// appended during the call are left for the next one. Returns the context
// error if ctx ends before every visit has been evaluated. A nil attractions
// slice is rejected; pass an empty one for an empty catalog.
func (e *Engine) ComputeRewardsFor(ctx context.Context, user *tourguide.User, attractions []tourguide.Attraction) error {
	if user == nil {
		return tourguide.InvalidArgument("user", "must not be nil")
	}
	if attractions == nil {
		return tourguide.InvalidArgument("attractions", "must not be nil")
	}

	rewarded := user.RewardedAttractions()
	visits := user.Visits()
	if len(visits) == 0 || len(attractions) == 0 {
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "rewards.ComputeRewards", trace.WithAttributes(
		attribute.String("user.id", user.ID.String()),
		attribute.Int("visits", len(visits)),
		attribute.Int("attractions", len(attractions)),
	))
	defer span.End()

	start := time.Now()
	buffer := e.ProximityBuffer()
	c := &computation{
		engine:   e,
		user:     user,
		buffer:   buffer,
		rewarded: rewarded,
	}

	// Plain Group: a failing visit must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, visit := range visits {
		g.Go(func() error {
			c.evaluate(ctx, visit, attractions)
			return nil
		})
	}
	_ = g.Wait()

	e.metrics.ObserveComputationDuration(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("rewards.granted", int(c.granted.Load())))

	return ctx.Err()
}

// computation is the state shared by the visit goroutines of one call.
type computation struct {
	engine *Engine
	user   *tourguide.User
	buffer float64

	mu       sync.Mutex
	rewarded map[tourguide.AttractionID]struct{}
	granted  atomic.Int64
}

func (c *computation) isRewarded(id tourguide.AttractionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rewarded[id]
	return ok
}

func (c *computation) evaluate(ctx context.Context, visit tourguide.Visit, attractions []tourguide.Attraction) {
	for _, attraction := range attractions {
		if ctx.Err() != nil {
			return
		}
		if c.isRewarded(attraction.ID) {
			continue
		}
		if tourguide.Distance(attraction.Location, visit.Location) > c.buffer {
			continue
		}

		points, err := c.engine.oracle.AttractionRewardPoints(ctx, attraction.ID, c.user.ID)
		if err != nil {
			c.engine.metrics.IncPointsFetchErrors()
			c.engine.log.Warn("skipping reward, points unavailable",
				zap.String("user", c.user.Name),
				zap.Stringer("attraction_id", attraction.ID),
				zap.String("attraction", attraction.Name),
				zap.Error(err))
			continue
		}

		c.grant(tourguide.Reward{Visit: visit, Attraction: attraction, Points: points})
	}
}

// grant appends the reward and marks the attraction in one step.
func (c *computation) grant(r tourguide.Reward) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rewarded[r.Attraction.ID]; ok {
		return
	}
	c.rewarded[r.Attraction.ID] = struct{}{}
	if c.user.AddReward(r) {
		c.granted.Add(1)
		c.engine.metrics.IncRewardsGranted()
	}
}

// RewardPoints asks the oracle what visiting attraction is worth to user.
func (e *Engine) RewardPoints(ctx context.Context, attraction tourguide.Attraction, user *tourguide.User) (int, error) {
	if user == nil {
		return 0, tourguide.InvalidArgument("user", "must not be nil")
	}
	points, err := e.oracle.AttractionRewardPoints(ctx, attraction.ID, user.ID)
	if err != nil {
		return 0, tourguide.Upstream("reward central", err)
	}
	return points, nil
}

/*
Package service is the tour guide façade used by the HTTP layer and the tracker.

PURPOSE:
  Ties the user directory, the location provider, the reward engine and the
  trip pricer together behind one type. Handlers and the tracker never touch
  the collaborators directly.

OPERATIONS:
  AddUser / CreateUser / GetUser / AllUsers: user directory access
  TrackUserLocation: fetch location, record visit, compute rewards
  GetUserLocation:   last known visit, tracking the user if there is none
  GetRewards:        rewards earned so far
  NearbyAttractions: five closest attractions with the user's point quotes
  TripDeals:         price trips with the user's points and preferences
  InitializeInternalUsers: seed test users with random visit history

SEE ALSO:
  - rewards/engine.go: Reward computation
  - api/tracker.go: Calls TrackUserLocation for every user each cycle
  - api/handlers.go: HTTP surface over this package
*/
package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/tourguide/provider"
	"github.com/warp/tourguide/rewards"
	"github.com/warp/tourguide/tourguide"
)

// Internal test users get this many random visits.
const internalUserVisits = 3

// internalVisitWindow bounds how far back seeded visits go.
const internalVisitWindow = 30 * 24 * time.Hour

// Config configures a TourGuide.
type Config struct {
	TripPricerAPIKey string
	// Quotes prices nearby attractions. Defaults to the engine's oracle.
	Quotes tourguide.PointsOracle
	Logger *zap.Logger
	Now    func() time.Time
}

// TourGuide is safe for concurrent use.
type TourGuide struct {
	users     tourguide.UserStore
	locations tourguide.LocationProvider
	engine    *rewards.Engine
	pricer    tourguide.TripPricer
	quotes    tourguide.PointsOracle

	apiKey string
	log    *zap.Logger
	now    func() time.Time
}

// New builds a TourGuide. Every collaborator is required.
func New(users tourguide.UserStore, locations tourguide.LocationProvider, engine *rewards.Engine, pricer tourguide.TripPricer, cfg Config) (*TourGuide, error) {
	switch {
	case users == nil:
		return nil, tourguide.InvalidArgument("users", "must not be nil")
	case locations == nil:
		return nil, tourguide.InvalidArgument("locations", "must not be nil")
	case engine == nil:
		return nil, tourguide.InvalidArgument("engine", "must not be nil")
	case pricer == nil:
		return nil, tourguide.InvalidArgument("pricer", "must not be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TourGuide{
		users:     users,
		locations: locations,
		engine:    engine,
		pricer:    pricer,
		quotes:    cfg.Quotes,
		apiKey:    cfg.TripPricerAPIKey,
		log:       cfg.Logger,
		now:       cfg.Now,
	}, nil
}

// Engine exposes the reward engine for administrative operations.
func (tg *TourGuide) Engine() *rewards.Engine {
	return tg.engine
}

// =============================================================================
// USER DIRECTORY
// =============================================================================

// AddUser registers user unless the name is taken. Reports whether it was added.
func (tg *TourGuide) AddUser(user *tourguide.User) (bool, error) {
	if user == nil {
		return false, tourguide.InvalidArgument("user", "must not be nil")
	}
	if user.Name == "" {
		return false, tourguide.InvalidArgument("user name", "must not be empty")
	}
	return tg.users.Add(user), nil
}

// CreateUser registers a new user and fails with ErrDuplicateUser if the
// name is already taken.
func (tg *TourGuide) CreateUser(name, phone, email string) (*tourguide.User, error) {
	user := tourguide.NewUser(uuid.New(), name, phone, email)
	added, err := tg.AddUser(user)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, fmt.Errorf("%w: %s", tourguide.ErrDuplicateUser, name)
	}
	return user, nil
}

// GetUser returns the user registered under name.
func (tg *TourGuide) GetUser(name string) (*tourguide.User, error) {
	if name == "" {
		return nil, tourguide.InvalidArgument("userName", "must not be empty")
	}
	user, ok := tg.users.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", tourguide.ErrUserNotFound, name)
	}
	return user, nil
}

// AllUsers returns a snapshot of every registered user.
func (tg *TourGuide) AllUsers() []*tourguide.User {
	return tg.users.All()
}

// =============================================================================
// LOCATION AND REWARDS
// =============================================================================

// TrackUserLocation fetches the user's current location, records it as a
// visit and computes rewards. The visit is kept even when reward computation
// fails.
func (tg *TourGuide) TrackUserLocation(ctx context.Context, user *tourguide.User) (tourguide.Visit, error) {
	if user == nil {
		return tourguide.Visit{}, tourguide.InvalidArgument("user", "must not be nil")
	}

	visit, err := tg.locations.CurrentLocation(ctx, user.ID)
	if err != nil {
		return tourguide.Visit{}, tourguide.Upstream("location provider", err)
	}
	user.AddVisit(visit)

	if err := tg.engine.ComputeRewards(ctx, user); err != nil {
		return visit, err
	}
	return visit, nil
}

// GetUserLocation returns the user's last visit, tracking the user first if
// no visit has been recorded yet.
func (tg *TourGuide) GetUserLocation(ctx context.Context, user *tourguide.User) (tourguide.Visit, error) {
	if user == nil {
		return tourguide.Visit{}, tourguide.InvalidArgument("user", "must not be nil")
	}
	if visit, ok := user.LastVisit(); ok {
		return visit, nil
	}
	return tg.TrackUserLocation(ctx, user)
}

// GetRewards returns the rewards user has earned.
func (tg *TourGuide) GetRewards(user *tourguide.User) ([]tourguide.Reward, error) {
	if user == nil {
		return nil, tourguide.InvalidArgument("user", "must not be nil")
	}
	return user.Rewards(), nil
}

// NearbyAttraction is a close attraction with what visiting it is worth.
type NearbyAttraction struct {
	rewards.NearbyAttraction
	RewardPoints int
}

// Nearby is the result of NearbyAttractions.
type Nearby struct {
	UserLocation tourguide.Coordinate
	Attractions  []NearbyAttraction
}

// NearbyAttractions returns the closest attractions to the user's location
// along with the user's point quote for each.
func (tg *TourGuide) NearbyAttractions(ctx context.Context, user *tourguide.User) (Nearby, error) {
	visit, err := tg.GetUserLocation(ctx, user)
	if err != nil {
		return Nearby{}, err
	}

	closest, err := tg.engine.NearbyAttractions(ctx, visit.Location)
	if err != nil {
		return Nearby{}, err
	}

	out := make([]NearbyAttraction, len(closest))
	g, gctx := errgroup.WithContext(ctx)
	for i, na := range closest {
		g.Go(func() error {
			points, err := tg.quote(gctx, na.Attraction, user)
			if err != nil {
				return err
			}
			out[i] = NearbyAttraction{NearbyAttraction: na, RewardPoints: points}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Nearby{}, err
	}

	return Nearby{UserLocation: visit.Location, Attractions: out}, nil
}

func (tg *TourGuide) quote(ctx context.Context, attraction tourguide.Attraction, user *tourguide.User) (int, error) {
	if tg.quotes == nil {
		return tg.engine.RewardPoints(ctx, attraction, user)
	}
	points, err := tg.quotes.AttractionRewardPoints(ctx, attraction.ID, user.ID)
	if err != nil {
		return 0, tourguide.Upstream("reward central", err)
	}
	return points, nil
}

// =============================================================================
// TRIP DEALS
// =============================================================================

// TripDeals prices a trip for the user's party and stores the offers on the user.
func (tg *TourGuide) TripDeals(ctx context.Context, user *tourguide.User) ([]tourguide.Provider, error) {
	if user == nil {
		return nil, tourguide.InvalidArgument("user", "must not be nil")
	}

	prefs := user.Preferences()
	deals, err := tg.pricer.Price(ctx, tg.apiKey, uuid.New(),
		prefs.NumberOfAdults, prefs.NumberOfChildren, prefs.TripDuration,
		user.TotalRewardPoints(),
	)
	if err != nil {
		if tourguide.IsClientError(err) {
			return nil, err
		}
		return nil, tourguide.Upstream("trip pricer", err)
	}

	user.SetTripDeals(deals)
	return user.TripDeals(), nil
}

// =============================================================================
// INTERNAL TEST USERS
// =============================================================================

// InternalUserName returns the name of the i-th internal test user.
func InternalUserName(i int) string {
	return fmt.Sprintf("internalUser%d", i)
}

// InitializeInternalUsers registers count test users, each with a short
// random visit history. Names already taken are left alone. Returns the
// number of users added.
func (tg *TourGuide) InitializeInternalUsers(count int) (int, error) {
	if count < 0 {
		return 0, tourguide.InvalidArgument("internal user count", "must not be negative")
	}

	added := 0
	for i := 0; i < count; i++ {
		name := InternalUserName(i)
		user := tourguide.NewUser(uuid.New(), name, "000", name+"@tourGuide.com")
		for j := 0; j < internalUserVisits; j++ {
			user.AddVisit(tourguide.Visit{
				UserID:    user.ID,
				Location:  provider.RandomCoordinate(),
				VisitedAt: tg.randomRecentTime(),
			})
		}
		if tg.users.Add(user) {
			added++
		}
	}

	tg.log.Debug("created internal test users", zap.Int("count", added))
	return added, nil
}

func (tg *TourGuide) randomRecentTime() time.Time {
	return tg.now().Add(-rand.N(internalVisitWindow)).UTC()
}

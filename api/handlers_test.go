/*
handlers_test.go - Unit tests for API handlers

Tests for:
- User creation and lookup
- Location, rewards, nearby attractions and trip deals by userName
- Error category to HTTP status mapping
- Admin endpoints (proximity buffer, manual tracking, tracking runs)
- Metrics exposure
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/warp/tourguide/pricing"
	"github.com/warp/tourguide/provider"
	"github.com/warp/tourguide/rewards"
	"github.com/warp/tourguide/service"
	"github.com/warp/tourguide/store/sqlite"
	"github.com/warp/tourguide/tourguide"
	"github.com/warp/tourguide/tourguide/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type stubLocation struct {
	at  tourguide.Coordinate
	err error
}

func (s stubLocation) CurrentLocation(_ context.Context, userID tourguide.UserID) (tourguide.Visit, error) {
	if s.err != nil {
		return tourguide.Visit{}, s.err
	}
	return tourguide.Visit{UserID: userID, Location: s.at, VisitedAt: time.Now().UTC()}, nil
}

type stubOracle struct{ points int }

func (s stubOracle) AttractionRewardPoints(context.Context, tourguide.AttractionID, tourguide.UserID) (int, error) {
	return s.points, nil
}

type testServer struct {
	router  http.Handler
	service *service.TourGuide
	store   *sqlite.Store
}

func newTestServer(t *testing.T, locations tourguide.LocationProvider) testServer {
	t.Helper()
	log := zaptest.NewLogger(t)

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SeedAttractions(context.Background(), provider.DefaultAttractions()))

	reg := prometheus.NewRegistry()
	rewardMetrics := rewards.NewMetrics()
	require.NoError(t, rewardMetrics.Register(reg))
	trackerMetrics := NewTrackerMetrics()
	require.NoError(t, trackerMetrics.Register(reg))

	engine, err := rewards.NewEngine(db, stubOracle{points: 120}, rewards.Config{
		Logger:  log,
		Metrics: rewardMetrics,
	})
	require.NoError(t, err)

	svc, err := service.New(store.NewMemory(), locations, engine, pricing.New(0), service.Config{
		TripPricerAPIKey: "test-server-api-key",
		Logger:           log,
	})
	require.NoError(t, err)

	tracker := NewTracker(svc, TrackerConfig{
		Logger:   log,
		Metrics:  trackerMetrics,
		Recorder: db,
	})

	h := NewHandler(svc, tracker, db, log)
	return testServer{router: NewRouter(h, reg), service: svc, store: db}
}

func disneyland() tourguide.Coordinate {
	return provider.DefaultAttractions()[0].Location
}

func (s testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s testServer) createUser(t *testing.T, name string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users", CreateUserRequest{Name: name, Phone: "000", Email: name + "@tourGuide.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// =============================================================================
// USER ENDPOINTS
// =============================================================================

func TestCreateUser(t *testing.T) {
	s := newTestServer(t, stubLocation{at: disneyland()})

	rec := s.do(t, http.MethodPost, "/api/users", CreateUserRequest{Name: "jon", Phone: "000", Email: "jon@tourGuide.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode[UserDTO](t, rec)
	assert.Equal(t, "jon", user.Name)
	assert.NotEmpty(t, user.ID)

	rec = s.do(t, http.MethodPost, "/api/users", CreateUserRequest{Name: "jon"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users", CreateUserRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{"))
	bad := httptest.NewRecorder()
	s.router.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestGetUserAndList(t *testing.T) {
	s := newTestServer(t, stubLocation{at: disneyland()})
	s.createUser(t, "jon")
	s.createUser(t, "ann")

	rec := s.do(t, http.MethodGet, "/api/users/jon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jon", decode[UserDTO](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/users/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", decode[ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]UserDTO](t, rec)
	require.Len(t, users, 2)
	assert.Equal(t, "ann", users[0].Name)
}

// =============================================================================
// TOUR GUIDE ENDPOINTS
// =============================================================================

func TestLocationThenRewards(t *testing.T) {
	// GIVEN: A user whose location provider reports Disneyland
	// WHEN: The location is requested, then the rewards
	// THEN: The visit is at Disneyland and Disneyland is rewarded

	s := newTestServer(t, stubLocation{at: disneyland()})
	s.createUser(t, "jon")

	rec := s.do(t, http.MethodGet, "/api/location?userName=jon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	visit := decode[VisitDTO](t, rec)
	assert.Equal(t, disneyland().Latitude, visit.Location.Latitude)

	rec = s.do(t, http.MethodGet, "/api/rewards?userName=jon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]RewardDTO](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Disneyland", got[0].Attraction.Name)
	assert.Equal(t, 120, got[0].RewardPoints)
}

func TestUserQueryErrors(t *testing.T) {
	s := newTestServer(t, stubLocation{at: disneyland()})

	for _, path := range []string{"/api/location", "/api/rewards", "/api/nearby-attractions", "/api/trip-deals"} {
		rec := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)

		rec = s.do(t, http.MethodGet, path+"?userName=nobody", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestLocation_UpstreamFailure(t *testing.T) {
	s := newTestServer(t, stubLocation{err: errors.New("gps down")})
	s.createUser(t, "jon")

	rec := s.do(t, http.MethodGet, "/api/location?userName=jon", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNearbyAttractions(t *testing.T) {
	s := newTestServer(t, stubLocation{at: disneyland()})
	s.createUser(t, "jon")

	rec := s.do(t, http.MethodGet, "/api/nearby-attractions?userName=jon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[NearbyAttractionsResponse](t, rec)

	require.Len(t, resp.Attractions, rewards.NearbyAttractionLimit)
	assert.Equal(t, "Disneyland", resp.Attractions[0].Name)
	assert.Equal(t, disneyland().Longitude, resp.UserLocation.Longitude)
	for _, a := range resp.Attractions {
		assert.Equal(t, 120, a.RewardPoints)
	}
}

func TestTripDeals(t *testing.T) {
	s := newTestServer(t, stubLocation{at: disneyland()})
	s.createUser(t, "jon")

	rec := s.do(t, http.MethodGet, "/api/trip-deals?userName=jon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProviderDTO](t, rec), pricing.DealCount)
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

func TestProximityBuffer(t *testing.T) {
	// GIVEN: The default reward radius
	// WHEN: It is set to zero, set to 50, then reset
	// THEN: Zero is rejected, 50 is applied, reset restores the default

	s := newTestServer(t, stubLocation{at: disneyland()})

	rec := s.do(t, http.MethodPut, "/api/admin/proximity-buffer", ProximityBufferRequest{Miles: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/admin/proximity-buffer", ProximityBufferRequest{Miles: 50})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50.0, decode[ProximityBufferDTO](t, rec).Miles)

	rec = s.do(t, http.MethodGet, "/api/admin/proximity-buffer", nil)
	assert.Equal(t, 50.0, decode[ProximityBufferDTO](t, rec).Miles)

	rec = s.do(t, http.MethodDelete, "/api/admin/proximity-buffer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rewards.DefaultProximityBuffer, decode[ProximityBufferDTO](t, rec).Miles)
}

func TestTriggerTrackingAndRuns(t *testing.T) {
	// GIVEN: Two users
	// WHEN: A tracking cycle is triggered
	// THEN: Both users are tracked and the run is listed

	s := newTestServer(t, stubLocation{at: disneyland()})
	s.createUser(t, "jon")
	s.createUser(t, "ann")

	rec := s.do(t, http.MethodPost, "/api/admin/track", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	run := decode[TrackingRunDTO](t, rec)
	assert.Equal(t, 2, run.Users)
	assert.Zero(t, run.Failures)
	assert.Equal(t, sqlite.RunStatusCompleted, run.Status)

	jon, err := s.service.GetUser("jon")
	require.NoError(t, err)
	assert.Len(t, jon.Visits(), 1)
	assert.Len(t, jon.Rewards(), 1)

	rec = s.do(t, http.MethodGet, "/api/admin/tracking-runs?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]TrackingRunDTO](t, rec)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	rec = s.do(t, http.MethodGet, "/api/admin/tracking-runs?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/tracker", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decode[TrackerStatusDTO](t, rec).State)
}

func TestMetricsAndHealth(t *testing.T) {
	s := newTestServer(t, stubLocation{at: disneyland()})
	s.createUser(t, "jon")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/admin/track", nil).Code)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, MetricTrackerCycles)
	assert.Contains(t, body, rewards.MetricRewardsGranted)

	rec = s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

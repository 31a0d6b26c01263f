/*
handlers.go - HTTP API handlers for the tour guide server

PURPOSE:
  Exposes the tour guide service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the service package.

ENDPOINTS:
  Users:
    GET    /api/users                   List all users
    POST   /api/users                   Create user
    GET    /api/users/{userName}        Get user details

  Tour guide:
    GET    /api/location?userName=          Last known or freshly tracked location
    GET    /api/nearby-attractions?userName= Five closest attractions with points
    GET    /api/rewards?userName=           Rewards earned
    GET    /api/trip-deals?userName=        Priced trip offers

  Admin:
    GET    /api/admin/proximity-buffer  Current reward radius
    PUT    /api/admin/proximity-buffer  Change reward radius
    DELETE /api/admin/proximity-buffer  Restore default radius
    POST   /api/admin/track             Run one tracker cycle now
    GET    /api/admin/tracker           Tracker state
    GET    /api/admin/tracking-runs     Tracking run audit records

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid argument
  - 404: User not found
  - 409: Duplicate user
  - 502: Upstream service unavailable
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - tracker.go: Background tracker driven by TriggerTracking
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/tourguide/service"
	"github.com/warp/tourguide/store/sqlite"
	"github.com/warp/tourguide/tourguide"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// RunStore lists tracking runs for the admin endpoints.
type RunStore interface {
	ListTrackingRuns(ctx context.Context, status string, limit int) ([]sqlite.TrackingRun, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *service.TourGuide
	Tracker *Tracker
	Runs    RunStore
	Log     *zap.Logger
}

// NewHandler creates a new handler. Tracker and runs may be nil.
func NewHandler(svc *service.TourGuide, tracker *Tracker, runs RunStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Service: svc,
		Tracker: tracker,
		Runs:    runs,
		Log:     log,
	}
}

// =============================================================================
// USER ENDPOINTS
// =============================================================================

// ListUsers returns every registered user.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.Service.AllUsers()
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateUser registers a new user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.Service.CreateUser(req.Name, req.Phone, req.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// GetUser returns one user by name.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(chi.URLParam(r, "userName"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// =============================================================================
// TOUR GUIDE ENDPOINTS
// =============================================================================

// GetLocation returns the user's last visit, tracking the user if needed.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromQuery(w, r)
	if !ok {
		return
	}

	visit, err := h.Service.GetUserLocation(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVisitDTO(visit))
}

// GetNearbyAttractions returns the closest attractions with the user's point quotes.
func (h *Handler) GetNearbyAttractions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromQuery(w, r)
	if !ok {
		return
	}

	nearby, err := h.Service.NearbyAttractions(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNearbyResponse(nearby))
}

// GetRewards returns the user's rewards.
func (h *Handler) GetRewards(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromQuery(w, r)
	if !ok {
		return
	}

	rewards, err := h.Service.GetRewards(user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRewardDTOs(rewards))
}

// GetTripDeals prices trips for the user.
func (h *Handler) GetTripDeals(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromQuery(w, r)
	if !ok {
		return
	}

	deals, err := h.Service.TripDeals(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProviderDTOs(deals))
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// GetProximityBuffer reports the reward radius.
func (h *Handler) GetProximityBuffer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProximityBufferDTO{Miles: h.Service.Engine().ProximityBuffer()})
}

// SetProximityBuffer changes the reward radius.
func (h *Handler) SetProximityBuffer(w http.ResponseWriter, r *http.Request) {
	var req ProximityBufferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	engine := h.Service.Engine()
	if err := engine.SetProximityBuffer(req.Miles); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.Log.Info("proximity buffer changed", zap.Float64("miles", req.Miles))
	writeJSON(w, http.StatusOK, ProximityBufferDTO{Miles: engine.ProximityBuffer()})
}

// ResetProximityBuffer restores the default reward radius.
func (h *Handler) ResetProximityBuffer(w http.ResponseWriter, r *http.Request) {
	engine := h.Service.Engine()
	engine.ResetProximityBuffer()
	writeJSON(w, http.StatusOK, ProximityBufferDTO{Miles: engine.ProximityBuffer()})
}

// TriggerTracking runs one tracker cycle synchronously.
func (h *Handler) TriggerTracking(w http.ResponseWriter, r *http.Request) {
	if h.Tracker == nil {
		writeError(w, http.StatusServiceUnavailable, "tracker not configured", nil)
		return
	}

	result, err := h.Tracker.RunNow(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "tracking cycle failed", err)
		return
	}

	completed := result.CompletedAt
	writeJSON(w, http.StatusOK, TrackingRunDTO{
		ID:          result.ID,
		Status:      result.Status,
		Users:       result.Users,
		Failures:    result.Failures,
		StartedAt:   result.StartedAt,
		CompletedAt: &completed,
	})
}

// GetTrackerStatus reports the tracker lifecycle state.
func (h *Handler) GetTrackerStatus(w http.ResponseWriter, r *http.Request) {
	if h.Tracker == nil {
		writeError(w, http.StatusServiceUnavailable, "tracker not configured", nil)
		return
	}
	writeJSON(w, http.StatusOK, TrackerStatusDTO{State: h.Tracker.State().String()})
}

// ListTrackingRuns returns recorded tracker cycles, newest first.
// Optional query parameters: status, limit.
func (h *Handler) ListTrackingRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeJSON(w, http.StatusOK, []TrackingRunDTO{})
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Runs.ListTrackingRuns(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tracking runs", err)
		return
	}
	writeJSON(w, http.StatusOK, toTrackingRunDTOs(runs))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.Tracker != nil {
		status = "ok, tracker " + h.Tracker.State().String()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) userFromQuery(w http.ResponseWriter, r *http.Request) (*tourguide.User, bool) {
	user, err := h.Service.GetUser(r.URL.Query().Get("userName"))
	if err != nil {
		h.writeServiceError(w, err)
		return nil, false
	}
	return user, true
}

// writeServiceError maps error categories to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case tourguide.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid argument", err)
	case tourguide.IsNotFound(err):
		writeError(w, http.StatusNotFound, "user not found", err)
	case tourguide.IsConflict(err):
		writeError(w, http.StatusConflict, "user already exists", err)
	case tourguide.IsUpstream(err):
		h.Log.Warn("upstream failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream service unavailable", err)
	default:
		h.Log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

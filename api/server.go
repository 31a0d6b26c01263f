/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through zap
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/users/*          User management
  /api/location ...     Tour guide queries by userName
  /api/admin/*          Proximity buffer, tracker, tracking runs
  /metrics              Prometheus scrape endpoint
  /healthz              Liveness

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured. A nil gatherer
// leaves /metrics unmounted.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{userName}", h.GetUser)
		})

		// Tour guide routes
		r.Get("/location", h.GetLocation)
		r.Get("/nearby-attractions", h.GetNearbyAttractions)
		r.Get("/rewards", h.GetRewards)
		r.Get("/trip-deals", h.GetTripDeals)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Get("/proximity-buffer", h.GetProximityBuffer)
			r.Put("/proximity-buffer", h.SetProximityBuffer)
			r.Delete("/proximity-buffer", h.ResetProximityBuffer)
			r.Post("/track", h.TriggerTracking)
			r.Get("/tracker", h.GetTrackerStatus)
			r.Get("/tracking-runs", h.ListTrackingRuns)
		})
	})

	return r
}

// requestLogger logs every request with its status and latency.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}

			switch {
			case ww.Status() >= 500:
				log.Error("HTTP request", fields...)
			case ww.Status() >= 400:
				log.Warn("HTTP request", fields...)
			default:
				log.Debug("HTTP request", fields...)
			}
		})
	}
}

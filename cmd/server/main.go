/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the tour guide server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and configuration (file + environment)
  2. Build logger and tracer provider
  3. Open SQLite store and seed the attraction catalog
  4. Wire simulated upstreams, reward engine and tour guide service
  5. Seed internal test users
  6. Start the location tracker and HTTP server

COMMAND-LINE FLAGS:
  -config  Optional YAML configuration file
  -env     Optional .env file (default: .env, ignored when missing)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Stop the tracker (in-flight users finish)
  3. Flush pending spans
  4. Close database connection

EXAMPLES:
  # Run with an in-memory database and no simulated latency
  TOURGUIDE_DB=":memory:" TOURGUIDE_SIMULATE_LATENCY=false ./server

  # Run with a config file
  ./server -config=./config.yaml

SEE ALSO:
  - config/config.go: Keys and defaults
  - api/server.go: Router configuration
  - api/tracker.go: Background tracker
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/warp/tourguide/api"
	"github.com/warp/tourguide/config"
	"github.com/warp/tourguide/logger"
	"github.com/warp/tourguide/pricing"
	"github.com/warp/tourguide/provider"
	"github.com/warp/tourguide/rewards"
	"github.com/warp/tourguide/service"
	"github.com/warp/tourguide/store/sqlite"
	userstore "github.com/warp/tourguide/tourguide/store"
	"github.com/warp/tourguide/tracing"
)

const serviceName = "tourguide"

// Simulated upstream latency bounds, used when latency simulation is on.
const (
	gpsLatency     = 100 * time.Millisecond
	pricerLatency  = 50 * time.Millisecond
	shutdownWindow = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	envFile := flag.String("env", ".env", "dotenv file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, !cfg.IsProduction(), zap.String("service", serviceName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode logs a run failure and flushes the logger before the process exits.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("server failed", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		Insecure:     !cfg.IsProduction(),
	}, log.Named("tracing"))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// Store and attraction catalog
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	if err := store.SeedAttractions(ctx, provider.DefaultAttractions()); err != nil {
		return fmt.Errorf("seed attractions: %w", err)
	}
	attractions, err := store.Attractions(ctx)
	if err != nil {
		return fmt.Errorf("load attractions: %w", err)
	}
	catalog := provider.NewCatalog(attractions)

	// Simulated upstreams
	var gpsMax, pricerMax time.Duration
	if cfg.SimulateLatency {
		gpsMax, pricerMax = gpsLatency, pricerLatency
	}
	gps := provider.NewGPS(gpsMax)
	central := provider.NewRewardCentral(cfg.SimulateLatency)
	quotes := provider.NewCachedOracle(central, cfg.PointsCacheTTL)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rewardMetrics := rewards.NewMetrics()
	trackerMetrics := api.NewTrackerMetrics()
	if err := rewardMetrics.Register(reg); err != nil {
		return err
	}
	if err := trackerMetrics.Register(reg); err != nil {
		return err
	}

	// Core
	engine, err := rewards.NewEngine(catalog, central, rewards.Config{
		ProximityBuffer: cfg.ProximityBufferMiles,
		Concurrency:     cfg.RewardConcurrency,
		Logger:          log.Named("rewards"),
		Metrics:         rewardMetrics,
		Tracer:          tp.Tracer("github.com/warp/tourguide/rewards"),
	})
	if err != nil {
		return fmt.Errorf("create reward engine: %w", err)
	}

	svc, err := service.New(userstore.NewMemory(), gps, engine, pricing.New(pricerMax), service.Config{
		TripPricerAPIKey: cfg.TripPricerAPIKey,
		Quotes:           quotes,
		Logger:           log.Named("service"),
	})
	if err != nil {
		return fmt.Errorf("create tour guide: %w", err)
	}

	if cfg.InternalUserCount > 0 {
		n, err := svc.InitializeInternalUsers(cfg.InternalUserCount)
		if err != nil {
			return fmt.Errorf("seed internal users: %w", err)
		}
		log.Info("internal test users created", zap.Int("count", n))
	}

	// Tracker
	tracker := api.NewTracker(svc, api.TrackerConfig{
		Interval:    cfg.TrackingInterval,
		Concurrency: cfg.TrackerConcurrency,
		Logger:      log.Named("tracker"),
		Metrics:     trackerMetrics,
		Tracer:      tp.Tracer("github.com/warp/tourguide/api"),
		Recorder:    store,
	})
	if cfg.TrackerEnabled {
		if err := tracker.Start(ctx); err != nil {
			return fmt.Errorf("start tracker: %w", err)
		}
	}
	defer tracker.Stop()

	// HTTP
	handler := api.NewHandler(svc, tracker, store, log.Named("http"))
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      otelhttp.NewHandler(api.NewRouter(handler, reg), serviceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("db", cfg.DatabasePath),
			zap.Int("attractions", len(attractions)),
			zap.Bool("tracker", cfg.TrackerEnabled),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	tracker.Stop()

	log.Info("server stopped")
	return nil
}

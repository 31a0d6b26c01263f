/*
tracker.go - Background location tracker

PURPOSE:
  Periodically refreshes every user's location and computes their rewards.
  One cycle enumerates the user directory, tracks each user concurrently,
  waits for all of them, then sleeps for the polling interval.

DESIGN:
  - NewTracker only builds the tracker; Start launches the loop and Stop
    cancels and joins it
  - Per-user failures are logged and counted, never abort the cycle
  - In-flight users finish after Stop; users not yet launched are skipped
  - A panic inside a cycle is recovered and logged, the loop continues
  - Each cycle is recorded as a tracking run for audit and admin display

STATE MACHINE:
  Idle -> Running -> Stopping -> Stopped
  Idle -> Stopped (Stop before Start)

CONFIGURATION:
  - Interval: Sleep between cycles (default: 5 minutes)
  - Concurrency: Users tracked in parallel (default: 256)

USAGE:
  tracker := NewTracker(svc, TrackerConfig{Logger: log})
  if err := tracker.Start(ctx); err != nil {
      return err
  }
  // ... later
  tracker.Stop()

SEE ALSO:
  - handlers.go: TriggerTracking endpoint (manual cycle)
  - service/tourguide.go: TrackUserLocation
  - store/sqlite/sqlite.go: Tracking run records
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/tourguide/store/sqlite"
	"github.com/warp/tourguide/tourguide"
)

const (
	DefaultTrackingInterval   = 5 * time.Minute
	DefaultTrackerConcurrency = 256
)

// ErrTrackerStopped is returned by Start once the tracker has been stopped.
var ErrTrackerStopped = errors.New("tracker already stopped")

// TrackerState is the lifecycle state of a Tracker.
type TrackerState int32

const (
	TrackerIdle TrackerState = iota
	TrackerRunning
	TrackerStopping
	TrackerStopped
)

func (s TrackerState) String() string {
	switch s {
	case TrackerIdle:
		return "idle"
	case TrackerRunning:
		return "running"
	case TrackerStopping:
		return "stopping"
	case TrackerStopped:
		return "stopped"
	default:
		return fmt.Sprintf("TrackerState(%d)", int32(s))
	}
}

// UserTracker is what a cycle needs from the tour guide service.
type UserTracker interface {
	AllUsers() []*tourguide.User
	TrackUserLocation(ctx context.Context, user *tourguide.User) (tourguide.Visit, error)
}

// RunRecorder persists tracking runs.
type RunRecorder interface {
	SaveTrackingRun(ctx context.Context, run sqlite.TrackingRun) error
}

// TrackerConfig configures a Tracker. Zero values fall back to defaults.
type TrackerConfig struct {
	Interval    time.Duration
	Concurrency int
	Logger      *zap.Logger
	Metrics     *TrackerMetrics
	Tracer      trace.Tracer
	Recorder    RunRecorder
}

// CycleResult summarizes one tracker cycle.
type CycleResult struct {
	ID          string
	Status      string
	Users       int
	Failures    int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Tracker drives location refresh and reward computation for all users.
type Tracker struct {
	users       UserTracker
	interval    time.Duration
	concurrency int
	log         *zap.Logger
	metrics     *TrackerMetrics
	tracer      trace.Tracer
	recorder    RunRecorder

	state  atomic.Int32
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTracker creates a tracker. It does not start the loop.
func NewTracker(users UserTracker, cfg TrackerConfig) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultTrackingInterval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultTrackerConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("github.com/warp/tourguide/api")
	}

	return &Tracker{
		users:       users,
		interval:    cfg.Interval,
		concurrency: cfg.Concurrency,
		log:         cfg.Logger,
		metrics:     cfg.Metrics,
		tracer:      cfg.Tracer,
		recorder:    cfg.Recorder,
	}
}

// State reports the current lifecycle state.
func (t *Tracker) State() TrackerState {
	return TrackerState(t.state.Load())
}

// Start launches the tracking loop. The loop also ends when ctx is cancelled.
// Calling Start on a running tracker is a no-op.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.State() {
	case TrackerRunning:
		return nil
	case TrackerStopping, TrackerStopped:
		return ErrTrackerStopped
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.state.Store(int32(TrackerRunning))

	go t.run(loopCtx, t.done)

	t.log.Info("tracker started",
		zap.Duration("interval", t.interval),
		zap.Int("concurrency", t.concurrency))
	return nil
}

// Stop cancels the loop and waits for it to exit. Safe to call more than once.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done == nil {
		t.state.Store(int32(TrackerStopped))
		return
	}

	t.state.CompareAndSwap(int32(TrackerRunning), int32(TrackerStopping))
	t.cancel()
	<-t.done
	t.state.Store(int32(TrackerStopped))
}

func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		t.state.Store(int32(TrackerStopped))
		t.log.Info("tracker stopped")
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if _, err := t.RunNow(ctx); err != nil && ctx.Err() == nil {
			t.log.Error("tracker cycle failed", zap.Error(err))
		}
		timer.Reset(t.interval)
	}
}

// RunNow runs one cycle synchronously. It returns an error only when the
// cycle itself panicked; per-user failures are reported in the result.
func (t *Tracker) RunNow(ctx context.Context) (result CycleResult, err error) {
	result = CycleResult{
		ID:        uuid.NewString(),
		Status:    sqlite.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	ctx, span := t.tracer.Start(ctx, "tracker.cycle", trace.WithAttributes(
		attribute.String("run.id", result.ID),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tracker cycle panicked: %v", r)
			result.Status = sqlite.RunStatusFailed
			span.SetStatus(codes.Error, err.Error())
		}
		result.CompletedAt = time.Now().UTC()
		t.finish(ctx, result, err)
	}()

	users := t.users.AllUsers()
	result.Users = len(users)
	span.SetAttributes(attribute.Int("users", len(users)))
	t.log.Debug("begin tracker cycle", zap.Int("users", len(users)))
	t.record(ctx, result, nil)

	result.Failures, result.Status = t.trackAll(ctx, users)
	span.SetAttributes(attribute.Int("failures", result.Failures))
	return result, nil
}

// trackAll tracks users with bounded parallelism. Once ctx ends no new user
// is launched, but in-flight users run to completion.
func (t *Tracker) trackAll(ctx context.Context, users []*tourguide.User) (int, string) {
	work := context.WithoutCancel(ctx)
	var failures atomic.Int64

	var g errgroup.Group
	g.SetLimit(t.concurrency)

	skipped := false
	for _, user := range users {
		if ctx.Err() != nil {
			skipped = true
			break
		}
		g.Go(func() error {
			err := t.trackUser(work, user)
			if err == nil || isCancellation(err) {
				return nil
			}
			failures.Add(1)
			t.metrics.incUserErrors()
			t.log.Error("failed to track user",
				zap.String("user", user.Name),
				zap.Stringer("user_id", user.ID),
				zap.Error(err))
			return nil
		})
	}
	_ = g.Wait()

	status := sqlite.RunStatusCompleted
	if skipped {
		status = sqlite.RunStatusCancelled
	}
	return int(failures.Load()), status
}

func (t *Tracker) trackUser(ctx context.Context, user *tourguide.User) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	_, err = t.users.TrackUserLocation(ctx, user)
	return err
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (t *Tracker) finish(ctx context.Context, result CycleResult, cycleErr error) {
	elapsed := result.CompletedAt.Sub(result.StartedAt)
	t.metrics.observeCycle(result.Status, result.Users, elapsed.Seconds())
	t.log.Debug("tracker cycle finished",
		zap.String("status", result.Status),
		zap.Int("users", result.Users),
		zap.Int("failures", result.Failures),
		zap.Float64("elapsed_seconds", elapsed.Seconds()))

	t.record(ctx, result, cycleErr)
}

func (t *Tracker) record(ctx context.Context, result CycleResult, cycleErr error) {
	if t.recorder == nil {
		return
	}

	run := sqlite.TrackingRun{
		ID:        result.ID,
		Status:    result.Status,
		Users:     result.Users,
		Failures:  result.Failures,
		StartedAt: result.StartedAt,
	}
	if cycleErr != nil {
		run.Error = cycleErr.Error()
	}
	if !result.CompletedAt.IsZero() {
		completed := result.CompletedAt
		run.CompletedAt = &completed
	}

	if err := t.recorder.SaveTrackingRun(context.WithoutCancel(ctx), run); err != nil {
		t.log.Warn("failed to record tracking run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

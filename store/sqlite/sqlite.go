/*
Package sqlite provides SQLite persistence for the tour guide server.

PURPOSE:
  Stores the attraction catalog and an audit trail of tracker cycles.
  Users, visits and rewards live in memory only; nothing here is on the
  reward hot path.

INTERFACES IMPLEMENTED:
  tourguide.AttractionCatalog: Attractions(ctx)
  api.RunRecorder:             SaveTrackingRun(ctx, run)

KEY TABLES:
  attractions:   Catalog entries keyed by stable attraction ID
  tracking_runs: One row per tracker cycle (users, failures, status)

INDEXES:
  - idx_attractions_name:         Deterministic catalog order
  - idx_tracking_runs_started_at: Latest runs first

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of database/sql.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so the HTTP layer can
  read tracking runs while the tracker writes them.

USAGE:
  store, err := sqlite.New("./tourguide.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  if err := store.SeedAttractions(ctx, provider.DefaultAttractions()); err != nil {
      log.Fatal(err)
  }

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - provider/catalog.go: Default attraction list used for seeding
  - api/tracker.go: Writes tracking runs
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/tourguide/tourguide"
)

// Store persists attractions and tracking runs.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ tourguide.AttractionCatalog = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attractions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attractions_name
		ON attractions(name);

	CREATE TABLE IF NOT EXISTS tracking_runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		users INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_tracking_runs_started_at
		ON tracking_runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTRACTION CATALOG
// =============================================================================

// SeedAttractions upserts the given attractions, keeping their order.
func (s *Store) SeedAttractions(ctx context.Context, attractions []tourguide.Attraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO attractions (id, name, city, state, latitude, longitude, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			city = excluded.city,
			state = excluded.state,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			position = excluded.position
	`

	now := time.Now().UTC().Format(time.RFC3339)
	for i, a := range attractions {
		if _, err := tx.ExecContext(ctx, query,
			a.ID.String(), a.Name, a.City, a.State,
			a.Location.Latitude, a.Location.Longitude, i, now,
		); err != nil {
			return fmt.Errorf("seed attraction %q: %w", a.Name, err)
		}
	}

	return tx.Commit()
}

// Attractions returns every stored attraction in seed order.
func (s *Store) Attractions(ctx context.Context) ([]tourguide.Attraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, city, state, latitude, longitude FROM attractions ORDER BY position, name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attractions []tourguide.Attraction
	for rows.Next() {
		var a tourguide.Attraction
		var id string
		if err := rows.Scan(&id, &a.Name, &a.City, &a.State, &a.Location.Latitude, &a.Location.Longitude); err != nil {
			return nil, err
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("attraction %q: bad id: %w", a.Name, err)
		}
		attractions = append(attractions, a)
	}
	return attractions, rows.Err()
}

// CountAttractions returns the catalog size.
func (s *Store) CountAttractions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attractions").Scan(&count)
	return count, err
}

// =============================================================================
// TRACKING RUNS
// =============================================================================

// Tracking run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusCancelled = "cancelled"
	RunStatusFailed    = "failed"
)

// TrackingRun records one tracker cycle.
type TrackingRun struct {
	ID          string
	Status      string
	Users       int
	Failures    int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SaveTrackingRun inserts or updates a tracking run.
func (s *Store) SaveTrackingRun(ctx context.Context, r TrackingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO tracking_runs (id, status, users, failures, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			users = excluded.users,
			failures = excluded.failures,
			error = excluded.error,
			completed_at = excluded.completed_at
	`

	var completedAt *string
	if r.CompletedAt != nil {
		s := r.CompletedAt.UTC().Format(timeLayout)
		completedAt = &s
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Status, r.Users, r.Failures, nullString(r.Error),
		r.StartedAt.UTC().Format(timeLayout), completedAt,
	)
	return err
}

// ListTrackingRuns returns the most recent runs first. A status filters
// the result; limit <= 0 returns every run.
func (s *Store) ListTrackingRuns(ctx context.Context, status string, limit int) ([]TrackingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	var args []any

	b.WriteString(`
		SELECT id, status, users, failures, error, started_at, completed_at
		FROM tracking_runs`)
	if status != "" {
		b.WriteString(" WHERE status = ?")
		args = append(args, status)
	}
	b.WriteString(" ORDER BY started_at DESC")
	if limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []TrackingRun
	for rows.Next() {
		var r TrackingRun
		var errText, completedAt sql.NullString
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Status, &r.Users, &r.Failures, &errText, &startedAt, &completedAt); err != nil {
			return nil, err
		}

		r.Error = errText.String
		r.StartedAt, _ = time.Parse(timeLayout, startedAt)
		if completedAt.Valid {
			t, _ := time.Parse(timeLayout, completedAt.String)
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Helper functions

// timeLayout is fixed width so started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

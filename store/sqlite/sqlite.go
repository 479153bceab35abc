/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists employees, score events, recruitment records and annual awards.
  The award engine sees it through award.Store, award.Population and
  award.StatsSource; the HTTP layer uses the concrete *Store.

INTERFACES IMPLEMENTED:
  award.Store:       CountAwards, ReplaceYear (atomic)
  award.Population:  AllEmployees, ScoreSummaries
  award.StatsSource: Aggregate queries behind the award statistics page

ATOMIC REPLACE:
  ReplaceYear runs delete-by-year and the bulk insert in one database
  transaction. Any insert failure rolls the delete back, so a year never
  ends up empty when it previously had records.

DERIVED TOTALS:
  employees.total_score is recomputed from score_records inside the same
  transaction as every score write (create, update, delete).

KEY TABLES:
  employees:            Personnel records, unique phone and id card
  score_records:        Behavior events, cascade-deleted with the employee
  recruitment_records:  Candidate pipeline
  annual_awards:        One row per (year, employee)

INDEXES:
  - idx_awards_year_employee: UNIQUE, enforces one award per employee per year
  - idx_scores_employee_date: Yearly aggregates (hot path of generation)
  - idx_employees_status_hire: Eligibility filter

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.
  Per-year serialization of award generation lives in award.YearLocks.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/hr.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - award/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/hr"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ award.Store       = (*Store)(nil)
	_ award.Population  = (*Store)(nil)
	_ award.StatsSource = (*Store)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
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
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		gender TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		id_card TEXT NOT NULL UNIQUE,
		hire_date TEXT NOT NULL,
		work_status TEXT NOT NULL,
		department TEXT NOT NULL,
		position TEXT NOT NULL,
		total_score INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_status_hire
		ON employees(work_status, hire_date);
	CREATE INDEX IF NOT EXISTS idx_employees_department
		ON employees(department);

	CREATE TABLE IF NOT EXISTS score_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		record_date TEXT NOT NULL,
		behavior TEXT NOT NULL,
		score_change INTEGER NOT NULL CHECK (score_change <> 0),
		reason TEXT NOT NULL,
		recorded_by TEXT NOT NULL,
		evidence TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_employee_date
		ON score_records(employee_id, record_date);
	CREATE INDEX IF NOT EXISTS idx_scores_date
		ON score_records(record_date);
	CREATE INDEX IF NOT EXISTS idx_scores_behavior
		ON score_records(behavior);

	CREATE TABLE IF NOT EXISTS recruitment_records (
		id TEXT PRIMARY KEY,
		interview_date TEXT NOT NULL,
		name TEXT NOT NULL,
		channel TEXT NOT NULL,
		gender TEXT NOT NULL,
		age INTEGER NOT NULL,
		id_card TEXT,
		phone TEXT NOT NULL,
		applied_position TEXT NOT NULL,
		trial_date TEXT,
		has_trial INTEGER NOT NULL DEFAULT 0,
		trial_days INTEGER NOT NULL DEFAULT 0,
		trial_status TEXT,
		notes TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recruitment_interview
		ON recruitment_records(interview_date);
	CREATE INDEX IF NOT EXISTS idx_recruitment_status
		ON recruitment_records(status);

	CREATE TABLE IF NOT EXISTS annual_awards (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		final_score INTEGER NOT NULL,
		award_rank INTEGER NOT NULL CHECK (award_rank >= 1),
		award_level TEXT NOT NULL,
		bonus_amount INTEGER NOT NULL CHECK (bonus_amount >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: one award per employee per year
	CREATE UNIQUE INDEX IF NOT EXISTS idx_awards_year_employee
		ON annual_awards(year, employee_id);
	CREATE INDEX IF NOT EXISTS idx_awards_year_rank
		ON annual_awards(year, award_rank);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within a transaction.
// If fn returns error, transaction is rolled back.
func (s *Store) WithTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Reset deletes every row. Used by demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.WithTx(ctx, func(q querier) error {
		for _, table := range []string{"annual_awards", "score_records", "recruitment_records", "employees"} {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func formatDate(t time.Time) string { return hr.FormatDate(t) }

func parseDate(s string) time.Time {
	t, _ := time.Parse(hr.DateLayout, s)
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// likePattern wraps a keyword for a LIKE match, escaping wildcards.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

// where accumulates AND-ed conditions.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// TableCounts returns the row count of every table, keyed by table name.
func (s *Store) TableCounts(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, 4)
	for _, table := range []string{"employees", "score_records", "recruitment_records", "annual_awards"} {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

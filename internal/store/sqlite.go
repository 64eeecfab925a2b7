// Package store provides run history storage implementations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// timeLayout has a fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteHistoryStore implements HistoryStore using SQLite for persistence.
type SQLiteHistoryStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
	now    func() time.Time
	last   time.Time // latest assigned CreatedAt, keeps generated IDs unique
}

var _ HistoryStore = (*SQLiteHistoryStore)(nil)

// NewSQLiteHistoryStore opens (or creates) the history database at dbPath.
func NewSQLiteHistoryStore(dbPath string) (*SQLiteHistoryStore, error) {
	// Ensure the parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	// Initialize schema
	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteHistoryStore{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteHistoryStore) Path() string {
	return s.dbPath
}

// RecordRun stores the run and its samples in a single transaction.
func (s *SQLiteHistoryStore) RecordRun(ctx context.Context, run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
		if !run.CreatedAt.After(s.last) {
			run.CreatedAt = s.last.Add(time.Nanosecond)
		}
		s.last = run.CreatedAt
	}
	if run.ID == "" {
		run.ID = fmt.Sprintf("run-%d", run.CreatedAt.UnixNano())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, kind,
			start_x, start_y, wish_x, wish_y, accel, frame_time, max_ticks,
			ticks, converged, stopped, final_x, final_y, final_speed, target_speed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.Kind,
		run.StartX, run.StartY, run.WishX, run.WishY, run.Accel, run.FrameTime, run.MaxTicks,
		run.Ticks, boolToInt(run.Converged), nullString(run.Stopped),
		run.FinalX, run.FinalY, run.FinalSpeed, run.TargetSpeed,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	if len(run.Samples) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_ticks (
				run_id, tick, vx, vy, speed, diff, current_speed, add_speed, accel_speed, applied
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("failed to prepare tick insert: %w", err)
		}
		defer stmt.Close()

		for _, sm := range run.Samples {
			if _, err := stmt.ExecContext(ctx,
				run.ID, sm.Tick, sm.VX, sm.VY, sm.Speed, sm.Diff,
				sm.CurrentSpeed, sm.AddSpeed, sm.AccelSpeed, boolToInt(sm.Applied),
			); err != nil {
				return "", fmt.Errorf("failed to insert tick %d: %w", sm.Tick, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `
	id, created_at, kind,
	start_x, start_y, wish_x, wish_y, accel, frame_time, max_ticks,
	ticks, converged, stopped, final_x, final_y, final_speed, target_speed`

// ListRuns returns the most recent runs first.
func (s *SQLiteHistoryStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT` + runColumns + ` FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its samples ordered by tick.
func (s *SQLiteHistoryStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT`+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, vx, vy, speed, diff, current_speed, add_speed, accel_speed, applied
		FROM run_ticks WHERE run_id = ? ORDER BY tick`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	run.Samples = []Sample{}
	for rows.Next() {
		var sm Sample
		var applied int
		if err := rows.Scan(&sm.Tick, &sm.VX, &sm.VY, &sm.Speed, &sm.Diff,
			&sm.CurrentSpeed, &sm.AddSpeed, &sm.AccelSpeed, &applied); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		sm.Applied = applied != 0
		run.Samples = append(run.Samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticks: %w", err)
	}
	return run, nil
}

// Clear deletes every run. Samples go with them via ON DELETE CASCADE.
func (s *SQLiteHistoryStore) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared runs: %w", err)
	}
	return int(n), nil
}

// Close closes the database.
func (s *SQLiteHistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (*Run, error) {
	var run Run
	var createdAt string
	var converged int
	var stopped sql.NullString
	err := r.Scan(
		&run.ID, &createdAt, &run.Kind,
		&run.StartX, &run.StartY, &run.WishX, &run.WishY, &run.Accel, &run.FrameTime, &run.MaxTicks,
		&run.Ticks, &converged, &stopped, &run.FinalX, &run.FinalY, &run.FinalSpeed, &run.TargetSpeed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q for run %s: %w", createdAt, run.ID, err)
	}
	run.Converged = converged != 0
	run.Stopped = stopped.String
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

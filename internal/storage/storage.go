// Package storage provides SQLite-backed persistence for emitted benchmark records.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/venueoracle/internal/models"
	_ "modernc.org/sqlite"
)

// Storage wraps a SQLite database holding finished runs and their records.
// Detector state is never written here.
type Storage struct {
	db      *sql.DB
	maxRuns int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/venueoracle/data.db.
func New(maxRuns int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "venueoracle", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s := &Storage{db: db, maxRuns: maxRuns}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			records     INTEGER NOT NULL DEFAULT 0,
			flagged     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq             INTEGER NOT NULL,
			ts              INTEGER NOT NULL,
			benchmark       REAL,
			total_liquidity REAL NOT NULL,
			stale           INTEGER NOT NULL,
			thin_liquidity  INTEGER NOT NULL,
			flash_loan      INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateRun registers a new run and returns it with a fresh ID.
func (s *Storage) CreateRun(source string, startedAt time.Time) (*models.Run, error) {
	run := &models.Run{
		ID:        uuid.New().String(),
		Source:    source,
		StartedAt: startedAt,
	}
	_, err := s.db.Exec(`INSERT INTO runs (id, source, started_at) VALUES (?,?,?)`,
		run.ID, run.Source, run.StartedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// AddRecords appends records to a run in emission order and updates its tallies.
func (s *Storage) AddRecords(runID string, records []models.BenchmarkRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var next int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seq)+1, 0) FROM records WHERE run_id = ?`, runID).Scan(&next); err != nil {
		return fmt.Errorf("failed to read sequence: %w", err)
	}

	flagged := 0
	for i, r := range records {
		var benchmark any
		if r.Benchmark.Valid {
			benchmark = r.Benchmark.Value
		}
		_, err := tx.Exec(`
			INSERT INTO records
				(run_id, seq, ts, benchmark, total_liquidity, stale, thin_liquidity, flash_loan)
			VALUES (?,?,?,?,?,?,?,?)`,
			runID, next+i, r.Timestamp.UnixNano(), benchmark, r.TotalLiquidity,
			boolToInt(r.Stale), boolToInt(r.ThinLiquidity), boolToInt(r.FlashLoan),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		if r.Flagged() {
			flagged++
		}
	}

	res, err := tx.Exec(`UPDATE runs SET records = records + ?, flagged = flagged + ? WHERE id = ?`,
		len(records), flagged, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}

	return tx.Commit()
}

func (s *Storage) GetRun(id string) (*models.Run, error) {
	row := s.db.QueryRow(`SELECT `+runCols+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRuns returns runs newest first.
func (s *Storage) ListRuns() ([]*models.Run, error) {
	rows, err := s.db.Query(`SELECT ` + runCols + ` FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()
	runs := []*models.Run{}
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRecords returns a run's records in emission order.
func (s *Storage) GetRecords(runID string) ([]models.BenchmarkRecord, error) {
	return s.queryRecords(`SELECT `+recordCols+` FROM records WHERE run_id = ? ORDER BY seq`, runID)
}

// GetFlaggedRecords returns only records with at least one detector raised.
func (s *Storage) GetFlaggedRecords(runID string) ([]models.BenchmarkRecord, error) {
	return s.queryRecords(`SELECT `+recordCols+` FROM records
		WHERE run_id = ? AND (stale = 1 OR thin_liquidity = 1 OR flash_loan = 1)
		ORDER BY seq`, runID)
}

func (s *Storage) queryRecords(query string, args ...any) ([]models.BenchmarkRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.BenchmarkRecord
	for rows.Next() {
		var r models.BenchmarkRecord
		var tsNano int64
		var benchmark sql.NullFloat64
		var stale, thin, flash int
		if err := rows.Scan(&tsNano, &benchmark, &r.TotalLiquidity, &stale, &thin, &flash); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Timestamp = time.Unix(0, tsNano).UTC()
		if benchmark.Valid {
			r.Benchmark = models.SomePrice(benchmark.Float64)
		}
		r.Stale = stale != 0
		r.ThinLiquidity = thin != 0
		r.FlashLoan = flash != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// RotateRuns keeps at most maxRuns newest runs by start time.
// Cascading deletes remove associated records.
func (s *Storage) RotateRuns() error {
	_, err := s.db.Exec(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)`, s.maxRuns)
	if err != nil {
		return fmt.Errorf("failed to rotate runs: %w", err)
	}
	return nil
}

const runCols = `id, source, started_at, records, flagged`

const recordCols = `ts, benchmark, total_liquidity, stale, thin_liquidity, flash_loan`

func scanRun(scan func(...any) error) (*models.Run, error) {
	var r models.Run
	var startedAtNano int64
	if err := scan(&r.ID, &r.Source, &startedAtNano, &r.Records, &r.Flagged); err != nil {
		return nil, err
	}
	r.StartedAt = time.Unix(0, startedAtNano)
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

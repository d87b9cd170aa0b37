package podds

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/richard-senior/podds/internal/logger"
)

// CalibrationStore is the collaborator contract for the append-only settled
// prediction log. Settlement of the same fixture+market is idempotent:
// last write wins, since a realized outcome cannot change.
type CalibrationStore interface {
	// Append records a prediction awaiting settlement
	Append(rec *CalibrationRecord) error
	// Settle marks the realized outcome for a prediction
	Settle(fixtureID, market string, outcome int) error
	// RecentWindow returns up to limit settled records, newest first. A
	// non-positive limit uses the configured calibration window.
	RecentWindow(limit int) ([]*CalibrationRecord, error)
	Close() error
}

// SQLiteCalibrationStore keeps the log in a local SQLite file. Use ":memory:"
// for tests.
type SQLiteCalibrationStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenCalibrationStore opens (creating if needed) the calibration database
func OpenCalibrationStore(path string) (*SQLiteCalibrationStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calibration database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping calibration database: %w", err)
	}

	store := &SQLiteCalibrationStore{db: db}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Calibration store initialized", path)
	return store, nil
}

func (s *SQLiteCalibrationStore) createTable() error {
	createSQL := `CREATE TABLE IF NOT EXISTS calibration_records (
		fixture_id TEXT NOT NULL,
		market TEXT NOT NULL,
		predicted_probability REAL NOT NULL,
		realized_outcome INTEGER NOT NULL DEFAULT -1,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (fixture_id, market)
	)`
	if _, err := s.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create calibration_records table: %w", err)
	}
	indexSQL := `CREATE INDEX IF NOT EXISTS idx_calibration_created ON calibration_records (created_at)`
	if _, err := s.db.Exec(indexSQL); err != nil {
		logger.Warn("Failed to create calibration index", err)
	}
	return nil
}

// Append inserts a prediction. Re-appending the same fixture+market replaces
// the pending row, which keeps retried writes idempotent.
func (s *SQLiteCalibrationStore) Append(rec *CalibrationRecord) error {
	if rec == nil {
		return fmt.Errorf("cannot append a nil calibration record")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO calibration_records (fixture_id, market, predicted_probability, realized_outcome, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(fixture_id, market) DO UPDATE SET
		   predicted_probability = excluded.predicted_probability,
		   created_at = excluded.created_at`,
		rec.FixtureID, rec.Market, rec.PredictedProbability, rec.RealizedOutcome, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append calibration record for %s/%s: %w", rec.FixtureID, rec.Market, err)
	}
	return nil
}

// Settle writes the realized outcome. Settling twice is harmless.
func (s *SQLiteCalibrationStore) Settle(fixtureID, market string, outcome int) error {
	if outcome != 0 && outcome != 1 {
		return fmt.Errorf("realized outcome must be 0 or 1, got %d", outcome)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(
		`UPDATE calibration_records SET realized_outcome = ? WHERE fixture_id = ? AND market = ?`,
		outcome, fixtureID, market,
	)
	if err != nil {
		return fmt.Errorf("failed to settle %s/%s: %w", fixtureID, market, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no calibration record found for %s/%s", fixtureID, market)
	}
	return nil
}

// RecentWindow reads the newest settled records, bounded so the feedback
// loop's cost stays predictable regardless of how long the log has grown
func (s *SQLiteCalibrationStore) RecentWindow(limit int) ([]*CalibrationRecord, error) {
	if limit <= 0 {
		limit = Config.CalibrationWindow
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT fixture_id, market, predicted_probability, realized_outcome, created_at
		 FROM calibration_records
		 WHERE realized_outcome IN (0, 1)
		 ORDER BY created_at DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration window: %w", err)
	}
	defer rows.Close()

	var records []*CalibrationRecord
	for rows.Next() {
		rec := &CalibrationRecord{}
		var createdAt int64
		if err := rows.Scan(&rec.FixtureID, &rec.Market, &rec.PredictedProbability, &rec.RealizedOutcome, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan calibration record: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database handle
func (s *SQLiteCalibrationStore) Close() error {
	return s.db.Close()
}

// Package storage persists run artifacts to SQLite: the extracted
// answer-feature table and the final report rows. Re-extracting features
// means re-streaming a multi-gigabyte Posts.xml, so a completed run's
// feature table is worth keeping around for ad-hoc queries.
//
// The store is write-mostly: the pipeline itself never reads it back during
// a run; stages hand their structures forward in memory.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/anvgorok/repshape/internal/models"
)

// Storage is a SQLite-backed artifact store for pipeline runs.
type Storage struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the artifact database at path. ":memory:" yields an
// ephemeral store for tests.
func New(path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the required tables.
func (s *Storage) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		generated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS answer_features (
		run_id TEXT NOT NULL,
		answer_id INTEGER NOT NULL,
		owner_id INTEGER NOT NULL,
		shape TEXT NOT NULL,
		length_bucket TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		has_code INTEGER NOT NULL,
		has_image INTEGER NOT NULL,
		has_ref INTEGER NOT NULL,
		upvotes INTEGER NOT NULL,
		accepted INTEGER NOT NULL,
		preferred INTEGER NOT NULL,
		PRIMARY KEY (run_id, answer_id)
	);
	CREATE TABLE IF NOT EXISTS segment_results (
		run_id TEXT NOT NULL,
		shape TEXT NOT NULL,
		coefficient TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, shape, coefficient)
	);
	CREATE TABLE IF NOT EXISTS segment_meta (
		run_id TEXT NOT NULL,
		shape TEXT NOT NULL,
		intercept REAL NOT NULL,
		observations INTEGER NOT NULL,
		converged INTEGER NOT NULL,
		warning TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, shape)
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SaveFeatures stores the extracted answer-feature table for a run in one
// transaction.
func (s *Storage) SaveFeatures(runID string, answers []models.AnswerFeatures) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO answer_features
		(run_id, answer_id, owner_id, shape, length_bucket, word_count,
		 has_code, has_image, has_ref, upvotes, accepted, preferred)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range answers {
		a := &answers[i]
		_, err := stmt.Exec(
			runID, a.AnswerID, a.OwnerID, string(a.Shape), string(a.LengthBucket),
			a.WordCount, boolInt(a.HasCode), boolInt(a.HasImage), boolInt(a.HasRef),
			a.Upvotes, boolInt(a.Accepted), boolInt(a.Preferred()),
		)
		if err != nil {
			return fmt.Errorf("failed to insert answer %d: %w", a.AnswerID, err)
		}
	}
	return tx.Commit()
}

// SaveReport stores the run record and every segment's coefficients.
func (s *Storage) SaveReport(report *models.Report) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, generated_at) VALUES (?, ?)`,
		report.RunID, report.GeneratedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for shape, seg := range report.Segments {
		if _, err := tx.Exec(
			`INSERT INTO segment_meta (run_id, shape, intercept, observations, converged, warning)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID, string(shape), seg.Intercept, seg.Observations,
			boolInt(seg.Converged), seg.Warning,
		); err != nil {
			return fmt.Errorf("failed to insert segment %s: %w", shape, err)
		}
		for name, value := range seg.Coefficients {
			if _, err := tx.Exec(
				`INSERT INTO segment_results (run_id, shape, coefficient, value)
				 VALUES (?, ?, ?, ?)`,
				report.RunID, string(shape), name, value,
			); err != nil {
				return fmt.Errorf("failed to insert coefficient %q for segment %s: %w", name, shape, err)
			}
		}
	}
	return tx.Commit()
}

// CountFeatures returns the number of stored answer rows for a run.
func (s *Storage) CountFeatures(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM answer_features WHERE run_id = ?`, runID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count features: %w", err)
	}
	return n, nil
}

// LoadSegment reads one stored segment result back. Used by tests and
// ad-hoc inspection, not by the pipeline.
func (s *Storage) LoadSegment(runID string, shape models.Shape) (models.SegmentResult, error) {
	seg := models.SegmentResult{Shape: shape, Coefficients: make(map[string]float64)}

	var converged int
	err := s.db.QueryRow(
		`SELECT intercept, observations, converged, warning
		 FROM segment_meta WHERE run_id = ? AND shape = ?`,
		runID, string(shape),
	).Scan(&seg.Intercept, &seg.Observations, &converged, &seg.Warning)
	if err != nil {
		return models.SegmentResult{}, fmt.Errorf("failed to load segment %s: %w", shape, err)
	}
	seg.Converged = converged != 0

	rows, err := s.db.Query(
		`SELECT coefficient, value FROM segment_results WHERE run_id = ? AND shape = ?`,
		runID, string(shape),
	)
	if err != nil {
		return models.SegmentResult{}, fmt.Errorf("failed to load coefficients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return models.SegmentResult{}, fmt.Errorf("failed to scan coefficient: %w", err)
		}
		seg.Coefficients[name] = value
	}
	if err := rows.Err(); err != nil {
		return models.SegmentResult{}, fmt.Errorf("failed to read coefficients: %w", err)
	}
	return seg, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

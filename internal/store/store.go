// Package store archives scoring runs in a relational database so past
// runs stay queryable after the CSV artifacts have moved on. The archive
// is optional: the pipeline is complete without it, and the CSV output
// remains the canonical result table.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/gradery/gradery/internal/domain"
)

// Driver selects the archive database.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens the archive database and ensures its schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:gradery.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/gradery?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, err
	}
	return db, nil
}

// Common DDL; types chosen to be valid on both sqlite and postgres.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  created_at BIGINT NOT NULL,
  rows INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scores (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  pos INTEGER NOT NULL,
  student_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  marks_awarded TEXT NOT NULL,
  max_marks INTEGER NOT NULL,
  confidence_score DOUBLE PRECISION NOT NULL,
  justification TEXT NOT NULL,
  PRIMARY KEY (run_id, pos)
);
`

// Store persists scoring runs.
type Store struct {
	db *sql.DB
}

// New wraps an opened archive database.
func New(db *sql.DB) *Store { return &Store{db: db} }

// SaveRun archives one completed scoring run and returns its id. Row
// position preserves the output-table order.
func (s *Store) SaveRun(ctx context.Context, records []domain.ScoreRecord) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, rows) VALUES ($1, $2, $3)`,
		runID, time.Now().Unix(), len(records),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for pos, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scores
			   (run_id, pos, student_id, question_id, marks_awarded,
			    max_marks, confidence_score, justification)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			runID, pos, r.StudentID, r.QuestionID, r.Awarded.String(),
			r.MaxMarks, r.Confidence, r.Justification,
		); err != nil {
			return "", fmt.Errorf("insert score row %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// LoadRun reads back one archived run in its original row order.
func (s *Store) LoadRun(ctx context.Context, runID string) ([]domain.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id, question_id, marks_awarded, max_marks,
		        confidence_score, justification
		   FROM scores WHERE run_id = $1 ORDER BY pos`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var r domain.ScoreRecord
		var marks string
		if err := rows.Scan(&r.StudentID, &r.QuestionID, &marks,
			&r.MaxMarks, &r.Confidence, &r.Justification); err != nil {
			return nil, err
		}
		if r.Awarded, err = domain.ParseMark(marks); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

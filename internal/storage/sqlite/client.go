// Package sqlite keeps a local history of benchmark runs so accuracy drift
// between runs is queryable without digging through checkpoint files.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/logger"
)

type Client struct {
	db *sql.DB
}

// RunRecord is one dataset result from a past run.
type RunRecord struct {
	ID             int64   `json:"id"`
	RunID          string  `json:"run_id"`
	Dataset        string  `json:"dataset"`
	Accuracy       float64 `json:"accuracy"`
	Correct        int     `json:"correct"`
	TotalQuestions int     `json:"total_questions"`
	CreatedAt      int64   `json:"created_at"`
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		dataset TEXT NOT NULL,
		accuracy REAL NOT NULL,
		correct INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_history_run ON run_history(run_id);
	CREATE INDEX IF NOT EXISTS idx_run_history_dataset ON run_history(dataset);
	CREATE INDEX IF NOT EXISTS idx_run_history_created ON run_history(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// InsertRunResult records one dataset's aggregate result under a run ID.
func (c *Client) InsertRunResult(runID string, r *models.BenchmarkResult) error {
	_, err := c.db.Exec(
		`INSERT INTO run_history (run_id, dataset, accuracy, correct, total_questions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, r.Dataset, r.Accuracy, r.Correct, r.TotalQuestions, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run result: %w", err)
	}
	return nil
}

// ListRunResults returns the most recent run records, newest first.
func (c *Client) ListRunResults(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.db.Query(
		`SELECT id, run_id, dataset, accuracy, correct, total_questions, created_at
		 FROM run_history ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Dataset, &rec.Accuracy,
			&rec.Correct, &rec.TotalQuestions, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	return records, nil
}

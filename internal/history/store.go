package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded pipeline invocation
type Run struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	PlanJSON  string    `json:"plan_json"`
	OK        bool      `json:"ok"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps past runs in a local sqlite database
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the history database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		plan_json TEXT NOT NULL DEFAULT '',
		ok INTEGER NOT NULL DEFAULT 0,
		answer TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save records one run. plan may be any JSON-marshalable value.
func (s *Store) Save(id, query string, plan interface{}, ok bool, answer string) error {
	planJSON := ""
	if plan != nil {
		data, err := json.Marshal(plan)
		if err != nil {
			return fmt.Errorf("failed to marshal plan for history: %w", err)
		}
		planJSON = string(data)
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, query, plan_json, ok, answer, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, query, planJSON, ok, answer, time.Now().UTC(),
	)
	return err
}

// Recent returns the latest n runs, newest first
func (s *Store) Recent(n int) ([]Run, error) {
	if n <= 0 {
		n = 10
	}

	rows, err := s.db.Query(
		`SELECT id, query, plan_json, ok, answer, created_at FROM runs ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Query, &r.PlanJSON, &r.OK, &r.Answer, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

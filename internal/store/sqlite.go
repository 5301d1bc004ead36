package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"taskforge/internal/logging"
	"taskforge/internal/task"
)

// SQLiteStore persists one row per tag, with the task list serialized as
// JSON. Row-per-tag keeps the read-modify-write contract trivial: writing a
// tag cannot touch any other tag's row.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path and applies
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open task database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("set sqlite journal_mode=WAL: %v", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS task_sets (
	tag        TEXT PRIMARY KEY,
	tasks      TEXT NOT NULL,
	task_count INTEGER NOT NULL,
	updated_at TEXT NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply task store schema: %w", err)
	}

	logging.Store("opened sqlite task store at %s", path)
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Load(tag string) ([]task.Task, error) {
	var raw string
	err := s.db.QueryRow("SELECT tasks FROM task_sets WHERE tag = ?", tag).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tag %q: %w", tag, err)
	}

	var tasks []task.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks for tag %q: %w", tag, err)
	}
	return tasks, nil
}

func (s *SQLiteStore) Save(tag string, tasks []task.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks for tag %q: %w", tag, err)
	}

	_, err = s.db.Exec(`
INSERT INTO task_sets (tag, tasks, task_count, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(tag) DO UPDATE SET tasks = excluded.tasks,
	task_count = excluded.task_count, updated_at = excluded.updated_at`,
		tag, string(data), len(tasks), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save tag %q: %w", tag, err)
	}

	logging.Store("saved %d tasks under tag %q to %s", len(tasks), tag, s.path)
	return nil
}

func (s *SQLiteStore) Tags() ([]string, error) {
	rows, err := s.db.Query("SELECT tag FROM task_sets ORDER BY tag")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

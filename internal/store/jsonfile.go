package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"taskforge/internal/logging"
	"taskforge/internal/task"
)

// fileDoc is the on-disk shape: every tag's task list in one file.
type fileDoc struct {
	Tags     map[string][]task.Task `json:"tags"`
	Metadata fileMetadata           `json:"metadata"`
}

type fileMetadata struct {
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// JSONFileStore keeps all tags in a single JSON file. Writes go through a
// temp file and rename so a crashed run never leaves a half-written store.
type JSONFileStore struct {
	path string
}

// NewJSONFileStore returns a store backed by the file at path. The file is
// created on first Save; a missing file reads as empty.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

func (s *JSONFileStore) Load(tag string) ([]task.Task, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	tasks, ok := doc.Tags[tag]
	if !ok {
		return nil, ErrTagNotFound
	}
	return tasks, nil
}

func (s *JSONFileStore) Save(tag string, tasks []task.Task) error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Tags[tag] = tasks
	doc.Metadata.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write task store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit task store: %w", err)
	}

	logging.Store("saved %d tasks under tag %q to %s", len(tasks), tag, s.path)
	return nil
}

func (s *JSONFileStore) Tags() ([]string, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(doc.Tags))
	for tag := range doc.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *JSONFileStore) read() (*fileDoc, error) {
	doc := &fileDoc{Tags: map[string][]task.Task{}}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task store: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse task store %s: %w", s.path, err)
	}
	if doc.Tags == nil {
		doc.Tags = map[string][]task.Task{}
	}
	return doc, nil
}

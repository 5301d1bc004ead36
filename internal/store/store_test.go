package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskforge/internal/task"
)

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: 1, Title: "Implement login", Priority: task.PriorityHigh,
			SourceDocumentID: task.NewFlexStrings("prd-1")},
		{ID: 2, Title: "Build dashboard", Dependencies: []int{1}},
	}
}

func TestJSONFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := NewJSONFileStore(path)

	_, err := s.Load("main")
	assert.ErrorIs(t, err, ErrTagNotFound)

	require.NoError(t, s.Save("main", sampleTasks()))

	got, err := s.Load("main")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Implement login", got[0].Title)
	assert.Equal(t, []int{1}, got[1].Dependencies)
}

func TestJSONFileStorePreservesOtherTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := NewJSONFileStore(path)

	require.NoError(t, s.Save("main", sampleTasks()))
	require.NoError(t, s.Save("experiment", []task.Task{{ID: 1, Title: "Spike"}}))

	main, err := s.Load("main")
	require.NoError(t, err)
	assert.Len(t, main, 2)

	tags, err := s.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"experiment", "main"}, tags)
}

func TestJSONFileStoreScalarProvenanceShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := NewJSONFileStore(path)
	require.NoError(t, s.Save("main", sampleTasks()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Tags map[string][]map[string]json.RawMessage `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	// Single-source provenance serializes as a plain string, not an array.
	raw := doc.Tags["main"][0]["sourceDocumentId"]
	assert.Equal(t, `"prd-1"`, string(raw))
}

func TestJSONFileStoreLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONFileStore(filepath.Join(dir, "tasks.json"))
	require.NoError(t, s.Save("main", sampleTasks()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tasks.json", entries[0].Name())
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load("main")
	assert.ErrorIs(t, err, ErrTagNotFound)

	require.NoError(t, s.Save("main", sampleTasks()))

	got, err := s.Load("main")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, task.PriorityHigh, got[0].Priority)
}

func TestSQLiteStoreOverwriteAndTags(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save("main", sampleTasks()))
	require.NoError(t, s.Save("main", sampleTasks()[:1]))
	require.NoError(t, s.Save("other", nil))

	got, err := s.Load("main")
	require.NoError(t, err)
	assert.Len(t, got, 1, "second save replaces the tag's list")

	tags, err := s.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "other"}, tags)
}

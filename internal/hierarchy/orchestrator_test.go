package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskforge/internal/generate"
	"taskforge/internal/priority"
	"taskforge/internal/store"
	"taskforge/internal/task"
)

// fakeGenerator yields a fixed number of tasks per call and records every
// request so tests can assert ordering and option threading.
type fakeGenerator struct {
	perSource int
	failFor   map[string]bool
	requests  []generate.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req generate.Request) (*generate.Result, error) {
	f.requests = append(f.requests, req)
	if f.failFor[req.SourceID] {
		return nil, errors.New("generation failed")
	}
	n := f.perSource
	if n == 0 {
		n = 2
	}
	tasks := make([]task.Task, n)
	for i := range tasks {
		tasks[i] = task.Task{
			ID:                 req.Options.CurrentTaskStartID + i,
			Title:              fmt.Sprintf("%s task %d", req.SourceID, i+1),
			Description:        "a generated task with enough text to stand on its own",
			SourceDocumentID:   task.NewFlexStrings(req.SourceID),
			SourceDocumentType: task.NewFlexStrings(string(req.SourceType)),
		}
	}
	return &generate.Result{
		Success:        true,
		GeneratedTasks: tasks,
		NextTaskID:     req.Options.CurrentTaskStartID + n,
	}, nil
}

type fixture struct {
	dir   string
	store *store.JSONFileStore
	gen   *fakeGenerator
	orch  *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	st := store.NewJSONFileStore(filepath.Join(dir, "tasks.json"))
	gen := &fakeGenerator{}
	return &fixture{
		dir:   dir,
		store: st,
		gen:   gen,
		orch:  New(st, gen, nil, priority.NewEngine()),
	}
}

func (f *fixture) source(t *testing.T, id, parentID string) task.DocumentSource {
	t.Helper()
	path := filepath.Join(f.dir, id+".md")
	require.NoError(t, os.WriteFile(path, []byte("# "+id+"\ncontent"), 0644))
	return task.DocumentSource{ID: id, Type: task.DocTypePRD, Path: path, ParentID: parentID}
}

func TestRunProcessesParentBeforeChild(t *testing.T) {
	f := newFixture(t)
	sources := []task.DocumentSource{
		f.source(t, "child", "root"),
		f.source(t, "root", ""),
	}

	result, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", FailFast: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "child"}, result.Processed)
	assert.Len(t, result.Tasks, 4)
	assert.Equal(t, 5, result.NextTaskID)
}

func TestRunCycleIsFatalBeforeAnyProcessing(t *testing.T) {
	f := newFixture(t)
	sources := []task.DocumentSource{
		f.source(t, "a", "b"),
		f.source(t, "b", "a"),
	}

	_, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", FailFast: true})
	require.ErrorIs(t, err, ErrCycle)
	assert.Empty(t, f.gen.requests, "no document may be processed on a cyclic configuration")

	_, err = f.store.Load("main")
	assert.ErrorIs(t, err, store.ErrTagNotFound, "nothing may be persisted")
}

func TestRunThreadsParentContext(t *testing.T) {
	f := newFixture(t)
	sources := []task.DocumentSource{
		f.source(t, "root", ""),
		f.source(t, "mid", "root"),
		f.source(t, "leaf", "mid"),
	}

	_, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", FailFast: true})
	require.NoError(t, err)
	require.Len(t, f.gen.requests, 3)

	assert.Empty(t, f.gen.requests[0].Options.ParentTasksContext)

	mid := f.gen.requests[1]
	require.Len(t, mid.Options.ParentTasksContext, 2)
	assert.Equal(t, "root task 1", mid.Options.ParentTasksContext[0].Title)

	// The leaf sees only its direct parent's tasks, not the root's.
	leaf := f.gen.requests[2]
	require.Len(t, leaf.Options.ParentTasksContext, 2)
	assert.Equal(t, "mid task 1", leaf.Options.ParentTasksContext[0].Title)
}

func TestRunDanglingParentIsLenient(t *testing.T) {
	f := newFixture(t)
	sources := []task.DocumentSource{
		f.source(t, "orphan", "no-such-source"),
	}

	result, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", FailFast: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, result.Processed)
	assert.Empty(t, f.gen.requests[0].Options.ParentTasksContext)
}

func TestRunTagConflict(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save("main", []task.Task{{ID: 1, Title: "existing"}}))

	sources := []task.DocumentSource{f.source(t, "prd", "")}
	_, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", FailFast: true})
	require.ErrorIs(t, err, ErrTagConflict)
	assert.Empty(t, f.gen.requests)
}

func TestRunAppendContinuesNumbering(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save("main", []task.Task{{ID: 7, Title: "existing"}}))

	sources := []task.DocumentSource{f.source(t, "prd", "")}
	result, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", Append: true, FailFast: true})
	require.NoError(t, err)

	assert.Equal(t, 8, f.gen.requests[0].Options.CurrentTaskStartID)
	assert.Equal(t, []int{7}, f.gen.requests[0].Options.ExistingTaskIDs,
		"persisted tasks remain valid dependency targets")
	assert.Len(t, result.Tasks, 3, "existing task plus two generated")
	assert.Equal(t, 10, result.NextTaskID)
}

func TestRunForceClearsOnceThenAppends(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save("main", []task.Task{{ID: 7, Title: "existing"}}))

	sources := []task.DocumentSource{
		f.source(t, "first", ""),
		f.source(t, "second", ""),
	}
	result, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", Force: true, FailFast: true})
	require.NoError(t, err)

	require.Len(t, f.gen.requests, 2)
	assert.True(t, f.gen.requests[0].Options.Force, "first source carries the destructive clear")
	assert.False(t, f.gen.requests[1].Options.Force)
	assert.True(t, f.gen.requests[1].Options.Append, "subsequent sources append")

	// Numbering restarted at 1; both sources' tasks accumulate.
	assert.Equal(t, 1, f.gen.requests[0].Options.CurrentTaskStartID)
	assert.Equal(t, 3, f.gen.requests[1].Options.CurrentTaskStartID)
	assert.Len(t, result.Tasks, 4)

	persisted, err := f.store.Load("main")
	require.NoError(t, err)
	assert.Len(t, persisted, 4, "pre-existing task is gone")
}

func TestRunMissingFileIsSkipped(t *testing.T) {
	f := newFixture(t)
	sources := []task.DocumentSource{
		{ID: "ghost", Type: task.DocTypePRD, Path: filepath.Join(f.dir, "missing.md")},
		f.source(t, "real", ""),
	}

	result, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", FailFast: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, result.Skipped)
	assert.Equal(t, []string{"real"}, result.Processed)
}

func TestRunFailFast(t *testing.T) {
	f := newFixture(t)
	f.gen.failFor = map[string]bool{"bad": true}
	sources := []task.DocumentSource{
		f.source(t, "bad", ""),
		f.source(t, "good", ""),
	}

	_, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main", FailFast: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Len(t, f.gen.requests, 1, "run aborts before the next source")

	_, err = f.store.Load("main")
	assert.ErrorIs(t, err, store.ErrTagNotFound)
}

func TestRunContinuesWithoutFailFast(t *testing.T) {
	f := newFixture(t)
	f.gen.failFor = map[string]bool{"bad": true}
	sources := []task.DocumentSource{
		f.source(t, "bad", ""),
		f.source(t, "good", ""),
	}

	result, err := f.orch.Run(context.Background(), sources, RunOptions{Tag: "main"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bad"}, result.Skipped)
	assert.Equal(t, []string{"good"}, result.Processed)
	assert.Len(t, result.Tasks, 2)
}

func TestRunPostPassEscalation(t *testing.T) {
	f := newFixture(t)
	sources := []task.DocumentSource{f.source(t, "prd", "")}

	result, err := f.orch.Run(context.Background(), sources, RunOptions{
		Tag: "main", FailFast: true, Escalate: true,
	})
	require.NoError(t, err)
	// The fake's PRD tasks have no stated priority; escalation assigns one.
	assert.Greater(t, result.Escalated, 0)
	for _, tk := range result.Tasks {
		assert.NotEmpty(t, tk.EscalationReason)
	}
}

func TestRunEscalationSkippedWhenNothingGenerated(t *testing.T) {
	f := newFixture(t)
	existing := task.Task{
		ID:                 7,
		Title:              "existing",
		Description:        "an existing task with plenty of descriptive text",
		Priority:           task.PriorityLow,
		SourceDocumentType: task.NewFlexStrings("PRD"),
	}
	require.NoError(t, f.store.Save("main", []task.Task{existing}))

	// The only source is unreadable, so the run generates nothing; the
	// escalation post-pass must leave the appended-to tasks alone.
	sources := []task.DocumentSource{
		{ID: "ghost", Type: task.DocTypePRD, Path: filepath.Join(f.dir, "missing.md")},
	}
	result, err := f.orch.Run(context.Background(), sources, RunOptions{
		Tag: "main", Append: true, Escalate: true,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Escalated)

	persisted, err := f.store.Load("main")
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, task.PriorityLow, persisted[0].Priority)
	assert.Empty(t, persisted[0].EscalationReason)
}

func TestRunAutoTypeWithoutClassifierDefaultsToOther(t *testing.T) {
	f := newFixture(t)
	src := f.source(t, "mystery", "")
	src.Type = task.DocTypeAuto

	result, err := f.orch.Run(context.Background(), []task.DocumentSource{src}, RunOptions{Tag: "main", FailFast: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"mystery"}, result.Processed)
	assert.Equal(t, task.DocTypeOther, f.gen.requests[0].SourceType)
}

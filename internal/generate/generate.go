// Package generate turns one source document into a batch of tasks through
// an LLM call. The orchestrator depends only on the Generator interface; the
// LLM-backed implementation lives here so runs can swap in fakes.
package generate

import (
	"context"

	"taskforge/internal/task"
)

// Request describes one generation call for a single document.
type Request struct {
	DocumentPath string
	Content      string
	SourceID     string
	SourceType   task.DocType
	TargetCount  int

	Options Options
}

// Options carry the run-level flags the orchestrator threads through.
type Options struct {
	Tag                string
	Force              bool
	Append             bool
	Research           bool
	CurrentTaskStartID int

	// ParentTasksContext holds the parent source's generated tasks. Their ids
	// are valid dependency targets for this batch.
	ParentTasksContext []task.Task

	// ExistingTaskIDs are the ids already persisted under the tag before the
	// run started. They are also valid dependency targets.
	ExistingTaskIDs []int
}

// Result is the outcome of one generation call.
type Result struct {
	Success        bool        `json:"success"`
	GeneratedTasks []task.Task `json:"generatedTasks"`
	NextTaskID     int         `json:"nextTaskId"`
	Telemetry      *Telemetry  `json:"telemetry,omitempty"`
}

// Telemetry records per-call generation statistics.
type Telemetry struct {
	PromptChars         int `json:"promptChars"`
	RawTaskCount        int `json:"rawTaskCount"`
	DroppedDependencies int `json:"droppedDependencies"`
}

// Generator produces tasks from one document.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

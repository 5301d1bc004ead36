// Package hierarchy orchestrates a full multi-document run: it sorts the
// configured sources parent-before-children, classifies ambiguous ones,
// invokes the single-document generator per source with the parent's tasks
// as context, manages id allocation across the run, and persists the
// aggregate result.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"taskforge/internal/classify"
	"taskforge/internal/generate"
	"taskforge/internal/logging"
	"taskforge/internal/priority"
	"taskforge/internal/store"
	"taskforge/internal/task"
)

// ErrTagConflict reports existing tasks under the target tag when neither
// force nor append was requested.
var ErrTagConflict = errors.New("hierarchy: tag already has tasks (use force or append)")

// RunOptions control one hierarchy run.
type RunOptions struct {
	Tag      string
	Force    bool
	Append   bool
	Research bool
	Escalate bool

	// FailFast aborts the run on the first per-source generation failure.
	FailFast bool

	// AllowLLMClassify is the global default for auto-typed sources; a
	// source's own AllowLLMClassify overrides it.
	AllowLLMClassify    bool
	ClassifierThreshold float64
}

// RunResult summarizes a completed run.
type RunResult struct {
	RunID      string
	Tag        string
	Tasks      []task.Task
	NextTaskID int

	Processed []string // source ids that contributed tasks
	Skipped   []string // source ids skipped by a soft failure
	Escalated int      // tasks whose priority changed in the post-pass
}

// Orchestrator wires the run's collaborators together.
type Orchestrator struct {
	store      store.Store
	generator  generate.Generator
	classifier *classify.Classifier
	priorities *priority.Engine
}

// New creates an orchestrator. classifier may be nil when no source uses
// type auto.
func New(st store.Store, gen generate.Generator, classifier *classify.Classifier, priorities *priority.Engine) *Orchestrator {
	return &Orchestrator{store: st, generator: gen, classifier: classifier, priorities: priorities}
}

// Run processes all sources and persists the aggregate task list for the
// tag. On a fatal error nothing is written.
func (o *Orchestrator) Run(ctx context.Context, sources []task.DocumentSource, opts RunOptions) (*RunResult, error) {
	runID := uuid.New().String()[:8]
	logging.Hierarchy("run %s: %d sources, tag %q", runID, len(sources), opts.Tag)

	ordered, err := SortSources(sources)
	if err != nil {
		return nil, err
	}

	aggregate, nextID, err := o.openTag(opts)
	if err != nil {
		return nil, err
	}

	result := &RunResult{RunID: runID, Tag: opts.Tag}
	generated := make(map[string][]task.Task, len(ordered))
	anyGenerated := false

	// Tasks that survived openTag are legal dependency targets for every
	// source in this run.
	existingIDs := make([]int, 0, len(aggregate))
	for i := range aggregate {
		existingIDs = append(existingIDs, aggregate[i].ID)
	}

	for _, src := range ordered {
		content, err := os.ReadFile(src.Path)
		if err != nil {
			logging.HierarchyWarn("run %s: source %q: cannot read %s: %v, skipping", runID, src.ID, src.Path, err)
			result.Skipped = append(result.Skipped, src.ID)
			continue
		}

		docType := o.resolveType(ctx, src, string(content), opts)

		var parentContext []task.Task
		if src.ParentID != "" {
			parentContext = generated[src.ParentID]
		}

		req := generate.Request{
			DocumentPath: src.Path,
			Content:      string(content),
			SourceID:     src.ID,
			SourceType:   docType,
			TargetCount:  src.NumTasks,
			Options: generate.Options{
				Tag:      opts.Tag,
				Force:    opts.Force && !anyGenerated,
				Append:   !opts.Force || anyGenerated,
				Research: opts.Research,

				CurrentTaskStartID: nextID,
				ParentTasksContext: parentContext,
				ExistingTaskIDs:    existingIDs,
			},
		}

		res, err := o.generator.Generate(ctx, req)
		if err != nil {
			if opts.FailFast {
				return nil, fmt.Errorf("source %q failed: %w", src.ID, err)
			}
			logging.HierarchyError("run %s: source %q failed, continuing: %v", runID, src.ID, err)
			result.Skipped = append(result.Skipped, src.ID)
			continue
		}

		generated[src.ID] = res.GeneratedTasks
		aggregate = append(aggregate, res.GeneratedTasks...)
		nextID = res.NextTaskID
		anyGenerated = true
		result.Processed = append(result.Processed, src.ID)
		logging.Hierarchy("run %s: source %q (%s) produced %d tasks, next id %d",
			runID, src.ID, docType, len(res.GeneratedTasks), nextID)
	}

	if opts.Escalate && anyGenerated {
		escalated, changed := o.priorities.EscalateAll(aggregate)
		aggregate = escalated
		result.Escalated = changed
		logging.Hierarchy("run %s: post-pass escalation changed %d of %d tasks", runID, changed, len(aggregate))
	}

	if err := o.store.Save(opts.Tag, aggregate); err != nil {
		return nil, fmt.Errorf("persist tag %q: %w", opts.Tag, err)
	}

	result.Tasks = aggregate
	result.NextTaskID = nextID
	logging.Hierarchy("run %s: done, %d tasks under tag %q (%d sources processed, %d skipped)",
		runID, len(aggregate), opts.Tag, len(result.Processed), len(result.Skipped))
	return result, nil
}

// openTag loads the tag's current tasks and resolves the id-accounting mode
// once at the start of the run.
func (o *Orchestrator) openTag(opts RunOptions) ([]task.Task, int, error) {
	existing, err := o.store.Load(opts.Tag)
	if err != nil && !errors.Is(err, store.ErrTagNotFound) {
		return nil, 0, fmt.Errorf("load tag %q: %w", opts.Tag, err)
	}

	if len(existing) == 0 {
		return nil, 1, nil
	}

	switch {
	case opts.Force:
		logging.Hierarchy("force: clearing %d existing tasks under tag %q", len(existing), opts.Tag)
		return nil, 1, nil
	case opts.Append:
		next := task.MaxID(existing) + 1
		logging.Hierarchy("append: %d existing tasks under tag %q, continuing at id %d", len(existing), opts.Tag, next)
		return existing, next, nil
	default:
		return nil, 0, fmt.Errorf("%w: tag %q has %d tasks", ErrTagConflict, opts.Tag, len(existing))
	}
}

// resolveType returns the source's document type, classifying when the
// configuration says auto. Classification never aborts the run.
func (o *Orchestrator) resolveType(ctx context.Context, src task.DocumentSource, content string, opts RunOptions) task.DocType {
	if src.Type != task.DocTypeAuto && src.Type != "" {
		return task.NormalizeDocType(string(src.Type))
	}

	if o.classifier == nil {
		logging.HierarchyWarn("source %q is auto but no classifier is configured, defaulting to OTHER", src.ID)
		return task.DocTypeOther
	}

	allowLLM := opts.AllowLLMClassify
	if src.AllowLLMClassify != nil {
		allowLLM = *src.AllowLLMClassify
	}

	res := o.classifier.Classify(ctx, content, classify.Options{
		UseLLMFallback: allowLLM,
		Threshold:      opts.ClassifierThreshold,
	})
	logging.Hierarchy("source %q classified as %s (confidence %.2f, source %s)",
		src.ID, res.Type, res.Confidence, res.Source)
	return res.Type
}

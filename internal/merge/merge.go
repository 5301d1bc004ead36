// Package merge collapses near-identical tasks generated from different
// documents into single records. Detection runs in tiers of increasing cost:
// exact content hash, Jaccard similarity, then optional LLM arbitration for
// the borderline band. Consolidation is deterministic: the lowest id always
// survives and absorbs the rest.
package merge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"taskforge/internal/fingerprint"
	"taskforge/internal/logging"
	"taskforge/internal/priority"
	"taskforge/internal/similarity"
	"taskforge/internal/task"
)

// DefaultSimilarityThreshold is the Jaccard score at which two tasks merge
// without arbitration.
const DefaultSimilarityThreshold = 0.85

// llmBandFloor is the similarity above which a borderline pair may be sent
// to LLM arbitration.
const llmBandFloor = 0.5

// llmAcceptConfidence is the minimum arbitration confidence to accept.
const llmAcceptConfidence = 0.7

// ErrGroupTooSmall reports a consolidation call with fewer than two tasks.
// Candidate grouping filters singletons, so hitting this is a caller bug.
var ErrGroupTooSmall = errors.New("merge: consolidation group needs at least 2 tasks")

// Strategy names the tier that decided a merge.
type Strategy string

const (
	StrategyHash     Strategy = "hash"
	StrategySemantic Strategy = "semantic"
	StrategyLLM      Strategy = "llm"
)

// Options control one merge run.
type Options struct {
	SimilarityThreshold float64 // 0 means DefaultSimilarityThreshold
	UseLLM              bool
	Escalate            bool
}

// Event records one merge decision and its evidence.
type Event struct {
	KeptID     int      `json:"keptId"`
	MergedFrom []int    `json:"mergedFrom"`
	Strategy   Strategy `json:"strategy"`
	Similarity float64  `json:"similarity,omitempty"` // semantic tier evidence
	Confidence float64  `json:"confidence,omitempty"` // llm tier evidence
	Reasoning  string   `json:"reasoning,omitempty"`
}

// Telemetry summarizes the run for logging and reporting.
type Telemetry struct {
	RunID      string           `json:"runId"`
	Elapsed    time.Duration    `json:"elapsed"`
	LLMCalls   int              `json:"llmCalls"`
	ByStrategy map[Strategy]int `json:"byStrategy"`
}

// Report is the outcome of a merge run.
type Report struct {
	OriginalCount int       `json:"originalCount"`
	FinalCount    int       `json:"finalCount"`
	Events        []Event   `json:"events"`
	CycleWarnings []string  `json:"cycleWarnings,omitempty"`
	Telemetry     Telemetry `json:"telemetry"`
}

// Arbiter is the external LLM collaborator asked whether two tasks are the
// same unit of work. Any error is treated as "do not merge".
type Arbiter interface {
	Arbitrate(ctx context.Context, a, b *task.Task) (shouldMerge bool, confidence float64, reasoning string, err error)
}

// Engine runs the merge pipeline.
type Engine struct {
	priorities *priority.Engine
	arbiter    Arbiter // nil disables the LLM tier regardless of options
}

// New creates a merge engine. arbiter may be nil.
func New(priorities *priority.Engine, arbiter Arbiter) *Engine {
	return &Engine{priorities: priorities, arbiter: arbiter}
}

// Merge returns the consolidated task list and a report. The input list is
// never mutated.
func (e *Engine) Merge(ctx context.Context, tasks []task.Task, opts Options) ([]task.Task, *Report, error) {
	start := time.Now()
	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	report := &Report{
		OriginalCount: len(tasks),
		Events:        []Event{},
		Telemetry: Telemetry{
			RunID:      uuid.New().String()[:8],
			ByStrategy: map[Strategy]int{},
		},
	}

	working := task.CloneList(tasks)
	active := make(map[int]*task.Task, len(working))
	order := make([]int, 0, len(working))
	for i := range working {
		active[working[i].ID] = &working[i]
		order = append(order, working[i].ID)
	}

	// Candidate grouping by coarse key; singleton groups cannot merge.
	groups := make(map[string][]int)
	for _, id := range order {
		key := fingerprint.GroupKey(active[id])
		groups[key] = append(groups[key], id)
	}
	groupKeys := make([]string, 0, len(groups))
	for key, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		groupKeys = append(groupKeys, key)
	}
	sort.Strings(groupKeys) // deterministic group processing order

	mergedInto := make(map[int]int)
	for _, key := range groupKeys {
		ids := groups[key]
		sort.Ints(ids)
		logging.MergeDebug("candidate group %q: %v", key, ids)
		if err := e.mergeGroup(ctx, ids, active, mergedInto, threshold, opts, report); err != nil {
			return nil, nil, err
		}
	}

	resolveChains(mergedInto)

	// Collect survivors in original order and rewrite dependencies.
	result := make([]task.Task, 0, len(order))
	for _, id := range order {
		if _, gone := mergedInto[id]; gone {
			continue
		}
		result = append(result, *active[id])
	}
	ReindexDependencies(result, mergedInto)

	if cycles := detectDependencyCycles(result); len(cycles) > 0 {
		report.CycleWarnings = cycles
		for _, c := range cycles {
			logging.MergeWarn("post-merge dependency cycle: %s", c)
		}
	}

	report.FinalCount = len(result)
	report.Telemetry.Elapsed = time.Since(start)
	logging.Merge("merge run %s: %d -> %d tasks (%d events, %d llm calls) in %s",
		report.Telemetry.RunID, report.OriginalCount, report.FinalCount,
		len(report.Events), report.Telemetry.LLMCalls, report.Telemetry.Elapsed.Round(time.Millisecond))

	return result, report, nil
}

// mergeGroup runs the three tiers over one candidate group. active and
// mergedInto are shared run state: merged-away ids are removed from active
// and recorded in mergedInto.
func (e *Engine) mergeGroup(ctx context.Context, ids []int, active map[int]*task.Task, mergedInto map[int]int, threshold float64, opts Options, report *Report) error {
	// Tier 1: exact hash match merges unconditionally.
	byHash := make(map[string][]int)
	hashOrder := make([]string, 0, len(ids))
	for _, id := range ids {
		h := fingerprint.Hash(active[id])
		if _, seen := byHash[h]; !seen {
			hashOrder = append(hashOrder, h)
		}
		byHash[h] = append(byHash[h], id)
	}
	for _, h := range hashOrder {
		dupes := byHash[h]
		if len(dupes) < 2 {
			continue
		}
		if err := e.apply(dupes, active, mergedInto, opts, report, Event{Strategy: StrategyHash}); err != nil {
			return err
		}
	}

	// Tiers 2 and 3: ordered pairwise comparison among survivors. Merges
	// mutate the primary, so later comparisons see the consolidated text.
	for i := 0; i < len(ids); i++ {
		a, ok := active[ids[i]]
		if !ok {
			continue
		}
		for j := i + 1; j < len(ids); j++ {
			b, ok := active[ids[j]]
			if !ok {
				continue
			}

			score := similarity.Score(a, b)
			if score >= threshold {
				if err := e.apply([]int{a.ID, b.ID}, active, mergedInto, opts, report,
					Event{Strategy: StrategySemantic, Similarity: score}); err != nil {
					return err
				}
				// Consolidation installs a fresh clone under the primary's id.
				a = active[ids[i]]
				continue
			}

			if opts.UseLLM && e.arbiter != nil && score > llmBandFloor {
				report.Telemetry.LLMCalls++
				shouldMerge, confidence, reasoning, err := e.arbiter.Arbitrate(ctx, a, b)
				if err != nil {
					logging.MergeWarn("llm arbitration failed for tasks %d/%d: %v", a.ID, b.ID, err)
					continue
				}
				if shouldMerge && confidence > llmAcceptConfidence {
					if err := e.apply([]int{a.ID, b.ID}, active, mergedInto, opts, report,
						Event{Strategy: StrategyLLM, Similarity: score, Confidence: confidence, Reasoning: reasoning}); err != nil {
						return err
					}
					a = active[ids[i]]
				}
			}
		}
	}
	return nil
}

// apply consolidates the given ids and records the merge event.
func (e *Engine) apply(ids []int, active map[int]*task.Task, mergedInto map[int]int, opts Options, report *Report, evt Event) error {
	group := make([]*task.Task, 0, len(ids))
	for _, id := range ids {
		t, ok := active[id]
		if !ok {
			return fmt.Errorf("merge: task %d already consolidated", id)
		}
		group = append(group, t)
	}

	survivor, err := e.consolidate(group, opts)
	if err != nil {
		return err
	}

	evt.KeptID = survivor.ID
	for _, t := range group {
		if t.ID == survivor.ID {
			continue
		}
		mergedInto[t.ID] = survivor.ID
		delete(active, t.ID)
		evt.MergedFrom = append(evt.MergedFrom, t.ID)
	}
	sort.Ints(evt.MergedFrom)
	active[survivor.ID] = survivor

	report.Events = append(report.Events, evt)
	report.Telemetry.ByStrategy[evt.Strategy]++
	logging.MergeDebug("merged %v into %d via %s", evt.MergedFrom, evt.KeptID, evt.Strategy)
	return nil
}

// resolveChains collapses transitive merge mappings (3 -> 2, 2 -> 1 becomes
// 3 -> 1) so dependency rewriting needs a single lookup.
func resolveChains(mergedInto map[int]int) {
	for id, target := range mergedInto {
		seen := map[int]bool{id: true}
		for {
			next, ok := mergedInto[target]
			if !ok || seen[target] {
				break
			}
			seen[target] = true
			target = next
		}
		mergedInto[id] = target
	}
}

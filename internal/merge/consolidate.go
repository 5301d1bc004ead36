package merge

import (
	"fmt"
	"sort"
	"strings"

	"taskforge/internal/task"
)

// consolidate folds a group of duplicate tasks into one surviving record.
// The group is sorted by id and the lowest id becomes the primary; every
// set-valued field takes the deduplicated union across the group.
func (e *Engine) consolidate(group []*task.Task, opts Options) (*task.Task, error) {
	if len(group) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrGroupTooSmall, len(group))
	}

	sorted := make([]*task.Task, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	primary := sorted[0]
	survivor := primary.Clone()
	originalPriority := primary.Priority

	depSet := make(map[int]bool)
	for _, d := range survivor.Dependencies {
		depSet[d] = true
	}

	descriptions := []string{}
	seenDesc := map[string]bool{}
	addDesc := func(d string) {
		d = strings.TrimSpace(d)
		if d == "" || seenDesc[d] {
			return
		}
		seenDesc[d] = true
		descriptions = append(descriptions, d)
	}
	addDesc(primary.Description)

	for _, t := range sorted[1:] {
		survivor.MergedFrom = append(survivor.MergedFrom, t.ID)
		survivor.MergedFrom = append(survivor.MergedFrom, t.MergedFrom...)

		survivor.SourceDocumentID = survivor.SourceDocumentID.Union(t.SourceDocumentID)
		survivor.SourceDocumentType = survivor.SourceDocumentType.Union(t.SourceDocumentType)

		survivor.Screen = survivor.Screen.Union(t.Screen)
		survivor.Component = survivor.Component.Union(t.Component)
		survivor.EpicID = survivor.EpicID.Union(t.EpicID)
		survivor.Module = survivor.Module.Union(t.Module)
		survivor.Layer = survivor.Layer.Union(t.Layer)
		survivor.Viewport = survivor.Viewport.Union(t.Viewport)
		survivor.InfraZone = survivor.InfraZone.Union(t.InfraZone)

		for _, d := range t.Dependencies {
			if !depSet[d] {
				depSet[d] = true
				survivor.Dependencies = append(survivor.Dependencies, d)
			}
		}

		survivor.Subtasks = append(survivor.Subtasks, t.Subtasks...)
		survivor.Priority = task.MaxPriority(survivor.Priority, t.Priority)
		addDesc(t.Description)
	}

	sort.Ints(survivor.MergedFrom)
	survivor.MergedFrom = dedupeSortedInts(survivor.MergedFrom)

	if len(descriptions) > 1 {
		survivor.Description = strings.Join(descriptions, " | ")
	}

	if survivor.Priority != originalPriority {
		survivor.AppendNote(fmt.Sprintf("Priority upgraded to '%s' due to task merge.", survivor.Priority))
	}

	if opts.Escalate && e.priorities != nil {
		survivor = e.priorities.EscalateAfterMerge(survivor)
	}

	return survivor, nil
}

func dedupeSortedInts(in []int) []int {
	out := in[:0]
	for i, v := range in {
		if i == 0 || v != in[i-1] {
			out = append(out, v)
		}
	}
	return out
}

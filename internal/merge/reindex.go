package merge

import (
	"fmt"
	"sort"

	"taskforge/internal/task"
)

// ReindexDependencies rewrites every dependency pointing at a merged-away id
// to its surviving replacement, then deduplicates and drops self-references.
// mergedInto must already be chain-resolved.
func ReindexDependencies(tasks []task.Task, mergedInto map[int]int) {
	for i := range tasks {
		if len(tasks[i].Dependencies) == 0 {
			continue
		}
		seen := make(map[int]bool, len(tasks[i].Dependencies))
		out := tasks[i].Dependencies[:0]
		for _, dep := range tasks[i].Dependencies {
			if target, ok := mergedInto[dep]; ok {
				dep = target
			}
			if dep == tasks[i].ID || seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, dep)
		}
		tasks[i].Dependencies = out
	}
}

// detectDependencyCycles runs a verification-only DFS over the surviving
// tasks. Cycles are reported, never repaired: a cycle here means a document
// or merge rewrite reintroduced one and a human should look at it.
func detectDependencyCycles(tasks []task.Task) []string {
	deps := make(map[int][]int, len(tasks))
	for i := range tasks {
		deps[tasks[i].ID] = tasks[i].Dependencies
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[int]int, len(tasks))
	var cycles []string

	var visit func(id int, path []int)
	visit = func(id int, path []int) {
		state[id] = visiting
		path = append(path, id)
		for _, dep := range deps[id] {
			if _, known := deps[dep]; !known {
				continue // reference outside this set; membership was checked upstream
			}
			switch state[dep] {
			case visiting:
				cycles = append(cycles, formatCycle(path, dep))
			case unvisited:
				visit(dep, path)
			}
		}
		state[id] = done
	}

	ids := make([]int, 0, len(deps))
	for id := range deps {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if state[id] == unvisited {
			visit(id, nil)
		}
	}
	return cycles
}

func formatCycle(path []int, closing int) string {
	start := 0
	for i, id := range path {
		if id == closing {
			start = i
			break
		}
	}
	s := ""
	for _, id := range path[start:] {
		s += fmt.Sprintf("%d -> ", id)
	}
	return s + fmt.Sprintf("%d", closing)
}

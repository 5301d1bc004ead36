package hierarchy

import (
	"errors"
	"fmt"

	"taskforge/internal/logging"
	"taskforge/internal/task"
)

// ErrCycle reports a circular parentId chain among document sources. It is
// fatal: the run aborts before any document is processed.
var ErrCycle = errors.New("hierarchy: circular parent reference among document sources")

// SortSources orders sources parent-before-children (pre-order over the
// forest implied by parentId links). A parentId naming an unknown source is
// lenient: the source is logged and treated as a root, so it still gets
// processed, just with empty parent context.
func SortSources(sources []task.DocumentSource) ([]task.DocumentSource, error) {
	byID := make(map[string]*task.DocumentSource, len(sources))
	for i := range sources {
		byID[sources[i].ID] = &sources[i]
	}

	children := make(map[string][]string)
	var roots []string
	for i := range sources {
		s := &sources[i]
		if s.ParentID == "" {
			roots = append(roots, s.ID)
			continue
		}
		if _, ok := byID[s.ParentID]; !ok {
			logging.HierarchyWarn("source %q references unknown parent %q, treating as root", s.ID, s.ParentID)
			roots = append(roots, s.ID)
			continue
		}
		children[s.ParentID] = append(children[s.ParentID], s.ID)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(sources))
	ordered := make([]task.DocumentSource, 0, len(sources))

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("%w: involving source %q", ErrCycle, id)
		case done:
			return nil
		}
		state[id] = visiting
		ordered = append(ordered, *byID[id])
		for _, child := range children[id] {
			if err := visit(child); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}

	// Every source reachable from no root sits on a cycle.
	if len(ordered) != len(sources) {
		for i := range sources {
			if state[sources[i].ID] == unvisited {
				return nil, fmt.Errorf("%w: involving source %q", ErrCycle, sources[i].ID)
			}
		}
	}
	return ordered, nil
}

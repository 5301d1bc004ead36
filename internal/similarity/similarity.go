// Package similarity scores lexical overlap between two tasks. It is a
// deliberately cheap heuristic (Jaccard over word sets), used as the middle
// tier between exact hashing and LLM arbitration in the merge engine.
package similarity

import (
	"strings"

	"taskforge/internal/task"
)

// minTokenLen discards stopword-sized tokens ("a", "to", "of").
const minTokenLen = 3

// Tokens extracts the comparison vocabulary of a task: lowercased whitespace
// tokens of title+description, short tokens dropped.
func Tokens(t *task.Task) map[string]struct{} {
	text := strings.ToLower(t.Title + " " + t.Description)
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		if len(tok) < minTokenLen {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// Score computes Jaccard similarity between the two tasks' token sets.
// Two empty vocabularies are identical by vacuity (1.0); one empty and one
// non-empty share nothing (0.0).
func Score(a, b *task.Task) float64 {
	ta, tb := Tokens(a), Tokens(b)

	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// Package fingerprint derives the stable identifiers the merge engine uses
// to find duplicate candidates: a coarse grouping key for bucketing and a
// content hash for exact-duplicate detection. Both are pure functions of the
// task's normalized fields.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"taskforge/internal/task"
)

// Leading verbs and trailing nouns stripped from titles before grouping, so
// "Implement Login" and "Create Login Implementation" bucket together.
var (
	leadingVerbs = map[string]bool{
		"implement": true,
		"create":    true,
		"add":       true,
		"build":     true,
		"setup":     true,
		"configure": true,
	}
	trailingNouns = map[string]bool{
		"implementation": true,
		"setup":          true,
		"configuration":  true,
	}
)

// NormalizeTitle lowercases a title, collapses punctuation and whitespace,
// and strips the fixed leading-verb and trailing-noun sets.
func NormalizeTitle(title string) string {
	tokens := tokenize(title)
	for len(tokens) > 1 && leadingVerbs[tokens[0]] {
		tokens = tokens[1:]
	}
	for len(tokens) > 1 && trailingNouns[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// GroupKey builds the coarse candidate-grouping key from the normalized
// title plus the screen, component, and epic identifiers. Tasks sharing a
// key are duplicate candidates; tasks that do not cannot merge.
func GroupKey(t *task.Task) string {
	parts := []string{
		NormalizeTitle(t.Title),
		strings.ToLower(strings.Join(t.Screen, ",")),
		strings.ToLower(strings.Join(t.Component, ",")),
		strings.ToLower(strings.Join(t.EpicID, ",")),
	}
	return strings.Join(parts, "|")
}

// Hash computes the exact-duplicate content hash: sha256 over the sorted,
// lowercased, trimmed tuple (title, description, screen, component,
// sourceDocumentType). Case and surrounding whitespace do not affect it.
func Hash(t *task.Task) string {
	fields := []string{
		normalizeField(t.Title),
		normalizeField(t.Description),
		normalizeField(strings.Join(t.Screen, ",")),
		normalizeField(strings.Join(t.Component, ",")),
		normalizeField(strings.Join(t.SourceDocumentType, ",")),
	}
	sort.Strings(fields)

	sum := sha256.Sum256([]byte(strings.Join(fields, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenize lowercases s and splits it on every non-alphanumeric rune.
func tokenize(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

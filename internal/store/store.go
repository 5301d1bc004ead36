// Package store persists task lists keyed by tag. A tag is an opaque
// partition key; one run owns one tag and must leave every other tag
// untouched. Two implementations exist: a single JSON file and a SQLite
// database.
package store

import (
	"errors"

	"taskforge/internal/task"
)

// ErrTagNotFound reports a Load of a tag with no stored tasks.
var ErrTagNotFound = errors.New("store: tag not found")

// Store is the persistence boundary for task lists.
//
// Save performs a read-modify-write on its backing medium: tags other than
// the one being written are preserved exactly.
type Store interface {
	Load(tag string) ([]task.Task, error)
	Save(tag string, tasks []task.Task) error
	Tags() ([]string, error)
}

// Package task defines the core data model shared by every stage of the
// consolidation pipeline: the Task record produced by document generation,
// the DocumentSource configuration entity, and the document type tags that
// drive classification and priority scoring.
package task

import (
	"sort"
	"strings"
)

// Priority represents task priority levels.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Level maps a priority to its numeric rank (low=1, medium=2, high=3).
// Unknown or empty priorities rank as medium.
func (p Priority) Level() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityHigh:
		return 3
	default:
		return 2
	}
}

// PriorityFromLevel converts a numeric rank back to a priority, clamping
// out-of-range values into [1,3].
func PriorityFromLevel(level int) Priority {
	switch {
	case level <= 1:
		return PriorityLow
	case level >= 3:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// MaxPriority returns the higher of two priorities by rank.
func MaxPriority(a, b Priority) Priority {
	if b.Level() > a.Level() {
		return b
	}
	return a
}

// DocType tags a source document with its recognized kind.
type DocType string

const (
	DocTypePRD          DocType = "PRD"
	DocTypeUXSpec       DocType = "UX_SPEC"
	DocTypeSDD          DocType = "SDD"
	DocTypeTechSpec     DocType = "TECH_SPEC"
	DocTypeInfraSpec    DocType = "INFRA_SPEC"
	DocTypeDesignSystem DocType = "DESIGN_SYSTEM"
	DocTypeOther        DocType = "OTHER"

	// DocTypeAuto is the configuration sentinel requesting classification.
	DocTypeAuto DocType = "auto"
)

// SupportedDocTypes lists the closed set of types the classifier may assign.
// OTHER is always last so tie-breaking favors concrete types.
var SupportedDocTypes = []DocType{
	DocTypePRD,
	DocTypeUXSpec,
	DocTypeSDD,
	DocTypeTechSpec,
	DocTypeInfraSpec,
	DocTypeDesignSystem,
	DocTypeOther,
}

// NormalizeDocType folds aliases used by older configurations into the
// canonical tags. Unrecognized values pass through unchanged so the priority
// engine can still apply its default row.
func NormalizeDocType(t string) DocType {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "PRD", "PRODUCT_REQUIREMENTS":
		return DocTypePRD
	case "UX_SPEC", "DESIGN_SPEC", "UI_SPEC":
		return DocTypeUXSpec
	case "SDD", "SOFTWARE_DESIGN":
		return DocTypeSDD
	case "TECH_SPEC", "ARCHITECTURE":
		return DocTypeTechSpec
	case "INFRA_SPEC":
		return DocTypeInfraSpec
	case "DESIGN_SYSTEM":
		return DocTypeDesignSystem
	case "OTHER":
		return DocTypeOther
	case "AUTO":
		return DocTypeAuto
	case "":
		return ""
	default:
		return DocType(strings.ToUpper(strings.TrimSpace(t)))
	}
}

// IsSupportedDocType reports whether t is one of the classifier's assignable
// types.
func IsSupportedDocType(t DocType) bool {
	for _, s := range SupportedDocTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Subtask is a nested unit of work carried opaquely through merges.
type Subtask struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status,omitempty"`
	Dependencies []int  `json:"dependencies,omitempty"`
}

// Task is the unit of work generated from a source document.
//
// Provenance and the type-specific metadata fields use FlexStrings: a single
// value serializes as a plain string, a merged union serializes as an array.
type Task struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Details      string `json:"details,omitempty"`
	TestStrategy string `json:"testStrategy,omitempty"`

	Dependencies []int    `json:"dependencies,omitempty"`
	Priority     Priority `json:"priority,omitempty"`
	Status       string   `json:"status,omitempty"`

	SourceDocumentID   FlexStrings `json:"sourceDocumentId,omitempty"`
	SourceDocumentType FlexStrings `json:"sourceDocumentType,omitempty"`

	// Document-type-specific attributes. Layer and Viewport are enums
	// (presentation/business/data/infra, mobile/tablet/desktop); the rest
	// are free strings. All may hold multiple values after a merge.
	Layer     FlexStrings `json:"layer,omitempty"`
	Viewport  FlexStrings `json:"viewport,omitempty"`
	EpicID    FlexStrings `json:"epicId,omitempty"`
	Module    FlexStrings `json:"module,omitempty"`
	Component FlexStrings `json:"component,omitempty"`
	Screen    FlexStrings `json:"screen,omitempty"`
	InfraZone FlexStrings `json:"infraZone,omitempty"`

	PerformanceGoal   string `json:"performanceGoal,omitempty"`
	ReliabilityTarget string `json:"reliabilityTarget,omitempty"`
	DesignToken       string `json:"designToken,omitempty"`

	Subtasks []Subtask `json:"subtasks,omitempty"`

	// Audit trail. EstimationNote is append-only; EscalationReason holds the
	// semicolon-joined rule fragments from the last escalation pass.
	EstimationNote   string `json:"estimationNote,omitempty"`
	EscalationReason string `json:"escalationReason,omitempty"`
	MergedFrom       []int  `json:"mergedFrom,omitempty"`
}

// DocType returns the task's normalized provenance type. Merged tasks carry
// several; the first recorded one wins for scoring purposes.
func (t *Task) DocType() DocType {
	return NormalizeDocType(t.SourceDocumentType.First())
}

// AppendNote appends a human-readable annotation to the estimation note,
// never overwriting earlier entries.
func (t *Task) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if t.EstimationNote == "" {
		t.EstimationNote = note
		return
	}
	t.EstimationNote += " " + note
}

// Clone returns a deep copy. Merge and escalation operate on copies so their
// callers keep an unmutated input list.
func (t *Task) Clone() *Task {
	c := *t
	c.Dependencies = append([]int(nil), t.Dependencies...)
	c.MergedFrom = append([]int(nil), t.MergedFrom...)
	c.SourceDocumentID = t.SourceDocumentID.Clone()
	c.SourceDocumentType = t.SourceDocumentType.Clone()
	c.Layer = t.Layer.Clone()
	c.Viewport = t.Viewport.Clone()
	c.EpicID = t.EpicID.Clone()
	c.Module = t.Module.Clone()
	c.Component = t.Component.Clone()
	c.Screen = t.Screen.Clone()
	c.InfraZone = t.InfraZone.Clone()
	if t.Subtasks != nil {
		c.Subtasks = make([]Subtask, len(t.Subtasks))
		for i, st := range t.Subtasks {
			c.Subtasks[i] = st
			c.Subtasks[i].Dependencies = append([]int(nil), st.Dependencies...)
		}
	}
	return &c
}

// CloneList deep-copies a task list.
func CloneList(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = *tasks[i].Clone()
	}
	return out
}

// MaxID returns the highest task id in the list, or 0 for an empty list.
func MaxID(tasks []Task) int {
	max := 0
	for i := range tasks {
		if tasks[i].ID > max {
			max = tasks[i].ID
		}
	}
	return max
}

// SortByID orders tasks ascending by id in place.
func SortByID(tasks []Task) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
}

// DocumentSource is one configured input document. Parent links form a
// forest; a cycle is a hard configuration error, a dangling parent a warning.
type DocumentSource struct {
	ID       string  `yaml:"id" json:"id"`
	Type     DocType `yaml:"type" json:"type"`
	Path     string  `yaml:"path" json:"path"`
	ParentID string  `yaml:"parentId,omitempty" json:"parentId,omitempty"`

	// NumTasks overrides the per-type task-count estimate when positive.
	NumTasks int `yaml:"numTasks,omitempty" json:"numTasks,omitempty"`

	// AllowLLMClassify overrides the global classifier fallback setting for
	// this source when non-nil.
	AllowLLMClassify *bool `yaml:"allowLlmClassify,omitempty" json:"allowLlmClassify,omitempty"`
}

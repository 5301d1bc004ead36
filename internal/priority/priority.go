// Package priority implements the rule engine that scores a task's priority
// from its document provenance and content signals. Rules run in a fixed
// order over a numeric level (low=1, medium=2, high=3): a base lookup by
// source document type, independent +1 escalations, floor/ceiling rules,
// then demotions that override everything before them.
package priority

import (
	"strings"

	"taskforge/internal/logging"
	"taskforge/internal/task"
)

const shortDescriptionCutoff = 20

// Result is the outcome of scoring one task.
type Result struct {
	Priority task.Priority
	Reasons  []string
}

// Reason joins the fired rule fragments for the escalationReason field.
func (r Result) Reason() string {
	return strings.Join(r.Reasons, "; ")
}

// Engine evaluates the escalation rules. Its lookup tables are built once by
// NewEngine and never mutated afterwards.
type Engine struct {
	base             map[task.DocType]int
	securityKeywords []string
	refactorKeywords []string
}

// NewEngine constructs an engine with the standard rule tables.
func NewEngine() *Engine {
	return &Engine{
		base: map[task.DocType]int{
			task.DocTypePRD:          3,
			task.DocTypeUXSpec:       2,
			task.DocTypeSDD:          1,
			task.DocTypeTechSpec:     1,
			task.DocTypeInfraSpec:    1,
			task.DocTypeDesignSystem: 2,
		},
		securityKeywords: []string{
			"security", "auth", "encryption", "token", "login", "signin",
			"authentication", "authorization",
		},
		refactorKeywords: []string{
			"refactor", "documentation", "doc", "readme", "comment",
		},
	}
}

// Escalate computes the priority for a single task. It never mutates its
// input and never fails: a nil task scores medium with an "invalid input"
// reason.
func (e *Engine) Escalate(t *task.Task) Result {
	if t == nil {
		return Result{Priority: task.PriorityMedium, Reasons: []string{"invalid input"}}
	}

	docType := t.DocType()
	level, ok := e.base[docType]
	if !ok {
		level = 2
	}
	baseLevel := level

	reasons := []string{baseReason(docType, level)}
	text := strings.ToLower(t.Title + " " + t.Description)

	// Independent +1 escalations.
	escalated := false
	bump := func(reason string) {
		if level < 3 {
			level++
		}
		escalated = true
		reasons = append(reasons, reason)
	}

	if len(strings.TrimSpace(t.TestStrategy)) > 20 {
		bump("Substantial test strategy")
	}
	if strings.TrimSpace(t.PerformanceGoal) != "" {
		bump("Performance goal defined")
	}
	if strings.TrimSpace(t.ReliabilityTarget) != "" {
		bump("Reliability target defined")
	}
	if containsAny(text, e.securityKeywords) {
		bump("Security-sensitive content")
	}

	// Floor: raise to at least medium.
	hasInfraLayer := t.Layer.Contains("infra")
	hasPresentation := t.Layer.Contains("presentation")
	if docType == task.DocTypeUXSpec && hasPresentation && level < 2 {
		level = 2
		escalated = true
		reasons = append(reasons, "UX presentation layer raised to medium")
	}
	if hasInfraLayer && strings.TrimSpace(t.PerformanceGoal) != "" && level < 2 {
		level = 2
		escalated = true
		reasons = append(reasons, "Infra layer with performance goal raised to medium")
	}

	// Ceiling override: epic tasks are always high.
	if len(t.EpicID) > 0 && strings.Contains(strings.ToLower(t.Title), "epic") {
		level = 3
		escalated = true
		reasons = append(reasons, "Epic-level task forced to high")
	}

	// Demotions. Each fires independently and overrides the rules above.
	if (docType == task.DocTypeTechSpec || docType == task.DocTypeSDD) &&
		strings.TrimSpace(t.PerformanceGoal) == "" &&
		!escalated && level == baseLevel {
		level = 1
		reasons = append(reasons, "Technical spec without escalation signals kept low")
	}
	if len(strings.TrimSpace(t.Description)) < shortDescriptionCutoff {
		level = 1
		reasons = append(reasons, "Very short description")
	}
	if containsAny(text, e.refactorKeywords) && len(t.Dependencies) == 0 {
		level = 1
		reasons = append(reasons, "Refactor/documentation task without dependencies")
	}

	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}

	return Result{Priority: task.PriorityFromLevel(level), Reasons: reasons}
}

// EscalateAll scores every task in the list and returns a new list where
// only tasks whose computed priority differs from their stated priority are
// replaced; unchanged tasks are carried over untouched, preserving equality
// for downstream comparisons. The second return is the number of changes.
func (e *Engine) EscalateAll(tasks []task.Task) ([]task.Task, int) {
	out := make([]task.Task, len(tasks))
	changed := 0
	for i := range tasks {
		res := e.Escalate(&tasks[i])
		if res.Priority == tasks[i].Priority {
			out[i] = tasks[i]
			continue
		}
		updated := *tasks[i].Clone()
		logging.PriorityDebug("task %d: %s -> %s (%s)",
			updated.ID, updated.Priority, res.Priority, res.Reason())
		updated.Priority = res.Priority
		updated.EscalationReason = res.Reason()
		out[i] = updated
		changed++
	}
	if changed > 0 {
		logging.Priority("escalation pass adjusted %d of %d tasks", changed, len(tasks))
	}
	return out, changed
}

// EscalateAfterMerge applies the rule result to a freshly consolidated task
// only when it raises the priority; merge-derived priorities are never
// lowered. The returned task is the input when nothing changes.
func (e *Engine) EscalateAfterMerge(t *task.Task) *task.Task {
	res := e.Escalate(t)
	if res.Priority.Level() <= t.Priority.Level() {
		return t
	}
	updated := t.Clone()
	updated.Priority = res.Priority
	updated.EscalationReason = res.Reason()
	updated.AppendNote("Priority raised to '" + string(res.Priority) + "' after merge escalation.")
	return updated
}

func baseReason(docType task.DocType, level int) string {
	source := string(docType)
	if source == "" {
		source = "unknown source"
	}
	return "Base priority '" + string(task.PriorityFromLevel(level)) + "' from " + source
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

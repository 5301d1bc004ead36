// Package doctype holds per-document-type knowledge: the prompt framing a
// generator uses for that type, the post-processing applied to generated
// tasks, and a default task-count estimate. The type set is closed, so
// everything dispatches through a switch rather than a registry.
package doctype

import (
	"strings"

	"taskforge/internal/logging"
	"taskforge/internal/task"
)

var validLayers = map[string]bool{
	"presentation": true,
	"business":     true,
	"data":         true,
	"infra":        true,
}

var validViewports = map[string]bool{
	"mobile":  true,
	"tablet":  true,
	"desktop": true,
}

// PromptPreamble returns the type-specific framing prepended to the
// generation prompt.
func PromptPreamble(dt task.DocType) string {
	switch task.NormalizeDocType(string(dt)) {
	case task.DocTypePRD:
		return "The document is a Product Requirements Document. Derive user-facing feature tasks. Capture acceptance criteria in the description and link features that build on each other through dependencies."
	case task.DocTypeUXSpec:
		return "The document is a UX specification. Derive screen and component level tasks. Set the screen, component and viewport fields where the document names them, and set layer to presentation."
	case task.DocTypeSDD:
		return "The document is a software design document. Derive implementation tasks per module or subsystem. Set the module field and the layer field (business or data) where the document is explicit."
	case task.DocTypeTechSpec:
		return "The document is a technical specification. Derive engineering tasks with concrete test strategies. Record stated performance goals in the performanceGoal field."
	case task.DocTypeInfraSpec:
		return "The document is an infrastructure specification. Derive provisioning and deployment tasks. Set layer to infra and fill infraZone and reliabilityTarget where the document states them."
	case task.DocTypeDesignSystem:
		return "The document is a design system specification. Derive tasks per token group or component family. Fill the designToken and component fields where applicable."
	default:
		return "Derive actionable engineering tasks from the document. Fill only the fields the document gives direct evidence for."
	}
}

// DefaultTaskCount estimates how many tasks a document of this type usually
// yields, used when the source configuration gives no target.
func DefaultTaskCount(dt task.DocType) int {
	switch task.NormalizeDocType(string(dt)) {
	case task.DocTypePRD:
		return 15
	case task.DocTypeUXSpec:
		return 12
	case task.DocTypeSDD, task.DocTypeTechSpec:
		return 10
	case task.DocTypeInfraSpec:
		return 8
	case task.DocTypeDesignSystem:
		return 8
	default:
		return 10
	}
}

// PostProcess normalizes type-specific fields on freshly generated tasks in
// place. Enum fields are lowercased and validated; values outside the enum
// are cleared with a log line rather than failing the batch.
func PostProcess(tasks []task.Task, dt task.DocType) {
	for i := range tasks {
		tasks[i].Layer = normalizeEnum(tasks[i].Layer, validLayers, "layer", tasks[i].ID)
		tasks[i].Viewport = normalizeEnum(tasks[i].Viewport, validViewports, "viewport", tasks[i].ID)

		switch task.NormalizeDocType(string(dt)) {
		case task.DocTypeUXSpec:
			if len(tasks[i].Layer) == 0 {
				tasks[i].Layer = task.NewFlexStrings("presentation")
			}
		case task.DocTypeInfraSpec:
			if len(tasks[i].Layer) == 0 {
				tasks[i].Layer = task.NewFlexStrings("infra")
			}
		}
	}
}

func normalizeEnum(values task.FlexStrings, valid map[string]bool, field string, taskID int) task.FlexStrings {
	if len(values) == 0 {
		return values
	}
	var out task.FlexStrings
	for _, v := range values {
		lowered := strings.ToLower(strings.TrimSpace(v))
		if valid[lowered] {
			out = out.Add(lowered)
			continue
		}
		logging.GenerateWarn("task %d: dropping invalid %s value %q", taskID, field, v)
	}
	return out
}

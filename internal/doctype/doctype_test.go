package doctype

import (
	"strings"
	"testing"

	"taskforge/internal/task"
)

func TestPromptPreamblePerType(t *testing.T) {
	tests := []struct {
		dt   task.DocType
		want string
	}{
		{task.DocTypePRD, "Product Requirements"},
		{task.DocTypeUXSpec, "UX specification"},
		{task.DocTypeSDD, "software design"},
		{task.DocTypeTechSpec, "technical specification"},
		{task.DocTypeInfraSpec, "infrastructure"},
		{task.DocTypeDesignSystem, "design system"},
		{task.DocTypeOther, "actionable engineering tasks"},
	}
	for _, tt := range tests {
		got := PromptPreamble(tt.dt)
		if !strings.Contains(got, tt.want) {
			t.Errorf("PromptPreamble(%s) = %q, want substring %q", tt.dt, got, tt.want)
		}
	}
}

func TestPromptPreambleFoldsAliases(t *testing.T) {
	if PromptPreamble("PRODUCT_REQUIREMENTS") != PromptPreamble(task.DocTypePRD) {
		t.Error("PRODUCT_REQUIREMENTS should use the PRD preamble")
	}
	if PromptPreamble("UI_SPEC") != PromptPreamble(task.DocTypeUXSpec) {
		t.Error("UI_SPEC should use the UX_SPEC preamble")
	}
}

func TestDefaultTaskCount(t *testing.T) {
	if got := DefaultTaskCount(task.DocTypePRD); got != 15 {
		t.Errorf("PRD count = %d, want 15", got)
	}
	if got := DefaultTaskCount("UNKNOWN_TYPE"); got != 10 {
		t.Errorf("unknown type count = %d, want 10", got)
	}
}

func TestPostProcessNormalizesEnums(t *testing.T) {
	tasks := []task.Task{
		{ID: 1, Layer: task.NewFlexStrings(" Presentation "), Viewport: task.NewFlexStrings("MOBILE")},
		{ID: 2, Layer: task.NewFlexStrings("frontend")}, // not a valid layer
	}
	PostProcess(tasks, task.DocTypePRD)

	if got := tasks[0].Layer.First(); got != "presentation" {
		t.Errorf("layer = %q, want presentation", got)
	}
	if got := tasks[0].Viewport.First(); got != "mobile" {
		t.Errorf("viewport = %q, want mobile", got)
	}
	if len(tasks[1].Layer) != 0 {
		t.Errorf("invalid layer should be cleared, got %v", tasks[1].Layer)
	}
}

func TestPostProcessDefaultsLayerByType(t *testing.T) {
	ux := []task.Task{{ID: 1}}
	PostProcess(ux, task.DocTypeUXSpec)
	if got := ux[0].Layer.First(); got != "presentation" {
		t.Errorf("UX default layer = %q, want presentation", got)
	}

	infra := []task.Task{{ID: 1}}
	PostProcess(infra, task.DocTypeInfraSpec)
	if got := infra[0].Layer.First(); got != "infra" {
		t.Errorf("infra default layer = %q, want infra", got)
	}

	// Explicit values are never overridden.
	set := []task.Task{{ID: 1, Layer: task.NewFlexStrings("business")}}
	PostProcess(set, task.DocTypeUXSpec)
	if got := set[0].Layer.First(); got != "business" {
		t.Errorf("explicit layer = %q, want business", got)
	}
}

package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"taskforge/internal/doctype"
	"taskforge/internal/llm"
	"taskforge/internal/logging"
	"taskforge/internal/task"
)

const systemPrompt = `You are a senior technical project planner. You read a project
document and break it into concrete, dependency-ordered engineering tasks.
You respond with JSON only, no prose and no markdown fences.`

// rawTask is the shape the model returns. Ids are batch-local (1..n);
// dependencies may reference batch-local ids, parent-context ids, or ids of
// tasks already persisted under the tag.
type rawTask struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Details      string   `json:"details"`
	TestStrategy string   `json:"testStrategy"`
	Dependencies []int    `json:"dependencies"`
	Priority     string   `json:"priority"`

	Layer     string `json:"layer"`
	Viewport  string `json:"viewport"`
	EpicID    string `json:"epicId"`
	Module    string `json:"module"`
	Component string `json:"component"`
	Screen    string `json:"screen"`
	InfraZone string `json:"infraZone"`

	PerformanceGoal   string `json:"performanceGoal"`
	ReliabilityTarget string `json:"reliabilityTarget"`
	DesignToken       string `json:"designToken"`
}

// LLMGenerator is the production Generator backed by an llm.Client.
type LLMGenerator struct {
	client llm.Client
}

// NewLLMGenerator returns a generator that prompts the given client.
func NewLLMGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

func (g *LLMGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	count := req.TargetCount
	if count <= 0 {
		count = doctype.DefaultTaskCount(req.SourceType)
	}

	prompt := g.buildPrompt(req, count)
	resp, err := g.client.CompleteWithSystem(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate tasks for source %q: %w", req.SourceID, err)
	}

	var raw []rawTask
	cleaned := llm.CleanJSONResponse(resp)
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		// Some models wrap the array in an object.
		var wrapped struct {
			Tasks []rawTask `json:"tasks"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapped); err2 != nil || len(wrapped.Tasks) == 0 {
			return nil, fmt.Errorf("parse generated tasks for source %q: %w", req.SourceID, err)
		}
		raw = wrapped.Tasks
	}

	tasks, dropped := g.assemble(raw, req)
	doctype.PostProcess(tasks, req.SourceType)

	logging.Generate("source %s (%s): generated %d tasks starting at id %d (%d invalid dependency refs dropped)",
		req.SourceID, req.SourceType, len(tasks), req.Options.CurrentTaskStartID, dropped)

	return &Result{
		Success:        true,
		GeneratedTasks: tasks,
		NextTaskID:     req.Options.CurrentTaskStartID + len(tasks),
		Telemetry: &Telemetry{
			PromptChars:         len(prompt),
			RawTaskCount:        len(raw),
			DroppedDependencies: dropped,
		},
	}, nil
}

func (g *LLMGenerator) buildPrompt(req Request, count int) string {
	var b strings.Builder
	b.WriteString(doctype.PromptPreamble(req.SourceType))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Produce approximately %d tasks as a JSON array. Each task object has: id (1-based sequence number), title, description, details, testStrategy, dependencies (array of ids), priority (low|medium|high), and any applicable optional fields: layer, viewport, epicId, module, component, screen, infraZone, performanceGoal, reliabilityTarget, designToken.\n", count)
	b.WriteString("Dependencies may reference earlier task ids in this batch")

	if len(req.Options.ParentTasksContext) > 0 {
		b.WriteString(" or the parent task ids listed below.\n\nParent tasks already generated (valid dependency targets):\n")
		for _, p := range req.Options.ParentTasksContext {
			fmt.Fprintf(&b, "- id %d: %s\n", p.ID, p.Title)
		}
	} else {
		b.WriteString(" only.\n")
	}

	if req.Options.Research {
		b.WriteString("\nWhere the document is silent on approach, draw on current industry best practice and note the chosen approach in the task details.\n")
	}

	b.WriteString("\nDOCUMENT:\n")
	b.WriteString(req.Content)
	return b.String()
}

// assemble converts raw model output into tasks with globally unique ids.
// Batch-local dependency ids are remapped; references to neither a batch
// task, a parent-context task, nor an already-persisted task are dropped by
// membership test.
func (g *LLMGenerator) assemble(raw []rawTask, req Request) ([]task.Task, int) {
	idMap := make(map[int]int, len(raw)) // batch-local id -> assigned id
	next := req.Options.CurrentTaskStartID
	if next <= 0 {
		next = 1
	}
	for i := range raw {
		idMap[raw[i].ID] = next + i
	}

	knownIDs := make(map[int]bool, len(req.Options.ParentTasksContext)+len(req.Options.ExistingTaskIDs))
	for _, p := range req.Options.ParentTasksContext {
		knownIDs[p.ID] = true
	}
	for _, id := range req.Options.ExistingTaskIDs {
		knownIDs[id] = true
	}

	dropped := 0
	tasks := make([]task.Task, 0, len(raw))
	for i, r := range raw {
		assigned := next + i
		t := task.Task{
			ID:           assigned,
			Title:        strings.TrimSpace(r.Title),
			Description:  strings.TrimSpace(r.Description),
			Details:      strings.TrimSpace(r.Details),
			TestStrategy: strings.TrimSpace(r.TestStrategy),
			Priority:     normalizePriority(r.Priority),
			Status:       "pending",

			SourceDocumentID:   task.NewFlexStrings(req.SourceID),
			SourceDocumentType: task.NewFlexStrings(string(req.SourceType)),

			Layer:     task.NewFlexStrings(r.Layer),
			Viewport:  task.NewFlexStrings(r.Viewport),
			EpicID:    task.NewFlexStrings(r.EpicID),
			Module:    task.NewFlexStrings(r.Module),
			Component: task.NewFlexStrings(r.Component),
			Screen:    task.NewFlexStrings(r.Screen),
			InfraZone: task.NewFlexStrings(r.InfraZone),

			PerformanceGoal:   strings.TrimSpace(r.PerformanceGoal),
			ReliabilityTarget: strings.TrimSpace(r.ReliabilityTarget),
			DesignToken:       strings.TrimSpace(r.DesignToken),
		}

		for _, dep := range r.Dependencies {
			if mapped, ok := idMap[dep]; ok {
				if mapped != assigned && mapped < assigned {
					t.Dependencies = append(t.Dependencies, mapped)
				} else {
					dropped++
				}
				continue
			}
			if knownIDs[dep] {
				t.Dependencies = append(t.Dependencies, dep)
				continue
			}
			dropped++
		}
		sort.Ints(t.Dependencies)

		tasks = append(tasks, t)
	}
	return tasks, dropped
}

func normalizePriority(p string) task.Priority {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "low":
		return task.PriorityLow
	case "high":
		return task.PriorityHigh
	default:
		return task.PriorityMedium
	}
}

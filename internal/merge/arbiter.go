package merge

import (
	"context"
	"encoding/json"
	"fmt"

	"taskforge/internal/llm"
	"taskforge/internal/task"
)

// llmArbiter implements Arbiter on top of a generic llm.Client.
type llmArbiter struct {
	client llm.Client
}

// NewLLMArbiter adapts an llm.Client into the merge arbitration collaborator.
func NewLLMArbiter(client llm.Client) Arbiter {
	return &llmArbiter{client: client}
}

func (a *llmArbiter) Arbitrate(ctx context.Context, x, y *task.Task) (bool, float64, string, error) {
	prompt := fmt.Sprintf(`Two tasks were generated from different project documents. Decide whether
they describe the same unit of work and should be merged into one task.

TASK A (id %d):
Title: %s
Description: %s

TASK B (id %d):
Title: %s
Description: %s

Return JSON only: {"shouldMerge": true|false, "confidence": 0.0-1.0, "reasoning": "brief"}`,
		x.ID, x.Title, x.Description,
		y.ID, y.Title, y.Description)

	resp, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return false, 0, "", err
	}

	var parsed struct {
		ShouldMerge bool    `json:"shouldMerge"`
		Confidence  float64 `json:"confidence"`
		Reasoning   string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(resp)), &parsed); err != nil {
		return false, 0, "", fmt.Errorf("parse arbitration response: %w", err)
	}

	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed.ShouldMerge, parsed.Confidence, parsed.Reasoning, nil
}

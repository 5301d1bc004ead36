package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"taskforge/internal/llm"
	"taskforge/internal/task"
)

// llmFallback implements LLMClassifier on top of a generic llm.Client.
type llmFallback struct {
	client llm.Client
}

// NewLLMFallback adapts an llm.Client into the classifier's fallback
// collaborator.
func NewLLMFallback(client llm.Client) LLMClassifier {
	return &llmFallback{client: client}
}

func (f *llmFallback) ClassifyDocument(ctx context.Context, text string, supported []task.DocType) (task.DocType, float64, string, error) {
	names := make([]string, len(supported))
	for i, t := range supported {
		names[i] = string(t)
	}

	prompt := fmt.Sprintf(`Classify this project document into exactly one of these types:
%s

Pick OTHER when none of the concrete types fits.

DOCUMENT:
%s

Return JSON only: {"type": "TYPE_NAME", "confidence": 0.0-1.0, "reasoning": "brief"}`,
		strings.Join(names, ", "), text)

	resp, err := f.client.Complete(ctx, prompt)
	if err != nil {
		return "", 0, "", err
	}

	var parsed struct {
		Type       string  `json:"type"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(resp)), &parsed); err != nil {
		return "", 0, "", fmt.Errorf("parse classification response: %w", err)
	}

	return task.NormalizeDocType(parsed.Type), parsed.Confidence, parsed.Reasoning, nil
}

// Package classify assigns a document type to raw text. The primary path is
// a weighted regex/keyword score against a fixed pattern table; when the
// winning score is below threshold an optional LLM fallback arbitrates.
// Classification never fails: every error path degrades to OTHER.
package classify

import (
	"context"
	"regexp"
	"strings"

	"taskforge/internal/logging"
	"taskforge/internal/task"
)

// DefaultThreshold is the regex confidence at which the LLM is skipped.
const DefaultThreshold = 0.65

// llmTruncateChars caps the document text sent to the fallback collaborator.
const llmTruncateChars = 3000

// titleLineWindow is how many leading lines the title patterns may match.
const titleLineWindow = 5

// Source identifies which path produced the classification.
type Source string

const (
	SourceRegex Source = "regex"
	SourceLLM   Source = "llm"
	SourceNone  Source = "none"
)

// Result is the classification outcome.
type Result struct {
	Type       task.DocType
	Confidence float64
	Source     Source
	Reasoning  string
}

// Options control one classification call.
type Options struct {
	UseLLMFallback bool
	Threshold      float64 // 0 means DefaultThreshold
}

// LLMClassifier is the external arbitration collaborator. It may fail; the
// classifier treats any error as "regex result stands".
type LLMClassifier interface {
	ClassifyDocument(ctx context.Context, text string, supported []task.DocType) (task.DocType, float64, string, error)
}

// TypePattern holds the scoring inputs for one document type. Component
// weights: 40% keyword hit fraction, 30% title-pattern match within the
// first lines, 30% section-header hit fraction, scaled by Weight.
type TypePattern struct {
	Type            task.DocType
	Keywords        []string
	TitlePatterns   []*regexp.Regexp
	SectionPatterns []*regexp.Regexp
	Weight          float64
}

// Classifier scores documents against an immutable pattern table built once
// at construction.
type Classifier struct {
	patterns []TypePattern
	llm      LLMClassifier
}

// New builds a classifier over the standard pattern table. llm may be nil,
// in which case the fallback is never attempted regardless of options.
func New(llm LLMClassifier) *Classifier {
	return &Classifier{patterns: defaultPatterns(), llm: llm}
}

// NewWithPatterns builds a classifier over a caller-supplied table. Used by
// tests and by configurations that trim the recognized type set.
func NewWithPatterns(patterns []TypePattern, llm LLMClassifier) *Classifier {
	return &Classifier{patterns: patterns, llm: llm}
}

// Classify scores the document text and returns the best type. Errors from
// the fallback collaborator degrade to the regex result; nothing propagates.
func (c *Classifier) Classify(ctx context.Context, text string, opts Options) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Type: task.DocTypeOther, Confidence: 0, Source: SourceNone}
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	best := c.scoreAll(text)
	if best.Confidence >= threshold {
		logging.Classify("regex classification: %s (%.2f)", best.Type, best.Confidence)
		return best
	}

	if opts.UseLLMFallback && c.llm != nil {
		if res, ok := c.classifyWithLLM(ctx, text); ok {
			logging.Classify("llm classification: %s (%.2f)", res.Type, res.Confidence)
			return res
		}
	}

	// Best-effort: return the sub-threshold regex result rather than nothing.
	logging.ClassifyDebug("returning sub-threshold regex result: %s (%.2f)", best.Type, best.Confidence)
	return best
}

// scoreAll computes the weighted score per type and returns the winner.
// Ties keep the first-encountered type; an all-zero scoreboard means OTHER.
func (c *Classifier) scoreAll(text string) Result {
	lower := strings.ToLower(text)
	lines := strings.Split(text, "\n")
	titleLines := lines
	if len(titleLines) > titleLineWindow {
		titleLines = titleLines[:titleLineWindow]
	}

	best := Result{Type: task.DocTypeOther, Confidence: 0, Source: SourceRegex}
	for _, p := range c.patterns {
		score := p.score(lower, lines, titleLines)
		logging.ClassifyDebug("type %s scored %.3f", p.Type, score)
		if score > best.Confidence {
			best = Result{Type: p.Type, Confidence: score, Source: SourceRegex}
		}
	}
	return best
}

func (p *TypePattern) score(lowerText string, lines, titleLines []string) float64 {
	score := 0.0

	if len(p.Keywords) > 0 {
		hits := 0
		for _, kw := range p.Keywords {
			if strings.Contains(lowerText, kw) {
				hits++
			}
		}
		score += 0.4 * float64(hits) / float64(len(p.Keywords))
	}

	for _, re := range p.TitlePatterns {
		matched := false
		for _, line := range titleLines {
			if re.MatchString(line) {
				matched = true
				break
			}
		}
		if matched {
			score += 0.3
			break
		}
	}

	if len(p.SectionPatterns) > 0 {
		hits := 0
		for _, re := range p.SectionPatterns {
			for _, line := range lines {
				if re.MatchString(line) {
					hits++
					break
				}
			}
		}
		score += 0.3 * float64(hits) / float64(len(p.SectionPatterns))
	}

	weight := p.Weight
	if weight == 0 {
		weight = 1
	}
	return score * weight
}

// classifyWithLLM runs the fallback collaborator. Returns ok=false when the
// call fails or yields a non-positive confidence, so the caller can fall
// through to the regex result.
func (c *Classifier) classifyWithLLM(ctx context.Context, text string) (Result, bool) {
	truncated := text
	if len(truncated) > llmTruncateChars {
		truncated = truncated[:llmTruncateChars]
	}

	docType, confidence, reasoning, err := c.llm.ClassifyDocument(ctx, truncated, task.SupportedDocTypes)
	if err != nil {
		logging.ClassifyWarn("llm fallback failed: %v", err)
		return Result{}, false
	}
	if confidence <= 0 {
		return Result{}, false
	}
	if confidence > 1 {
		confidence = 1
	}
	if !task.IsSupportedDocType(docType) {
		logging.ClassifyWarn("llm returned unsupported type %q, forcing OTHER", docType)
		docType = task.DocTypeOther
	}
	return Result{Type: docType, Confidence: confidence, Source: SourceLLM, Reasoning: reasoning}, true
}

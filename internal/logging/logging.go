// Package logging provides categorized logging for taskforge, backed by zap.
// Each pipeline stage logs under its own category so a run can be followed
// end to end (hierarchy -> classify -> generate -> merge -> priority ->
// store). Before Init is called all helpers are no-ops, which keeps library
// use of the internal packages quiet by default.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category labels a pipeline subsystem.
type Category string

const (
	CategoryHierarchy Category = "hierarchy" // source ordering, per-source runs
	CategoryClassify  Category = "classify"  // document type classification
	CategoryGenerate  Category = "generate"  // single-document task generation
	CategoryMerge     Category = "merge"     // duplicate detection and merging
	CategoryPriority  Category = "priority"  // escalation rule engine
	CategoryStore     Category = "store"     // task store reads/writes
	CategoryConfig    Category = "config"    // configuration loading
	CategoryAPI       Category = "api"       // LLM API calls
)

var (
	mu      sync.RWMutex
	base    *zap.SugaredLogger
	enabled map[Category]bool
)

// Init installs the process logger. categories limits output to the named
// categories; nil or empty enables all of them. Call once at startup.
func Init(logger *zap.Logger, categories []Category) {
	mu.Lock()
	defer mu.Unlock()

	base = logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
	if len(categories) == 0 {
		enabled = nil
		return
	}
	enabled = make(map[Category]bool, len(categories))
	for _, c := range categories {
		enabled[c] = true
	}
}

// NewDevelopment builds a console logger at the given level, handy for local
// tooling and tests that want readable output through Init.
func NewDevelopment(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

func logger(c Category) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if base == nil {
		return nil
	}
	if enabled != nil && !enabled[c] {
		return nil
	}
	return base.With("cat", string(c))
}

func infof(c Category, format string, args ...interface{}) {
	if l := logger(c); l != nil {
		l.Infof(format, args...)
	}
}

func debugf(c Category, format string, args ...interface{}) {
	if l := logger(c); l != nil {
		l.Debugf(format, args...)
	}
}

func warnf(c Category, format string, args ...interface{}) {
	if l := logger(c); l != nil {
		l.Warnf(format, args...)
	}
}

func errorf(c Category, format string, args ...interface{}) {
	if l := logger(c); l != nil {
		l.Errorf(format, args...)
	}
}

// Hierarchy logs orchestrator activity.
func Hierarchy(format string, args ...interface{}) { infof(CategoryHierarchy, format, args...) }

// HierarchyDebug logs verbose orchestrator detail.
func HierarchyDebug(format string, args ...interface{}) { debugf(CategoryHierarchy, format, args...) }

// HierarchyWarn logs soft orchestrator failures (missing files, dangling parents).
func HierarchyWarn(format string, args ...interface{}) { warnf(CategoryHierarchy, format, args...) }

// HierarchyError logs fatal orchestrator failures before they propagate.
func HierarchyError(format string, args ...interface{}) { errorf(CategoryHierarchy, format, args...) }

// Classify logs classifier decisions.
func Classify(format string, args ...interface{}) { infof(CategoryClassify, format, args...) }

// ClassifyDebug logs per-type classifier scores.
func ClassifyDebug(format string, args ...interface{}) { debugf(CategoryClassify, format, args...) }

// ClassifyWarn logs degraded classification (LLM failure, forced OTHER).
func ClassifyWarn(format string, args ...interface{}) { warnf(CategoryClassify, format, args...) }

// Generate logs document generation activity.
func Generate(format string, args ...interface{}) { infof(CategoryGenerate, format, args...) }

// GenerateWarn logs dropped dependencies and parse recoveries.
func GenerateWarn(format string, args ...interface{}) { warnf(CategoryGenerate, format, args...) }

// Merge logs merge engine activity.
func Merge(format string, args ...interface{}) { infof(CategoryMerge, format, args...) }

// MergeDebug logs per-pair similarity evidence.
func MergeDebug(format string, args ...interface{}) { debugf(CategoryMerge, format, args...) }

// MergeWarn logs LLM arbitration failures and post-merge cycle warnings.
func MergeWarn(format string, args ...interface{}) { warnf(CategoryMerge, format, args...) }

// Priority logs escalation outcomes.
func Priority(format string, args ...interface{}) { infof(CategoryPriority, format, args...) }

// PriorityDebug logs individual rule firings.
func PriorityDebug(format string, args ...interface{}) { debugf(CategoryPriority, format, args...) }

// Store logs task store operations.
func Store(format string, args ...interface{}) { infof(CategoryStore, format, args...) }

// StoreDebug logs store internals.
func StoreDebug(format string, args ...interface{}) { debugf(CategoryStore, format, args...) }

// Config logs configuration loading.
func Config(format string, args ...interface{}) { infof(CategoryConfig, format, args...) }

// API logs LLM request/response summaries.
func API(format string, args ...interface{}) { infof(CategoryAPI, format, args...) }

// APIWarn logs LLM call failures that were absorbed by a fallback.
func APIWarn(format string, args ...interface{}) { warnf(CategoryAPI, format, args...) }

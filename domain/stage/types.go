package stage

import (
	"gobanner/domain/core"
)

// StageName represents a named stage in the pipeline
type StageName string

// StageKind categorizes stages by function
type StageKind string

const (
	StageKindMetadata StageKind = "metadata" // variable metadata passes
	StageKindDerive   StageKind = "derive"   // derived data
	StageKindTabulate StageKind = "tabulate" // crosstabs and tests
	StageKindReview   StageKind = "review"   // human confirmation points
)

// Predefined stage names, in execution order
const (
	StageResolveMissing StageName = "resolve_missing"
	StageClassify       StageName = "classify"
	StageRecode         StageName = "recode"
	StageBannerColumns  StageName = "banner_columns"
	StageAuditReview    StageName = "audit_review"
	StageTabulate       StageName = "tabulate"
	StageAssemble       StageName = "assemble"
	StageVerification   StageName = "verification"
)

// KindOf returns the kind of a predefined stage
func KindOf(name StageName) StageKind {
	switch name {
	case StageResolveMissing, StageClassify:
		return StageKindMetadata
	case StageRecode:
		return StageKindDerive
	case StageAuditReview:
		return StageKindReview
	default:
		return StageKindTabulate
	}
}

// StageResult represents the output of a stage execution
type StageResult struct {
	StageName StageName           `json:"stage_name"`
	Kind      StageKind           `json:"kind"`
	Success   bool                `json:"success"`
	Suspended bool                `json:"suspended,omitempty"`
	Metrics   StageMetrics        `json:"metrics"`
	Audit     StageExecutionAudit `json:"audit"`
	Error     string              `json:"error,omitempty"`
	Duration  int64               `json:"duration_ms"` // milliseconds
}

// StageExecutionAudit captures the execution context and results of a stage
type StageExecutionAudit struct {
	RunID         core.RunID     `json:"run_id"`
	SkipsByReason map[string]int `json:"skips_by_reason,omitempty"` // e.g., {"recode_skip": 2}
	Warnings      []string       `json:"warnings,omitempty"`
	ExecutedAt    core.Timestamp `json:"executed_at"`
}

// StageMetrics contains canonical metrics for stage results
type StageMetrics struct {
	ProcessedCount int `json:"processed_count"`
	SuccessCount   int `json:"success_count"`
	SkippedCount   int `json:"skipped_count"`

	// Custom metrics (stage-specific)
	Custom map[string]interface{} `json:"custom,omitempty"`
}

// NewStageResult starts a result for the named stage
func NewStageResult(name StageName, runID core.RunID) StageResult {
	return StageResult{
		StageName: name,
		Kind:      KindOf(name),
		Audit: StageExecutionAudit{
			RunID:         runID,
			SkipsByReason: make(map[string]int),
			ExecutedAt:    core.Now(),
		},
	}
}

// Skip records a skipped unit of work under a reason
func (r *StageResult) Skip(reason string, warning string) {
	r.Metrics.SkippedCount++
	r.Audit.SkipsByReason[reason]++
	if warning != "" {
		r.Audit.Warnings = append(r.Audit.Warnings, warning)
	}
}

// PipelineResult collects stage results of one run
type PipelineResult struct {
	RunID   core.RunID      `json:"run_id"`
	Results []StageResult   `json:"results"`
	Overall PipelineSummary `json:"overall"`
}

// PipelineSummary provides high-level pipeline statistics
type PipelineSummary struct {
	TotalStages   int   `json:"total_stages"`
	Successful    int   `json:"successful"`
	Failed        int   `json:"failed"`
	Suspended     int   `json:"suspended"`
	TotalDuration int64 `json:"total_duration_ms"`
}

// NewPipelineResult creates a new pipeline result
func NewPipelineResult(runID core.RunID) *PipelineResult {
	return &PipelineResult{
		RunID:   runID,
		Results: make([]StageResult, 0),
	}
}

// AddResult adds a stage result and updates summary
func (r *PipelineResult) AddResult(result StageResult) {
	r.Results = append(r.Results, result)
	r.Overall.TotalStages++

	switch {
	case result.Suspended:
		r.Overall.Suspended++
	case result.Success:
		r.Overall.Successful++
	default:
		r.Overall.Failed++
	}

	r.Overall.TotalDuration += result.Duration
}

// Success returns true if all stages succeeded
func (r *PipelineResult) Success() bool {
	return r.Overall.Failed == 0 && r.Overall.Suspended == 0
}

// Stage returns the result of a named stage
func (r *PipelineResult) Stage(name StageName) (StageResult, bool) {
	for _, res := range r.Results {
		if res.StageName == name {
			return res, true
		}
	}
	return StageResult{}, false
}

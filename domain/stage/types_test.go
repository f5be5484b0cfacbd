package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gobanner/domain/core"
)

func TestPipelineResultSummary(t *testing.T) {
	runID := core.NewRunID()
	result := NewPipelineResult(runID)

	classify := NewStageResult(StageClassify, runID)
	classify.Success = true
	classify.Duration = 4
	result.AddResult(classify)

	recode := NewStageResult(StageRecode, runID)
	recode.Skip("recode_skip", "Q2: only 2 substantive codes")
	recode.Skip("recode_skip", "")
	recode.Success = true
	result.AddResult(recode)

	assert.Equal(t, 2, result.Overall.Successful)
	assert.True(t, result.Success())
	assert.Equal(t, int64(4), result.Overall.TotalDuration)

	got, ok := result.Stage(StageRecode)
	assert.True(t, ok)
	assert.Equal(t, 2, got.Audit.SkipsByReason["recode_skip"])
	assert.Len(t, got.Audit.Warnings, 1)
	assert.Equal(t, StageKindDerive, got.Kind)

	review := NewStageResult(StageAuditReview, runID)
	review.Suspended = true
	result.AddResult(review)
	assert.False(t, result.Success())
	assert.Equal(t, 1, result.Overall.Suspended)
}

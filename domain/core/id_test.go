package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 5000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestIDIsEmpty(t *testing.T) {
	assert.True(t, ID("").IsEmpty())
	assert.False(t, ID("not-empty").IsEmpty())
}

func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()

	tests := []struct {
		input    string
		hasError bool
	}{
		{valid, false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRunID(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, RunID(tt.input), got)
		})
	}
}

func TestComputeSettingsHashIgnoresKeyOrder(t *testing.T) {
	a := ComputeSettingsHash(map[string]interface{}{"box_size": 2, "direction": "top"})
	b := ComputeSettingsHash(map[string]interface{}{"direction": "top", "box_size": 2})
	c := ComputeSettingsHash(map[string]interface{}{"direction": "bottom", "box_size": 2})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a.Short(), 12)
}

func TestFatalInputClassification(t *testing.T) {
	assert.True(t, IsFatalInputError(NewRowCountError("Q1", 9, 10)))
	assert.True(t, IsFatalInputError(NewBannerNotFoundError("REGION")))
	assert.True(t, errors.Is(NewBannerNotFoundError("REGION"), ErrBannerNotFound))
	assert.True(t, IsNotFoundError(NewVariableNotFoundError("Q9")))
	assert.False(t, IsFatalInputError(NewVariableNotFoundError("Q9")))
}

package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyGenerator_Basic(t *testing.T) {
	config := DefaultSurveyConfig()
	config.Respondents = 50

	ds, err := NewSurveyGenerator(config).Generate()
	require.NoError(t, err)

	assert.Equal(t, 50, ds.RowCount())
	assert.Equal(t, []string{"RESP_AGE", "REGION", "GENDER", "BRAND", "Q1", "Q2", "Q3"}, ds.Catalog().Names())

	region, ok := ds.Variable("REGION")
	require.True(t, ok)
	assert.Contains(t, region.CodedValues, UnusedRegion, "declared labels are part of the coded values")

	col, _ := ds.Column("REGION")
	for i := 0; i < col.Len(); i++ {
		v, ok := col.At(i)
		require.True(t, ok)
		assert.NotEqual(t, UnusedRegion, v)
	}
}

func TestSurveyGenerator_Deterministic(t *testing.T) {
	a, err := NewSurveyGenerator(DefaultSurveyConfig()).Generate()
	require.NoError(t, err)
	b, err := NewSurveyGenerator(DefaultSurveyConfig()).Generate()
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	other := DefaultSurveyConfig()
	other.Seed = 7
	c, err := NewSurveyGenerator(other).Generate()
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestFixtures(t *testing.T) {
	worked := WorkedExample()
	assert.Equal(t, 10, worked.RowCount())
	q1, _ := worked.Variable("Q1")
	assert.Equal(t, []int{1, 2, 3, 4, 5, 99}, q1.CodedValues)

	scenario := SignificanceScenario()
	assert.Equal(t, 100, scenario.RowCount())
}

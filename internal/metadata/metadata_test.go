package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobanner/domain/audit"
	"gobanner/domain/survey"
)

func satisfaction() survey.Variable {
	return survey.Variable{
		Name:        "Q1",
		Label:       "Overall, how satisfied are you with the service?",
		CodedValues: []int{1, 2, 3, 4, 5, 99},
		ValueLabels: map[int]string{
			1:  "Very dissatisfied",
			2:  "Dissatisfied",
			3:  "Neutral",
			4:  "Satisfied",
			5:  "Very satisfied",
			99: "Don't know",
		},
	}
}

func TestResolveMissingCodes(t *testing.T) {
	tests := []struct {
		label   string
		missing bool
	}{
		{"Don't know", true},
		{"DONT KNOW / NOT SURE", true},
		{"Don’t know", true},
		{"Refused", true},
		{"Prefer not to say", true},
		{"N/A", true},
		{"Not applicable", true},
		{"  dk ", true},
		{"No opinion", true},
		{"Can't say", true},
		{"Declined to answer", true},
		{"Very satisfied", false},
		{"Denmark", false},
		{"Unknown brand", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			set := ResolveMissingCodes(map[int]string{7: tt.label})
			assert.Equal(t, tt.missing, set.Contains(7))
		})
	}

	assert.Empty(t, ResolveMissingCodes(nil))
}

func TestClassify(t *testing.T) {
	c := NewClassifier()

	numericCodes := make([]int, 30)
	for i := range numericCodes {
		numericCodes[i] = i + 18
	}

	tests := []struct {
		name      string
		variable  survey.Variable
		kind      survey.Kind
		confident bool
		banner    bool
	}{
		{"likert with dk", satisfaction(), survey.KindOrdinalScale, true, false},
		{"binary", survey.Variable{Name: "B", CodedValues: []int{1, 2}, ValueLabels: map[int]string{1: "Yes", 2: "No"}}, survey.KindBinary, true, true},
		{"single code", survey.Variable{Name: "U", CodedValues: []int{1}}, survey.KindUnclassified, false, false},
		{"only dk codes", survey.Variable{Name: "U2", CodedValues: []int{1, 99}, ValueLabels: map[int]string{1: "Yes", 99: "Refused"}}, survey.KindUnclassified, false, false},
		{"numeric", survey.Variable{Name: "AGE", CodedValues: numericCodes}, survey.KindNumeric, true, false},
		{"ranking", survey.Variable{Name: "RANK", CodedValues: []int{1, 2, 3, 4}, ValueLabels: map[int]string{1: "Rank 1", 2: "Rank 2", 3: "Rank 3", 4: "Rank 4"}}, survey.KindOrdinalScale, false, false},
		{"zero based likelihood", survey.Variable{Name: "NPS", CodedValues: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ValueLabels: map[int]string{0: "Not at all likely", 10: "Extremely likely"}}, survey.KindOrdinalScale, true, false},
		{"gapped codes", survey.Variable{Name: "REGION", CodedValues: []int{1, 2, 3, 5}, ValueLabels: map[int]string{1: "North", 2: "South", 3: "East", 5: "West"}}, survey.KindNominal, true, true},
		{"zero based without language", survey.Variable{Name: "SEG", CodedValues: []int{0, 1, 2}, ValueLabels: map[int]string{0: "Alpha", 1: "Beta", 2: "Gamma"}}, survey.KindNominal, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.variable.WithMissingCodes(ResolveMissingCodes(tt.variable.ValueLabels))
			got := c.Classify(v)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.confident, got.Confident, got.Reason)
			assert.Equal(t, tt.banner, got.BannerCandidate)
			_, warned := got.Warning()
			assert.Equal(t, !tt.confident, warned)
		})
	}
}

func TestClassifyScalePointsExcludeMissing(t *testing.T) {
	v := satisfaction()
	v = v.WithMissingCodes(ResolveMissingCodes(v.ValueLabels))
	got := NewClassifier().Classify(v)
	assert.Equal(t, 5, got.ScalePoints)
}

func TestOverrideAlwaysWins(t *testing.T) {
	v := survey.Variable{Name: "RANK", CodedValues: []int{1, 2, 3}, ValueLabels: map[int]string{1: "First", 2: "Second", 3: "Third"}}
	got := NewClassifier().ClassifyWithOverride(v, map[string]survey.Kind{"RANK": survey.KindNominal})

	assert.Equal(t, survey.KindNominal, got.Kind)
	assert.True(t, got.Overridden)
	assert.True(t, got.BannerCandidate)
	_, warned := got.Warning()
	assert.False(t, warned)
}

func TestOverrideAliasIsCanonical(t *testing.T) {
	v := survey.Variable{Name: "BRAND", CodedValues: []int{1, 2, 3}, ValueLabels: map[int]string{1: "Brand A", 2: "Brand B", 3: "Brand C"}}
	got := NewClassifier().ClassifyWithOverride(v, map[string]survey.Kind{"BRAND": "categorical"})

	assert.Equal(t, survey.KindNominal, got.Kind)
	assert.True(t, got.Overridden)
	assert.True(t, got.BannerCandidate)

	got = NewClassifier().ClassifyWithOverride(v, map[string]survey.Kind{"BRAND": "ranking"})
	assert.False(t, got.Overridden)
	assert.Equal(t, survey.KindOrdinalScale, got.Kind)
}

func TestAnalyzeKeepsOrderAndAttachesMissing(t *testing.T) {
	vars := []survey.Variable{
		satisfaction(),
		{Name: "GENDER", CodedValues: []int{1, 2}, ValueLabels: map[int]string{1: "Male", 2: "Female"}},
		{Name: "ID", CodedValues: []int{1}},
	}

	results, err := Analyze(context.Background(), vars, nil, nil, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Q1", results[0].Variable.Name)
	assert.True(t, results[0].Variable.MissingCodes.Contains(99))
	assert.Equal(t, survey.KindOrdinalScale, results[0].Variable.Kind)
	assert.Equal(t, survey.KindBinary, results[1].Variable.Kind)
	assert.Equal(t, []string{"GENDER"}, BannerCandidates(results))

	w, ok := results[2].Classification.Warning()
	require.True(t, ok)
	assert.Equal(t, audit.ClassificationAmbiguity, w.Kind)

	assert.Nil(t, vars[0].MissingCodes, "input untouched")
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, []survey.Variable{satisfaction()}, nil, nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThemeOf(t *testing.T) {
	tests := []struct {
		label string
		theme Theme
	}{
		{"How often do you shop online?", ThemeUsage},
		{"Have you ever purchased a plan?", ThemeBehavioral},
		{"Which brands have you heard of?", ThemeAwareness},
		{"How likely are you to renew?", ThemeIntent},
		{"I trust this company", ThemeAttitudinal},
		{"Region", ThemeOther},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.theme, ThemeOf(survey.Variable{Name: "X", Label: tt.label}))
		})
	}
}

func TestExploreSuggestions(t *testing.T) {
	results, err := Analyze(context.Background(), []survey.Variable{
		satisfaction(),
		{Name: "GENDER", CodedValues: []int{1, 2}, ValueLabels: map[int]string{1: "Male", 2: "Female"}},
	}, nil, nil, 0)
	require.NoError(t, err)

	views := Explore(results)
	require.Len(t, views, 1, "banner candidates are not explored")
	assert.Equal(t, ThemeAttitudinal, views[0].Theme)
	assert.Equal(t, "Don't know", views[0].DontKnowCodes[99])
	require.NotEmpty(t, views[0].Suggestions)
	assert.Equal(t, MethodTop2Box, views[0].Suggestions[0].Method)
	assert.True(t, views[0].Suggestions[0].Recommended)
}

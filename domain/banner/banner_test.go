package banner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobanner/domain/core"
	"gobanner/domain/survey"
)

func testCatalog(t *testing.T) *survey.Catalog {
	t.Helper()
	catalog, err := survey.NewCatalog([]survey.Variable{{Name: "Q1"}, {Name: "REGION"}, {Name: "GENDER"}})
	require.NoError(t, err)
	return catalog
}

func TestSpecValidate(t *testing.T) {
	catalog := testCatalog(t)

	tests := []struct {
		name    string
		spec    Spec
		fatal   bool
		wantErr bool
	}{
		{"valid", NewSpec("REGION", "GENDER"), false, false},
		{"unknown banner", NewSpec("AGE"), true, true},
		{"duplicate banner", NewSpec("REGION", "REGION"), true, true},
		{"order for non-banner", Spec{Variables: []string{"REGION"}, Order: map[string][]int{"GENDER": {1, 2}}}, false, true},
		{"repeated order code", Spec{Variables: []string{"REGION"}, Order: map[string][]int{"REGION": {2, 2}}}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate(catalog)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.fatal, core.IsFatalInputError(err))
		})
	}
}

func TestUnknownBannerIsBannerNotFound(t *testing.T) {
	err := NewSpec("AGE").Validate(testCatalog(t))
	assert.True(t, errors.Is(err, core.ErrBannerNotFound))
}

func TestNewSpecDefaults(t *testing.T) {
	spec := NewSpec()
	assert.True(t, spec.SkipEmpty)
	assert.True(t, spec.IncludeTotal)
	assert.True(t, spec.IsEmpty())
}

func TestColumnMatches(t *testing.T) {
	col := NewColumn("REGION", 1, "North", []int{7, 2, 4})
	assert.True(t, col.Matches(4))
	assert.False(t, col.Matches(3))
	assert.Equal(t, 3, col.Respondents)
	assert.Equal(t, "REGION=1", col.Key())

	empty := NewColumn("REGION", 3, "West", nil)
	assert.True(t, empty.Empty)

	total := NewTotalColumn(5)
	assert.True(t, total.Matches(0))
	assert.True(t, total.Matches(4))
	assert.False(t, total.Matches(5))
	assert.Equal(t, TotalLabel, total.Key())
}

func TestCrosstabContingencySkipsTotal(t *testing.T) {
	x := Crosstab{
		RowVariable:    "Q1_top2",
		BannerVariable: "GROUP",
		Codes:          []int{0, 1},
		Columns: []ColumnTab{
			{Column: NewTotalColumn(100), Cells: []Cell{{Count: 60}, {Count: 40}}},
			{Column: NewColumn("GROUP", 1, "A", nil), Cells: []Cell{{Count: 20}, {Count: 30}}},
			{Column: NewColumn("GROUP", 2, "B", nil), Cells: []Cell{{Count: 40}, {Count: 10}}},
		},
	}

	ct := x.Contingency()
	assert.Equal(t, []int{1, 2}, ct.ColumnCodes)
	assert.Equal(t, [][]int{{20, 40}, {30, 10}}, ct.Counts)
}

func TestFlagSymbol(t *testing.T) {
	assert.Equal(t, "**", FlagSignificant.Symbol())
	assert.Equal(t, "*", FlagMarginal.Symbol())
	assert.Equal(t, "", FlagNotSignificant.Symbol())
}

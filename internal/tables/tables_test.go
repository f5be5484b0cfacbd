package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobanner/domain/banner"
	"gobanner/domain/survey"
	"gobanner/internal/crosstab"
)

func TestOrderGroups(t *testing.T) {
	originals := []survey.Variable{
		{Name: "GENDER", Kind: survey.KindBinary},
		{Name: "Q1", Kind: survey.KindOrdinalScale},
		{Name: "AGE", Kind: survey.KindNumeric},
		{Name: "REGION", Kind: survey.KindNominal},
		{Name: "Q2", Kind: survey.KindOrdinalScale},
		{Name: "NOTE", Kind: survey.KindUnclassified},
		{Name: "ID", Kind: survey.KindNumeric},
	}
	derived := []survey.RecodedVariable{
		{Variable: survey.Variable{Name: "Q1_top2", Kind: survey.KindBinary}, Source: "Q1"},
		{Variable: survey.Variable{Name: "Q2_top2", Kind: survey.KindBinary}, Source: "Q2"},
	}

	entries := Order(originals, derived, RowOptions{Requested: []string{"AGE", "NOTE"}, Exclude: []string{"REGION"}})

	var names []string
	for _, e := range entries {
		names = append(names, e.Variable.Name)
	}
	assert.Equal(t, []string{"Q1", "Q2", "GENDER", "AGE", "NOTE", "Q1_top2", "Q2_top2"}, names)
	assert.Equal(t, banner.GroupRequested, entries[3].Group)
	assert.Equal(t, "Q1", entries[5].Source)
}

func fixture(t *testing.T) (*survey.Dataset, crosstab.Layout) {
	t.Helper()
	ds, err := survey.FromVariables([]survey.Variable{
		{Name: "Q", Label: "Question", ValueLabels: map[int]string{1: "Yes", 2: "No"}, Kind: survey.KindBinary},
		{Name: "SEG", ValueLabels: map[int]string{1: "New", 2: "Returning", 3: "Lapsed"}, Kind: survey.KindNominal},
	}, map[string]survey.Column{
		"Q":   survey.ColumnOf(1, 2, 1, 1),
		"SEG": survey.ColumnOf(1, 1, 2, 2),
	})
	require.NoError(t, err)
	layout, _, err := crosstab.BuildColumns(ds, banner.NewSpec("SEG"))
	require.NoError(t, err)
	return ds, layout
}

func results(t *testing.T, ds *survey.Dataset, layout crosstab.Layout) map[Key]Cellset {
	t.Helper()
	q, _ := ds.Variable("Q")
	out := make(map[Key]Cellset)

	totalTab, _, err := crosstab.Build(q, []banner.Column{*layout.Total}, ds)
	require.NoError(t, err)
	out[Key{Row: "Q"}] = Cellset{Crosstab: totalTab}

	group, _ := layout.Group("SEG")
	segTab, _, err := crosstab.Build(q, group.Columns, ds)
	require.NoError(t, err)
	out[Key{Row: "Q", Banner: "SEG"}] = Cellset{
		Crosstab:     segTab,
		Significance: &banner.SignificanceResult{RowVariable: "Q", BannerVariable: "SEG", Flag: banner.FlagNotSignificant},
	}
	return out
}

func TestAssembleElidesEmptyColumns(t *testing.T) {
	ds, layout := fixture(t)
	q, _ := ds.Variable("Q")

	table, err := Assemble([]Entry{{Variable: q, Group: banner.GroupCategorical}}, layout, results(t, ds, layout), Options{SkipEmpty: true})
	require.NoError(t, err)

	require.Len(t, table.Columns, 3)
	assert.Equal(t, []string{"Total", "SEG=1", "SEG=2"}, []string{table.Columns[0].Key(), table.Columns[1].Key(), table.Columns[2].Key()})
	require.Len(t, table.ElidedColumns, 1)
	assert.Equal(t, "SEG=3", table.ElidedColumns[0].Key())
	assert.Equal(t, -1, table.ColumnIndex("SEG=3"))

	row, ok := table.Row("Q")
	require.True(t, ok)
	assert.Equal(t, []int{4, 2, 2}, row.Bases)
	assert.Equal(t, 3, row.Cells[0][0].Count)
	assert.InDelta(t, 0.75, *row.Cells[0][0].Percentage, 1e-12)
	assert.InDelta(t, 1.0, *row.Cells[0][2].Percentage, 1e-12)
	require.Len(t, row.Significance, 1)
	assert.Len(t, table.Significance(), 1)
}

func TestAssembleKeepsEmptyColumnsWhenAsked(t *testing.T) {
	ds, layout := fixture(t)
	q, _ := ds.Variable("Q")

	table, err := Assemble([]Entry{{Variable: q}}, layout, results(t, ds, layout), Options{SkipEmpty: false})
	require.NoError(t, err)

	require.Len(t, table.Columns, 4)
	row, _ := table.Row("Q")
	assert.Equal(t, 0, row.Bases[3])
	assert.Nil(t, row.Cells[0][3].Percentage)
}

func TestAssembleMissingWorkItem(t *testing.T) {
	ds, layout := fixture(t)
	q, _ := ds.Variable("Q")
	res := results(t, ds, layout)
	delete(res, Key{Row: "Q", Banner: "SEG"})

	_, err := Assemble([]Entry{{Variable: q}}, layout, res, Options{SkipEmpty: true})
	assert.Error(t, err)
}

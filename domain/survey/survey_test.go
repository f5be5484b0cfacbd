package survey

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobanner/domain/core"
)

func intp(v int) *int { return &v }

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Variable{{Name: "Q1"}, {Name: "Q1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateVariable))
	assert.True(t, core.IsFatalInputError(err))
}

func TestNewCatalogRejectsEmpty(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.True(t, core.IsFatalInputError(err))
}

func TestNewDatasetRejectsInconsistentRowCounts(t *testing.T) {
	_, err := FromVariables(
		[]Variable{{Name: "Q1"}, {Name: "Q2"}},
		map[string]Column{"Q1": ColumnOf(1, 2, 3), "Q2": ColumnOf(1, 2)},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRowCountMismatch))
}

func TestFromVariablesMergesDeclaredAndObservedCodes(t *testing.T) {
	ds, err := FromVariables(
		[]Variable{{Name: "Q1", ValueLabels: map[int]string{1: "Poor", 5: "Excellent", 99: "Don't know"}}},
		map[string]Column{"Q1": ColumnOf(1, 3, 3, 99)},
	)
	require.NoError(t, err)

	v, ok := ds.Variable("Q1")
	require.True(t, ok)
	assert.Equal(t, []int{1, 3, 5, 99}, v.CodedValues)
	assert.Equal(t, 4, ds.RowCount())
}

func TestVariableCopiesAreIndependent(t *testing.T) {
	catalog, err := NewCatalog([]Variable{{Name: "Q1", CodedValues: []int{1, 2}, ValueLabels: map[int]string{1: "Yes"}}})
	require.NoError(t, err)

	v, _ := catalog.Lookup("Q1")
	v.ValueLabels[1] = "changed"
	v.CodedValues[0] = 42

	again, _ := catalog.Lookup("Q1")
	assert.Equal(t, "Yes", again.ValueLabels[1])
	assert.Equal(t, 1, again.CodedValues[0])
}

func TestCatalogReplaceLeavesOriginal(t *testing.T) {
	catalog, err := NewCatalog([]Variable{{Name: "Q1", Kind: KindUnclassified}})
	require.NoError(t, err)

	v, _ := catalog.Lookup("Q1")
	next, err := catalog.Replace([]Variable{v.WithKind(KindBinary)})
	require.NoError(t, err)

	old, _ := catalog.Lookup("Q1")
	updated, _ := next.Lookup("Q1")
	assert.Equal(t, KindUnclassified, old.Kind)
	assert.Equal(t, KindBinary, updated.Kind)

	_, err = catalog.Replace([]Variable{{Name: "missing"}})
	assert.True(t, core.IsNotFoundError(err))
}

func TestSubstantiveCodes(t *testing.T) {
	v := Variable{Name: "Q1", CodedValues: []int{99, 1, 2, 3}}.WithMissingCodes(NewMissingCodeSet(99))
	assert.Equal(t, []int{1, 2, 3}, v.SubstantiveCodes())
	assert.False(t, v.IsSubstantive(99))
}

func TestDerivedDatasetAppendOnly(t *testing.T) {
	base, err := FromVariables([]Variable{{Name: "Q1"}}, map[string]Column{"Q1": ColumnOf(1, 2, 3)})
	require.NoError(t, err)
	derived := NewDerivedDataset(base)

	rv := RecodedVariable{Variable: Variable{Name: "Q1_top2"}, Source: "Q1", BoxSize: 2, Direction: DirectionTop, Threshold: 2}
	require.NoError(t, derived.Append(rv, ColumnOf(0, 1, 1)))

	assert.Error(t, derived.Append(rv, ColumnOf(0, 1, 1)), "duplicate append")
	assert.Error(t, derived.Append(RecodedVariable{Variable: Variable{Name: "Q1"}}, ColumnOf(0, 1, 1)), "collides with original")
	assert.Error(t, derived.Append(RecodedVariable{Variable: Variable{Name: "short"}}, ColumnOf(0)), "row count")

	assert.Equal(t, base.RowCount(), derived.RowCount())
	_, inBase := base.Column("Q1_top2")
	assert.False(t, inBase)
	col, ok := derived.Column("Q1_top2")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 1}, col.Values)
}

func TestDocumentDataset(t *testing.T) {
	raw := `{"variables":[
		{"name":"Q1","label":"Satisfaction","value_labels":{"1":"Poor","5":"Excellent","99":"Don't know"},"values":[1,5,null,99]},
		{"name":"REGION","value_labels":{"1.0":"North","2":"South"},"values":[1,2,2,1]}
	]}`
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	ds, err := doc.Dataset()
	require.NoError(t, err)
	assert.Equal(t, 4, ds.RowCount())

	col, _ := ds.Column("Q1")
	_, present := col.At(2)
	assert.False(t, present)

	region, _ := ds.Variable("REGION")
	assert.Equal(t, "North", region.ValueLabels[1])
}

func TestDocumentRejectsMalformedLabels(t *testing.T) {
	doc := Document{Variables: []DocumentVariable{{
		Name:        "Q1",
		ValueLabels: map[string]string{"one": "Poor"},
		Values:      []*int{intp(1)},
	}}}
	_, err := doc.Dataset()
	assert.True(t, errors.Is(err, core.ErrMalformedLabels))
	assert.True(t, core.IsFatalInputError(err))
}

func TestDerivedDocumentKeepsOriginalsFirst(t *testing.T) {
	base, err := FromVariables([]Variable{{Name: "Q1", ValueLabels: map[int]string{1: "Low"}}}, map[string]Column{"Q1": NewColumn([]*int{intp(1), nil})})
	require.NoError(t, err)
	derived := NewDerivedDataset(base)
	require.NoError(t, derived.Append(RecodedVariable{Variable: Variable{Name: "Q1_top2"}, Source: "Q1"}, NewColumn([]*int{intp(0), nil})))

	doc := derived.Document()
	require.Len(t, doc.Variables, 2)
	assert.Equal(t, "Q1", doc.Variables[0].Name)
	assert.Equal(t, "Q1_top2", doc.Variables[1].Name)
	assert.Equal(t, "Q1", doc.Variables[1].Source)
	assert.Nil(t, doc.Variables[1].Values[1])
	assert.Equal(t, "Low", doc.Variables[0].ValueLabels["1"])
}

func TestKindUnmarshalCanonicalises(t *testing.T) {
	var kinds map[string]Kind
	require.NoError(t, json.Unmarshal([]byte(`{"A":"likert","B":"categorical","C":"binary"}`), &kinds))
	assert.Equal(t, map[string]Kind{"A": KindOrdinalScale, "B": KindNominal, "C": KindBinary}, kinds)

	err := json.Unmarshal([]byte(`{"A":"ranking"}`), &kinds)
	assert.Error(t, err)
}

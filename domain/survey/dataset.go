package survey

import (
	"fmt"
	"strconv"
	"strings"

	"gobanner/domain/core"
)

// Dataset couples a catalog with its column store. Both are read-only after construction.
type Dataset struct {
	catalog *Catalog
	columns map[string]Column
	rows    int
}

// NewDataset validates that every catalog variable has a column of the same length
func NewDataset(catalog *Catalog, columns map[string]Column) (*Dataset, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, core.ErrEmptyCatalog
	}
	rows := -1
	for _, name := range catalog.Names() {
		col, ok := columns[name]
		if !ok {
			return nil, core.NewFatalInputError("no column for variable " + name)
		}
		if len(col.Missing) != len(col.Values) {
			return nil, core.NewFatalInputError("column " + name + " has mismatched missing mask")
		}
		if rows < 0 {
			rows = col.Len()
			continue
		}
		if col.Len() != rows {
			return nil, core.NewRowCountError(name, col.Len(), rows)
		}
	}
	for name := range columns {
		if catalog.Position(name) < 0 {
			return nil, core.NewFatalInputError("column " + name + " has no catalog entry")
		}
	}

	ds := &Dataset{catalog: catalog, columns: make(map[string]Column, len(columns)), rows: rows}
	for k, v := range columns {
		ds.columns[k] = v
	}
	return ds, nil
}

// FromVariables builds a catalog and dataset in one step, filling CodedValues
// with the union of declared and observed codes when absent
func FromVariables(variables []Variable, columns map[string]Column) (*Dataset, error) {
	filled := make([]Variable, len(variables))
	for i, v := range variables {
		if len(v.CodedValues) == 0 {
			if col, ok := columns[v.Name]; ok {
				v.CodedValues = MergeCodes(v.ValueLabels, col.Observed())
			}
		}
		filled[i] = v
	}
	catalog, err := NewCatalog(filled)
	if err != nil {
		return nil, err
	}
	return NewDataset(catalog, columns)
}

// Catalog returns the dataset's catalog
func (d *Dataset) Catalog() *Catalog {
	return d.catalog
}

// RowCount returns the respondent count
func (d *Dataset) RowCount() int {
	return d.rows
}

// Column returns the named column
func (d *Dataset) Column(name string) (Column, bool) {
	col, ok := d.columns[name]
	return col, ok
}

// Variable returns the named variable
func (d *Dataset) Variable(name string) (Variable, bool) {
	return d.catalog.Lookup(name)
}

// WithCatalog returns a dataset sharing this column store under an updated catalog
func (d *Dataset) WithCatalog(catalog *Catalog) (*Dataset, error) {
	if catalog.Len() != d.catalog.Len() {
		return nil, core.NewFatalInputError("replacement catalog changes the variable set")
	}
	for _, name := range catalog.Names() {
		if d.catalog.Position(name) < 0 {
			return nil, core.NewVariableNotFoundError(name)
		}
	}
	return &Dataset{catalog: catalog, columns: d.columns, rows: d.rows}, nil
}

// Fingerprint hashes the catalog names and every column's codes
func (d *Dataset) Fingerprint() core.Hash {
	var b strings.Builder
	fmt.Fprintf(&b, "rows=%d\n", d.rows)
	for _, name := range d.catalog.Names() {
		col := d.columns[name]
		b.WriteString(name)
		for i, v := range col.Values {
			if col.Missing[i] {
				b.WriteString(",.")
				continue
			}
			b.WriteString("," + strconv.Itoa(v))
		}
		b.WriteByte('\n')
	}
	return core.NewHash([]byte(b.String()))
}

package survey

import (
	"fmt"
	"sync"

	"gobanner/domain/core"
)

// DerivedDataset is a base dataset plus an append-only extension of recoded columns.
// The base is shared read-only; appends never touch it.
type DerivedDataset struct {
	base *Dataset

	mu      sync.RWMutex
	derived []RecodedVariable
	index   map[string]int
	columns map[string]Column
}

// NewDerivedDataset wraps base with an empty extension
func NewDerivedDataset(base *Dataset) *DerivedDataset {
	return &DerivedDataset{
		base:    base,
		index:   make(map[string]int),
		columns: make(map[string]Column),
	}
}

// Base returns the untouched original dataset
func (d *DerivedDataset) Base() *Dataset {
	return d.base
}

// RowCount is always the base row count
func (d *DerivedDataset) RowCount() int {
	return d.base.RowCount()
}

// Append adds a derived variable and its column
func (d *DerivedDataset) Append(v RecodedVariable, col Column) error {
	if col.Len() != d.base.RowCount() {
		return core.NewRowCountError(v.Name, col.Len(), d.base.RowCount())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.base.Column(v.Name); exists {
		return fmt.Errorf("%w: derived %s collides with an original variable", core.ErrDuplicateVariable, v.Name)
	}
	if _, exists := d.index[v.Name]; exists {
		return fmt.Errorf("%w: derived %s appended twice", core.ErrDuplicateVariable, v.Name)
	}
	d.index[v.Name] = len(d.derived)
	d.derived = append(d.derived, v)
	d.columns[v.Name] = col
	return nil
}

// Originals returns the base variables in catalog order
func (d *DerivedDataset) Originals() []Variable {
	return d.base.Catalog().Variables()
}

// Derived returns the recoded variables in append order
func (d *DerivedDataset) Derived() []RecodedVariable {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]RecodedVariable(nil), d.derived...)
}

// Column returns an original or derived column
func (d *DerivedDataset) Column(name string) (Column, bool) {
	if col, ok := d.base.Column(name); ok {
		return col, true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	col, ok := d.columns[name]
	return col, ok
}

// Variable returns an original or derived variable's metadata
func (d *DerivedDataset) Variable(name string) (Variable, bool) {
	if v, ok := d.base.Variable(name); ok {
		return v, true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i, ok := d.index[name]; ok {
		return d.derived[i].Variable, true
	}
	return Variable{}, false
}

// Recoded returns the derived variable record by name
func (d *DerivedDataset) Recoded(name string) (RecodedVariable, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i, ok := d.index[name]; ok {
		return d.derived[i], true
	}
	return RecodedVariable{}, false
}

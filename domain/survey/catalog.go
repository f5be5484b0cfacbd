package survey

import (
	"gobanner/domain/core"
)

// Catalog is the ordered, read-only collection of variable metadata
type Catalog struct {
	variables []Variable
	index     map[string]int
}

// NewCatalog builds a catalog, rejecting duplicate or empty names
func NewCatalog(variables []Variable) (*Catalog, error) {
	if len(variables) == 0 {
		return nil, core.ErrEmptyCatalog
	}
	c := &Catalog{
		variables: make([]Variable, len(variables)),
		index:     make(map[string]int, len(variables)),
	}
	for i, v := range variables {
		if v.Name == "" {
			return nil, core.NewFatalInputError("variable with empty name")
		}
		if _, dup := c.index[v.Name]; dup {
			return nil, &duplicateError{name: v.Name}
		}
		c.index[v.Name] = i
		c.variables[i] = v.clone()
	}
	return c, nil
}

type duplicateError struct{ name string }

func (e *duplicateError) Error() string { return core.ErrDuplicateVariable.Error() + ": " + e.name }
func (e *duplicateError) Unwrap() error { return core.ErrDuplicateVariable }

// Len returns the number of variables
func (c *Catalog) Len() int {
	return len(c.variables)
}

// Variables returns copies of every variable in catalog order
func (c *Catalog) Variables() []Variable {
	out := make([]Variable, len(c.variables))
	for i, v := range c.variables {
		out[i] = v.clone()
	}
	return out
}

// Names returns variable names in catalog order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.variables))
	for i, v := range c.variables {
		out[i] = v.Name
	}
	return out
}

// Lookup returns a copy of the named variable
func (c *Catalog) Lookup(name string) (Variable, bool) {
	i, ok := c.index[name]
	if !ok {
		return Variable{}, false
	}
	return c.variables[i].clone(), true
}

// Position returns the catalog index of the named variable, or -1
func (c *Catalog) Position(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}

// Replace returns a new catalog with the given variables swapped in by name.
// The receiver is left untouched.
func (c *Catalog) Replace(updated []Variable) (*Catalog, error) {
	next := c.Variables()
	for _, v := range updated {
		i, ok := c.index[v.Name]
		if !ok {
			return nil, core.NewVariableNotFoundError(v.Name)
		}
		next[i] = v
	}
	return NewCatalog(next)
}

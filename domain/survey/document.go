package survey

import (
	"fmt"
	"sort"
	"strconv"

	"gobanner/domain/core"
)

// Document is the serialisable form of a dataset: metadata plus column values.
// Value label keys are strings so the document round-trips through JSON and YAML.
type Document struct {
	Variables []DocumentVariable `json:"variables" yaml:"variables"`
}

// DocumentVariable is one variable with its values; nil entries are system-missing
type DocumentVariable struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	ValueLabels map[string]string `json:"value_labels,omitempty" yaml:"value_labels,omitempty"`
	Values      []*int            `json:"values" yaml:"values"`
	Kind        Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	Source      string            `json:"source,omitempty" yaml:"source,omitempty"`
}

// Dataset converts the document into a validated dataset
func (doc Document) Dataset() (*Dataset, error) {
	variables := make([]Variable, 0, len(doc.Variables))
	columns := make(map[string]Column, len(doc.Variables))
	for _, dv := range doc.Variables {
		labels, err := ParseValueLabels(dv.Name, dv.ValueLabels)
		if err != nil {
			return nil, err
		}
		if _, dup := columns[dv.Name]; dup {
			return nil, &duplicateError{name: dv.Name}
		}
		variables = append(variables, Variable{
			Name:        dv.Name,
			Label:       dv.Label,
			ValueLabels: labels,
			Kind:        KindUnclassified,
		})
		columns[dv.Name] = NewColumn(dv.Values)
	}
	return FromVariables(variables, columns)
}

// ParseValueLabels converts string-keyed labels into integer codes
func ParseValueLabels(variable string, raw map[string]string) (map[int]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	labels := make(map[int]string, len(raw))
	for key, text := range raw {
		code, err := parseCode(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s has value label key %q", core.ErrMalformedLabels, variable, key)
		}
		labels[code] = text
	}
	return labels, nil
}

// parseCode accepts integer text and integral floats such as "99.0"
func parseCode(s string) (int, error) {
	if code, err := strconv.Atoi(s); err == nil {
		return code, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("code %q is not integral", s)
	}
	return int(f), nil
}

// ParseCode is the exported form used by file readers
func ParseCode(s string) (int, error) {
	return parseCode(s)
}

// Document renders the derived dataset, originals first, then recoded variables
func (d *DerivedDataset) Document() Document {
	var doc Document
	for _, v := range d.Originals() {
		col, _ := d.Column(v.Name)
		doc.Variables = append(doc.Variables, documentVariable(v, col, ""))
	}
	for _, rv := range d.Derived() {
		col, _ := d.Column(rv.Name)
		doc.Variables = append(doc.Variables, documentVariable(rv.Variable, col, rv.Source))
	}
	return doc
}

func documentVariable(v Variable, col Column, source string) DocumentVariable {
	dv := DocumentVariable{
		Name:   v.Name,
		Label:  v.Label,
		Kind:   v.Kind,
		Source: source,
		Values: make([]*int, col.Len()),
	}
	if len(v.ValueLabels) > 0 {
		codes := make([]int, 0, len(v.ValueLabels))
		for c := range v.ValueLabels {
			codes = append(codes, c)
		}
		sort.Ints(codes)
		dv.ValueLabels = make(map[string]string, len(codes))
		for _, c := range codes {
			dv.ValueLabels[strconv.Itoa(c)] = v.ValueLabels[c]
		}
	}
	for i := range col.Values {
		if code, ok := col.At(i); ok {
			c := code
			dv.Values[i] = &c
		}
	}
	return dv
}

package survey

import (
	"sort"
)

// MissingCodeSet holds the codes of one variable that carry no substantive answer
type MissingCodeSet map[int]struct{}

// NewMissingCodeSet builds a set from codes
func NewMissingCodeSet(codes ...int) MissingCodeSet {
	set := make(MissingCodeSet, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// Contains reports whether code is non-substantive
func (s MissingCodeSet) Contains(code int) bool {
	_, ok := s[code]
	return ok
}

// Codes returns the set in ascending order
func (s MissingCodeSet) Codes() []int {
	out := make([]int, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Variable is the metadata of one survey column
type Variable struct {
	Name         string         `json:"name"`
	Label        string         `json:"label"`
	CodedValues  []int          `json:"coded_values"`
	ValueLabels  map[int]string `json:"value_labels,omitempty"`
	Kind         Kind           `json:"kind"`
	MissingCodes MissingCodeSet `json:"-"`
}

// DisplayLabel returns the label, falling back to the name
func (v Variable) DisplayLabel() string {
	if v.Label != "" {
		return v.Label
	}
	return v.Name
}

// ValueLabel returns the label for a code, or the code itself formatted
func (v Variable) ValueLabel(code int) string {
	if label, ok := v.ValueLabels[code]; ok && label != "" {
		return label
	}
	return formatCode(code)
}

// SubstantiveCodes returns CodedValues minus missing codes, ascending
func (v Variable) SubstantiveCodes() []int {
	out := make([]int, 0, len(v.CodedValues))
	for _, c := range v.CodedValues {
		if !v.MissingCodes.Contains(c) {
			out = append(out, c)
		}
	}
	sort.Ints(out)
	return out
}

// IsSubstantive reports whether code is a real answer for this variable
func (v Variable) IsSubstantive(code int) bool {
	return !v.MissingCodes.Contains(code)
}

// HasValueLabels reports whether any value labels are declared
func (v Variable) HasValueLabels() bool {
	return len(v.ValueLabels) > 0
}

// WithKind returns a copy carrying the given kind
func (v Variable) WithKind(kind Kind) Variable {
	out := v.clone()
	out.Kind = kind
	return out
}

// WithMissingCodes returns a copy carrying the given missing code set
func (v Variable) WithMissingCodes(set MissingCodeSet) Variable {
	out := v.clone()
	out.MissingCodes = set
	return out
}

func (v Variable) clone() Variable {
	out := v
	out.CodedValues = append([]int(nil), v.CodedValues...)
	if v.ValueLabels != nil {
		out.ValueLabels = make(map[int]string, len(v.ValueLabels))
		for k, l := range v.ValueLabels {
			out.ValueLabels[k] = l
		}
	}
	if v.MissingCodes != nil {
		out.MissingCodes = NewMissingCodeSet(v.MissingCodes.Codes()...)
	}
	return out
}

// MergeCodes returns the ascending union of declared value-label codes and observed codes
func MergeCodes(labels map[int]string, observed []int) []int {
	seen := make(map[int]struct{}, len(labels)+len(observed))
	out := make([]int, 0, len(labels)+len(observed))
	for c := range labels {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	for _, c := range observed {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Ints(out)
	return out
}

// RecodedVariable is a derived 0/1 variable built from an ordinal source
type RecodedVariable struct {
	Variable
	Source    string    `json:"source"`
	BoxSize   int       `json:"box_size"`
	Direction Direction `json:"direction"`
	Threshold int       `json:"threshold"`
	// ScalePoints is the substantive code count of the source
	ScalePoints int `json:"scale_points"`
}

package crosstab

import (
	"fmt"
	"sort"

	"gobanner/domain/audit"
	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/survey"
)

// Source is the read-only view of respondent data the builder needs.
// Both survey.Dataset and survey.DerivedDataset satisfy it.
type Source interface {
	RowCount() int
	Column(name string) (survey.Column, bool)
	Variable(name string) (survey.Variable, bool)
}

// Group is one banner variable and its category columns
type Group struct {
	Variable string          `json:"variable"`
	Label    string          `json:"label"`
	Columns  []banner.Column `json:"columns"`
}

// Layout is every banner column of a run, computed once
type Layout struct {
	Total  *banner.Column `json:"total,omitempty"`
	Groups []Group        `json:"groups"`
}

// Columns flattens the layout in display order, Total first
func (l Layout) Columns() []banner.Column {
	var out []banner.Column
	if l.Total != nil {
		out = append(out, *l.Total)
	}
	for _, g := range l.Groups {
		out = append(out, g.Columns...)
	}
	return out
}

// Group returns the group of a banner variable
func (l Layout) Group(name string) (Group, bool) {
	for _, g := range l.Groups {
		if g.Variable == name {
			return g, true
		}
	}
	return Group{}, false
}

// BuildColumns computes banner columns for a validated spec. Categories are the
// declared and observed codes minus missing codes; columns with no respondents
// are marked Empty and reported, never dropped here.
func BuildColumns(src Source, spec banner.Spec) (Layout, []audit.Warning, error) {
	var layout Layout
	var warnings []audit.Warning

	if spec.IncludeTotal {
		total := banner.NewTotalColumn(src.RowCount())
		layout.Total = &total
	}

	for _, name := range spec.Variables {
		v, ok := src.Variable(name)
		if !ok {
			return Layout{}, nil, core.NewBannerNotFoundError(name)
		}
		col, _ := src.Column(name)

		members := make(map[int][]int)
		for i := 0; i < col.Len(); i++ {
			code, present := col.At(i)
			if !present || v.MissingCodes.Contains(code) {
				continue
			}
			members[code] = append(members[code], i)
		}

		group := Group{Variable: name, Label: v.DisplayLabel()}
		for _, code := range categoryOrder(v, members, spec.Order[name]) {
			c := banner.NewColumn(name, code, v.ValueLabel(code), members[code])
			if c.Empty {
				warnings = append(warnings, audit.Warning{
					Kind:    audit.EmptyBannerColumn,
					Banner:  name,
					Column:  c.Key(),
					Message: fmt.Sprintf("category %q has no respondents", c.DisplayLabel),
				})
			}
			group.Columns = append(group.Columns, c)
		}
		layout.Groups = append(layout.Groups, group)
	}
	return layout, warnings, nil
}

// categoryOrder lists explicit codes first, then the rest ascending
func categoryOrder(v survey.Variable, members map[int][]int, explicit []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, code := range explicit {
		if v.MissingCodes.Contains(code) || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}

	var rest []int
	for _, code := range v.CodedValues {
		if !v.MissingCodes.Contains(code) && !seen[code] {
			seen[code] = true
			rest = append(rest, code)
		}
	}
	for code := range members {
		if !seen[code] {
			seen[code] = true
			rest = append(rest, code)
		}
	}
	sort.Ints(rest)
	return append(out, rest...)
}

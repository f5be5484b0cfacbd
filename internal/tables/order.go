package tables

import (
	"gobanner/domain/banner"
	"gobanner/domain/survey"
)

// Entry is one row variable in table order
type Entry struct {
	Variable survey.Variable
	Group    banner.RowGroup
	Source   string
}

// RowOptions controls which variables become table rows
type RowOptions struct {
	// Requested names variables outside the ordinal and categorical kinds to include
	Requested []string
	// Exclude drops variables, typically the banner variables themselves
	Exclude []string
}

// Order lists row variables: ordinal originals, categorical originals,
// requested others, then recoded variables, keeping source order within each group.
func Order(originals []survey.Variable, derived []survey.RecodedVariable, opts RowOptions) []Entry {
	requested := toSet(opts.Requested)
	excluded := toSet(opts.Exclude)

	var ordinal, categorical, other, recoded []Entry
	for _, v := range originals {
		if excluded[v.Name] {
			continue
		}
		switch {
		case v.Kind == survey.KindOrdinalScale:
			ordinal = append(ordinal, Entry{Variable: v, Group: banner.GroupOrdinal})
		case v.Kind.IsCategorical():
			categorical = append(categorical, Entry{Variable: v, Group: banner.GroupCategorical})
		case requested[v.Name]:
			other = append(other, Entry{Variable: v, Group: banner.GroupRequested})
		}
	}
	for _, rv := range derived {
		if excluded[rv.Name] {
			continue
		}
		recoded = append(recoded, Entry{Variable: rv.Variable, Group: banner.GroupRecoded, Source: rv.Source})
	}

	out := make([]Entry, 0, len(ordinal)+len(categorical)+len(other)+len(recoded))
	out = append(out, ordinal...)
	out = append(out, categorical...)
	out = append(out, other...)
	return append(out, recoded...)
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

package audit

import (
	"fmt"
	"sort"
)

// Kind identifies a non-fatal condition recorded during a run
type Kind string

const (
	ClassificationAmbiguity    Kind = "classification_ambiguity"
	RecodeSkip                 Kind = "recode_skip"
	EmptyBannerColumn          Kind = "empty_banner_column"
	LocalZeroBase              Kind = "local_zero_base"
	DegenerateSignificanceTest Kind = "degenerate_significance_test"
	LowPower                   Kind = "low_power"
)

// Warning is one retained, inspectable non-fatal condition
type Warning struct {
	Kind     Kind   `json:"kind"`
	Variable string `json:"variable,omitempty"`
	Banner   string `json:"banner,omitempty"`
	Column   string `json:"column,omitempty"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	scope := w.Variable
	if w.Banner != "" {
		scope += " x " + w.Banner
	}
	if w.Column != "" {
		scope += " [" + w.Column + "]"
	}
	if scope == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, scope, w.Message)
}

// Log accumulates warnings in the order stages add them
type Log struct {
	warnings []Warning
}

// Add appends warnings
func (l *Log) Add(w ...Warning) {
	l.warnings = append(l.warnings, w...)
}

// Addf appends one formatted warning
func (l *Log) Addf(kind Kind, variable, format string, args ...interface{}) {
	l.warnings = append(l.warnings, Warning{Kind: kind, Variable: variable, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns a copy of the accumulated warnings
func (l *Log) Warnings() []Warning {
	return append([]Warning(nil), l.warnings...)
}

// Len returns the warning count
func (l *Log) Len() int {
	return len(l.warnings)
}

// Of returns warnings of one kind
func (l *Log) Of(kind Kind) []Warning {
	var out []Warning
	for _, w := range l.warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// CountByKind tallies warnings per kind
func (l *Log) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, w := range l.warnings {
		counts[w.Kind]++
	}
	return counts
}

// Kinds returns the distinct kinds present, sorted
func (l *Log) Kinds() []Kind {
	counts := l.CountByKind()
	out := make([]Kind, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

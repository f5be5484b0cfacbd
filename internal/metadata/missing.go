package metadata

import (
	"strings"

	"gobanner/domain/survey"
)

// dontKnowPhrases mark a value label as a non-substantive answer when found anywhere in it
var dontKnowPhrases = []string{
	"don't know", "dont know", "don’t know",
	"not sure", "unsure",
	"can't say", "cant say", "can’t say",
	"no opinion",
	"refused", "prefer not", "decline",
	"not applicable", "n/a",
}

// dontKnowExact mark a label only when they are the whole label
var dontKnowExact = []string{"dk", "d/k", "na"}

// IsDontKnowLabel reports whether a value label describes a non-substantive answer
func IsDontKnowLabel(label string) bool {
	text := strings.ToLower(strings.TrimSpace(label))
	if text == "" {
		return false
	}
	for _, exact := range dontKnowExact {
		if text == exact {
			return true
		}
	}
	for _, phrase := range dontKnowPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// ResolveMissingCodes returns the codes whose labels match a don't-know phrase.
// A variable with no value labels yields an empty set.
func ResolveMissingCodes(valueLabels map[int]string) survey.MissingCodeSet {
	set := make(survey.MissingCodeSet)
	for code, label := range valueLabels {
		if IsDontKnowLabel(label) {
			set[code] = struct{}{}
		}
	}
	return set
}

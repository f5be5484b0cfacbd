package metadata

import (
	"fmt"
	"strings"

	"gobanner/domain/survey"
)

// Theme is a thematic grouping of a question used to suggest a recoding
type Theme string

const (
	ThemeUsage       Theme = "usage"
	ThemeBehavioral  Theme = "behavioral"
	ThemeAwareness   Theme = "awareness"
	ThemeIntent      Theme = "intent"
	ThemeAttitudinal Theme = "attitudinal"
	ThemeOther       Theme = "other"
)

// themePatterns are checked in order; first hit wins
var themePatterns = []struct {
	theme    Theme
	patterns []string
}{
	{ThemeUsage, []string{
		"how often", "how frequently", "how many times",
		"daily", "weekly", "monthly", "yearly",
		"hours per", "minutes per", "times per",
		"use", "usage", "frequency", "how long",
	}},
	{ThemeBehavioral, []string{
		"have you ever", "did you", "do you currently",
		"purchased", "bought", "tried", "visited",
		"switched", "downloaded", "installed", "subscribed",
	}},
	{ThemeAwareness, []string{
		"aware", "heard of", "familiar", "know about",
		"recognize", "seen", "noticed",
	}},
	{ThemeIntent, []string{
		"plan to", "intend to", "would you", "will you",
		"consider", "thinking about", "likelihood",
		"how likely", "purchase intent",
	}},
	{ThemeAttitudinal, []string{
		"agree", "disagree", "satisfied", "dissatisfied",
		"likely", "unlikely", "important", "trust",
		"confident", "comfortable", "concerned", "worried",
		"interested", "willing", "prefer", "recommend",
		"pleased", "disappointed", "happy", "frustrated",
	}},
}

// ThemeOf groups a variable by its question and value label text
func ThemeOf(v survey.Variable) Theme {
	var text strings.Builder
	text.WriteString(strings.ToLower(v.Label))
	for _, code := range v.CodedValues {
		if label, ok := v.ValueLabels[code]; ok {
			text.WriteString(" ")
			text.WriteString(strings.ToLower(label))
		}
	}
	joined := text.String()
	for _, group := range themePatterns {
		for _, p := range group.patterns {
			if strings.Contains(joined, p) {
				return group.theme
			}
		}
	}
	return ThemeOther
}

// Method is a suggested treatment for a variable
type Method string

const (
	MethodTop2Box Method = "top2box"
	MethodTop3Box Method = "top3box"
	MethodAsIs    Method = "as_is"
)

// Suggestion is one recoding option for a variable
type Suggestion struct {
	Method      Method `json:"method"`
	Description string `json:"description"`
	Recommended bool   `json:"recommended"`
	BoxSize     int    `json:"box_size,omitempty"`
}

// Suggest proposes recodings for an ordinal variable from its theme
func Suggest(class Classification, theme Theme) []Suggestion {
	if class.Kind != survey.KindOrdinalScale {
		return []Suggestion{{Method: MethodAsIs, Description: "Keep as-is (no recoding)", Recommended: true}}
	}
	switch theme {
	case ThemeUsage, ThemeBehavioral, ThemeAwareness:
		return []Suggestion{
			{Method: MethodAsIs, Description: "Keep original categories", Recommended: true},
			{Method: MethodTop2Box, Description: "Top 2 Box of the scale", BoxSize: 2},
		}
	case ThemeIntent:
		return []Suggestion{
			{Method: MethodTop2Box, Description: "Top 2 Box: definitely + probably", Recommended: true, BoxSize: 2},
			{Method: MethodAsIs, Description: "Keep full scale"},
		}
	}
	out := []Suggestion{
		{Method: MethodTop2Box, Description: "Top 2 Box: combine highest 2 scale points", Recommended: true, BoxSize: 2},
	}
	if class.ScalePoints > 5 {
		out = append(out, Suggestion{Method: MethodTop3Box, Description: "Top 3 Box: combine highest 3 scale points", BoxSize: 3})
	}
	out = append(out, Suggestion{Method: MethodAsIs, Description: "Keep original scale, show all points"})
	return out
}

// Exploration is the exploration view of one variable
type Exploration struct {
	Variable       string         `json:"variable"`
	Label          string         `json:"label"`
	Classification Classification `json:"classification"`
	Theme          Theme          `json:"theme"`
	DontKnowCodes  map[int]string `json:"dont_know_codes,omitempty"`
	Suggestions    []Suggestion   `json:"suggestions"`
}

// Explore builds the exploration view for analysed variables, skipping banner candidates
func Explore(results []Result) []Exploration {
	var out []Exploration
	for _, r := range results {
		if r.Classification.BannerCandidate {
			continue
		}
		if r.Variable.Kind == survey.KindNumeric && !r.Variable.HasValueLabels() {
			continue
		}
		theme := ThemeOf(r.Variable)
		dk := make(map[int]string)
		for _, code := range r.Variable.MissingCodes.Codes() {
			dk[code] = r.Variable.ValueLabels[code]
		}
		out = append(out, Exploration{
			Variable:       r.Variable.Name,
			Label:          r.Variable.Label,
			Classification: r.Classification,
			Theme:          theme,
			DontKnowCodes:  dk,
			Suggestions:    Suggest(r.Classification, theme),
		})
	}
	return out
}

// Describe renders a short summary line
func (e Exploration) Describe() string {
	return fmt.Sprintf("%s [%s, %s] %s", e.Variable, e.Classification.Kind, e.Theme, e.Label)
}

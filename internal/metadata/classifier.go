package metadata

import (
	"fmt"
	"strings"

	"gobanner/domain/audit"
	"gobanner/domain/survey"
)

// intensityWords indicate a graded answer scale in value labels
var intensityWords = []string{
	"agree", "disagree", "satisfied", "dissatisfied",
	"likely", "unlikely", "important", "unimportant",
	"good", "poor", "excellent", "fair",
	"always", "never", "often", "rarely",
	"very", "somewhat", "not at all", "extremely",
	"strongly", "completely", "definitely", "probably",
}

// Classification is the outcome of classifying one variable
type Classification struct {
	Variable    string      `json:"variable"`
	Kind        survey.Kind `json:"kind"`
	Confident   bool        `json:"confident"`
	Reason      string      `json:"reason"`
	ScalePoints int         `json:"scale_points"`
	// Intensity is set when value labels carry graded scale language
	Intensity  bool `json:"intensity"`
	Overridden bool `json:"overridden,omitempty"`
	// BannerCandidate marks nominal/binary variables with no don't-know codes
	BannerCandidate bool `json:"banner_candidate"`
}

// Warning returns the ambiguity warning for this classification, if any
func (c Classification) Warning() (audit.Warning, bool) {
	if c.Overridden || c.Confident {
		return audit.Warning{}, false
	}
	return audit.Warning{
		Kind:     audit.ClassificationAmbiguity,
		Variable: c.Variable,
		Message:  c.Reason,
	}, true
}

// Classifier assigns a Kind from coded values and labels
type Classifier struct {
	// NumericMinCodes is the distinct-code count above which an unlabelled variable is numeric
	NumericMinCodes int
	// MaxOffsetScale bounds scales not starting at 1 that still count as ordinal
	MaxOffsetScale int
}

// NewClassifier returns a classifier with the default thresholds
func NewClassifier() *Classifier {
	return &Classifier{NumericMinCodes: 20, MaxOffsetScale: 11}
}

// Classify applies the classification policy in order. It never fails.
func (c *Classifier) Classify(v survey.Variable) Classification {
	codes := v.SubstantiveCodes()
	k := len(codes)
	out := Classification{Variable: v.Name, ScalePoints: k, Intensity: hasIntensityLanguage(v)}

	switch {
	case k < 2:
		out.Kind = survey.KindUnclassified
		out.Reason = fmt.Sprintf("only %d substantive code(s)", k)
	case !v.HasValueLabels() && k > c.NumericMinCodes:
		out.Kind = survey.KindNumeric
		out.Confident = true
		out.Reason = fmt.Sprintf("%d distinct unlabelled codes", k)
	case k == 2:
		out.Kind = survey.KindBinary
		out.Confident = true
		out.Reason = "two substantive codes"
	case isContiguous(codes) && codes[0] == 1:
		out.Kind = survey.KindOrdinalScale
		out.Confident = out.Intensity
		if out.Intensity {
			out.Reason = fmt.Sprintf("%d-point scale with graded labels", k)
		} else {
			out.Reason = fmt.Sprintf("consecutive codes 1..%d without scale language; may be a ranking", k)
		}
	case isContiguous(codes) && out.Intensity && k <= c.MaxOffsetScale:
		out.Kind = survey.KindOrdinalScale
		out.Confident = true
		out.Reason = fmt.Sprintf("%d-point scale from %d with graded labels", k, codes[0])
	default:
		out.Kind = survey.KindNominal
		out.Confident = true
		out.Reason = "unordered categories"
	}

	out.BannerCandidate = out.Kind.IsCategorical() && len(v.MissingCodes) == 0
	return out
}

// ClassifyWithOverride classifies, then lets an explicit kind win
func (c *Classifier) ClassifyWithOverride(v survey.Variable, overrides map[string]survey.Kind) Classification {
	out := c.Classify(v)
	raw, ok := overrides[v.Name]
	if !ok {
		return out
	}
	kind, err := survey.ParseKind(string(raw))
	if err != nil {
		out.Reason = fmt.Sprintf("ignored override: %v", err)
		return out
	}
	if kind != out.Kind {
		out.Reason = fmt.Sprintf("overridden from %s", out.Kind)
	}
	out.Kind = kind
	out.Confident = true
	out.Overridden = true
	out.BannerCandidate = kind.IsCategorical() && len(v.MissingCodes) == 0
	return out
}

func isContiguous(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] != 1 {
			return false
		}
	}
	return len(sorted) > 0
}

func hasIntensityLanguage(v survey.Variable) bool {
	var text strings.Builder
	for code, label := range v.ValueLabels {
		if v.MissingCodes.Contains(code) {
			continue
		}
		text.WriteString(strings.ToLower(label))
		text.WriteString(" ")
	}
	joined := text.String()
	for _, word := range intensityWords {
		if strings.Contains(joined, word) {
			return true
		}
	}
	return false
}

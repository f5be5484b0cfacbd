package testkit

import (
	"fmt"
	"math/rand"

	"gobanner/domain/survey"
)

// SurveyGeneratorConfig configures the synthetic survey generator
type SurveyGeneratorConfig struct {
	Respondents    int     `json:"respondents"`
	Regions        int     `json:"regions"`
	ScaleQuestions int     `json:"scale_questions"`
	ScalePoints    int     `json:"scale_points"`
	DontKnowRate   float64 `json:"dont_know_rate"`
	SkipRate       float64 `json:"skip_rate"`
	// RegionLift shifts answers in region 1 towards the top of the scale
	RegionLift float64 `json:"region_lift"`
	Seed       int64   `json:"seed"`
}

// DefaultSurveyConfig returns sensible defaults for survey generation
func DefaultSurveyConfig() SurveyGeneratorConfig {
	return SurveyGeneratorConfig{
		Respondents:    400,
		Regions:        4,
		ScaleQuestions: 3,
		ScalePoints:    5,
		DontKnowRate:   0.05,
		SkipRate:       0.02,
		RegionLift:     0.35,
		Seed:           42,
	}
}

// DontKnowCode is the code generated scales use for "Don't know"
const DontKnowCode = 99

// UnusedRegion is declared in the REGION labels but never answered
const UnusedRegion = 9

// SurveyGenerator generates a labelled survey with ordinal, nominal, binary and numeric columns
type SurveyGenerator struct {
	config SurveyGeneratorConfig
	rng    *rand.Rand
}

// NewSurveyGenerator creates a new survey generator
func NewSurveyGenerator(config SurveyGeneratorConfig) *SurveyGenerator {
	return &SurveyGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Variables returns the catalog entries without coded values
func (g *SurveyGenerator) Variables() []survey.Variable {
	regions := map[int]string{UnusedRegion: "Overseas"}
	for r := 1; r <= g.config.Regions; r++ {
		regions[r] = fmt.Sprintf("Region %d", r)
	}

	vars := []survey.Variable{
		{Name: "RESP_AGE", Label: "Age of respondent"},
		{Name: "REGION", Label: "Region", ValueLabels: regions},
		{Name: "GENDER", Label: "Gender", ValueLabels: map[int]string{1: "Male", 2: "Female"}},
		{Name: "BRAND", Label: "Brand used most often", ValueLabels: map[int]string{
			1: "Brand A", 2: "Brand B", 3: "Brand C", 98: "Prefer not to say",
		}},
	}
	for q := 1; q <= g.config.ScaleQuestions; q++ {
		vars = append(vars, survey.Variable{
			Name:        fmt.Sprintf("Q%d", q),
			Label:       fmt.Sprintf("Satisfaction with aspect %d", q),
			ValueLabels: satisfactionLabels(g.config.ScalePoints),
		})
	}
	return vars
}

// Generate produces a dataset. The same seed always yields the same answers.
func (g *SurveyGenerator) Generate() (*survey.Dataset, error) {
	n := g.config.Respondents
	columns := map[string][]*int{}

	region := make([]*int, n)
	for i := range region {
		region[i] = code(1 + g.rng.Intn(g.config.Regions))
	}
	columns["REGION"] = region
	columns["RESP_AGE"] = g.fill(n, func(int) *int { return code(18 + g.rng.Intn(63)) })
	columns["GENDER"] = g.fill(n, func(int) *int { return code(1 + g.rng.Intn(2)) })
	columns["BRAND"] = g.fill(n, func(int) *int {
		if g.rng.Float64() < g.config.DontKnowRate {
			return code(98)
		}
		return code(1 + g.rng.Intn(3))
	})

	for q := 1; q <= g.config.ScaleQuestions; q++ {
		columns[fmt.Sprintf("Q%d", q)] = g.fill(n, func(i int) *int {
			return g.scaleAnswer(*region[i] == 1)
		})
	}

	cols := make(map[string]survey.Column, len(columns))
	for name, values := range columns {
		cols[name] = survey.NewColumn(values)
	}
	return survey.FromVariables(g.Variables(), cols)
}

func (g *SurveyGenerator) fill(n int, answer func(i int) *int) []*int {
	out := make([]*int, n)
	for i := range out {
		out[i] = answer(i)
	}
	return out
}

// scaleAnswer draws one scale answer; lifted respondents lean to the top box
func (g *SurveyGenerator) scaleAnswer(lifted bool) *int {
	r := g.rng.Float64()
	switch {
	case r < g.config.SkipRate:
		return nil
	case r < g.config.SkipRate+g.config.DontKnowRate:
		return code(DontKnowCode)
	}
	points := g.config.ScalePoints
	if lifted && g.rng.Float64() < g.config.RegionLift {
		return code(points - g.rng.Intn(2))
	}
	return code(1 + g.rng.Intn(points))
}

func satisfactionLabels(points int) map[int]string {
	labels := map[int]string{DontKnowCode: "Don't know"}
	for c := 1; c <= points; c++ {
		switch c {
		case 1:
			labels[c] = "Very dissatisfied"
		case points:
			labels[c] = "Very satisfied"
		default:
			labels[c] = fmt.Sprintf("Satisfied (%d)", c)
		}
	}
	return labels
}

func code(v int) *int { return &v }

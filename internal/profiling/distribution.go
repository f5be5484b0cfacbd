package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"gobanner/domain/survey"
)

// ScaleProfile summarises the substantive answers of one variable
type ScaleProfile struct {
	Variable    string         `json:"variable"`
	Valid       int            `json:"valid"`
	Missing     int            `json:"missing"`
	NonAnswers  int            `json:"non_answers"`
	Frequencies map[int]int    `json:"frequencies"`
	Summary     SummaryMarkers `json:"summary"`
	Skewness    float64        `json:"skewness"`
}

// SummaryMarkers are the location and spread statistics of a profile
type SummaryMarkers struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// DistributionAnalyzer profiles variable columns
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Profile computes the profile of a variable's column. System-missing cells
// count as Missing, don't-know codes as NonAnswers; neither enters the statistics.
func (da *DistributionAnalyzer) Profile(v survey.Variable, col survey.Column) (ScaleProfile, error) {
	profile := ScaleProfile{Variable: v.Name, Frequencies: make(map[int]int)}

	data := make([]float64, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		code, ok := col.At(i)
		switch {
		case !ok:
			profile.Missing++
		case !v.IsSubstantive(code):
			profile.NonAnswers++
		default:
			profile.Frequencies[code]++
			data = append(data, float64(code))
		}
	}
	profile.Valid = len(data)
	if len(data) == 0 {
		return profile, nil
	}

	summary, err := summarize(data)
	if err != nil {
		return profile, err
	}
	profile.Summary = summary
	profile.Skewness = calculateSkewness(data, summary.Mean, summary.StdDev)
	return profile, nil
}

func summarize(data []float64) (SummaryMarkers, error) {
	var s SummaryMarkers
	var err error

	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if len(data) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return s, err
		}
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Q25, err = stats.Percentile(data, 25); err != nil {
		return s, err
	}
	if s.Q75, err = stats.Percentile(data, 75); err != nil {
		return s, err
	}
	return s, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// TopShare returns the share of valid answers at or above threshold
func (p ScaleProfile) TopShare(threshold int) float64 {
	if p.Valid == 0 {
		return 0
	}
	hits := 0
	for code, n := range p.Frequencies {
		if code >= threshold {
			hits += n
		}
	}
	return float64(hits) / float64(p.Valid)
}

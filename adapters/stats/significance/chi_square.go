package significance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gobanner/domain/audit"
	"gobanner/domain/banner"
)

// MinExpectedCount is the expected cell frequency below which a test is low power
const MinExpectedCount = 5.0

// ChiSquareTester runs Pearson chi-square tests of independence
type ChiSquareTester struct {
	Alpha         float64
	MarginalAlpha float64
	// Yates applies the continuity correction to 2x2 tables
	Yates bool
}

// NewChiSquareTester creates a tester with the conventional .05/.10 bands
func NewChiSquareTester() *ChiSquareTester {
	return &ChiSquareTester{Alpha: 0.05, MarginalAlpha: 0.10}
}

// Name returns the test name
func (t *ChiSquareTester) Name() string {
	return "chi_square"
}

// Test runs the chi-square test over substantive codes x banner categories.
// Rows and columns with zero margins are dropped first; a table left with fewer
// than two rows or columns is reported as degenerate with no p-value.
func (t *ChiSquareTester) Test(ct banner.Contingency) (banner.SignificanceResult, []audit.Warning) {
	result := banner.SignificanceResult{
		RowVariable:    ct.RowVariable,
		BannerVariable: ct.BannerVariable,
		Flag:           banner.FlagNotSignificant,
	}

	table := trimZeroMargins(ct.Counts)
	rows := len(table)
	if rows < 2 || len(table[0]) < 2 {
		result.Skipped = fmt.Sprintf("contingency table reduces to %dx%d", rows, width(table))
		return result, []audit.Warning{{
			Kind:     audit.DegenerateSignificanceTest,
			Variable: ct.RowVariable,
			Banner:   ct.BannerVariable,
			Message:  result.Skipped,
		}}
	}
	cols := len(table[0])

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	total := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := float64(table[i][j])
			rowTotals[i] += v
			colTotals[j] += v
			total += v
		}
	}

	yates := t.Yates && rows == 2 && cols == 2
	chiSq := 0.0
	minExpected := math.Inf(1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			minExpected = math.Min(minExpected, expected)
			diff := math.Abs(float64(table[i][j]) - expected)
			if yates {
				diff = math.Max(0, diff-0.5)
			}
			chiSq += diff * diff / expected
		}
	}

	df := (rows - 1) * (cols - 1)
	p := PValue(chiSq, df)

	minDim := math.Min(float64(rows-1), float64(cols-1))
	result.ChiSquare = chiSq
	result.DegreesOfFreedom = df
	result.PValue = &p
	result.CramersV = math.Sqrt(chiSq / (total * minDim))
	result.MinExpected = minExpected
	result.YatesCorrected = yates
	result.N = int(total)
	result.Flag = t.flag(p)

	var warnings []audit.Warning
	if minExpected < MinExpectedCount {
		result.LowPower = true
		warnings = append(warnings, audit.Warning{
			Kind:     audit.LowPower,
			Variable: ct.RowVariable,
			Banner:   ct.BannerVariable,
			Message:  fmt.Sprintf("minimum expected count %.2f is below %.0f", minExpected, MinExpectedCount),
		})
	}
	return result, warnings
}

func (t *ChiSquareTester) flag(p float64) banner.Flag {
	switch {
	case p < t.Alpha:
		return banner.FlagSignificant
	case p < t.MarginalAlpha:
		return banner.FlagMarginal
	default:
		return banner.FlagNotSignificant
	}
}

// PValue is the chi-square survival function
func PValue(chiSquare float64, df int) float64 {
	if df <= 0 || chiSquare < 0 || math.IsNaN(chiSquare) {
		return 1.0
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(chiSquare)
}

// Describe renders a one-line summary of a result
func Describe(r banner.SignificanceResult) string {
	if r.PValue == nil {
		return fmt.Sprintf("%s by %s: not tested (%s)", r.RowVariable, r.BannerVariable, r.Skipped)
	}

	var strength string
	switch {
	case r.CramersV < 0.1:
		strength = "weak"
	case r.CramersV < 0.3:
		strength = "moderate"
	case r.CramersV < 0.5:
		strength = "strong"
	default:
		strength = "very strong"
	}

	desc := fmt.Sprintf("%s by %s: χ²=%.3f, df=%d, p=%.4f, V=%.3f (%s)", r.RowVariable, r.BannerVariable, r.ChiSquare, r.DegreesOfFreedom, *r.PValue, r.CramersV, strength)
	if r.LowPower {
		desc += ", low expected counts"
	}
	return desc
}

func trimZeroMargins(counts [][]int) [][]int {
	if len(counts) == 0 {
		return nil
	}
	cols := len(counts[0])
	colTotals := make([]int, cols)
	var keepRows [][]int
	for _, row := range counts {
		sum := 0
		for j, v := range row {
			sum += v
			colTotals[j] += v
		}
		if sum > 0 {
			keepRows = append(keepRows, row)
		}
	}
	var out [][]int
	for _, row := range keepRows {
		var kept []int
		for j, v := range row {
			if colTotals[j] > 0 {
				kept = append(kept, v)
			}
		}
		out = append(out, kept)
	}
	return out
}

func width(table [][]int) int {
	if len(table) == 0 {
		return 0
	}
	return len(table[0])
}

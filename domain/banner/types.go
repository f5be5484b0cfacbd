package banner

import (
	"fmt"
	"sort"

	"gobanner/domain/survey"
)

// TotalLabel is the display label of the all-respondents column
const TotalLabel = "Total"

// Column is one category of one banner variable, or the Total column
type Column struct {
	Variable     string `json:"variable,omitempty"`
	CategoryCode int    `json:"category_code"`
	DisplayLabel string `json:"display_label"`
	Total        bool   `json:"total,omitempty"`
	Respondents  int    `json:"respondents"`
	// Empty marks a category with no respondents anywhere in the dataset
	Empty bool `json:"empty"`

	rows []int
}

// NewColumn builds a category column from its sorted member rows
func NewColumn(variable string, code int, label string, rows []int) Column {
	sorted := append([]int(nil), rows...)
	sort.Ints(sorted)
	return Column{
		Variable:     variable,
		CategoryCode: code,
		DisplayLabel: label,
		Respondents:  len(sorted),
		Empty:        len(sorted) == 0,
		rows:         sorted,
	}
}

// NewTotalColumn builds the column covering rows 0..n-1
func NewTotalColumn(n int) Column {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return Column{
		DisplayLabel: TotalLabel,
		Total:        true,
		Respondents:  n,
		Empty:        n == 0,
		rows:         rows,
	}
}

// Key identifies the column within a table
func (c Column) Key() string {
	if c.Total {
		return TotalLabel
	}
	return fmt.Sprintf("%s=%d", c.Variable, c.CategoryCode)
}

// Rows returns the member row indices in ascending order
func (c Column) Rows() []int {
	return c.rows
}

// Matches reports whether a respondent row belongs to this column
func (c Column) Matches(row int) bool {
	i := sort.SearchInts(c.rows, row)
	return i < len(c.rows) && c.rows[i] == row
}

// Cell is one (row code, banner column) intersection
type Cell struct {
	Code  int `json:"code"`
	Count int `json:"count"`
	Base  int `json:"base"`
	// Percentage is Count/Base as a fraction; nil when Base is zero
	Percentage *float64 `json:"percentage"`
}

// Computable reports whether the cell has a percentage
func (c Cell) Computable() bool {
	return c.Percentage != nil
}

// ColumnTab holds one banner column's base and cells for a row variable
type ColumnTab struct {
	Column Column `json:"column"`
	Base   int    `json:"base"`
	Cells  []Cell `json:"cells"`
}

// Crosstab is a row variable tabulated against one banner variable's columns
type Crosstab struct {
	RowVariable    string      `json:"row_variable"`
	RowLabel       string      `json:"row_label"`
	BannerVariable string      `json:"banner_variable"`
	Codes          []int       `json:"codes"`
	CodeLabels     []string    `json:"code_labels"`
	Columns        []ColumnTab `json:"columns"`
}

// Contingency returns the observed counts as codes × categories, skipping the Total column
func (x Crosstab) Contingency() Contingency {
	ct := Contingency{RowVariable: x.RowVariable, BannerVariable: x.BannerVariable, RowCodes: x.Codes}
	for _, col := range x.Columns {
		if col.Column.Total {
			continue
		}
		ct.ColumnCodes = append(ct.ColumnCodes, col.Column.CategoryCode)
	}
	ct.Counts = make([][]int, len(x.Codes))
	for r := range x.Codes {
		for _, col := range x.Columns {
			if col.Column.Total {
				continue
			}
			ct.Counts[r] = append(ct.Counts[r], col.Cells[r].Count)
		}
	}
	return ct
}

// Contingency is the observed count matrix for a significance test
type Contingency struct {
	RowVariable    string
	BannerVariable string
	RowCodes       []int
	ColumnCodes    []int
	Counts         [][]int
}

// Flag is the significance band of a test
type Flag string

const (
	FlagSignificant    Flag = "significant"
	FlagMarginal       Flag = "marginal"
	FlagNotSignificant Flag = "not_significant"
)

// Symbol returns the short marker used in rendered tables
func (f Flag) Symbol() string {
	switch f {
	case FlagSignificant:
		return "**"
	case FlagMarginal:
		return "*"
	}
	return ""
}

// SignificanceResult is the chi-square test of one row variable against one banner variable
type SignificanceResult struct {
	RowVariable      string   `json:"row_variable"`
	BannerVariable   string   `json:"banner_variable"`
	ChiSquare        float64  `json:"chi_square"`
	DegreesOfFreedom int      `json:"degrees_of_freedom"`
	PValue           *float64 `json:"p_value"`
	Flag             Flag     `json:"flag"`
	CramersV         float64  `json:"cramers_v"`
	LowPower         bool     `json:"low_power"`
	MinExpected      float64  `json:"min_expected"`
	YatesCorrected   bool     `json:"yates_corrected,omitempty"`
	N                int      `json:"n"`
	// Skipped carries the reason a degenerate table was not tested
	Skipped string `json:"skipped,omitempty"`
}

// RowGroup orders table rows
type RowGroup int

const (
	GroupOrdinal RowGroup = iota
	GroupCategorical
	GroupRequested
	GroupRecoded
)

func (g RowGroup) String() string {
	switch g {
	case GroupOrdinal:
		return "Ordinal scales"
	case GroupCategorical:
		return "Categorical"
	case GroupRequested:
		return "Other requested"
	case GroupRecoded:
		return "Recoded"
	}
	return "Unknown"
}

// Row is one row variable of the assembled table
type Row struct {
	Variable   string      `json:"variable"`
	Label      string      `json:"label"`
	Kind       survey.Kind `json:"kind"`
	Group      RowGroup    `json:"group"`
	Source     string      `json:"source,omitempty"`
	Codes      []int       `json:"codes"`
	CodeLabels []string    `json:"code_labels"`
	// Bases and Cells are aligned with Table.Columns; Cells is [code][column]
	Bases        []int                `json:"bases"`
	Cells        [][]Cell             `json:"cells"`
	Significance []SignificanceResult `json:"significance"`
}

// Table is the assembled banner table
type Table struct {
	Banners       []string `json:"banners"`
	Columns       []Column `json:"columns"`
	ElidedColumns []Column `json:"elided_columns,omitempty"`
	Rows          []Row    `json:"rows"`
	IncludeCounts bool     `json:"include_counts"`
}

// Significance returns every test result in row order
func (t Table) Significance() []SignificanceResult {
	var out []SignificanceResult
	for _, r := range t.Rows {
		out = append(out, r.Significance...)
	}
	return out
}

// Row looks up a row by variable name
func (t Table) Row(name string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Variable == name {
			return r, true
		}
	}
	return Row{}, false
}

// ColumnIndex returns the index of the column with the given key, or -1
func (t Table) ColumnIndex(key string) int {
	for i, c := range t.Columns {
		if c.Key() == key {
			return i
		}
	}
	return -1
}

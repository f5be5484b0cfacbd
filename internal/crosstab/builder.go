package crosstab

import (
	"fmt"

	"gobanner/domain/audit"
	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/survey"
)

// Build tabulates a row variable against a set of banner columns. Missing and
// non-substantive row codes never enter a base. A zero base yields nil
// percentages; it is reported unless the column is empty for the whole dataset.
func Build(row survey.Variable, columns []banner.Column, src Source) (banner.Crosstab, []audit.Warning, error) {
	data, ok := src.Column(row.Name)
	if !ok {
		return banner.Crosstab{}, nil, core.NewVariableNotFoundError(row.Name)
	}

	codes := row.SubstantiveCodes()
	position := make(map[int]int, len(codes))
	labels := make([]string, len(codes))
	for i, c := range codes {
		position[c] = i
		labels[i] = row.ValueLabel(c)
	}

	x := banner.Crosstab{
		RowVariable: row.Name,
		RowLabel:    row.DisplayLabel(),
		Codes:       codes,
		CodeLabels:  labels,
		Columns:     make([]banner.ColumnTab, 0, len(columns)),
	}
	var warnings []audit.Warning

	for _, col := range columns {
		if !col.Total && x.BannerVariable == "" {
			x.BannerVariable = col.Variable
		}
		counts := make([]int, len(codes))
		base := 0
		for _, r := range col.Rows() {
			code, present := data.At(r)
			if !present {
				continue
			}
			idx, substantive := position[code]
			if !substantive {
				continue
			}
			counts[idx]++
			base++
		}

		tab := banner.ColumnTab{Column: col, Base: base, Cells: make([]banner.Cell, len(codes))}
		for i, c := range codes {
			cell := banner.Cell{Code: c, Count: counts[i], Base: base}
			if base > 0 {
				pct := float64(counts[i]) / float64(base)
				cell.Percentage = &pct
			}
			tab.Cells[i] = cell
		}
		if base == 0 && !col.Empty {
			warnings = append(warnings, audit.Warning{
				Kind:     audit.LocalZeroBase,
				Variable: row.Name,
				Banner:   col.Variable,
				Column:   col.Key(),
				Message:  fmt.Sprintf("no substantive answers among %d respondents", col.Respondents),
			})
		}
		x.Columns = append(x.Columns, tab)
	}
	return x, warnings, nil
}

package tables

import (
	"fmt"

	"gobanner/domain/banner"
	"gobanner/internal/crosstab"
)

// Key addresses one (row variable, banner variable) unit of work.
// The Total column uses an empty Banner.
type Key struct {
	Row    string
	Banner string
}

// Cellset is the complete output of one work item
type Cellset struct {
	Crosstab     banner.Crosstab
	Significance *banner.SignificanceResult
}

// Options controls elision and count display
type Options struct {
	SkipEmpty     bool
	IncludeCounts bool
}

// Assemble merges crosstabs and tests into the ordered table. It computes nothing
// beyond ordering and elision; a missing work item is an error.
func Assemble(rows []Entry, layout crosstab.Layout, results map[Key]Cellset, opts Options) (banner.Table, error) {
	table := banner.Table{IncludeCounts: opts.IncludeCounts}
	for _, g := range layout.Groups {
		table.Banners = append(table.Banners, g.Variable)
	}
	for _, col := range layout.Columns() {
		if col.Empty && opts.SkipEmpty {
			table.ElidedColumns = append(table.ElidedColumns, col)
			continue
		}
		table.Columns = append(table.Columns, col)
	}

	for _, entry := range rows {
		row := banner.Row{
			Variable: entry.Variable.Name,
			Label:    entry.Variable.DisplayLabel(),
			Kind:     entry.Variable.Kind,
			Group:    entry.Group,
			Source:   entry.Source,
			Bases:    make([]int, len(table.Columns)),
		}

		codesSet := false
		for ci, col := range table.Columns {
			key := Key{Row: entry.Variable.Name, Banner: col.Variable}
			if col.Total {
				key.Banner = ""
			}
			set, ok := results[key]
			if !ok {
				return banner.Table{}, fmt.Errorf("no crosstab for %s by %q", key.Row, key.Banner)
			}
			tab, ok := findColumn(set.Crosstab, col.Key())
			if !ok {
				return banner.Table{}, fmt.Errorf("crosstab %s by %q lacks column %s", key.Row, key.Banner, col.Key())
			}
			if !codesSet {
				row.Codes = set.Crosstab.Codes
				row.CodeLabels = set.Crosstab.CodeLabels
				row.Cells = make([][]banner.Cell, len(row.Codes))
				for i := range row.Cells {
					row.Cells[i] = make([]banner.Cell, len(table.Columns))
				}
				codesSet = true
			}
			row.Bases[ci] = tab.Base
			for i := range row.Codes {
				row.Cells[i][ci] = tab.Cells[i]
			}
		}
		if !codesSet {
			row.Codes = entry.Variable.SubstantiveCodes()
			for _, c := range row.Codes {
				row.CodeLabels = append(row.CodeLabels, entry.Variable.ValueLabel(c))
			}
			row.Cells = make([][]banner.Cell, len(row.Codes))
		}

		for _, g := range layout.Groups {
			set, ok := results[Key{Row: entry.Variable.Name, Banner: g.Variable}]
			if ok && set.Significance != nil {
				row.Significance = append(row.Significance, *set.Significance)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func findColumn(x banner.Crosstab, key string) (banner.ColumnTab, bool) {
	for _, tab := range x.Columns {
		if tab.Column.Key() == key {
			return tab, true
		}
	}
	return banner.ColumnTab{}, false
}

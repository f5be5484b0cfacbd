package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gobanner/adapters/stats/significance"
	"gobanner/domain/audit"
	"gobanner/domain/banner"
	"gobanner/domain/decision"
	"gobanner/domain/survey"
	"gobanner/internal/metadata"
)

func newWriter(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func renderClassifications(w io.Writer, classes []metadata.Classification) {
	t := newWriter(w, "Classification")
	t.AppendHeader(table.Row{"Variable", "Kind", "Points", "Confident", "Banner candidate", "Reason"})
	for _, c := range classes {
		confident := "yes"
		if !c.Confident && !c.Overridden {
			confident = "no"
		}
		candidate := ""
		if c.BannerCandidate {
			candidate = "yes"
		}
		t.AppendRow(table.Row{c.Variable, c.Kind, c.ScalePoints, confident, candidate, c.Reason})
	}
	t.Render()
}

func renderRecodings(w io.Writer, derived []survey.RecodedVariable) {
	if len(derived) == 0 {
		fmt.Fprintln(w, "(no recoded variables)")
		return
	}
	t := newWriter(w, "Recoded variables")
	t.AppendHeader(table.Row{"Variable", "Source", "Box", "Threshold", "Scale points", "Label"})
	for _, rv := range derived {
		t.AppendRow(table.Row{rv.Name, rv.Source, fmt.Sprintf("%s %d", rv.Direction, rv.BoxSize), rv.Threshold, rv.ScalePoints, rv.Label})
	}
	t.Render()
}

// renderTable prints one block per row variable with column percentages
func renderTable(w io.Writer, tab banner.Table) {
	t := newWriter(w, "Banner table")
	header := table.Row{"", ""}
	for _, c := range tab.Columns {
		header = append(header, c.DisplayLabel)
	}
	t.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(tab.Columns))
	for i := range tab.Columns {
		configs = append(configs, table.ColumnConfig{Number: i + 3, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)

	for _, row := range tab.Rows {
		title := table.Row{row.Variable, row.Label}
		t.AppendRow(title)
		base := table.Row{"", "Base"}
		for _, b := range row.Bases {
			base = append(base, b)
		}
		t.AppendRow(base)
		for k, label := range row.CodeLabels {
			r := table.Row{"", label}
			for _, cell := range row.Cells[k] {
				r = append(r, formatCell(cell, tab.IncludeCounts))
			}
			t.AppendRow(r)
		}
		t.AppendSeparator()
	}
	t.Render()
}

func formatCell(c banner.Cell, counts bool) string {
	if !c.Computable() {
		return "-"
	}
	if counts {
		return fmt.Sprintf("%.1f%% (%d)", *c.Percentage*100, c.Count)
	}
	return fmt.Sprintf("%.1f%%", *c.Percentage*100)
}

func renderSignificance(w io.Writer, results []banner.SignificanceResult) {
	if len(results) == 0 {
		return
	}
	t := newWriter(w, "Significance")
	t.AppendHeader(table.Row{"Row", "Banner", "Chi-square", "df", "p", "", "Summary"})
	for _, r := range results {
		p := "-"
		if r.PValue != nil {
			p = fmt.Sprintf("%.4f", *r.PValue)
		}
		t.AppendRow(table.Row{r.RowVariable, r.BannerVariable, fmt.Sprintf("%.3f", r.ChiSquare), r.DegreesOfFreedom, p, r.Flag.Symbol(), significance.Describe(r)})
	}
	t.Render()
}

func renderWarnings(w io.Writer, warnings []audit.Warning) {
	if len(warnings) == 0 {
		return
	}
	t := newWriter(w, fmt.Sprintf("Warnings (%d)", len(warnings)))
	t.AppendHeader(table.Row{"Kind", "Variable", "Banner", "Message"})
	for _, warn := range warnings {
		t.AppendRow(table.Row{warn.Kind, warn.Variable, warn.Banner, warn.Message})
	}
	t.Render()
}

func renderPending(w io.Writer, p *decision.Pending) {
	t := newWriter(w, fmt.Sprintf("Pending %s: %s", p.Kind, p.Prompt))
	t.AppendHeader(table.Row{"Option", "Label", "Recommended"})
	for _, o := range p.Options {
		rec := ""
		if o.Recommended {
			rec = "*"
		}
		t.AppendRow(table.Row{o.ID, o.Label, rec})
	}
	t.Render()
}

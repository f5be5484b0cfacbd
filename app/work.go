package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gobanner/domain/audit"
	"gobanner/domain/banner"
	"gobanner/domain/survey"
	"gobanner/internal/crosstab"
	"gobanner/internal/tables"
)

// WorkItem is one row variable tabulated against one banner variable, or
// against the Total column when Banner is empty
type WorkItem struct {
	Row     survey.Variable
	Banner  string
	Columns []banner.Column
}

// Key addresses the item's output slot in the assembler
func (w WorkItem) Key() tables.Key {
	return tables.Key{Row: w.Row.Name, Banner: w.Banner}
}

// WorkItems enumerates every (row, banner) pair in table order, Total first per row
func WorkItems(rows []tables.Entry, layout crosstab.Layout) []WorkItem {
	items := make([]WorkItem, 0, len(rows)*(len(layout.Groups)+1))
	for _, entry := range rows {
		if layout.Total != nil {
			items = append(items, WorkItem{Row: entry.Variable, Columns: []banner.Column{*layout.Total}})
		}
		for _, g := range layout.Groups {
			items = append(items, WorkItem{Row: entry.Variable, Banner: g.Variable, Columns: g.Columns})
		}
	}
	return items
}

// itemOutput is the whole output of one work item
type itemOutput struct {
	Cellset  tables.Cellset
	Warnings []audit.Warning
}

// tabulate runs work items on a bounded pool. Each item writes only its own
// slot; an item either completes or contributes nothing.
func (p *Pipeline) tabulate(ctx context.Context, items []WorkItem, src crosstab.Source) ([]itemOutput, error) {
	outputs := make([]itemOutput, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if p.config.Workers > 0 {
		g.SetLimit(p.config.Workers)
	}
	for i := range items {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := p.runItem(items[i], src)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (p *Pipeline) runItem(item WorkItem, src crosstab.Source) (itemOutput, error) {
	x, warnings, err := crosstab.Build(item.Row, item.Columns, src)
	if err != nil {
		return itemOutput{}, err
	}
	x.BannerVariable = item.Banner
	out := itemOutput{Cellset: tables.Cellset{Crosstab: x}, Warnings: warnings}

	if item.Banner == "" || !p.config.Significance {
		return out, nil
	}
	result, testWarnings := p.tester.Test(x.Contingency())
	out.Cellset.Significance = &result
	out.Warnings = append(out.Warnings, testWarnings...)
	return out, nil
}

package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"gobanner/domain/banner"
	"gobanner/internal"
	"gobanner/internal/verification"
)

// WorkbookWriter exports a banner table as a three-sheet workbook
type WorkbookWriter struct {
	logger *internal.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *internal.Logger) *WorkbookWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &WorkbookWriter{logger: logger}
}

// Format returns "xlsx"
func (w *WorkbookWriter) Format() string { return "xlsx" }

// Export writes the workbook to dst
func (w *WorkbookWriter) Export(dst io.Writer, table banner.Table, doc verification.Document) error {
	f, err := w.build(table, doc)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(dst); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook at path
func (w *WorkbookWriter) WriteFile(path string, table banner.Table, doc verification.Document) error {
	f, err := w.build(table, doc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	w.logger.Info("[WorkbookWriter] Saved %s (%d rows, %d columns)", path, len(table.Rows), len(table.Columns))
	return nil
}

func (w *WorkbookWriter) build(table banner.Table, doc verification.Document) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetBannerTables); err != nil {
		f.Close()
		return nil, err
	}
	for _, step := range []func(*excelize.File) error{
		func(f *excelize.File) error { return writeBannerSheet(f, table) },
		func(f *excelize.File) error { return writeSignificanceSheet(f, table) },
		func(f *excelize.File) error { return writeVerificationSheet(f, doc) },
	} {
		if err := step(f); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// sheetWriter appends rows to one sheet
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (s *sheetWriter) set(col int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, s.row)
	if err != nil {
		return err
	}
	return s.f.SetCellValue(s.sheet, cell, value)
}

func (s *sheetWriter) style(col int, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, s.row)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(s.sheet, cell, cell, style)
}

func (s *sheetWriter) line(values ...interface{}) error {
	s.row++
	for i, v := range values {
		if err := s.set(i+1, v); err != nil {
			return err
		}
	}
	return nil
}

func writeBannerSheet(f *excelize.File, table banner.Table) error {
	numFmt := "0.0%"
	pct, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	s := &sheetWriter{f: f, sheet: SheetBannerTables}
	header := []interface{}{"Variable", "Category"}
	for _, c := range table.Columns {
		header = append(header, c.DisplayLabel)
	}
	if err := s.line(header...); err != nil {
		return err
	}
	for i := range header {
		if err := s.style(i+1, bold); err != nil {
			return err
		}
	}

	group := banner.RowGroup(-1)
	for _, row := range table.Rows {
		if row.Group != group {
			group = row.Group
			s.row++
			if err := s.line(group.String()); err != nil {
				return err
			}
			if err := s.style(1, bold); err != nil {
				return err
			}
		}
		if err := s.line(row.Variable, row.Label); err != nil {
			return err
		}
		if err := s.line("", "Base"); err != nil {
			return err
		}
		for j, base := range row.Bases {
			if err := s.set(j+3, base); err != nil {
				return err
			}
		}
		for k, label := range row.CodeLabels {
			if err := s.line("", label); err != nil {
				return err
			}
			for j, cell := range row.Cells[k] {
				if !cell.Computable() {
					if err := s.set(j+3, "-"); err != nil {
						return err
					}
					continue
				}
				if err := s.set(j+3, *cell.Percentage); err != nil {
					return err
				}
				if err := s.style(j+3, pct); err != nil {
					return err
				}
			}
			if !table.IncludeCounts {
				continue
			}
			if err := s.line("", label+" (n)"); err != nil {
				return err
			}
			for j, cell := range row.Cells[k] {
				if err := s.set(j+3, cell.Count); err != nil {
					return err
				}
			}
		}
	}
	return f.SetColWidth(SheetBannerTables, "A", "B", 28)
}

func writeSignificanceSheet(f *excelize.File, table banner.Table) error {
	if _, err := f.NewSheet(SheetSignificance); err != nil {
		return err
	}
	fills := make(map[banner.Flag]int, 2)
	for flag, color := range map[banner.Flag]string{banner.FlagSignificant: FillSignificant, banner.FlagMarginal: FillMarginal} {
		style, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}})
		if err != nil {
			return err
		}
		fills[flag] = style
	}

	s := &sheetWriter{f: f, sheet: SheetSignificance}
	if err := s.line("Row variable", "Banner", "Chi-square", "df", "p-value", "Cramer's V", "N", "Flag", "Note"); err != nil {
		return err
	}
	for _, r := range table.Significance() {
		var p interface{} = "-"
		if r.PValue != nil {
			p = *r.PValue
		}
		note := r.Skipped
		if note == "" && r.LowPower {
			note = fmt.Sprintf("expected count below 5 (min %.2f)", r.MinExpected)
		}
		if err := s.line(r.RowVariable, r.BannerVariable, r.ChiSquare, r.DegreesOfFreedom, p, r.CramersV, r.N, string(r.Flag), note); err != nil {
			return err
		}
		style, ok := fills[r.Flag]
		if !ok {
			continue
		}
		for col := 1; col <= 9; col++ {
			if err := s.style(col, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeVerificationSheet(f *excelize.File, doc verification.Document) error {
	if _, err := f.NewSheet(SheetVerification); err != nil {
		return err
	}
	s := &sheetWriter{f: f, sheet: SheetVerification}
	for _, line := range strings.Split(strings.TrimRight(verification.RenderCTABLES(doc), "\n"), "\n") {
		if err := s.line(line); err != nil {
			return err
		}
	}
	return nil
}

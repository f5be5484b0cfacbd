package excel

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gobanner/app"
	"gobanner/domain/banner"
	"gobanner/internal/testkit"
)

func exportScenario(t *testing.T) *app.Result {
	t.Helper()
	res, err := app.NewPipeline(app.DefaultPipelineConfig(), nil).Run(context.Background(), app.Request{
		Dataset: testkit.SignificanceScenario(),
		Banner:  banner.NewSpec("SEG"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Table)
	require.NotNil(t, res.Verification)
	return res
}

func TestWorkbookWriter_Export(t *testing.T) {
	res := exportScenario(t)

	buf := new(bytes.Buffer)
	require.NoError(t, NewWorkbookWriter(nil).Export(buf, *res.Table, *res.Verification))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetBannerTables, SheetSignificance, SheetVerification}, f.GetSheetList())

	header, err := f.GetRows(SheetBannerTables)
	require.NoError(t, err)
	require.NotEmpty(t, header)
	assert.Equal(t, "Total", header[0][2])
	assert.Equal(t, "A", header[0][3])
	assert.Equal(t, "B", header[0][4])

	sig, err := f.GetRows(SheetSignificance)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(sig), 2)
	var flagged bool
	for i, row := range sig[1:] {
		if row[0] == "SAT_top2" && row[1] == "SEG" {
			flagged = true
			assert.Equal(t, "significant", row[7])
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			require.NoError(t, err)
			style, err := f.GetCellStyle(SheetSignificance, cell)
			require.NoError(t, err)
			assert.NotZero(t, style, "significant rows are filled")
		}
	}
	assert.True(t, flagged, "SAT_top2 by SEG row present")

	lines, err := f.GetRows(SheetVerification)
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

func TestWorkbookWriter_WriteFileRoundTrip(t *testing.T) {
	res := exportScenario(t)
	path := filepath.Join(t.TempDir(), "banner.xlsx")
	require.NoError(t, NewWorkbookWriter(nil).WriteFile(path, *res.Table, *res.Verification))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetBannerTables)
	require.NoError(t, err)

	var base bool
	for _, r := range rows {
		if len(r) > 2 && r[1] == "Base" {
			base = true
			assert.Equal(t, "100", r[2])
			break
		}
	}
	assert.True(t, base)
}

package excel

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gobanner/domain/core"
	"gobanner/domain/survey"
	"gobanner/internal"
)

// DataReader handles reading Excel, CSV and JSON survey files
type DataReader struct {
	filePath   string
	fileType   string // "xlsx", "csv" or "json"
	labelsPath string
	config     ReaderConfig
	logger     *internal.Logger
}

// NewDataReader creates a reader that picks the format from the file extension
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		fileType = "csv"
	case ".json":
		fileType = "json"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		config:   DefaultReaderConfig(),
		logger:   internal.DefaultLogger,
	}
}

// WithLabels sets the "variable, code, label" CSV that accompanies a CSV data file
func (r *DataReader) WithLabels(path string) *DataReader {
	r.labelsPath = path
	return r
}

// WithConfig overrides the workbook sheet names
func (r *DataReader) WithConfig(config ReaderConfig) *DataReader {
	r.config = config
	return r
}

// ReadDataset reads and validates the file
func (r *DataReader) ReadDataset(ctx context.Context) (*survey.Dataset, error) {
	r.logger.Info("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", strings.ToUpper(r.fileType), err)
	}
	defer file.Close()

	switch r.fileType {
	case "csv":
		reader := &CSVReader{logger: r.logger}
		if r.labelsPath != "" {
			labels, err := os.Open(r.labelsPath)
			if err != nil {
				return nil, fmt.Errorf("failed to open labels file: %w", err)
			}
			defer labels.Close()
			reader.Labels = labels
		}
		return reader.Read(ctx, file)
	case "json":
		return (&JSONReader{}).Read(ctx, file)
	default:
		return (&WorkbookReader{config: r.config, logger: r.logger}).Read(ctx, file)
	}
}

// WorkbookReader reads a survey workbook with a data sheet and an optional labels sheet
type WorkbookReader struct {
	config ReaderConfig
	logger *internal.Logger
}

// NewWorkbookReader creates a workbook reader
func NewWorkbookReader(config ReaderConfig, logger *internal.Logger) *WorkbookReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &WorkbookReader{config: config, logger: logger}
}

// Format returns "xlsx"
func (w *WorkbookReader) Format() string { return "xlsx" }

// Read reads the workbook stream
func (w *WorkbookReader) Read(ctx context.Context, src io.Reader) (*survey.Dataset, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(w.config.DataSheet)
	if err != nil {
		return nil, core.NewFatalInputError(fmt.Sprintf("workbook has no %q sheet", w.config.DataSheet))
	}
	w.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", w.config.DataSheet,
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	var labels [][]string
	if w.config.LabelsSheet != "" && hasSheet(f, w.config.LabelsSheet) {
		if labels, err = f.GetRows(w.config.LabelsSheet); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", w.config.LabelsSheet, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return buildDataset(w.logger, w.config.DataSheet, rows, labels)
}

func hasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// CSVReader reads a CSV data file; Labels optionally supplies a labels CSV
type CSVReader struct {
	Labels io.Reader
	logger *internal.Logger
}

// Format returns "csv"
func (c *CSVReader) Format() string { return "csv" }

// Read reads the CSV stream
func (c *CSVReader) Read(ctx context.Context, src io.Reader) (*survey.Dataset, error) {
	logger := c.logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	var labels [][]string
	if c.Labels != nil {
		lr := csv.NewReader(c.Labels)
		lr.FieldsPerRecord = -1
		if labels, err = lr.ReadAll(); err != nil {
			return nil, fmt.Errorf("failed to read labels CSV: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return buildDataset(logger, "CSV", rows, labels)
}

// JSONReader reads a survey.Document
type JSONReader struct{}

// Format returns "json"
func (j *JSONReader) Format() string { return "json" }

// Read decodes the document stream
func (j *JSONReader) Read(ctx context.Context, src io.Reader) (*survey.Dataset, error) {
	var doc survey.Document
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return nil, core.NewFatalInputError(fmt.Sprintf("survey document is not valid JSON: %v", err))
	}
	return doc.Dataset()
}

// buildDataset turns a header row plus code rows into a dataset. Blank cells are
// system-missing; any other non-integer cell is fatal.
func buildDataset(logger *internal.Logger, source string, rows [][]string, labelRows [][]string) (*survey.Dataset, error) {
	if len(rows) == 0 {
		return nil, core.NewFatalInputError(source + " has no header row")
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(header))
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, core.NewFatalInputError(fmt.Sprintf("%s column %d has no variable name", source, i+1))
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateVariable, name)
		}
		seen[name] = true
		header[i] = name
	}

	values := make(map[string][]*int, len(header))
	for r, row := range rows[1:] {
		for j, name := range header {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			if cell == "" {
				values[name] = append(values[name], nil)
				continue
			}
			code, err := survey.ParseCode(cell)
			if err != nil {
				return nil, core.NewFatalInputError(fmt.Sprintf("%s row %d column %s: %q is not an integer code", source, r+2, name, cell))
			}
			values[name] = append(values[name], &code)
		}
	}

	varLabels, valueLabels := splitLabels(labelRows)
	variables := make([]survey.Variable, len(header))
	columns := make(map[string]survey.Column, len(header))
	for i, name := range header {
		labels, err := survey.ParseValueLabels(name, valueLabels[name])
		if err != nil {
			return nil, err
		}
		variables[i] = survey.Variable{Name: name, Label: varLabels[name], ValueLabels: labels, Kind: survey.KindUnclassified}
		columns[name] = survey.NewColumn(values[name])
	}
	for name := range valueLabels {
		if !seen[name] {
			logger.Warn("[DataReader] labels given for unknown variable %s", name)
		}
	}

	logger.Info("[DataReader] %s processed (%d variables, %d respondents)", source, len(header), len(rows)-1)
	return survey.FromVariables(variables, columns)
}

// splitLabels separates variable labels (rows with no code) from value labels.
// A leading "variable, code, label" header row is skipped.
func splitLabels(rows [][]string) (map[string]string, map[string]map[string]string) {
	varLabels := make(map[string]string)
	valueLabels := make(map[string]map[string]string)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		code := strings.TrimSpace(row[1])
		label := ""
		if len(row) > 2 {
			label = strings.TrimSpace(row[2])
		}
		if i == 0 && strings.EqualFold(name, "variable") && strings.EqualFold(code, "code") {
			continue
		}
		if name == "" {
			continue
		}
		if code == "" {
			varLabels[name] = label
			continue
		}
		if valueLabels[name] == nil {
			valueLabels[name] = make(map[string]string)
		}
		valueLabels[name][code] = label
	}
	return varLabels, valueLabels
}

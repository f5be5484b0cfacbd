package excel

// ReaderConfig names the sheets of a survey workbook
type ReaderConfig struct {
	// DataSheet holds one header row of variable names and one row per respondent
	DataSheet string `json:"data_sheet"`
	// LabelsSheet holds "variable, code, label" rows; a row with no code
	// labels the variable itself. Optional.
	LabelsSheet string `json:"labels_sheet"`
}

// DefaultReaderConfig returns the standard sheet names
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		DataSheet:   "Data",
		LabelsSheet: "Labels",
	}
}

// Sheet names of an exported banner workbook
const (
	SheetBannerTables = "Banner Tables"
	SheetSignificance = "Significance Tests"
	SheetVerification = "Verification"
)

// Fill colours of significance rows
const (
	FillSignificant = "C6EFCE"
	FillMarginal    = "FCE4D6"
)

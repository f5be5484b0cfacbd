package ports

import (
	"io"

	"gobanner/domain/banner"
	"gobanner/internal/verification"
)

// TableExporter writes a finished banner table with its tests and verification queries
type TableExporter interface {
	Export(w io.Writer, table banner.Table, verification verification.Document) error
}

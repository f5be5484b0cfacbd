package ports

import (
	"context"
	"io"

	"gobanner/domain/survey"
)

// DatasetReader loads a labelled survey dataset. Implementations must reject
// inconsistent row counts, duplicate names and malformed labels as fatal input.
type DatasetReader interface {
	Read(ctx context.Context, r io.Reader) (*survey.Dataset, error)
	// Format names the input format, e.g. "xlsx", "csv", "json"
	Format() string
}
